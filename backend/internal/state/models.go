package state

import (
	"fmt"
	"strings"
)

// Sender values accepted in a transcript
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is one turn of a day's conversation
type Message struct {
	Sender  string `json:"sender" binding:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// Transcript is the ordered, closed conversation for one user-day
type Transcript []Message

// Validate checks that every message has a known sender
func (t Transcript) Validate() error {
	for i, msg := range t {
		if err := msg.Validate(); err != nil {
			return ErrInvalidMessage{Index: i, Err: err}
		}
	}
	return nil
}

// Validate checks a single message
func (m Message) Validate() error {
	if m.Sender != SenderUser && m.Sender != SenderAssistant {
		return fmt.Errorf("unknown sender %q", m.Sender)
	}
	return nil
}

// Extractable reports whether the transcript is long enough to be worth extracting
func (t Transcript) Extractable(minMessages int) bool {
	return len(t) >= minMessages
}

// LastUserMessage returns the content of the most recent user turn, if any
func (t Transcript) LastUserMessage() string {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Sender == SenderUser {
			return t[i].Content
		}
	}
	return ""
}

// Render formats the transcript as "Sender: content" lines
func (t Transcript) Render() string {
	var b strings.Builder
	for _, msg := range t {
		label := "User"
		if msg.Sender == SenderAssistant {
			label = "Assistant"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(msg.Content))
		b.WriteString("\n")
	}
	return b.String()
}

// Errors

type ErrInvalidMessage struct {
	Index int
	Err   error
}

func (e ErrInvalidMessage) Error() string {
	return fmt.Sprintf("invalid message at index %d: %v", e.Index, e.Err)
}
