package agent

import (
	"strings"

	"moodgraph/backend/internal/adapter"
	"moodgraph/backend/internal/constants"
	"moodgraph/backend/internal/state"
)

const companionPersona = `You are a warm, curious journaling companion. The user talks to you about their day.
- Keep replies short: two or three sentences.
- Ask one gentle follow-up question that helps them reflect on what happened or how they felt.
- Never diagnose, lecture or give medical advice.
- Do not invent memories. Only refer to past events listed under "What you remember", and only when they are relevant.`

// buildReplySystemPrompt creates the reply instruction, including the context digest when there is one
func buildReplySystemPrompt(digest string) string {
	var b strings.Builder
	b.WriteString(companionPersona)
	if digest != "" {
		b.WriteString("\n\n## What you remember\n")
		b.WriteString(digest)
	}
	return b.String()
}

// buildReplyTurns keeps the most recent history and appends the new message
func buildReplyTurns(history state.Transcript, message string) []adapter.Turn {
	if len(history) > constants.ReplyHistoryLimit {
		history = history[len(history)-constants.ReplyHistoryLimit:]
	}
	turns := make([]adapter.Turn, 0, len(history)+1)
	for _, msg := range history {
		role := adapter.RoleUser
		if msg.Sender == state.SenderAssistant {
			role = adapter.RoleAssistant
		}
		turns = append(turns, adapter.Turn{Role: role, Content: msg.Content})
	}
	return append(turns, adapter.Turn{Role: adapter.RoleUser, Content: message})
}
