package agent

import (
	"strings"

	"moodgraph/backend/internal/state"
)

const greetingReply = "Hi! I'm here whenever you want to talk. How has your day been so far?"

var followUpReplies = []string{
	"Thanks for telling me. How did that make you feel?",
	"That sounds like a lot. What stood out to you the most about it?",
	"I hear you. Is there anything else from today you'd like to get off your chest?",
}

var heavyWords = []string{"sad", "stressed", "anxious", "angry", "tired", "upset", "lonely", "awful", "hard"}

const supportiveReply = "I'm sorry today felt heavy. I'm listening, take your time. What's weighing on you most right now?"

// fallbackReply picks a canned answer when generation is unavailable
func fallbackReply(history state.Transcript, message string) string {
	lower := strings.ToLower(message)
	for _, w := range heavyWords {
		if strings.Contains(lower, w) {
			return supportiveReply
		}
	}
	if len(history) == 0 {
		return greetingReply
	}
	return followUpReplies[len(history)%len(followUpReplies)]
}
