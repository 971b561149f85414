package adapter

import (
	"context"
	"sync"

	apperrors "moodgraph/backend/pkg/errors"
)

// DefaultStubReply is what the offline stub answers when nothing is scripted
const DefaultStubReply = "Thank you for sharing that with me. How did it make you feel?"

// ScriptedReply is one canned answer of a ScriptedGenerator
type ScriptedReply struct {
	Content string
	Err     error
}

// Call records a request seen by a ScriptedGenerator
type Call struct {
	SystemPrompt string
	Turns        []Turn
}

// ScriptedGenerator is a deterministic Generator: it replays queued replies in
// order, then answers with Fallback. Used for offline runs and tests.
type ScriptedGenerator struct {
	mu       sync.Mutex
	replies  []ScriptedReply
	calls    []Call
	Fallback string
}

// NewScriptedGenerator queues replies in order
func NewScriptedGenerator(replies ...ScriptedReply) *ScriptedGenerator {
	return &ScriptedGenerator{replies: replies}
}

// NewStubGenerator answers every request with DefaultStubReply
func NewStubGenerator() *ScriptedGenerator {
	return &ScriptedGenerator{Fallback: DefaultStubReply}
}

// Push queues more replies
func (s *ScriptedGenerator) Push(replies ...ScriptedReply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

// Generate implements Generator
func (s *ScriptedGenerator) Generate(ctx context.Context, systemPrompt string, turns []Turn) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]Turn, len(turns))
	copy(copied, turns)
	s.calls = append(s.calls, Call{SystemPrompt: systemPrompt, Turns: copied})

	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewContextTimeout("scripted generate", 0, err)
	}

	if len(s.replies) > 0 {
		next := s.replies[0]
		s.replies = s.replies[1:]
		if next.Err != nil {
			return nil, next.Err
		}
		return &Response{Content: next.Content, Model: "scripted"}, nil
	}
	if s.Fallback != "" {
		return &Response{Content: s.Fallback, Model: "stub"}, nil
	}
	return nil, apperrors.NewGenerationUnavailable("no scripted reply left", nil)
}

// Calls returns every request seen so far
func (s *ScriptedGenerator) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}
