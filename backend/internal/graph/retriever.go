package graph

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"moodgraph/backend/internal/constants"
	"moodgraph/backend/pkg/logger"
)

// Retriever builds a short digest of what the user said before about the
// things named in a message
type Retriever struct {
	store  ContextReader
	logger *zap.Logger
}

// NewRetriever creates a retriever over the given store
func NewRetriever(s ContextReader) *Retriever {
	return &Retriever{
		store:  s,
		logger: logger.Named("context_retriever"),
	}
}

// RelevantContext returns one line per matched entity that has events, each
// followed by its most recent events. Returns "" when nothing matches.
func (r *Retriever) RelevantContext(ctx context.Context, userID, query string) (string, error) {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return "", nil
	}

	entities, err := r.store.FindEntitiesByName(ctx, userID, tokens, constants.ContextMaxEntities)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, entity := range entities {
		events, err := r.store.EventsMentioning(ctx, userID, entity.LocalID, constants.ContextEventsPerEntity)
		if err != nil {
			return "", err
		}
		if len(events) == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s)\n", entity.Name, entity.Type)
		for _, ev := range events {
			fmt.Fprintf(&b, "  - %s (%s)\n", ev.Summary, ev.Date)
		}
	}

	digest := strings.TrimRight(b.String(), "\n")
	r.logger.Debug("Built context digest",
		zap.String("user_id", userID),
		zap.Strings("tokens", tokens),
		zap.Int("matched_entities", len(entities)),
		zap.Int("digest_length", len(digest)))
	return digest, nil
}

// Tokenize splits on whitespace, drops tokens of ContextMinTokenLength runes or
// fewer and lowercases the rest. The length check applies to the raw token;
// surrounding punctuation is trimmed afterwards so "Sarah!" matches Sarah.
func Tokenize(query string) []string {
	var tokens []string
	seen := make(map[string]bool)
	for _, field := range strings.Fields(query) {
		if utf8.RuneCountInString(field) <= constants.ContextMinTokenLength {
			continue
		}
		tok := strings.ToLower(strings.TrimFunc(field, unicode.IsPunct))
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	return tokens
}
