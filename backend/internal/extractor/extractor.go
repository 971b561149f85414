package extractor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"moodgraph/backend/internal/adapter"
	"moodgraph/backend/internal/metrics"
	"moodgraph/backend/internal/state"
	"moodgraph/backend/pkg/logger"
)

// Extractor turns a closed transcript into a knowledge graph in local ids
type Extractor struct {
	llm    adapter.Generator
	parser *Parser
	logger *zap.Logger
}

// New creates an extractor backed by the given generation capability
func New(llm adapter.Generator) *Extractor {
	log := logger.Named("extractor")
	return &Extractor{
		llm:    llm,
		parser: NewParser(log),
		logger: log,
	}
}

// Extract sends the transcript to the model in a single request and parses the reply.
// Generation failures and malformed JSON are returned as errors; the caller decides
// whether they matter.
func (x *Extractor) Extract(ctx context.Context, transcript state.Transcript) (*Result, error) {
	start := time.Now()
	turns := make([]adapter.Turn, 0, len(transcript)+1)
	for _, msg := range transcript {
		role := adapter.RoleUser
		if msg.Sender == state.SenderAssistant {
			role = adapter.RoleAssistant
		}
		turns = append(turns, adapter.Turn{Role: role, Content: msg.Content})
	}
	turns = append(turns, adapter.Turn{Role: adapter.RoleUser, Content: extractionInstruction})

	done := metrics.TimeGeneration("extraction")
	resp, err := x.llm.Generate(ctx, BuildSystemPrompt(), turns)
	done(err == nil)
	if err != nil {
		metrics.Default().IncExtractionOutcome(metrics.OutcomeGenerationError)
		x.logger.Warn("Extraction request failed", zap.Error(err))
		return nil, err
	}

	result, err := x.parser.Parse(resp.Content)
	if err != nil {
		metrics.Default().IncExtractionOutcome(metrics.OutcomeParseError)
		x.logger.Warn("Extraction response was not valid JSON",
			zap.Int("response_length", len(resp.Content)),
			zap.Error(err))
		return nil, err
	}

	outcome := metrics.OutcomeOK
	if result.IsEmpty() {
		outcome = metrics.OutcomeEmpty
	}
	metrics.Default().IncExtractionOutcome(outcome)

	x.logger.Info("Extraction completed",
		zap.Int("entities", len(result.Entities)),
		zap.Int("events", len(result.Events)),
		zap.Int("relationships", len(result.Relationships)),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}
