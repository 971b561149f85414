package agent

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"moodgraph/backend/internal/adapter"
	"moodgraph/backend/internal/constants"
	"moodgraph/backend/internal/extractor"
	"moodgraph/backend/internal/graph"
	"moodgraph/backend/internal/state"
	apperrors "moodgraph/backend/pkg/errors"
	"moodgraph/backend/pkg/logger"
)

// Extraction statuses reported when a conversation is closed
const (
	StatusSkipped   = "skipped"
	StatusExtracted = "extracted"
	StatusEmpty     = "empty"
	StatusFailed    = "failed"
)

// Default timeouts
const (
	DefaultExtractionTimeout = 60 * time.Second
	DefaultReplyTimeout      = 30 * time.Second
)

// Extractor turns a transcript into a graph in local ids
type Extractor interface {
	Extract(ctx context.Context, transcript state.Transcript) (*extractor.Result, error)
}

// Persister saves an extraction result
type Persister interface {
	Persist(ctx context.Context, userID, date string, result *extractor.Result) (*graph.PersistResult, error)
}

// GraphAssembler builds the renderable graph
type GraphAssembler interface {
	Assemble(ctx context.Context, userID string) (*graph.Graph, error)
}

// ContextProvider returns a digest of previously mentioned things
type ContextProvider interface {
	RelevantContext(ctx context.Context, userID, query string) (string, error)
}

// JournalStore deletes journal rows
type JournalStore interface {
	DeleteEvent(ctx context.Context, userID string, eventID uint) (int64, error)
	ClearUser(ctx context.Context, userID string) (int64, error)
}

// Dependencies wires an Orchestrator. Mirror may be nil.
type Dependencies struct {
	LLM       adapter.Generator
	Extractor Extractor
	Writer    Persister
	Assembler GraphAssembler
	Retriever ContextProvider
	Store     JournalStore
	Mirror    graph.Mirror
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithExtractionTimeout bounds the extraction request made when a conversation closes
func WithExtractionTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.extractionTimeout = d }
}

// WithReplyTimeout bounds each conversational reply request
func WithReplyTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.replyTimeout = d }
}

// Orchestrator runs the journal's conversation and end-of-day pipeline
type Orchestrator struct {
	llm               adapter.Generator
	extractor         Extractor
	writer            Persister
	assembler         GraphAssembler
	retriever         ContextProvider
	store             JournalStore
	mirror            graph.Mirror
	extractionTimeout time.Duration
	replyTimeout      time.Duration
	logger            *zap.Logger
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(deps Dependencies, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		llm:               deps.LLM,
		extractor:         deps.Extractor,
		writer:            deps.Writer,
		assembler:         deps.Assembler,
		retriever:         deps.Retriever,
		store:             deps.Store,
		mirror:            deps.Mirror,
		extractionTimeout: DefaultExtractionTimeout,
		replyTimeout:      DefaultReplyTimeout,
		logger:            logger.Named("orchestrator"),
	}
	if o.mirror == nil {
		o.mirror = graph.NoopMirror{}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ClosureResult reports what happened when a conversation was closed.
// Closed is always true: extraction problems never block closure.
type ClosureResult struct {
	Closed        bool   `json:"closed"`
	Status        string `json:"extractionStatus"`
	Entities      int    `json:"entities"`
	Events        int    `json:"events"`
	Relationships int    `json:"relationships"`
	Error         string `json:"error,omitempty"`
}

// CloseConversation extracts the day's transcript and persists the result
func (o *Orchestrator) CloseConversation(ctx context.Context, userID, date string, transcript state.Transcript) *ClosureResult {
	result := &ClosureResult{Closed: true, Status: StatusSkipped}

	if !transcript.Extractable(constants.MinTranscriptMessages) {
		o.logger.Debug("Transcript too short to extract",
			zap.String("user_id", userID),
			zap.Int("messages", len(transcript)))
		return result
	}

	extractCtx, cancel := context.WithTimeout(ctx, o.extractionTimeout)
	extracted, err := o.extractor.Extract(extractCtx, transcript)
	cancel()
	if err != nil {
		if errors.Is(extractCtx.Err(), context.DeadlineExceeded) {
			err = apperrors.NewContextTimeout("extraction", o.extractionTimeout, err)
		}
		o.logger.Warn("Extraction failed, closing conversation without saving",
			zap.String("user_id", userID),
			zap.String("date", date),
			zap.Error(err))
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}

	if extracted.IsEmpty() {
		result.Status = StatusEmpty
		return result
	}

	persisted, err := o.writer.Persist(ctx, userID, date, extracted)
	if persisted != nil {
		result.Entities = len(persisted.Entities)
		result.Events = len(persisted.Events)
		result.Relationships = len(persisted.Relationships)
	}
	if err != nil {
		o.logger.Error("Failed to persist extraction",
			zap.String("user_id", userID),
			zap.String("date", date),
			zap.Error(err))
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}

	if err := o.mirror.ProjectPersisted(ctx, persisted); err != nil {
		o.logger.Warn("Failed to mirror persisted graph", zap.String("user_id", userID), zap.Error(err))
	}

	result.Status = StatusExtracted
	o.logger.Info("Conversation closed",
		zap.String("user_id", userID),
		zap.String("date", date),
		zap.Int("events", result.Events),
		zap.Int("entities", result.Entities))
	return result
}

// ReplyResult is the companion's answer to one user message
type ReplyResult struct {
	Reply       string `json:"reply"`
	Fallback    bool   `json:"fallback"`
	ContextUsed bool   `json:"contextUsed"`
}

// Reply answers the user's message, grounding the answer in what the user
// mentioned on earlier days. A template reply is returned when generation fails.
func (o *Orchestrator) Reply(ctx context.Context, userID string, history state.Transcript, message string) *ReplyResult {
	digest, err := o.retriever.RelevantContext(ctx, userID, message)
	if err != nil {
		o.logger.Warn("Context retrieval failed, replying without it", zap.String("user_id", userID), zap.Error(err))
		digest = ""
	}

	turns := buildReplyTurns(history, message)

	replyCtx, cancel := context.WithTimeout(ctx, o.replyTimeout)
	defer cancel()

	resp, err := o.llm.Generate(replyCtx, buildReplySystemPrompt(digest), turns)
	if err != nil || resp == nil || resp.Content == "" {
		if err != nil {
			o.logger.Warn("Reply generation failed, using template", zap.String("user_id", userID), zap.Error(err))
		}
		return &ReplyResult{
			Reply:       fallbackReply(history, message),
			Fallback:    true,
			ContextUsed: digest != "",
		}
	}

	return &ReplyResult{
		Reply:       resp.Content,
		ContextUsed: digest != "",
	}
}

// Graph returns the user's renderable graph
func (o *Orchestrator) Graph(ctx context.Context, userID string) (*graph.Graph, error) {
	return o.assembler.Assemble(ctx, userID)
}

// RelevantContext exposes the context digest used for replies
func (o *Orchestrator) RelevantContext(ctx context.Context, userID, query string) (string, error) {
	return o.retriever.RelevantContext(ctx, userID, query)
}

// DeleteEvent removes one event and its relationships. Returns the number of
// relationships removed.
func (o *Orchestrator) DeleteEvent(ctx context.Context, userID string, eventID uint) (int64, error) {
	removed, err := o.store.DeleteEvent(ctx, userID, eventID)
	if err != nil {
		return 0, err
	}
	if err := o.mirror.RemoveEvent(ctx, userID, eventID); err != nil {
		o.logger.Warn("Failed to remove mirrored event", zap.Uint("event_id", eventID), zap.Error(err))
	}
	return removed, nil
}

// ClearAll removes every journal row of the user and returns the row count
func (o *Orchestrator) ClearAll(ctx context.Context, userID string) (int64, error) {
	removed, err := o.store.ClearUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if _, err := o.mirror.ClearUser(ctx, userID); err != nil {
		o.logger.Warn("Failed to clear mirrored graph", zap.String("user_id", userID), zap.Error(err))
	}
	return removed, nil
}
