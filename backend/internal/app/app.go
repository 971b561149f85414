// Package app wires the journal pipeline from configuration
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"moodgraph/backend/internal/adapter"
	"moodgraph/backend/internal/agent"
	"moodgraph/backend/internal/extractor"
	"moodgraph/backend/internal/graph"
	"moodgraph/backend/internal/metrics"
	"moodgraph/backend/internal/store"
	"moodgraph/backend/pkg/config"
	"moodgraph/backend/pkg/logger"
)

// App holds the wired components of a running process
type App struct {
	DB           *gorm.DB
	Store        *store.Store
	Mirror       graph.Mirror
	Generator    adapter.Generator
	Orchestrator *agent.Orchestrator
}

// NewGenerator builds the generation capability named by the config, behind a circuit breaker
func NewGenerator(cfg *config.Config) adapter.Generator {
	var gen adapter.Generator
	switch cfg.LLMProvider {
	case "stub":
		gen = adapter.NewStubGenerator()
	default:
		gen = adapter.NewLLMAdapter(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.ModelID,
			adapter.WithMaxRetries(cfg.LLMMaxRetries),
			adapter.WithTimeout(cfg.LLMTimeout),
		)
	}

	breakerCfg := adapter.DefaultBreakerConfig("generation")
	breakerCfg.FailureThreshold = uint32(cfg.BreakerFailureThreshold)
	breakerCfg.OpenDuration = cfg.BreakerOpenDuration
	return adapter.NewBreakerGenerator(gen, breakerCfg)
}

// Build opens the store, connects the optional Neo4j mirror and wires the orchestrator
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Get()

	if cfg.MetricsEnabled {
		metrics.EnablePrometheus()
	}

	db, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	st := store.New(db)

	var mirror graph.Mirror = graph.NoopMirror{}
	if cfg.MirrorEnabled() {
		neo, err := graph.NewNeo4jMirror(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			// The relational store is authoritative; run without the projection
			log.Warn("Neo4j mirror unavailable", zap.Error(err))
		} else {
			mirror = neo
			log.Info("Neo4j mirror enabled", zap.String("uri", cfg.Neo4jURI))
		}
	}

	gen := NewGenerator(cfg)
	orch := agent.NewOrchestrator(agent.Dependencies{
		LLM:       gen,
		Extractor: extractor.New(gen),
		Writer:    graph.NewWriter(st),
		Assembler: graph.NewAssembler(st),
		Retriever: graph.NewRetriever(st),
		Store:     st,
		Mirror:    mirror,
	},
		agent.WithExtractionTimeout(cfg.ExtractionTimeout),
		agent.WithReplyTimeout(cfg.LLMTimeout),
	)

	return &App{
		DB:           db,
		Store:        st,
		Mirror:       mirror,
		Generator:    gen,
		Orchestrator: orch,
	}, nil
}

// Close releases the database and mirror connections
func (a *App) Close(ctx context.Context) {
	if err := a.Mirror.Close(ctx); err != nil {
		logger.Get().Warn("Failed to close mirror", zap.Error(err))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
