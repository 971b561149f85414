package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"moodgraph/backend/internal/app"
	"moodgraph/backend/internal/state"
	"moodgraph/backend/pkg/config"
	"moodgraph/backend/pkg/logger"
)

// day is one closed conversation in a seed file
type day struct {
	Date     string           `json:"date"`
	Messages state.Transcript `json:"messages"`
}

func main() {
	userID := flag.String("user", "demo", "User whose journal is seeded")
	file := flag.String("file", "", "JSON file with [{\"date\": \"2024-05-01\", \"messages\": [...]}]")
	reset := flag.Bool("reset", false, "Clear the user's journal before seeding")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting journal seeding...", zap.String("user_id", *userID))

	if *file == "" {
		log.Fatal("-file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal("Failed to open seed file", zap.Error(err))
	}
	days, err := loadDays(f)
	f.Close()
	if err != nil {
		log.Fatal("Failed to read seed file", zap.Error(err))
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	application, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close(context.Background())

	orch := application.Orchestrator

	if *reset {
		removed, err := orch.ClearAll(ctx, *userID)
		if err != nil {
			log.Fatal("Failed to clear journal", zap.Error(err))
		}
		log.Info("Journal cleared", zap.Int64("rows_removed", removed))
	}

	var failed int
	for _, d := range days {
		res := orch.CloseConversation(ctx, *userID, d.Date, d.Messages)
		if res.Error != "" {
			failed++
		}
		log.Info("Day replayed",
			zap.String("date", d.Date),
			zap.String("status", res.Status),
			zap.Int("events", res.Events),
			zap.Int("entities", res.Entities),
			zap.Int("relationships", res.Relationships),
		)
	}

	g, err := orch.Graph(ctx, *userID)
	if err != nil {
		log.Fatal("Failed to assemble graph", zap.Error(err))
	}

	log.Info("Seeding complete",
		zap.Int("days", len(days)),
		zap.Int("failed", failed),
		zap.Int("event_count", g.EventCount),
		zap.Int("entity_count", g.EntityCount),
		zap.Int("edges", len(g.Edges)),
	)
}

// loadDays decodes and validates a seed file, oldest day first
func loadDays(r io.Reader) ([]day, error) {
	var days []day
	if err := json.NewDecoder(r).Decode(&days); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	for i, d := range days {
		if _, err := time.Parse("2006-01-02", d.Date); err != nil {
			return nil, fmt.Errorf("day %d: invalid date %q", i, d.Date)
		}
		if err := d.Messages.Validate(); err != nil {
			return nil, fmt.Errorf("day %d: %w", i, err)
		}
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}
