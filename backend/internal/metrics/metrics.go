// Package metrics provides a minimal instrumentation surface with a no-op
// default and a Prometheus-backed implementation installed at startup.
package metrics

import (
	"net/http"
	"sync"
	"time"
)

// Extraction outcomes
const (
	OutcomeOK              = "ok"
	OutcomeEmpty           = "empty"
	OutcomeParseError      = "parse_error"
	OutcomeGenerationError = "generation_error"
)

// Recorder defines the metrics surface used across the codebase.
type Recorder interface {
	IncStoreOpTotal(op string, success bool)
	ObserveStoreOpSeconds(op string, success bool, seconds float64)
	IncGenerationTotal(purpose string, success bool)
	ObserveGenerationSeconds(purpose string, success bool, seconds float64)
	IncExtractionOutcome(outcome string)
}

type noopRecorder struct{}

func (n *noopRecorder) IncStoreOpTotal(string, bool) {}
func (n *noopRecorder) ObserveStoreOpSeconds(string, bool, float64) {}
func (n *noopRecorder) IncGenerationTotal(string, bool) {}
func (n *noopRecorder) ObserveGenerationSeconds(string, bool, float64) {}
func (n *noopRecorder) IncExtractionOutcome(string) {}

var (
	recMu    sync.RWMutex
	recorder Recorder = &noopRecorder{}
	handler  http.Handler
)

// Default returns the current recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder implementation.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	recorder = r
}

// Handler returns the scrape handler, or nil when Prometheus is not enabled.
func Handler() http.Handler {
	recMu.RLock()
	defer recMu.RUnlock()
	return handler
}

// TimeStoreOp is a helper to time store operations.
func TimeStoreOp(op string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncStoreOpTotal(op, success)
		Default().ObserveStoreOpSeconds(op, success, dur)
	}
}

// TimeGeneration is a helper to time calls to the generation capability.
func TimeGeneration(purpose string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncGenerationTotal(purpose, success)
		Default().ObserveGenerationSeconds(purpose, success, dur)
	}
}
