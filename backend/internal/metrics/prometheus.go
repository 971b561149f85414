package metrics

import (
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	storeTotal   *prom.CounterVec
	storeSeconds *prom.HistogramVec
	genTotal     *prom.CounterVec
	genSeconds   *prom.HistogramVec
	extractions  *prom.CounterVec
}

func (p *promRecorder) IncStoreOpTotal(op string, success bool) {
	p.storeTotal.WithLabelValues(op, strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveStoreOpSeconds(op string, success bool, seconds float64) {
	p.storeSeconds.WithLabelValues(op, strconv.FormatBool(success)).Observe(seconds)
}

func (p *promRecorder) IncGenerationTotal(purpose string, success bool) {
	p.genTotal.WithLabelValues(purpose, strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveGenerationSeconds(purpose string, success bool, seconds float64) {
	p.genSeconds.WithLabelValues(purpose, strconv.FormatBool(success)).Observe(seconds)
}

func (p *promRecorder) IncExtractionOutcome(outcome string) {
	p.extractions.WithLabelValues(outcome).Inc()
}

// EnablePrometheus installs a Prometheus recorder on a fresh registry and
// makes its scrape handler available through Handler.
func EnablePrometheus() {
	registry := prom.NewRegistry()
	p := &promRecorder{
		storeTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "moodgraph_store_ops_total",
			Help: "Total number of store operations",
		}, []string{"op", "success"}),
		storeSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "moodgraph_store_op_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"op", "success"}),
		genTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "moodgraph_generation_calls_total",
			Help: "Total number of generation capability calls",
		}, []string{"purpose", "success"}),
		genSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "moodgraph_generation_call_seconds",
			Help:    "Generation capability call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"purpose", "success"}),
		extractions: prom.NewCounterVec(prom.CounterOpts{
			Name: "moodgraph_extractions_total",
			Help: "Extraction runs by outcome",
		}, []string{"outcome"}),
	}

	registry.MustRegister(p.storeTotal, p.storeSeconds, p.genTotal, p.genSeconds, p.extractions)
	SetRecorder(p)

	recMu.Lock()
	handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	recMu.Unlock()
}
