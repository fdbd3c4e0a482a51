// Package telemetry tracks query, agent, LLM and retrieval metrics for
// the guru service, including LLM cost accounting. Counters are exported
// through the default Prometheus registry and served at /metrics.
package telemetry

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/raagalabs/carnaticguru/config"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guru_queries_total",
		Help: "Queries processed, by destination agent and outcome.",
	}, []string{"destination", "status"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "guru_query_duration_seconds",
		Help:    "End-to-end query processing time.",
		Buckets: prometheus.DefBuckets,
	}, []string{"destination"})

	llmTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guru_llm_tokens_total",
		Help: "LLM tokens consumed, by model and direction.",
	}, []string{"model", "direction"})

	lessonLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guru_lesson_lookups_total",
		Help: "Lesson document lookups, by result.",
	}, []string{"result"})
)

// Telemetry aggregates service metrics and cost tracking.
type Telemetry struct {
	config config.TelemetryConfig
	logger *log.Logger

	mu      sync.RWMutex
	metrics Metrics
	cost    CostTracker
}

// Metrics holds the in-process counters behind the /metrics export.
type Metrics struct {
	TotalQueries      int64 `json:"total_queries"`
	SuccessfulQueries int64 `json:"successful_queries"`
	FailedQueries     int64 `json:"failed_queries"`

	QueriesByDestination map[string]int64         `json:"queries_by_destination"`
	AgentAverageTimes    map[string]time.Duration `json:"agent_average_times"`
	agentTotals          map[string]time.Duration

	LLMRequests   map[string]int64 `json:"llm_requests"`
	LLMTokensUsed map[string]int64 `json:"llm_tokens_used"`

	LessonHits   int64 `json:"lesson_hits"`
	LessonMisses int64 `json:"lesson_misses"`
}

// CostTracker accumulates LLM spend per model.
type CostTracker struct {
	ModelCosts  map[string]float64
	TotalCost   float64
	TotalTokens int64
}

// QueryEvent describes one processed query.
type QueryEvent struct {
	ID          string
	Destination string
	Duration    time.Duration
	Success     bool
	Error       string
}

// LLMEvent describes one model call.
type LLMEvent struct {
	Model        string
	InputTokens  int64
	OutputTokens int64
	Cost         float64
}

// New creates a telemetry instance.
func New(cfg config.TelemetryConfig) *Telemetry {
	t := &Telemetry{
		config: cfg,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		metrics: Metrics{
			QueriesByDestination: make(map[string]int64),
			AgentAverageTimes:    make(map[string]time.Duration),
			agentTotals:          make(map[string]time.Duration),
			LLMRequests:          make(map[string]int64),
			LLMTokensUsed:        make(map[string]int64),
		},
		cost: CostTracker{ModelCosts: make(map[string]float64)},
	}

	if cfg.Enabled && cfg.PeriodicLogs {
		go t.startPeriodicReporting()
	}
	return t
}

// RecordQueryEvent records a completed (or failed) query.
func (t *Telemetry) RecordQueryEvent(ev QueryEvent) {
	if !t.config.Enabled {
		return
	}
	status := "ok"
	if !ev.Success {
		status = "error"
	}
	queriesTotal.WithLabelValues(ev.Destination, status).Inc()
	queryDuration.WithLabelValues(ev.Destination).Observe(ev.Duration.Seconds())

	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics.TotalQueries++
	if ev.Success {
		t.metrics.SuccessfulQueries++
	} else {
		t.metrics.FailedQueries++
		if ev.Error != "" {
			t.logger.Printf("query %s failed at %s: %s", ev.ID, ev.Destination, ev.Error)
		}
	}
	t.metrics.QueriesByDestination[ev.Destination]++
	t.metrics.agentTotals[ev.Destination] += ev.Duration
	t.metrics.AgentAverageTimes[ev.Destination] =
		t.metrics.agentTotals[ev.Destination] / time.Duration(t.metrics.QueriesByDestination[ev.Destination])
}

// RecordLLMEvent records token usage and cost for one model call.
func (t *Telemetry) RecordLLMEvent(ev LLMEvent) {
	if !t.config.Enabled {
		return
	}
	llmTokensTotal.WithLabelValues(ev.Model, "input").Add(float64(ev.InputTokens))
	llmTokensTotal.WithLabelValues(ev.Model, "output").Add(float64(ev.OutputTokens))

	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics.LLMRequests[ev.Model]++
	t.metrics.LLMTokensUsed[ev.Model] += ev.InputTokens + ev.OutputTokens
	if t.config.CostTracking {
		t.cost.ModelCosts[ev.Model] += ev.Cost
		t.cost.TotalCost += ev.Cost
		t.cost.TotalTokens += ev.InputTokens + ev.OutputTokens
	}
}

// RecordLessonLookup records a lesson document search outcome.
func (t *Telemetry) RecordLessonLookup(found bool) {
	if !t.config.Enabled {
		return
	}
	result := "hit"
	if !found {
		result = "miss"
	}
	lessonLookupsTotal.WithLabelValues(result).Inc()

	t.mu.Lock()
	defer t.mu.Unlock()
	if found {
		t.metrics.LessonHits++
	} else {
		t.metrics.LessonMisses++
	}
}

// Snapshot returns a copy of the current metrics.
func (t *Telemetry) Snapshot() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := t.metrics
	out.QueriesByDestination = copyMap(t.metrics.QueriesByDestination)
	out.AgentAverageTimes = copyMap(t.metrics.AgentAverageTimes)
	out.agentTotals = nil
	out.LLMRequests = copyMap(t.metrics.LLMRequests)
	out.LLMTokensUsed = copyMap(t.metrics.LLMTokensUsed)
	return out
}

// TotalCost returns accumulated LLM spend.
func (t *Telemetry) TotalCost() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cost.TotalCost
}

func (t *Telemetry) startPeriodicReporting() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		t.mu.RLock()
		t.logger.Printf("queries=%d ok=%d failed=%d lesson_hits=%d lesson_misses=%d cost=$%.4f",
			t.metrics.TotalQueries, t.metrics.SuccessfulQueries, t.metrics.FailedQueries,
			t.metrics.LessonHits, t.metrics.LessonMisses, t.cost.TotalCost)
		t.mu.RUnlock()
	}
}

func copyMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
