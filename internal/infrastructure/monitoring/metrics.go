package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by backend and domain metrics
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomeNetwork    = "network_error"
	OutcomeBackend    = "backend_error"
	OutcomeStale      = "stale"
)

// Metrics holds all Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// Local API metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Backend client metrics
	BackendCalls    *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	BreakerState    prometheus.Gauge

	// Workspace metrics
	DocumentMoves   *prometheus.CounterVec
	FoldersCreated  *prometheus.CounterVec
	StaleDiscarded  *prometheus.CounterVec
	FolderRefreshes prometheus.Counter

	// Session metrics
	SessionsActive     prometheus.Gauge
	TranscriptEntries  *prometheus.CounterVec
	QuestionsRejected  prometheus.Counter
	ContentKindsServed *prometheus.CounterVec
}

// NewMetrics creates a collector set on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docdesk_http_requests_total",
				Help: "Total number of local API requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docdesk_http_request_duration_seconds",
				Help:    "Local API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		BackendCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docdesk_backend_calls_total",
				Help: "Calls to the document backend by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		BackendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docdesk_backend_call_duration_seconds",
				Help:    "Document backend call duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		BreakerState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "docdesk_backend_breaker_state",
				Help: "Backend circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
		),

		DocumentMoves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docdesk_document_moves_total",
				Help: "Drag-and-drop document moves by outcome",
			},
			[]string{"outcome"},
		),
		FoldersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docdesk_folder_create_total",
				Help: "Folder creation attempts by outcome",
			},
			[]string{"outcome"},
		),
		StaleDiscarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docdesk_stale_completions_total",
				Help: "Async completions dropped because a newer request superseded them",
			},
			[]string{"operation"},
		),
		FolderRefreshes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "docdesk_folder_refreshes_total",
				Help: "Folder content fetches triggered by expansion",
			},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "docdesk_sessions_active",
				Help: "Number of open document sessions",
			},
		),
		TranscriptEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docdesk_transcript_entries_total",
				Help: "Transcript entries appended by outcome",
			},
			[]string{"outcome"},
		),
		QuestionsRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "docdesk_questions_rejected_total",
				Help: "Questions rejected by validation before any request",
			},
		),
		ContentKindsServed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docdesk_session_content_total",
				Help: "Session content resolutions by kind",
			},
			[]string{"kind"},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records a local API request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordBackendCall records one backend operation
func (m *Metrics) RecordBackendCall(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.BackendCalls.WithLabelValues(operation, outcome).Inc()
	m.BackendDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetBreakerState records the breaker state as a number
func (m *Metrics) SetBreakerState(state int) {
	if m == nil {
		return
	}
	m.BreakerState.Set(float64(state))
}

// RecordMove records a drop outcome
func (m *Metrics) RecordMove(outcome string) {
	if m == nil {
		return
	}
	m.DocumentMoves.WithLabelValues(outcome).Inc()
}

// RecordFolderCreate records a folder creation outcome
func (m *Metrics) RecordFolderCreate(outcome string) {
	if m == nil {
		return
	}
	m.FoldersCreated.WithLabelValues(outcome).Inc()
}

// RecordStale records a superseded async completion
func (m *Metrics) RecordStale(operation string) {
	if m == nil {
		return
	}
	m.StaleDiscarded.WithLabelValues(operation).Inc()
}

// IncFolderRefreshes counts an expansion-triggered fetch
func (m *Metrics) IncFolderRefreshes() {
	if m == nil {
		return
	}
	m.FolderRefreshes.Inc()
}

// SetSessionsActive records the open session count
func (m *Metrics) SetSessionsActive(count int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(count))
}

// RecordTranscriptEntry records an appended QA pair
func (m *Metrics) RecordTranscriptEntry(outcome string) {
	if m == nil {
		return
	}
	m.TranscriptEntries.WithLabelValues(outcome).Inc()
}

// IncQuestionsRejected counts a question that failed validation
func (m *Metrics) IncQuestionsRejected() {
	if m == nil {
		return
	}
	m.QuestionsRejected.Inc()
}

// RecordContentKind counts a resolved session content kind
func (m *Metrics) RecordContentKind(kind string) {
	if m == nil {
		return
	}
	m.ContentKindsServed.WithLabelValues(kind).Inc()
}
