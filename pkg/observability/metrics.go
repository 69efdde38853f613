package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/totem/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the quiz collectors.
type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted prometheus.Counter
	answers         *prometheus.CounterVec
	invalidAnswers  *prometheus.CounterVec
	completions     *prometheus.CounterVec
	duration        prometheus.Histogram
}

// NewMetrics creates the collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "totem_sessions_started_total",
			Help: "Total number of quiz sessions started (including restarts).",
		}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "totem_answers_total",
			Help: "Accepted answers by question and option.",
		}, []string{"question", "option"}),
		invalidAnswers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "totem_invalid_answers_total",
			Help: "Rejected answers by question.",
		}, []string{"question"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "totem_completions_total",
			Help: "Completed quizzes by resulting category.",
		}, []string{"category"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "totem_quiz_duration_seconds",
			Help:    "Time from session start to the last answer.",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 900, 3600},
		}),
	}

	m.registry.MustRegister(
		m.sessionsStarted,
		m.answers,
		m.invalidAnswers,
		m.completions,
		m.duration,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(context.Context, *domain.SessionEvent) {
			m.sessionsStarted.Inc()
		},
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			m.answers.WithLabelValues(strconv.Itoa(e.QuestionIndex), strconv.Itoa(e.Option)).Inc()
		},
		OnInvalidAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			m.invalidAnswers.WithLabelValues(strconv.Itoa(e.QuestionIndex)).Inc()
		},
		OnComplete: func(_ context.Context, e *domain.CompletionEvent) {
			m.completions.WithLabelValues(e.Category).Inc()
			m.duration.Observe(e.Duration.Seconds())
		},
	}
}
