// Package telemetry provides OpenTelemetry instrumentation for the
// support-bot service. It exports Prometheus metrics and provides tracing
// capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "supportbot"

// Metrics holds all support-bot Prometheus metrics
type Metrics struct {
	// Chat flow metrics
	MessagesHandled  *prometheus.CounterVec
	MessagesFailed   prometheus.Counter
	ResponseDuration *prometheus.HistogramVec
	SessionsStarted  prometheus.Counter

	// Matching engine metrics
	MatchDuration   prometheus.Histogram
	MatchConfidence prometheus.Histogram
	MatchQuality    *prometheus.CounterVec
	MatchMisses     prometheus.Counter

	// FAQ metrics
	FAQHits     prometheus.Counter
	FAQPromoted prometheus.Counter

	// Generative fallback metrics
	LLMRequests prometheus.Counter
	LLMFailures prometheus.Counter
	LLMTokens   prometheus.Counter
	LLMDuration prometheus.Histogram
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initChatMetrics(m)
	initMatchingMetrics(m)
	initFAQMetrics(m)
	initLLMMetrics(m)
	return m
}

func initChatMetrics(m *Metrics) {
	m.MessagesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supportbot_messages_handled_total",
		Help: "Total user messages answered, by response source (prompt, faq, ai)",
	}, []string{"source"})

	m.MessagesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supportbot_messages_failed_total",
		Help: "Total user messages that could not be answered",
	})

	m.ResponseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "supportbot_response_duration_seconds",
		Help:    "Time to produce a reply, by response source",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"source"})

	m.SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supportbot_sessions_started_total",
		Help: "Total chat sessions created",
	})
}

func initMatchingMetrics(m *Metrics) {
	m.MatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "supportbot_match_duration_seconds",
		Help:    "Time spent scoring the prompt catalog for one message",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	m.MatchConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "supportbot_match_confidence",
		Help:    "Confidence of winning prompt matches",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
	})

	m.MatchQuality = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supportbot_match_quality_total",
		Help: "Winning prompt matches by quality label",
	}, []string{"quality"})

	m.MatchMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supportbot_match_misses_total",
		Help: "Messages where no prompt cleared the confidence gate",
	})
}

func initFAQMetrics(m *Metrics) {
	m.FAQHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supportbot_faq_hits_total",
		Help: "Messages answered from the FAQ catalog",
	})

	m.FAQPromoted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supportbot_faq_promoted_total",
		Help: "FAQs auto-created from repeated questions",
	})
}

func initLLMMetrics(m *Metrics) {
	m.LLMRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supportbot_llm_requests_total",
		Help: "Generative fallback requests sent to the model",
	})

	m.LLMFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supportbot_llm_failures_total",
		Help: "Generative fallback requests that failed",
	})

	m.LLMTokens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supportbot_llm_tokens_total",
		Help: "Total tokens consumed by the generative fallback",
	})

	m.LLMDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "supportbot_llm_duration_seconds",
		Help:    "Latency of generative fallback calls",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	})
}

// RecordMessage records one answered user message.
func (p *Provider) RecordMessage(ctx context.Context, source string, duration time.Duration) {
	p.Metrics.MessagesHandled.WithLabelValues(source).Inc()
	p.Metrics.ResponseDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordMessageFailure records a message that produced no reply.
func (p *Provider) RecordMessageFailure(ctx context.Context) {
	p.Metrics.MessagesFailed.Inc()
}

// RecordSessionStarted records a new chat session.
func (p *Provider) RecordSessionStarted(ctx context.Context) {
	p.Metrics.SessionsStarted.Inc()
}

// RecordMatch records a winning prompt match.
func (p *Provider) RecordMatch(ctx context.Context, duration time.Duration, confidence float64, quality string) {
	p.Metrics.MatchDuration.Observe(duration.Seconds())
	p.Metrics.MatchConfidence.Observe(confidence)
	p.Metrics.MatchQuality.WithLabelValues(quality).Inc()
}

// RecordMatchMiss records a message no prompt could answer.
func (p *Provider) RecordMatchMiss(ctx context.Context, duration time.Duration) {
	p.Metrics.MatchDuration.Observe(duration.Seconds())
	p.Metrics.MatchMisses.Inc()
}

// RecordFAQHit records a message answered from the FAQ catalog.
func (p *Provider) RecordFAQHit(ctx context.Context) {
	p.Metrics.FAQHits.Inc()
}

// RecordFAQPromotion records an auto-created FAQ.
func (p *Provider) RecordFAQPromotion(ctx context.Context) {
	p.Metrics.FAQPromoted.Inc()
}

// RecordLLMCall records one generative fallback round trip.
func (p *Provider) RecordLLMCall(ctx context.Context, duration time.Duration, tokens int64, err error) {
	p.Metrics.LLMRequests.Inc()
	p.Metrics.LLMDuration.Observe(duration.Seconds())
	if err != nil {
		p.Metrics.LLMFailures.Inc()
		return
	}
	p.Metrics.LLMTokens.Add(float64(tokens))
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
