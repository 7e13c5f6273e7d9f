package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"agentbuilder/internal/domain"
)

type PrometheusMetrics struct {
	deployDuration     *prometheus.HistogramVec
	chatDuration       *prometheus.HistogramVec
	descriptorDuration *prometheus.HistogramVec
	healthChecks       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		deployDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentbuilder_deploy_duration_seconds",
				Help:    "Duration of agent deployments in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"status"},
		),
		chatDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentbuilder_chat_duration_seconds",
				Help:    "Duration of proxied chat turns in seconds",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"status"},
		),
		descriptorDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentbuilder_descriptor_fetch_duration_seconds",
				Help:    "Duration of descriptor document fetches in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"status"},
		),
		healthChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentbuilder_tool_health_checks_total",
				Help: "Total number of tool health checks by outcome",
			},
			[]string{"tool_type", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentbuilder_http_request_duration_seconds",
				Help:    "Duration of API requests in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"route", "code"},
		),
	}
}

func (p *PrometheusMetrics) ObserveDeploy(status string, duration time.Duration) {
	p.deployDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveChat(status string, duration time.Duration) {
	p.chatDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveDescriptorFetch(status string, duration time.Duration) {
	p.descriptorDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveHealthCheck(toolType string, status domain.HealthStatus) {
	p.healthChecks.WithLabelValues(toolType, string(status)).Inc()
}

func (p *PrometheusMetrics) ObserveHTTPRequest(route string, code int, duration time.Duration) {
	p.httpDuration.WithLabelValues(route, strconv.Itoa(code)).Observe(duration.Seconds())
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
