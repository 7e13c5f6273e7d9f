package telemetry

import (
	"time"

	"agentbuilder/internal/domain"
)

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveDeploy(_ string, _ time.Duration) {}

func (n *NoopMetrics) ObserveChat(_ string, _ time.Duration) {}

func (n *NoopMetrics) ObserveDescriptorFetch(_ string, _ time.Duration) {}

func (n *NoopMetrics) ObserveHealthCheck(_ string, _ domain.HealthStatus) {}

func (n *NoopMetrics) ObserveHTTPRequest(_ string, _ int, _ time.Duration) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
