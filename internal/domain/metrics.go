package domain

import "time"

// Metrics records operational metrics for deploys, turns and probes.
type Metrics interface {
	ObserveDeploy(status string, duration time.Duration)
	ObserveChat(status string, duration time.Duration)
	ObserveDescriptorFetch(status string, duration time.Duration)
	ObserveHealthCheck(toolType string, status HealthStatus)
	ObserveHTTPRequest(route string, code int, duration time.Duration)
}

const (
	MetricStatusSuccess = "success"
	MetricStatusError   = "error"
)

// MetricStatus maps an error to a metric status label.
func MetricStatus(err error) string {
	if err != nil {
		return MetricStatusError
	}
	return MetricStatusSuccess
}
