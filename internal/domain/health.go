package domain

import "context"

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult reports the reachability of a tool's backing endpoint.
type HealthResult struct {
	ToolID  string         `json:"tool_id"`
	Status  HealthStatus   `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthChecker probes catalog tools without deploying them.
type HealthChecker interface {
	Check(ctx context.Context, toolID string) HealthResult
}
