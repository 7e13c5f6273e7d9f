package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldToolID     = "tool_id"
	FieldToolType   = "tool_type"
	FieldAgentName  = "agent_name"
	FieldDurationMs = "duration_ms"
	FieldLogSource  = "log_source"
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

const (
	EventDeploySuccess = "deploy_success"
	EventDeployFailure = "deploy_failure"
	EventAgentDeleted  = "agent_deleted"
	EventChatFailure   = "chat_failure"
	EventHealthCheck   = "health_check"
	EventCatalogWrite  = "catalog_write"
)

const (
	LogSourceCore = "core"
	LogSourceHTTP = "http"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func ToolIDField(toolID string) zap.Field {
	return zap.String(FieldToolID, toolID)
}

func ToolTypeField(toolType string) zap.Field {
	return zap.String(FieldToolType, toolType)
}

func AgentNameField(name string) zap.Field {
	return zap.String(FieldAgentName, name)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func TraceIDField(value string) zap.Field {
	return zap.String(FieldTraceID, value)
}

func SpanIDField(value string) zap.Field {
	return zap.String(FieldSpanID, value)
}
