package app

import (
	"go.uber.org/zap"

	"agentbuilder/internal/infra/telemetry"
)

// LoggingConfig configures logging wiring.
type LoggingConfig struct {
	Logger *zap.Logger
}

// NewLogger tags the process logger as core output and names it "app".
func NewLogger(cfg LoggingConfig) *zap.Logger {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.With(zap.String(telemetry.FieldLogSource, telemetry.LogSourceCore)).Named("app")
}
