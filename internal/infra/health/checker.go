package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/assembler"
	"agentbuilder/internal/infra/descriptor"
	"agentbuilder/internal/infra/telemetry"
)

const BuiltinMessage = "Built-in tool (always available)"

// DescriptorFetcher downloads descriptor documents without rewriting them.
type DescriptorFetcher interface {
	Fetch(ctx context.Context, rawURL string) (descriptor.Document, error)
}

type Options struct {
	Tools        assembler.ToolLookup
	Descriptors  DescriptorFetcher
	HTTPClient   *http.Client
	Timeout      time.Duration
	MCPHandshake bool
	Metrics      domain.Metrics
	Logger       *zap.Logger
}

// Checker probes the endpoints behind catalog tools.
type Checker struct {
	tools        assembler.ToolLookup
	descriptors  DescriptorFetcher
	client       *http.Client
	timeout      time.Duration
	mcpHandshake bool
	metrics      domain.Metrics
	logger       *zap.Logger
}

func NewChecker(opts Options) *Checker {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultHealthTimeoutSeconds) * time.Second
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		tools:        opts.Tools,
		descriptors:  opts.Descriptors,
		client:       client,
		timeout:      timeout,
		mcpHandshake: opts.MCPHandshake,
		metrics:      metrics,
		logger:       logger.Named("health"),
	}
}

// Check never fails; every problem is reported as an unhealthy result.
func (c *Checker) Check(ctx context.Context, toolID string) (result domain.HealthResult) {
	toolType := "unknown"
	logger := telemetry.LoggerWithRequest(ctx, c.logger)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("health check panic", telemetry.ToolIDField(toolID), zap.Any("panic", r))
			result = unhealthy(toolID, fmt.Sprintf("health check failed: %v", r))
		}
		c.metrics.ObserveHealthCheck(toolType, result.Status)
		logger.Debug("health check finished",
			telemetry.EventField(telemetry.EventHealthCheck),
			telemetry.ToolIDField(toolID),
			zap.String("status", string(result.Status)),
		)
	}()

	entry, err := c.tools.Get(toolID)
	if err != nil {
		return unhealthy(toolID, err.Error())
	}
	toolType = string(entry.Type)

	switch entry.Type {
	case domain.ToolTypeBuiltin:
		return domain.HealthResult{ToolID: toolID, Status: domain.HealthStatusHealthy, Message: BuiltinMessage}
	case domain.ToolTypeExternalAPI:
		return c.checkExternalAPI(ctx, entry)
	case domain.ToolTypeAgentProtocol:
		return c.checkAgentProtocol(ctx, entry)
	default:
		return unhealthy(toolID, fmt.Sprintf("Unknown tool type: %s", entry.Type))
	}
}

func (c *Checker) checkExternalAPI(ctx context.Context, entry domain.ToolEntry) domain.HealthResult {
	specURL := defaultString(entry, domain.ParamSpecURL)
	if specURL == "" {
		return unhealthy(entry.ID, "No spec_url configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	doc, err := c.descriptors.Fetch(ctx, specURL)
	elapsed := time.Since(start)
	if err != nil {
		return unhealthy(entry.ID, err.Error())
	}

	return domain.HealthResult{
		ToolID:  entry.ID,
		Status:  domain.HealthStatusHealthy,
		Message: "OpenAPI spec reachable",
		Details: map[string]any{
			"openapi_version":  descriptor.Version(doc),
			"title":            descriptor.Title(doc),
			"operations":       descriptor.CountOperations(doc),
			"response_time_ms": elapsed.Milliseconds(),
		},
	}
}

func (c *Checker) checkAgentProtocol(ctx context.Context, entry domain.ToolEntry) domain.HealthResult {
	endpoint := probeEndpoint(entry)
	if endpoint == "" {
		return unhealthy(entry.ID, "No server_url configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return unhealthy(entry.ID, fmt.Sprintf("invalid endpoint %q: %v", endpoint, err))
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return unhealthy(entry.ID, fmt.Sprintf("Cannot reach %s: %v", endpoint, err))
	}
	_ = resp.Body.Close()
	elapsed := time.Since(start)

	result := domain.HealthResult{
		ToolID:  entry.ID,
		Status:  domain.HealthStatusHealthy,
		Message: fmt.Sprintf("Endpoint reachable (HTTP %d)", resp.StatusCode),
		Details: map[string]any{
			"status_code":      resp.StatusCode,
			"response_time_ms": elapsed.Milliseconds(),
		},
	}
	if c.mcpHandshake {
		c.attachHandshake(ctx, endpoint, result.Details)
	}
	return result
}

// probeEndpoint falls back to the bare GitMCP host when the repository is unset.
func probeEndpoint(entry domain.ToolEntry) string {
	if entry.ID == domain.ToolIDGitMCPRepo {
		owner := defaultString(entry, domain.ParamOwner)
		repo := defaultString(entry, domain.ParamRepo)
		if owner == "" || repo == "" {
			return domain.GitMCPBaseURL
		}
		return assembler.GitMCPURL(owner, repo)
	}
	return defaultString(entry, domain.ParamServerURL)
}

func defaultString(entry domain.ToolEntry, name string) string {
	value, ok := entry.DeployParams.Default(name)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

func unhealthy(toolID, message string) domain.HealthResult {
	return domain.HealthResult{ToolID: toolID, Status: domain.HealthStatusUnhealthy, Message: message}
}
