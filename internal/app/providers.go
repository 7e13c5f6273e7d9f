package app

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"agentbuilder/internal/app/agents"
	"agentbuilder/internal/app/chat"
	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/assembler"
	"agentbuilder/internal/infra/catalog"
	"agentbuilder/internal/infra/descriptor"
	"agentbuilder/internal/infra/health"
	"agentbuilder/internal/infra/httpapi"
	"agentbuilder/internal/infra/paramstore"
	"agentbuilder/internal/infra/platform"
	"agentbuilder/internal/infra/telemetry"
)

// PlatformHTTPClient is the authenticated client used for platform calls.
type PlatformHTTPClient struct {
	*http.Client
}

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewGoCollector())
	return registry
}

func NewMetrics(registry *prometheus.Registry) *telemetry.PrometheusMetrics {
	return telemetry.NewPrometheusMetrics(registry)
}

// NewCatalog opens and loads the catalog document.
func NewCatalog(cfg Config, logger *zap.Logger) (*catalog.Registry, error) {
	registry := catalog.NewRegistry(cfg.CatalogPath, logger)
	if err := registry.Load(); err != nil {
		return nil, err
	}
	return registry, nil
}

func NewDescriptorFetcher(cfg Config, metrics domain.Metrics, logger *zap.Logger) *descriptor.Fetcher {
	return descriptor.NewFetcher(descriptor.FetcherOptions{
		Timeout: cfg.DescriptorTimeout(),
		Metrics: metrics,
		Logger:  logger,
	})
}

func NewAssembler(tools *catalog.Registry, fetcher *descriptor.Fetcher, logger *zap.Logger) *assembler.Assembler {
	return assembler.New(tools, fetcher, logger)
}

func NewHealthChecker(cfg Config, tools *catalog.Registry, fetcher *descriptor.Fetcher, metrics domain.Metrics, logger *zap.Logger) *health.Checker {
	return health.NewChecker(health.Options{
		Tools:        tools,
		Descriptors:  fetcher.WithTimeout(cfg.HealthTimeout()),
		Timeout:      cfg.HealthTimeout(),
		MCPHandshake: cfg.Health.MCPHandshake,
		Metrics:      metrics,
		Logger:       logger,
	})
}

// NewParamStore opens the configured side-store; the cleanup closes it.
func NewParamStore(cfg Config, logger *zap.Logger) (paramstore.Store, func(), error) {
	store, err := paramstore.Open(cfg.ParamStore.Driver, cfg.ParamStore.Path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("param store close failed", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

func NewPlatformHTTPClient(ctx context.Context, cfg Config, logger *zap.Logger) PlatformHTTPClient {
	client := platform.NewHTTPClient(ctx, platform.AuthConfig{
		Token:        cfg.Platform.Token,
		ClientID:     cfg.Platform.ClientID,
		ClientSecret: cfg.Platform.ClientSecret,
		TokenURL:     cfg.Platform.TokenURL,
		Scopes:       cfg.Platform.Scopes,
	}, logger)
	return PlatformHTTPClient{Client: client}
}

func NewPlatformClient(cfg Config, client PlatformHTTPClient, logger *zap.Logger) (*platform.Client, error) {
	return platform.NewClient(platform.Options{
		Endpoint:   cfg.Platform.Endpoint,
		APIVersion: cfg.Platform.APIVersion,
		HTTPClient: client.Client,
		Timeout:    cfg.PlatformTimeout(),
		Logger:     logger,
	})
}

func NewAgentService(cfg Config, host domain.Platform, tools agents.ToolBuilder, params domain.PromptParamStore, metrics domain.Metrics, logger *zap.Logger) *agents.Service {
	return agents.NewService(agents.Options{
		Platform:     host,
		Tools:        tools,
		Params:       params,
		DefaultModel: cfg.DefaultModel,
		Metrics:      metrics,
		Logger:       logger,
	})
}

func NewChatService(cfg Config, host domain.Platform, metrics domain.Metrics, logger *zap.Logger) *chat.Service {
	return chat.NewService(chat.Options{
		Platform:     host,
		DefaultModel: cfg.DefaultModel,
		Metrics:      metrics,
		Logger:       logger,
	})
}

func NewHTTPServer(
	cfg Config,
	tools httpapi.ToolCatalog,
	checker domain.HealthChecker,
	agentService domain.AgentService,
	chatService domain.ChatService,
	metrics domain.Metrics,
	logger *zap.Logger,
) *httpapi.Server {
	return httpapi.NewServer(httpapi.Options{
		Catalog:     tools,
		Health:      checker,
		Agents:      agentService,
		Chat:        chatService,
		Metrics:     metrics,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		FrontendDir: cfg.FrontendDir,
	})
}
