//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"agentbuilder/internal/app/agents"
	"agentbuilder/internal/app/chat"
	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/assembler"
	"agentbuilder/internal/infra/catalog"
	"agentbuilder/internal/infra/health"
	"agentbuilder/internal/infra/httpapi"
	"agentbuilder/internal/infra/paramstore"
	"agentbuilder/internal/infra/platform"
	"agentbuilder/internal/infra/telemetry"
)

var CoreInfraSet = wire.NewSet(
	NewLogger,
	NewMetricsRegistry,
	NewMetrics,
	wire.Bind(new(domain.Metrics), new(*telemetry.PrometheusMetrics)),
)

var ToolSet = wire.NewSet(
	NewCatalog,
	wire.Bind(new(httpapi.ToolCatalog), new(*catalog.Registry)),
	NewDescriptorFetcher,
	NewAssembler,
	wire.Bind(new(agents.ToolBuilder), new(*assembler.Assembler)),
	NewHealthChecker,
	wire.Bind(new(domain.HealthChecker), new(*health.Checker)),
)

var AgentSet = wire.NewSet(
	NewParamStore,
	wire.Bind(new(domain.PromptParamStore), new(paramstore.Store)),
	NewPlatformHTTPClient,
	NewPlatformClient,
	wire.Bind(new(domain.Platform), new(*platform.Client)),
	NewAgentService,
	wire.Bind(new(domain.AgentService), new(*agents.Service)),
	NewChatService,
	wire.Bind(new(domain.ChatService), new(*chat.Service)),
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	ToolSet,
	AgentSet,
	NewHTTPServer,
	wire.Struct(new(ApplicationOptions), "*"),
	NewApplication,
)
