package domain

const (
	DefaultListenAddress              = "127.0.0.1:8000"
	DefaultCatalogPath                = "catalog.json"
	DefaultParamStorePath             = "prompt_params_store.json"
	DefaultParamStoreDriver           = "json"
	DefaultModel                      = "gpt-4.1"
	DefaultPlatformAPIVersion         = "2025-05-15-preview"
	DefaultPlatformTimeoutSeconds     = 60
	DefaultDescriptorTimeoutSeconds   = 30
	DefaultHealthTimeoutSeconds       = 10
	DefaultObservabilityListenAddress = "0.0.0.0:9090"
	DefaultAgentDescription           = "Deployed via Agent Builder Platform"

	// TargetDescriptorVersion is the dialect the platform accepts.
	TargetDescriptorVersion = "3.0.2"
	// AgentDefinitionKind marks prompt-based agent definitions.
	AgentDefinitionKind = "prompt"
	// AgentReferenceType marks a turn routed to a named agent.
	AgentReferenceType = "agent_reference"
)

// Catalog ids with dedicated assembly rules.
const (
	ToolIDCodeInterpreter = "code-interpreter"
	ToolIDGitMCPRepo      = "gitmcp-repo"
	GitMCPBaseURL         = "https://gitmcp.io"
)

// Deploy parameter keys understood by the assembler.
const (
	ParamSpecURL             = "spec_url"
	ParamOperations          = "operations"
	ParamAuthType            = "auth_type"
	ParamProjectConnectionID = "project_connection_id"
	ParamServerURL           = "server_url"
	ParamOwner               = "owner"
	ParamRepo                = "repo"
	ParamAllowedTools        = "allowed_tools"
	ParamRequireApproval     = "require_approval"
)

const (
	AuthTypeAnonymous         = "anonymous"
	AuthTypeProjectConnection = "project_connection"
	RequireApprovalNever      = "never"
)
