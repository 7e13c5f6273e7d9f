package assembler

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/descriptor"
	"agentbuilder/internal/infra/telemetry"
)

// InstructionsSeparator introduces the rendered runtime parameter block.
const InstructionsSeparator = "\n\n--- Tool Configuration ---\n"

// ToolLookup resolves catalog entries by id.
type ToolLookup interface {
	Get(id string) (domain.ToolEntry, error)
}

// DescriptorSource fetches descriptor documents ready for submission.
type DescriptorSource interface {
	FetchAndNormalize(ctx context.Context, rawURL string) (descriptor.Document, error)
}

// Assembler turns tool selections into platform tool configs and instructions.
type Assembler struct {
	tools       ToolLookup
	descriptors DescriptorSource
	logger      *zap.Logger
}

func New(tools ToolLookup, descriptors DescriptorSource, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		tools:       tools,
		descriptors: descriptors,
		logger:      logger.Named("assembler"),
	}
}

type resolved struct {
	selection domain.ToolSelection
	entry     domain.ToolEntry
}

// Build resolves every selection before assembling anything, so an unknown
// tool id fails the whole request without partial output.
func (a *Assembler) Build(ctx context.Context, selections []domain.ToolSelection, baseInstructions string) ([]domain.ToolConfig, string, error) {
	items := make([]resolved, 0, len(selections))
	for _, sel := range selections {
		entry, err := a.tools.Get(sel.ToolID)
		if err != nil {
			return nil, "", err
		}
		items = append(items, resolved{selection: sel, entry: entry})
	}

	logger := telemetry.LoggerWithRequest(ctx, a.logger)
	configs := make([]domain.ToolConfig, 0, len(items))
	for _, item := range items {
		cfg, ok, err := a.buildOne(ctx, item)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			logger.Debug("tool contributes no config", telemetry.ToolIDField(item.entry.ID))
			continue
		}
		configs = append(configs, cfg)
	}

	return configs, renderInstructions(baseInstructions, items), nil
}

func (a *Assembler) buildOne(ctx context.Context, item resolved) (domain.ToolConfig, bool, error) {
	switch item.entry.Type {
	case domain.ToolTypeBuiltin:
		cfg, ok := buildBuiltin(item.entry)
		return cfg, ok, nil
	case domain.ToolTypeExternalAPI:
		cfg, err := a.buildExternalAPI(ctx, item)
		return cfg, err == nil, err
	case domain.ToolTypeAgentProtocol:
		cfg, err := buildAgentProtocol(item)
		return cfg, err == nil, err
	default:
		return domain.ToolConfig{}, false, domain.E(domain.CodeInvalidArgument, "assembler.build",
			fmt.Sprintf("tool %q has unsupported type %q", item.entry.ID, item.entry.Type), domain.ErrInvalidToolType)
	}
}

func buildBuiltin(entry domain.ToolEntry) (domain.ToolConfig, bool) {
	if entry.ID == domain.ToolIDCodeInterpreter {
		return domain.ToolConfig{Type: domain.ToolConfigCodeInterpreter}, true
	}
	return domain.ToolConfig{}, false
}

func (a *Assembler) buildExternalAPI(ctx context.Context, item resolved) (domain.ToolConfig, error) {
	const op = "assembler.external_api"

	specURL := stringParam(item, domain.ParamSpecURL)
	if specURL == "" {
		return domain.ToolConfig{}, domain.Errorf(domain.CodeInvalidArgument, op,
			"tool %q requires %s", item.entry.ID, domain.ParamSpecURL)
	}

	doc, err := a.descriptors.FetchAndNormalize(ctx, specURL)
	if err != nil {
		return domain.ToolConfig{}, err
	}

	if ops := listParam(item, domain.ParamOperations); len(ops) > 0 {
		doc = descriptor.FilterOperations(doc, ops)
	}

	auth := domain.OpenAPIAuth{Type: stringParam(item, domain.ParamAuthType)}
	if auth.Type == "" {
		auth.Type = domain.AuthTypeAnonymous
	}
	if auth.Type == domain.AuthTypeProjectConnection {
		auth.ProjectConnectionID = stringParam(item, domain.ParamProjectConnectionID)
	}

	return domain.ToolConfig{
		Type: domain.ToolConfigOpenAPI,
		OpenAPI: &domain.OpenAPIFunction{
			Name:        item.entry.ID,
			Description: item.entry.Description,
			Spec:        doc,
			Auth:        auth,
		},
	}, nil
}

func buildAgentProtocol(item resolved) (domain.ToolConfig, error) {
	const op = "assembler.agent_protocol"

	var serverURL string
	if item.entry.ID == domain.ToolIDGitMCPRepo {
		owner := stringParam(item, domain.ParamOwner)
		repo := stringParam(item, domain.ParamRepo)
		if owner == "" || repo == "" {
			return domain.ToolConfig{}, domain.Errorf(domain.CodeInvalidArgument, op,
				"tool %q requires %s and %s", item.entry.ID, domain.ParamOwner, domain.ParamRepo)
		}
		serverURL = GitMCPURL(owner, repo)
	} else {
		serverURL = stringParam(item, domain.ParamServerURL)
		if serverURL == "" {
			return domain.ToolConfig{}, domain.Errorf(domain.CodeInvalidArgument, op,
				"tool %q requires %s", item.entry.ID, domain.ParamServerURL)
		}
	}

	approval := stringParam(item, domain.ParamRequireApproval)
	if approval == "" {
		approval = domain.RequireApprovalNever
	}

	return domain.ToolConfig{
		Type: domain.ToolConfigMCP,
		MCP: &domain.MCPServer{
			ServerLabel:     item.entry.ID,
			ServerURL:       serverURL,
			RequireApproval: approval,
			AllowedTools:    SplitList(stringParam(item, domain.ParamAllowedTools)),
		},
	}, nil
}

// GitMCPURL is the per-repository endpoint of the GitMCP service.
func GitMCPURL(owner, repo string) string {
	return fmt.Sprintf("%s/%s/%s", domain.GitMCPBaseURL, owner, repo)
}

// renderInstructions appends one line per selection with truthy runtime values.
func renderInstructions(base string, items []resolved) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if line := renderLine(item); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return base
	}
	return base + InstructionsSeparator + strings.Join(lines, "\n")
}

func renderLine(item resolved) string {
	var keys []string
	for _, key := range item.selection.RuntimeKeys() {
		if truthy(item.selection.RuntimeParams[key]) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return ""
	}

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		label := item.entry.RuntimeParams.Label(key)
		parts = append(parts, fmt.Sprintf("%s: %s", label, formatValue(item.selection.RuntimeParams[key])))
	}
	return fmt.Sprintf("%s: %s.", item.entry.Name, strings.Join(parts, ". "))
}

// param returns the selection value when the key is present, even if empty,
// and the catalog default otherwise.
func param(item resolved, name string) any {
	if value, ok := item.selection.DeployParams[name]; ok {
		return value
	}
	if value, ok := item.entry.DeployParams.Default(name); ok {
		return value
	}
	return nil
}

func stringParam(item resolved, name string) string {
	switch v := param(item, name).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(formatValue(v))
	}
}

// listParam accepts a JSON list of strings or a comma-separated string.
func listParam(item resolved, name string) []string {
	switch v := param(item, name).(type) {
	case string:
		return SplitList(v)
	case []string:
		return compact(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				out = append(out, s)
			}
		}
		return compact(out)
	default:
		return nil
	}
}

// SplitList splits a comma-separated value into trimmed non-empty items.
func SplitList(raw string) []string {
	return compact(strings.Split(raw, ","))
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
