package domain

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ToolType selects the assembly strategy for a catalog entry.
type ToolType string

const (
	// ToolTypeBuiltin is a platform-native tool such as the code interpreter.
	ToolTypeBuiltin ToolType = "builtin"
	// ToolTypeExternalAPI is backed by an OpenAPI descriptor document.
	ToolTypeExternalAPI ToolType = "external-api"
	// ToolTypeAgentProtocol is backed by a remote MCP server.
	ToolTypeAgentProtocol ToolType = "agent-protocol"
)

// Valid reports whether the type belongs to the closed set.
func (t ToolType) Valid() bool {
	switch t {
	case ToolTypeBuiltin, ToolTypeExternalAPI, ToolTypeAgentProtocol:
		return true
	default:
		return false
	}
}

// JSONSchema restricts request payloads to the closed set of tool types.
func (ToolType) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "string",
		Enum: []any{
			ToolTypeBuiltin,
			ToolTypeExternalAPI,
			ToolTypeAgentProtocol,
		},
	}
}

// ToolSource indicates whether an entry was seeded or user-created.
type ToolSource string

const (
	ToolSourceBuiltin ToolSource = "builtin"
	ToolSourceCustom  ToolSource = "custom"
)

// ParamSpec declares one deploy-time or runtime parameter of a tool.
type ParamSpec struct {
	Default     any    `json:"default,omitempty"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// ParamSet maps parameter names to their declarations.
type ParamSet map[string]ParamSpec

// Names returns the declared parameter names in sorted order.
func (p ParamSet) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the declared default for name, if any.
func (p ParamSet) Default(name string) (any, bool) {
	spec, ok := p[name]
	if !ok || spec.Default == nil {
		return nil, false
	}
	return spec.Default, true
}

// Label returns the display label for name, falling back to the raw key.
func (p ParamSet) Label(name string) string {
	if spec, ok := p[name]; ok && spec.Label != "" {
		return spec.Label
	}
	return name
}

// ToolEntry is a persisted catalog record.
type ToolEntry struct {
	ID            string     `json:"id" jsonschema:"required,minLength=1"`
	Name          string     `json:"name" jsonschema:"required,minLength=1"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Icon          string     `json:"icon"`
	Type          ToolType   `json:"type" jsonschema:"required"`
	Source        ToolSource `json:"source,omitempty"`
	DeployParams  ParamSet   `json:"deploy_params"`
	RuntimeParams ParamSet   `json:"runtime_params"`
}

// Summary projects the entry without parameter schemas.
func (e ToolEntry) Summary() ToolSummary {
	return ToolSummary{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Type:        e.Type,
		Category:    e.Category,
		Icon:        e.Icon,
		Source:      e.Source,
	}
}

// Clone returns a deep copy of the entry's parameter maps.
func (e ToolEntry) Clone() ToolEntry {
	out := e
	out.DeployParams = cloneParams(e.DeployParams)
	out.RuntimeParams = cloneParams(e.RuntimeParams)
	return out
}

func cloneParams(src ParamSet) ParamSet {
	if src == nil {
		return nil
	}
	dst := make(ParamSet, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// ToolSummary is the lightweight list view of a catalog entry.
type ToolSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        ToolType   `json:"type"`
	Category    string     `json:"category"`
	Icon        string     `json:"icon"`
	Source      ToolSource `json:"source"`
}

// ToolPatch carries a partial update; nil fields are left untouched.
type ToolPatch struct {
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Icon          *string   `json:"icon,omitempty"`
	DeployParams  *ParamSet `json:"deploy_params,omitempty"`
	RuntimeParams *ParamSet `json:"runtime_params,omitempty"`
}

// Apply merges the non-nil patch fields into entry.
func (p ToolPatch) Apply(entry ToolEntry) ToolEntry {
	if p.Name != nil {
		entry.Name = *p.Name
	}
	if p.Description != nil {
		entry.Description = *p.Description
	}
	if p.Category != nil {
		entry.Category = *p.Category
	}
	if p.Icon != nil {
		entry.Icon = *p.Icon
	}
	if p.DeployParams != nil {
		entry.DeployParams = cloneParams(*p.DeployParams)
	}
	if p.RuntimeParams != nil {
		entry.RuntimeParams = cloneParams(*p.RuntimeParams)
	}
	return entry
}

// CatalogDocument is the on-disk shape of the tool catalog.
type CatalogDocument struct {
	Tools []ToolEntry `json:"tools"`
}

// ToolSelection is one tool chosen for an agent with concrete parameter values.
type ToolSelection struct {
	ToolID        string         `json:"tool_id" jsonschema:"required,minLength=1"`
	DeployParams  map[string]any `json:"deploy_params,omitempty"`
	RuntimeParams map[string]any `json:"runtime_params,omitempty"`

	runtimeOrder []string
}

// UnmarshalJSON records the order in which runtime_params keys appear.
func (s *ToolSelection) UnmarshalJSON(data []byte) error {
	type plain ToolSelection
	var aux struct {
		plain
		RuntimeParams *orderedmap.OrderedMap[string, any] `json:"runtime_params,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = ToolSelection(aux.plain)
	s.RuntimeParams = nil
	s.runtimeOrder = nil
	if aux.RuntimeParams == nil {
		return nil
	}
	s.RuntimeParams = make(map[string]any, aux.RuntimeParams.Len())
	for pair := aux.RuntimeParams.Oldest(); pair != nil; pair = pair.Next() {
		s.RuntimeParams[pair.Key] = pair.Value
		s.runtimeOrder = append(s.runtimeOrder, pair.Key)
	}
	return nil
}

// RuntimeKeys returns the runtime parameter names in request order. Keys not
// seen while decoding follow in sorted order.
func (s ToolSelection) RuntimeKeys() []string {
	keys := make([]string, 0, len(s.RuntimeParams))
	seen := make(map[string]struct{}, len(s.runtimeOrder))
	for _, key := range s.runtimeOrder {
		if _, ok := s.RuntimeParams[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	var rest []string
	for key := range s.RuntimeParams {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// ToolConfigType tags the variant carried by a ToolConfig.
type ToolConfigType string

const (
	ToolConfigCodeInterpreter ToolConfigType = "code_interpreter"
	ToolConfigOpenAPI         ToolConfigType = "openapi"
	ToolConfigMCP             ToolConfigType = "mcp"
)

// OpenAPIAuth is the auth block attached to an OpenAPI tool.
type OpenAPIAuth struct {
	Type                string `json:"type"`
	ProjectConnectionID string `json:"project_connection_id,omitempty"`
}

// OpenAPIFunction binds a normalized descriptor to an OpenAPI tool.
type OpenAPIFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Spec        map[string]any `json:"spec"`
	Auth        OpenAPIAuth    `json:"auth"`
}

// MCPServer configures a remote MCP server tool.
type MCPServer struct {
	ServerLabel     string   `json:"server_label"`
	ServerURL       string   `json:"server_url"`
	RequireApproval string   `json:"require_approval"`
	AllowedTools    []string `json:"allowed_tools,omitempty"`
}

// ToolConfig is a concrete tool configuration sent to the hosting platform.
// Exactly one of OpenAPI or MCP is set for the matching Type.
type ToolConfig struct {
	Type    ToolConfigType
	OpenAPI *OpenAPIFunction
	MCP     *MCPServer
}

func (c ToolConfig) MarshalJSON() ([]byte, error) {
	switch c.Type {
	case ToolConfigOpenAPI:
		return json.Marshal(struct {
			Type    ToolConfigType   `json:"type"`
			OpenAPI *OpenAPIFunction `json:"openapi"`
		}{c.Type, c.OpenAPI})
	case ToolConfigMCP:
		payload := struct {
			Type ToolConfigType `json:"type"`
			MCPServer
		}{Type: c.Type}
		if c.MCP != nil {
			payload.MCPServer = *c.MCP
		}
		return json.Marshal(payload)
	default:
		return json.Marshal(struct {
			Type ToolConfigType `json:"type"`
		}{c.Type})
	}
}

func (c *ToolConfig) UnmarshalJSON(data []byte) error {
	var head struct {
		Type    ToolConfigType   `json:"type"`
		OpenAPI *OpenAPIFunction `json:"openapi"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	*c = ToolConfig{Type: head.Type}
	switch head.Type {
	case ToolConfigOpenAPI:
		c.OpenAPI = head.OpenAPI
	case ToolConfigMCP:
		var server MCPServer
		if err := json.Unmarshal(data, &server); err != nil {
			return err
		}
		c.MCP = &server
	}
	return nil
}
