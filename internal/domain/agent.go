package domain

import "context"

// PromptParam declares a parameter the agent's prompt expects from its caller.
// The hosting platform does not keep this metadata, so it lives in a side store.
type PromptParam struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Default     string `json:"default,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// DeployRequest describes an agent to assemble and deploy.
type DeployRequest struct {
	Name         string          `json:"name" jsonschema:"required,minLength=1,maxLength=100"`
	Model        string          `json:"model,omitempty"`
	Instructions string          `json:"instructions" jsonschema:"required,minLength=1"`
	Tools        []ToolSelection `json:"tools"`
	PromptParams []PromptParam   `json:"prompt_params,omitempty"`
}

// AgentRecord is the flattened view of a deployed agent.
type AgentRecord struct {
	Name         string        `json:"name"`
	ID           string        `json:"id"`
	Version      int           `json:"version"`
	Description  string        `json:"description,omitempty"`
	Model        string        `json:"model,omitempty"`
	PromptParams []PromptParam `json:"prompt_params,omitempty"`
}

// PromptParamStore persists agent name to declared prompt parameters.
type PromptParamStore interface {
	Get(name string) ([]PromptParam, bool, error)
	All() (map[string][]PromptParam, error)
	Put(name string, params []PromptParam) error
	Remove(name string) error
}

// AgentService deploys and manages agent definitions.
type AgentService interface {
	Deploy(ctx context.Context, req DeployRequest) (AgentRecord, error)
	List(ctx context.Context) ([]AgentRecord, error)
	Get(ctx context.Context, name string) (AgentRecord, error)
	Delete(ctx context.Context, name string) error
}
