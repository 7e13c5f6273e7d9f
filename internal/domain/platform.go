package domain

import "context"

// AgentDefinitionSpec is the prompt-agent definition submitted to the platform.
type AgentDefinitionSpec struct {
	Kind         string       `json:"kind"`
	Model        string       `json:"model"`
	Instructions string       `json:"instructions"`
	Tools        []ToolConfig `json:"tools"`
}

// CreateVersionRequest creates a new version of a named agent.
type CreateVersionRequest struct {
	Name        string
	Definition  AgentDefinitionSpec
	Description string
}

// AgentVersion identifies a version assigned by the platform.
type AgentVersion struct {
	Name        string              `json:"name"`
	ID          string              `json:"id"`
	Version     string              `json:"version"`
	Description string              `json:"description,omitempty"`
	Definition  AgentDefinitionSpec `json:"definition"`
}

// AgentVersions groups version views of a platform agent.
type AgentVersions struct {
	Latest *AgentVersion `json:"latest,omitempty"`
}

// PlatformAgent is the platform's nested agent shape.
type PlatformAgent struct {
	Name        string        `json:"name"`
	ID          string        `json:"id"`
	Description string        `json:"description,omitempty"`
	Versions    AgentVersions `json:"versions"`
}

// ResponseInput is one input message of a turn.
type ResponseInput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AgentReference points a turn at a deployed agent.
type AgentReference struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ResponseRequest submits a single chat turn.
type ResponseRequest struct {
	Model              string          `json:"model"`
	Input              []ResponseInput `json:"input"`
	Agent              AgentReference  `json:"agent"`
	PreviousResponseID string          `json:"previous_response_id,omitempty"`
}

// OutputContent is one content fragment of a message output item.
type OutputContent struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

// OutputItem is one heterogeneous item of a response's output.
type OutputItem struct {
	Type    string          `json:"type"`
	Name    string          `json:"name,omitempty"`
	Content []OutputContent `json:"content,omitempty"`
}

// Response is the platform reply to a turn.
type Response struct {
	ID     string       `json:"id"`
	Output []OutputItem `json:"output"`
}

// Platform is the remote agent-hosting service.
type Platform interface {
	CreateVersion(ctx context.Context, req CreateVersionRequest) (AgentVersion, error)
	ListAgents(ctx context.Context) ([]PlatformAgent, error)
	GetAgent(ctx context.Context, name string) (PlatformAgent, error)
	DeleteAgent(ctx context.Context, name string) error
	CreateResponse(ctx context.Context, req ResponseRequest) (Response, error)
}
