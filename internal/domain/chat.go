package domain

import "context"

// Output item kinds that count as user-visible tool invocations.
const (
	OutputItemMessage             = "message"
	OutputItemFunctionCall        = "function_call"
	OutputItemMCPCall             = "mcp_call"
	OutputItemCodeInterpreterCall = "code_interpreter_call"
	OutputItemWebSearchCall       = "web_search_call"
	OutputItemMCPListTools        = "mcp_list_tools"
)

// ChatRequest is one user turn addressed to a deployed agent.
type ChatRequest struct {
	AgentName          string `json:"agent_name" jsonschema:"required,minLength=1"`
	Message            string `json:"message" jsonschema:"required,minLength=1"`
	PreviousResponseID string `json:"previous_response_id,omitempty"`
}

// ChatResult is the distilled reply of a turn.
type ChatResult struct {
	Text       string   `json:"text"`
	ResponseID string   `json:"response_id"`
	ToolCalls  []string `json:"tool_calls"`
}

// ChatService proxies chat turns to deployed agents.
type ChatService interface {
	Send(ctx context.Context, req ChatRequest) (ChatResult, error)
}
