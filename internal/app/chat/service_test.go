package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentbuilder/internal/domain"
)

type fakePlatform struct {
	agent       *domain.PlatformAgent
	response    domain.Response
	responseErr error
	requests    []domain.ResponseRequest
}

func (f *fakePlatform) CreateVersion(context.Context, domain.CreateVersionRequest) (domain.AgentVersion, error) {
	return domain.AgentVersion{}, errors.New("not used")
}

func (f *fakePlatform) ListAgents(context.Context) ([]domain.PlatformAgent, error) {
	return nil, errors.New("not used")
}

func (f *fakePlatform) GetAgent(context.Context, string) (domain.PlatformAgent, error) {
	if f.agent == nil {
		return domain.PlatformAgent{}, domain.E(domain.CodeNotFound, "platform.get_agent", "missing", nil)
	}
	return *f.agent, nil
}

func (f *fakePlatform) DeleteAgent(context.Context, string) error {
	return errors.New("not used")
}

func (f *fakePlatform) CreateResponse(_ context.Context, req domain.ResponseRequest) (domain.Response, error) {
	f.requests = append(f.requests, req)
	return f.response, f.responseErr
}

func TestParseOutput(t *testing.T) {
	result := ParseOutput([]domain.OutputItem{
		{Type: "message", Content: []domain.OutputContent{{Text: "Hi"}}},
		{Type: "function_call", Name: "lookup"},
		{Type: "mcp_list_tools"},
	})
	assert.Equal(t, "Hi", result.Text)
	assert.Equal(t, []string{"lookup"}, result.ToolCalls)
}

func TestParseOutput_OrderAndFallbackNames(t *testing.T) {
	result := ParseOutput([]domain.OutputItem{
		{Type: "code_interpreter_call"},
		{Type: "message", Content: []domain.OutputContent{{Text: "Part one. "}, {Text: "Part two."}}},
		{Type: "mcp_call", Name: "search_docs"},
		{Type: "reasoning"},
		{Type: "web_search_call"},
		{Type: "message", Content: []domain.OutputContent{{Text: " Done."}}},
	})
	assert.Equal(t, "Part one. Part two. Done.", result.Text)
	assert.Equal(t, []string{"code_interpreter_call", "search_docs", "web_search_call"}, result.ToolCalls)
}

func TestParseOutput_Empty(t *testing.T) {
	result := ParseOutput(nil)
	assert.Empty(t, result.Text)
	assert.NotNil(t, result.ToolCalls)
}

func TestSend(t *testing.T) {
	platform := &fakePlatform{
		agent: &domain.PlatformAgent{Name: "bot", Versions: domain.AgentVersions{Latest: &domain.AgentVersion{
			Definition: domain.AgentDefinitionSpec{Model: "gpt-4o"},
		}}},
		response: domain.Response{ID: "resp_2", Output: []domain.OutputItem{
			{Type: "message", Content: []domain.OutputContent{{Text: "Hello!"}}},
		}},
	}
	svc := NewService(Options{Platform: platform})

	result, err := svc.Send(context.Background(), domain.ChatRequest{
		AgentName:          "bot",
		Message:            "hi",
		PreviousResponseID: "resp_1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ChatResult{Text: "Hello!", ResponseID: "resp_2", ToolCalls: []string{}}, result)

	require.Len(t, platform.requests, 1)
	assert.Equal(t, domain.ResponseRequest{
		Model:              "gpt-4o",
		Input:              []domain.ResponseInput{{Role: "user", Content: "hi"}},
		Agent:              domain.AgentReference{Name: "bot", Type: "agent_reference"},
		PreviousResponseID: "resp_1",
	}, platform.requests[0])
}

func TestSend_ModelFallback(t *testing.T) {
	tests := []struct {
		name  string
		agent *domain.PlatformAgent
	}{
		{name: "lookup fails", agent: nil},
		{name: "no latest version", agent: &domain.PlatformAgent{Name: "bot"}},
		{name: "empty model", agent: &domain.PlatformAgent{Name: "bot", Versions: domain.AgentVersions{Latest: &domain.AgentVersion{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := &fakePlatform{agent: tt.agent}
			svc := NewService(Options{Platform: platform, DefaultModel: "gpt-4.1-mini"})

			_, err := svc.Send(context.Background(), domain.ChatRequest{AgentName: "bot", Message: "hi"})
			require.NoError(t, err)
			assert.Equal(t, "gpt-4.1-mini", platform.requests[0].Model)
			assert.Empty(t, platform.requests[0].PreviousResponseID)
		})
	}
}

func TestSend_PlatformFailure(t *testing.T) {
	platform := &fakePlatform{responseErr: domain.E(domain.CodeNotFound, "platform.create_response", "agent missing", nil)}
	svc := NewService(Options{Platform: platform})

	_, err := svc.Send(context.Background(), domain.ChatRequest{AgentName: "bot", Message: "hi"})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeUpstream))
	assert.Contains(t, err.Error(), "Chat failed: agent missing")
}
