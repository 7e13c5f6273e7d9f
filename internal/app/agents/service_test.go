package agents

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/paramstore"
)

type fakePlatform struct {
	created   []domain.CreateVersionRequest
	deleted   []string
	agents    map[string]domain.PlatformAgent
	createErr error
	listErr   error
}

func (f *fakePlatform) CreateVersion(_ context.Context, req domain.CreateVersionRequest) (domain.AgentVersion, error) {
	if f.createErr != nil {
		return domain.AgentVersion{}, f.createErr
	}
	f.created = append(f.created, req)
	return domain.AgentVersion{Name: req.Name, ID: req.Name + ":2", Version: "2"}, nil
}

func (f *fakePlatform) ListAgents(context.Context) ([]domain.PlatformAgent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.PlatformAgent, 0, len(f.agents))
	for _, name := range []string{"alpha", "beta"} {
		if agent, ok := f.agents[name]; ok {
			out = append(out, agent)
		}
	}
	return out, nil
}

func (f *fakePlatform) GetAgent(_ context.Context, name string) (domain.PlatformAgent, error) {
	agent, ok := f.agents[name]
	if !ok {
		return domain.PlatformAgent{}, domain.E(domain.CodeNotFound, "platform.get_agent", "agent missing", nil)
	}
	return agent, nil
}

func (f *fakePlatform) DeleteAgent(_ context.Context, name string) error {
	if _, ok := f.agents[name]; !ok {
		return domain.E(domain.CodeNotFound, "platform.delete_agent", "agent missing", nil)
	}
	delete(f.agents, name)
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakePlatform) CreateResponse(context.Context, domain.ResponseRequest) (domain.Response, error) {
	return domain.Response{}, errors.New("not used")
}

type fakeBuilder struct {
	err error
}

func (f fakeBuilder) Build(_ context.Context, selections []domain.ToolSelection, base string) ([]domain.ToolConfig, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	configs := make([]domain.ToolConfig, 0, len(selections))
	for range selections {
		configs = append(configs, domain.ToolConfig{Type: domain.ToolConfigCodeInterpreter})
	}
	return configs, base + " (augmented)", nil
}

func platformAgent(name, model string) domain.PlatformAgent {
	return domain.PlatformAgent{
		Name: name,
		ID:   name,
		Versions: domain.AgentVersions{Latest: &domain.AgentVersion{
			Name:        name,
			ID:          name + ":1",
			Version:     "1",
			Description: domain.DefaultAgentDescription,
			Definition:  domain.AgentDefinitionSpec{Model: model},
		}},
	}
}

func newTestService(t *testing.T, platform *fakePlatform, builder ToolBuilder) (*Service, *paramstore.JSONStore) {
	t.Helper()
	store := paramstore.NewJSONStore(filepath.Join(t.TempDir(), "prompt_params_store.json"))
	return NewService(Options{
		Platform:     platform,
		Tools:        builder,
		Params:       store,
		DefaultModel: "gpt-4.1",
	}), store
}

func TestDeploy(t *testing.T) {
	platform := &fakePlatform{}
	svc, store := newTestService(t, platform, fakeBuilder{})
	params := []domain.PromptParam{{Name: "customer", Label: "Customer", Required: true}}

	record, err := svc.Deploy(context.Background(), domain.DeployRequest{
		Name:         "support-bot",
		Instructions: "Be helpful.",
		Tools:        []domain.ToolSelection{{ToolID: "code-interpreter"}},
		PromptParams: params,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AgentRecord{
		Name:         "support-bot",
		ID:           "support-bot:2",
		Version:      2,
		Description:  domain.DefaultAgentDescription,
		Model:        "gpt-4.1",
		PromptParams: params,
	}, record)

	require.Len(t, platform.created, 1)
	created := platform.created[0]
	assert.Equal(t, domain.AgentDefinitionKind, created.Definition.Kind)
	assert.Equal(t, "Be helpful. (augmented)", created.Definition.Instructions)
	assert.Len(t, created.Definition.Tools, 1)
	assert.Equal(t, domain.DefaultAgentDescription, created.Description)

	stored, ok, err := store.Get("support-bot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, params, stored)
}

func TestDeploy_ExplicitModelAndNoParams(t *testing.T) {
	platform := &fakePlatform{}
	svc, store := newTestService(t, platform, fakeBuilder{})

	record, err := svc.Deploy(context.Background(), domain.DeployRequest{Name: "bot", Model: "gpt-4o", Instructions: "x"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", platform.created[0].Definition.Model)
	assert.Equal(t, "gpt-4o", record.Model)

	_, ok, err := store.Get("bot")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeploy_AssemblyErrorsPassThrough(t *testing.T) {
	platform := &fakePlatform{}
	notFound := domain.E(domain.CodeNotFound, "catalog.get", `tool "x" not found`, domain.ErrToolNotFound)
	svc, _ := newTestService(t, platform, fakeBuilder{err: notFound})

	_, err := svc.Deploy(context.Background(), domain.DeployRequest{Name: "bot", Instructions: "x"})
	require.Error(t, err)
	assert.Same(t, notFound, err)
	assert.Empty(t, platform.created)
}

func TestDeploy_PlatformFailureIsUpstream(t *testing.T) {
	platform := &fakePlatform{createErr: domain.E(domain.CodeUpstream, "platform.create_version", "quota exceeded", nil)}
	svc, store := newTestService(t, platform, fakeBuilder{})

	_, err := svc.Deploy(context.Background(), domain.DeployRequest{
		Name:         "bot",
		Instructions: "x",
		PromptParams: []domain.PromptParam{{Name: "p"}},
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeUpstream))
	assert.Contains(t, err.Error(), "Failed to deploy agent: quota exceeded")

	_, ok, err := store.Get("bot")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListAndGetMergeParams(t *testing.T) {
	platform := &fakePlatform{agents: map[string]domain.PlatformAgent{
		"alpha": platformAgent("alpha", "gpt-4o"),
		"beta":  platformAgent("beta", "gpt-4.1"),
	}}
	svc, store := newTestService(t, platform, fakeBuilder{})
	params := []domain.PromptParam{{Name: "tone", Default: "formal"}}
	require.NoError(t, store.Put("beta", params))

	records, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.AgentRecord{
		Name:        "alpha",
		ID:          "alpha:1",
		Version:     1,
		Description: domain.DefaultAgentDescription,
		Model:       "gpt-4o",
	}, records[0])
	assert.Equal(t, params, records[1].PromptParams)

	record, err := svc.Get(context.Background(), "beta")
	require.NoError(t, err)
	assert.Equal(t, params, record.PromptParams)
	assert.Equal(t, 1, record.Version)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService(t, &fakePlatform{agents: map[string]domain.PlatformAgent{}}, fakeBuilder{})

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
	assert.Contains(t, err.Error(), "Agent 'ghost' not found")
}

func TestList_UpstreamFailure(t *testing.T) {
	svc, _ := newTestService(t, &fakePlatform{listErr: errors.New("connection reset")}, fakeBuilder{})

	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeUpstream))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDelete(t *testing.T) {
	platform := &fakePlatform{agents: map[string]domain.PlatformAgent{
		"alpha": platformAgent("alpha", "gpt-4o"),
		"beta":  platformAgent("beta", "gpt-4o"),
	}}
	svc, store := newTestService(t, platform, fakeBuilder{})
	require.NoError(t, store.Put("alpha", []domain.PromptParam{{Name: "p"}}))

	require.NoError(t, svc.Delete(context.Background(), "alpha"))
	_, ok, err := store.Get("alpha")
	require.NoError(t, err)
	assert.False(t, ok)

	// No side-store entry is fine.
	require.NoError(t, svc.Delete(context.Background(), "beta"))
	assert.Equal(t, []string{"alpha", "beta"}, platform.deleted)

	err = svc.Delete(context.Background(), "alpha")
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestProject_WithoutLatest(t *testing.T) {
	record := project(domain.PlatformAgent{Name: "a", ID: "a-id", Description: "desc"}, nil)
	assert.Equal(t, domain.AgentRecord{Name: "a", ID: "a-id", Description: "desc"}, record)
	assert.Equal(t, 0, parseVersion("v1"))
}
