package agents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/telemetry"
)

// ToolBuilder turns tool selections into platform tool configs.
type ToolBuilder interface {
	Build(ctx context.Context, selections []domain.ToolSelection, baseInstructions string) ([]domain.ToolConfig, string, error)
}

type Options struct {
	Platform     domain.Platform
	Tools        ToolBuilder
	Params       domain.PromptParamStore
	DefaultModel string
	Metrics      domain.Metrics
	Logger       *zap.Logger
}

// Service deploys agent definitions and keeps their prompt parameter metadata.
type Service struct {
	platform     domain.Platform
	tools        ToolBuilder
	params       domain.PromptParamStore
	defaultModel string
	metrics      domain.Metrics
	logger       *zap.Logger
}

func NewService(opts Options) *Service {
	model := strings.TrimSpace(opts.DefaultModel)
	if model == "" {
		model = domain.DefaultModel
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		platform:     opts.Platform,
		tools:        opts.Tools,
		params:       opts.Params,
		defaultModel: model,
		metrics:      metrics,
		logger:       logger.Named("agents"),
	}
}

func (s *Service) Deploy(ctx context.Context, req domain.DeployRequest) (record domain.AgentRecord, err error) {
	const op = "agents.deploy"
	start := time.Now()
	logger := telemetry.LoggerWithRequest(ctx, s.logger).With(telemetry.AgentNameField(req.Name))
	defer func() {
		s.metrics.ObserveDeploy(domain.MetricStatus(err), time.Since(start))
		if err != nil {
			logger.Warn("deploy failed", telemetry.EventField(telemetry.EventDeployFailure), zap.Error(err))
		}
	}()

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.defaultModel
	}

	configs, instructions, err := s.tools.Build(ctx, req.Tools, req.Instructions)
	if err != nil {
		return domain.AgentRecord{}, err
	}

	version, err := s.platform.CreateVersion(ctx, domain.CreateVersionRequest{
		Name: req.Name,
		Definition: domain.AgentDefinitionSpec{
			Kind:         domain.AgentDefinitionKind,
			Model:        model,
			Instructions: instructions,
			Tools:        configs,
		},
		Description: domain.DefaultAgentDescription,
	})
	if err != nil {
		return domain.AgentRecord{}, platformError(op, "deploy agent", req.Name, err)
	}

	if len(req.PromptParams) > 0 {
		if err := s.params.Put(req.Name, req.PromptParams); err != nil {
			return domain.AgentRecord{}, domain.Wrap(domain.CodeInternal, op, err)
		}
	}

	name := version.Name
	if name == "" {
		name = req.Name
	}
	logger.Info("agent deployed",
		telemetry.EventField(telemetry.EventDeploySuccess),
		zap.String("version", version.Version),
		zap.Int("tools", len(configs)),
		telemetry.DurationField(time.Since(start)),
	)
	return domain.AgentRecord{
		Name:         name,
		ID:           version.ID,
		Version:      parseVersion(version.Version),
		Description:  domain.DefaultAgentDescription,
		Model:        model,
		PromptParams: req.PromptParams,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]domain.AgentRecord, error) {
	const op = "agents.list"

	agents, err := s.platform.ListAgents(ctx)
	if err != nil {
		return nil, platformError(op, "list agents", "", err)
	}
	store, err := s.params.All()
	if err != nil {
		return nil, domain.Wrap(domain.CodeInternal, op, err)
	}

	out := make([]domain.AgentRecord, 0, len(agents))
	for _, agent := range agents {
		out = append(out, project(agent, store[agent.Name]))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, name string) (domain.AgentRecord, error) {
	const op = "agents.get"

	agent, err := s.platform.GetAgent(ctx, name)
	if err != nil {
		return domain.AgentRecord{}, platformError(op, "get agent", name, err)
	}
	params, _, err := s.params.Get(agent.Name)
	if err != nil {
		return domain.AgentRecord{}, domain.Wrap(domain.CodeInternal, op, err)
	}
	return project(agent, params), nil
}

// Delete removes the agent upstream, then drops its prompt parameters.
func (s *Service) Delete(ctx context.Context, name string) error {
	const op = "agents.delete"

	if err := s.platform.DeleteAgent(ctx, name); err != nil {
		return platformError(op, "delete agent", name, err)
	}
	if err := s.params.Remove(name); err != nil {
		return domain.Wrap(domain.CodeInternal, op, err)
	}
	telemetry.LoggerWithRequest(ctx, s.logger).Info("agent deleted",
		telemetry.EventField(telemetry.EventAgentDeleted),
		telemetry.AgentNameField(name),
	)
	return nil
}

// project flattens the platform's latest-version shape.
func project(agent domain.PlatformAgent, params []domain.PromptParam) domain.AgentRecord {
	record := domain.AgentRecord{
		Name:         agent.Name,
		ID:           agent.ID,
		Description:  agent.Description,
		PromptParams: params,
	}
	if latest := agent.Versions.Latest; latest != nil {
		if latest.ID != "" {
			record.ID = latest.ID
		}
		if latest.Description != "" {
			record.Description = latest.Description
		}
		record.Version = parseVersion(latest.Version)
		record.Model = latest.Definition.Model
	}
	return record
}

func parseVersion(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}

// platformError keeps NotFound and folds every other failure into Upstream.
func platformError(op, action, name string, err error) error {
	if domain.IsCode(err, domain.CodeNotFound) {
		return domain.E(domain.CodeNotFound, op, fmt.Sprintf("Agent '%s' not found", name), domain.ErrAgentNotFound)
	}
	return domain.E(domain.CodeUpstream, op, fmt.Sprintf("Failed to %s: %s", action, upstreamMessage(err)), err)
}

func upstreamMessage(err error) string {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return err.Error()
}

var _ domain.AgentService = (*Service)(nil)
