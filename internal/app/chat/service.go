package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/telemetry"
)

type Options struct {
	Platform     domain.Platform
	DefaultModel string
	Metrics      domain.Metrics
	Logger       *zap.Logger
}

// Service forwards single chat turns to deployed agents.
type Service struct {
	platform     domain.Platform
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
		defaultModel: model,
		metrics:      metrics,
		logger:       logger.Named("chat"),
	}
}

func (s *Service) Send(ctx context.Context, req domain.ChatRequest) (result domain.ChatResult, err error) {
	const op = "chat.send"
	start := time.Now()
	defer func() {
		s.metrics.ObserveChat(domain.MetricStatus(err), time.Since(start))
	}()

	resp, err := s.platform.CreateResponse(ctx, domain.ResponseRequest{
		Model: s.resolveModel(ctx, req.AgentName),
		Input: []domain.ResponseInput{{Role: "user", Content: req.Message}},
		Agent: domain.AgentReference{
			Name: req.AgentName,
			Type: domain.AgentReferenceType,
		},
		PreviousResponseID: req.PreviousResponseID,
	})
	if err != nil {
		telemetry.LoggerWithRequest(ctx, s.logger).Warn("chat turn failed",
			telemetry.EventField(telemetry.EventChatFailure),
			telemetry.AgentNameField(req.AgentName),
			zap.Error(err),
		)
		return domain.ChatResult{}, domain.E(domain.CodeUpstream, op, fmt.Sprintf("Chat failed: %s", upstreamMessage(err)), err)
	}

	result = ParseOutput(resp.Output)
	result.ResponseID = resp.ID
	return result, nil
}

// resolveModel reads the agent's configured model; lookup failures fall back
// to the default model.
func (s *Service) resolveModel(ctx context.Context, name string) string {
	agent, err := s.platform.GetAgent(ctx, name)
	if err != nil {
		telemetry.LoggerWithRequest(ctx, s.logger).Debug("model lookup failed; using default",
			telemetry.AgentNameField(name),
			zap.Error(err),
		)
		return s.defaultModel
	}
	if latest := agent.Versions.Latest; latest != nil && latest.Definition.Model != "" {
		return latest.Definition.Model
	}
	return s.defaultModel
}

// ParseOutput concatenates message text and collects tool invocations in
// emission order. MCP tool listing items are bookkeeping and are skipped.
func ParseOutput(items []domain.OutputItem) domain.ChatResult {
	var text strings.Builder
	calls := make([]string, 0)
	for _, item := range items {
		switch item.Type {
		case domain.OutputItemMessage:
			for _, content := range item.Content {
				text.WriteString(content.Text)
			}
		case domain.OutputItemFunctionCall,
			domain.OutputItemMCPCall,
			domain.OutputItemCodeInterpreterCall,
			domain.OutputItemWebSearchCall:
			name := item.Name
			if name == "" {
				name = item.Type
			}
			calls = append(calls, name)
		}
	}
	return domain.ChatResult{Text: text.String(), ToolCalls: calls}
}

func upstreamMessage(err error) string {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return err.Error()
}

var _ domain.ChatService = (*Service)(nil)
