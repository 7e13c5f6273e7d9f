package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/telemetry"
)

const maxErrorBody = 64 << 10

type Options struct {
	Endpoint   string
	APIVersion string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Client talks to the agent-hosting platform's REST API.
type Client struct {
	endpoint   string
	apiVersion string
	http       *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

func NewClient(opts Options) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "platform.new", "platform endpoint is required", nil)
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, "platform.new", "invalid platform endpoint", err)
	}
	apiVersion := opts.APIVersion
	if apiVersion == "" {
		apiVersion = domain.DefaultPlatformAPIVersion
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultPlatformTimeoutSeconds) * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:   endpoint,
		apiVersion: apiVersion,
		http:       client,
		timeout:    timeout,
		logger:     logger.Named("platform"),
	}, nil
}

type createVersionBody struct {
	Definition  domain.AgentDefinitionSpec `json:"definition"`
	Description string                     `json:"description,omitempty"`
}

type agentList struct {
	Data []domain.PlatformAgent `json:"data"`
}

func (c *Client) CreateVersion(ctx context.Context, req domain.CreateVersionRequest) (domain.AgentVersion, error) {
	var out domain.AgentVersion
	body := createVersionBody{Definition: req.Definition, Description: req.Description}
	err := c.do(ctx, "platform.create_version", http.MethodPost, agentPath(req.Name, "versions"), body, &out)
	return out, err
}

func (c *Client) ListAgents(ctx context.Context) ([]domain.PlatformAgent, error) {
	var out agentList
	if err := c.do(ctx, "platform.list_agents", http.MethodGet, "/agents", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetAgent(ctx context.Context, name string) (domain.PlatformAgent, error) {
	var out domain.PlatformAgent
	err := c.do(ctx, "platform.get_agent", http.MethodGet, agentPath(name), nil, &out)
	return out, err
}

func (c *Client) DeleteAgent(ctx context.Context, name string) error {
	return c.do(ctx, "platform.delete_agent", http.MethodDelete, agentPath(name), nil, nil)
}

func (c *Client) CreateResponse(ctx context.Context, req domain.ResponseRequest) (domain.Response, error) {
	var out domain.Response
	err := c.do(ctx, "platform.create_response", http.MethodPost, "/openai/responses", req, &out)
	return out, err
}

func agentPath(name string, suffix ...string) string {
	parts := append([]string{"/agents", url.PathEscape(name)}, suffix...)
	return strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return domain.Wrap(domain.CodeInternal, op, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	target := c.endpoint + path + "?" + url.Values{"api-version": {c.apiVersion}}.Encode()
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return domain.Wrap(domain.CodeInternal, op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID, ok := telemetry.RequestIDFromContext(ctx); ok {
		req.Header.Set(telemetry.RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.E(domain.CodeUpstream, op, err.Error(), err)
	}
	defer resp.Body.Close()

	telemetry.LoggerWithRequest(ctx, c.logger).Debug("platform call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		telemetry.DurationField(time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.E(domain.CodeUpstream, op, fmt.Sprintf("decode response: %v", err), err)
	}
	return nil
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := fmt.Sprintf("platform returned HTTP %d", resp.StatusCode)
	var parsed errorBody
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	} else if text := strings.TrimSpace(string(raw)); text != "" && len(text) < 512 {
		message = fmt.Sprintf("%s: %s", message, text)
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.E(domain.CodeNotFound, op, message, domain.ErrAgentNotFound)
	}
	return domain.E(domain.CodeUpstream, op, message, nil)
}

var _ domain.Platform = (*Client)(nil)
