package health

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"agentbuilder/internal/infra/telemetry"
)

const clientName = "agentbuilder-health"

// attachHandshake records the advertised tool count of an MCP endpoint.
// Failures only add an error detail; the probe status is already decided.
func (c *Checker) attachHandshake(ctx context.Context, endpoint string, details map[string]any) {
	count, err := c.listTools(ctx, endpoint)
	if err != nil {
		telemetry.LoggerWithRequest(ctx, c.logger).Debug("mcp handshake failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		details["mcp_error"] = err.Error()
		return
	}
	details["mcp_tools"] = count
}

func (c *Checker) listTools(ctx context.Context, endpoint string) (int, error) {
	transport := &mcp.StreamableClientTransport{
		Endpoint:   endpoint,
		HTTPClient: c.client,
		MaxRetries: 1,
	}
	client := mcp.NewClient(&mcp.Implementation{Name: clientName, Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return 0, err
	}
	defer session.Close()

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return 0, err
	}
	return len(res.Tools), nil
}
