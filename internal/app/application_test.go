package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/health"
)

const appCatalog = `{"tools":[
  {"id":"code-interpreter","name":"Code Interpreter","type":"builtin","deploy_params":{},"runtime_params":{}},
  {"id":"broken-api","name":"Broken API","type":"external-api","deploy_params":{},"runtime_params":{}}
]}`

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func testConfig(t *testing.T, catalog string) Config {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalog), 0o644))
	return Config{
		ListenAddress: freeAddr(t),
		CatalogPath:   catalogPath,
		DefaultModel:  domain.DefaultModel,
		Platform: PlatformConfig{
			Endpoint: "http://127.0.0.1:1",
			Token:    "test-token",
		},
		ParamStore: ParamStoreConfig{
			Driver: domain.DefaultParamStoreDriver,
			Path:   filepath.Join(dir, "params.json"),
		},
		Observability: ObservabilityConfig{
			Enabled:       true,
			ListenAddress: freeAddr(t),
		},
	}
}

func TestInitializeApplication_Serves(t *testing.T) {
	cfg := testConfig(t, appCatalog)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, cleanup, err := InitializeApplication(ctx, cfg, LoggingConfig{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	defer cleanup()

	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	var tools []domain.ToolSummary
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.ListenAddress + "/api/tools")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&tools) == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.Len(t, tools, 2)

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Observability.ListenAddress + "/metrics")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop")
	}
}

func TestInitializeApplication_RequiresPlatformEndpoint(t *testing.T) {
	cfg := testConfig(t, appCatalog)
	cfg.Platform.Endpoint = ""

	_, _, err := InitializeApplication(context.Background(), cfg, LoggingConfig{})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidArgument))
}

func TestInitializeApplication_InvalidCatalog(t *testing.T) {
	cfg := testConfig(t, `{"tools":[{"id":"","name":"x","type":"builtin"}]}`)

	_, _, err := InitializeApplication(context.Background(), cfg, LoggingConfig{})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidArgument))
}

func TestValidateCatalog(t *testing.T) {
	cfg := testConfig(t, appCatalog)

	summary, err := ValidateCatalog(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Tools)
	assert.Equal(t, map[domain.ToolType]int{
		domain.ToolTypeBuiltin:     1,
		domain.ToolTypeExternalAPI: 1,
	}, summary.ByType)

	bad := testConfig(t, `{"tools":[{"id":"a","name":"A","type":"lambda"}]}`)
	_, err = ValidateCatalog(bad, nil)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidArgument))
}

func TestToolbox_CheckAll(t *testing.T) {
	toolbox, err := OpenToolbox(testConfig(t, appCatalog), nil)
	require.NoError(t, err)

	results := toolbox.CheckAll(context.Background(), nil)
	require.Len(t, results, 2)
	assert.Equal(t, domain.HealthResult{
		ToolID:  "code-interpreter",
		Status:  domain.HealthStatusHealthy,
		Message: health.BuiltinMessage,
	}, results[0])
	assert.Equal(t, domain.HealthStatusUnhealthy, results[1].Status)
	assert.Equal(t, "No spec_url configured", results[1].Message)

	only := toolbox.CheckAll(context.Background(), []string{"missing"})
	require.Len(t, only, 1)
	assert.Equal(t, domain.HealthStatusUnhealthy, only[0].Status)
}
