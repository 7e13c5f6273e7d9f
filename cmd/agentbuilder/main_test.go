package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agentbuilder/internal/app"
	"agentbuilder/internal/domain"
)

func init() {
	color.NoColor = true
}

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	catalog := `{"tools":[
  {"id":"code-interpreter","name":"Code Interpreter","type":"builtin","deploy_params":{},"runtime_params":{}},
  {"id":"mock-apis","name":"Mock APIs","type":"external-api","source":"custom","deploy_params":{},"runtime_params":{}}
]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.json"), []byte(catalog), 0o644))
	config := "catalogPath: catalog.json\nparamStore:\n  path: params.json\n"
	path := filepath.Join(dir, "agentbuilder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(zap.NewNop())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestToolsList(t *testing.T) {
	out, err := execute(t, "--config", writeFixture(t), "tools", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "code-interpreter")
	assert.Contains(t, out, "builtin")
	assert.Contains(t, out, "mock-apis")
	assert.Contains(t, out, "custom")
}

func TestToolsCheck(t *testing.T) {
	path := writeFixture(t)

	out, err := execute(t, "--config", path, "tools", "check", "code-interpreter")
	require.NoError(t, err)
	assert.Equal(t, "✓ code-interpreter: Built-in tool (always available)\n", out)

	out, err = execute(t, "--config", path, "tools", "check")
	require.Error(t, err)
	assert.EqualError(t, err, "1 of 2 tools unhealthy")
	assert.Contains(t, out, "✗ mock-apis: No spec_url configured")
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "--config", writeFixture(t), "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "2 tools")
	assert.Contains(t, out, "external-api")
}

func TestValidate_MissingConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "validate")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestRenderHealth(t *testing.T) {
	var out bytes.Buffer
	unhealthy := renderHealth(&out, []domain.HealthResult{
		{ToolID: "a", Status: domain.HealthStatusHealthy, Message: "ok", Details: map[string]any{
			"title":      "Pets",
			"operations": 3,
		}},
		{ToolID: "b", Status: domain.HealthStatusUnhealthy, Message: "down"},
	})

	assert.Equal(t, 1, unhealthy)
	assert.Equal(t, "✓ a: ok\n    operations: 3\n    title: Pets\n✗ b: down\n", out.String())
}

func TestRenderSummary(t *testing.T) {
	var out bytes.Buffer
	renderSummary(&out, app.CatalogSummary{
		Path:  "catalog.json",
		Tools: 3,
		ByType: map[domain.ToolType]int{
			domain.ToolTypeExternalAPI: 2,
			domain.ToolTypeBuiltin:     1,
		},
	})
	assert.Equal(t, "✓ catalog.json: 3 tools\n  builtin         1\n  external-api    2\n", out.String())
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "custom.yaml", resolveConfigPath("custom.yaml"))
	t.Chdir(t.TempDir())
	assert.Equal(t, "", resolveConfigPath(""))
	require.NoError(t, os.WriteFile(app.DefaultConfigFile, []byte("{}\n"), 0o644))
	assert.Equal(t, app.DefaultConfigFile, resolveConfigPath(""))
}

func TestToolsList_CatalogFlagOverridesConfig(t *testing.T) {
	other := filepath.Join(t.TempDir(), "other.json")
	require.NoError(t, os.WriteFile(other, []byte(`{"tools":[{"id":"ms-learn","name":"Microsoft Learn","type":"agent-protocol"}]}`), 0o644))

	out, err := execute(t, "--config", writeFixture(t), "--catalog", other, "tools", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ms-learn")
	assert.NotContains(t, out, "code-interpreter")
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, app.Version)
}
