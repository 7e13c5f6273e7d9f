package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentbuilder/internal/domain"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "agentbuilder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(DefaultTokenEnvVar, "")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultListenAddress, cfg.ListenAddress)
	assert.Equal(t, domain.DefaultCatalogPath, cfg.CatalogPath)
	assert.Equal(t, domain.DefaultModel, cfg.DefaultModel)
	assert.Equal(t, domain.DefaultPlatformAPIVersion, cfg.Platform.APIVersion)
	assert.Equal(t, domain.DefaultParamStoreDriver, cfg.ParamStore.Driver)
	assert.Equal(t, domain.DefaultParamStorePath, cfg.ParamStore.Path)
	assert.Equal(t, defaultCORSOrigins, cfg.CORSOrigins)
	assert.False(t, cfg.Observability.Enabled)
	assert.Equal(t, 60*time.Second, cfg.PlatformTimeout())
	assert.Equal(t, 30*time.Second, cfg.DescriptorTimeout())
	assert.Equal(t, 10*time.Second, cfg.HealthTimeout())
}

func TestLoadConfig_FileWithExpansion(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AB_TEST_ENDPOINT", "https://platform.example.com/api/projects/demo")
	t.Setenv("AB_TEST_HEALTH_TIMEOUT", "3")
	path := writeConfig(t, dir, `
listenAddress: 0.0.0.0:8080
catalogPath: tools.json
defaultModel: gpt-4o-mini
corsOrigins:
  - https://app.example.com
platform:
  endpoint: ${AB_TEST_ENDPOINT}
  token: static-token
health:
  timeoutSeconds: ${AB_TEST_HEALTH_TIMEOUT}
  mcpHandshake: true
paramStore:
  driver: bolt
  path: data/params.db
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddress)
	assert.Equal(t, filepath.Join(dir, "tools.json"), cfg.CatalogPath)
	assert.Equal(t, "gpt-4o-mini", cfg.DefaultModel)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "https://platform.example.com/api/projects/demo", cfg.Platform.Endpoint)
	assert.Equal(t, "static-token", cfg.Platform.Token)
	assert.Equal(t, 3*time.Second, cfg.HealthTimeout())
	assert.True(t, cfg.Health.MCPHandshake)
	assert.Equal(t, "bolt", cfg.ParamStore.Driver)
	assert.Equal(t, filepath.Join(dir, "data", "params.db"), cfg.ParamStore.Path)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "listenAddress: 127.0.0.1:7000\n")
	t.Setenv("AGENTBUILDER_LISTENADDRESS", "127.0.0.1:7100")
	t.Setenv("AGENTBUILDER_PLATFORM_APIVERSION", "2026-01-01")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7100", cfg.ListenAddress)
	assert.Equal(t, "2026-01-01", cfg.Platform.APIVersion)
}

func TestLoadConfig_TokenFromDotEnv(t *testing.T) {
	const key = "AB_TEST_DOTENV_TOKEN"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-dotenv\n"), 0o600))
	path := writeConfig(t, dir, "platform:\n  tokenEnvVar: "+key+"\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Platform.Token)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestLoadConfig_InvalidSettings(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "unknown driver", body: "paramStore:\n  driver: redis\n"},
		{name: "partial client credentials", body: "platform:\n  clientID: abc\n"},
		{name: "negative timeout", body: "descriptor:\n  timeoutSeconds: -1\n"},
		{name: "observability without address", body: "observability:\n  enabled: true\n  listenAddress: \"\"\n"},
		{name: "malformed yaml", body: "listenAddress: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tc.body)
			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, domain.CodeInvalidArgument), err.Error())
		})
	}
}
