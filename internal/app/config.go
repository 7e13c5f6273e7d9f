package app

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/paramstore"
)

const (
	// EnvPrefix prefixes every environment override, e.g. AGENTBUILDER_PLATFORM_ENDPOINT.
	EnvPrefix = "AGENTBUILDER"
	// DefaultConfigFile is picked up from the working directory when no path is given.
	DefaultConfigFile = "agentbuilder.yaml"
	// DefaultTokenEnvVar holds the platform bearer token when none is configured.
	DefaultTokenEnvVar = "PLATFORM_TOKEN"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8000",
	"http://127.0.0.1:5500",
	"http://127.0.0.1:8000",
}

type Config struct {
	ListenAddress string              `mapstructure:"listenAddress"`
	CatalogPath   string              `mapstructure:"catalogPath"`
	FrontendDir   string              `mapstructure:"frontendDir"`
	CORSOrigins   []string            `mapstructure:"corsOrigins"`
	DefaultModel  string              `mapstructure:"defaultModel"`
	Platform      PlatformConfig      `mapstructure:"platform"`
	Descriptor    DescriptorConfig    `mapstructure:"descriptor"`
	Health        HealthConfig        `mapstructure:"health"`
	ParamStore    ParamStoreConfig    `mapstructure:"paramStore"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type PlatformConfig struct {
	Endpoint       string   `mapstructure:"endpoint"`
	APIVersion     string   `mapstructure:"apiVersion"`
	Token          string   `mapstructure:"token"`
	TokenEnvVar    string   `mapstructure:"tokenEnvVar"`
	ClientID       string   `mapstructure:"clientID"`
	ClientSecret   string   `mapstructure:"clientSecret"`
	TokenURL       string   `mapstructure:"tokenURL"`
	Scopes         []string `mapstructure:"scopes"`
	TimeoutSeconds int      `mapstructure:"timeoutSeconds"`
}

type DescriptorConfig struct {
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type HealthConfig struct {
	TimeoutSeconds int  `mapstructure:"timeoutSeconds"`
	MCPHandshake   bool `mapstructure:"mcpHandshake"`
}

type ParamStoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type ObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
	Enabled       bool   `mapstructure:"enabled"`
}

// PlatformTimeout returns the per-call platform timeout.
func (c Config) PlatformTimeout() time.Duration {
	return seconds(c.Platform.TimeoutSeconds, domain.DefaultPlatformTimeoutSeconds)
}

func (c Config) DescriptorTimeout() time.Duration {
	return seconds(c.Descriptor.TimeoutSeconds, domain.DefaultDescriptorTimeoutSeconds)
}

func (c Config) HealthTimeout() time.Duration {
	return seconds(c.Health.TimeoutSeconds, domain.DefaultHealthTimeoutSeconds)
}

func seconds(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("listenAddress", domain.DefaultListenAddress)
	v.SetDefault("catalogPath", domain.DefaultCatalogPath)
	v.SetDefault("frontendDir", "")
	v.SetDefault("corsOrigins", defaultCORSOrigins)
	v.SetDefault("defaultModel", domain.DefaultModel)
	v.SetDefault("platform.endpoint", "")
	v.SetDefault("platform.apiVersion", domain.DefaultPlatformAPIVersion)
	v.SetDefault("platform.token", "")
	v.SetDefault("platform.tokenEnvVar", DefaultTokenEnvVar)
	v.SetDefault("platform.clientID", "")
	v.SetDefault("platform.clientSecret", "")
	v.SetDefault("platform.tokenURL", "")
	v.SetDefault("platform.scopes", []string{})
	v.SetDefault("platform.timeoutSeconds", domain.DefaultPlatformTimeoutSeconds)
	v.SetDefault("descriptor.timeoutSeconds", domain.DefaultDescriptorTimeoutSeconds)
	v.SetDefault("health.timeoutSeconds", domain.DefaultHealthTimeoutSeconds)
	v.SetDefault("health.mcpHandshake", false)
	v.SetDefault("paramStore.driver", domain.DefaultParamStoreDriver)
	v.SetDefault("paramStore.path", domain.DefaultParamStorePath)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("observability.enabled", false)
}

// LoadConfig reads the YAML config at path, layering .env, defaults and
// AGENTBUILDER_* overrides. An empty path yields defaults plus overrides.
// Relative file paths are resolved against the config file's directory.
func LoadConfig(path string, logger *zap.Logger) (Config, error) {
	const op = "app.load_config"
	if logger == nil {
		logger = zap.NewNop()
	}

	baseDir := "."
	if path != "" {
		baseDir = filepath.Dir(path)
	}
	if err := loadDotEnv(filepath.Join(baseDir, ".env")); err != nil {
		return Config{}, domain.E(domain.CodeInvalidArgument, op, "load .env", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setConfigDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, domain.Errorf(domain.CodeNotFound, op, "config file %s not found", path)
			}
			return Config{}, domain.E(domain.CodeInternal, op, "read config", err)
		}
		expanded, missing, err := expandConfigEnv(data)
		if err != nil {
			return Config{}, domain.E(domain.CodeInvalidArgument, op, "parse config", err)
		}
		if len(missing) > 0 {
			logger.Warn("missing environment variables in config", zap.String("path", path), zap.Strings("missing", missing))
		}
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return Config{}, domain.E(domain.CodeInvalidArgument, op, "parse config", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, domain.E(domain.CodeInvalidArgument, op, "decode config", err)
	}
	cfg.normalize(baseDir)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Config) normalize(baseDir string) {
	c.ListenAddress = strings.TrimSpace(c.ListenAddress)
	c.DefaultModel = strings.TrimSpace(c.DefaultModel)
	c.ParamStore.Driver = strings.ToLower(strings.TrimSpace(c.ParamStore.Driver))
	c.Platform.Endpoint = strings.TrimSpace(c.Platform.Endpoint)

	c.CatalogPath = resolvePath(baseDir, c.CatalogPath)
	c.ParamStore.Path = resolvePath(baseDir, c.ParamStore.Path)
	c.FrontendDir = resolvePath(baseDir, c.FrontendDir)

	if c.Platform.Token == "" && c.Platform.TokenEnvVar != "" {
		c.Platform.Token = strings.TrimSpace(os.Getenv(c.Platform.TokenEnvVar))
	}
	c.CORSOrigins = compactStrings(c.CORSOrigins)
	c.Platform.Scopes = compactStrings(c.Platform.Scopes)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string
	if c.ListenAddress == "" {
		problems = append(problems, "listenAddress is required")
	}
	if c.CatalogPath == "" {
		problems = append(problems, "catalogPath is required")
	}
	switch c.ParamStore.Driver {
	case paramstore.DriverJSON, paramstore.DriverBolt:
	default:
		problems = append(problems, "paramStore.driver must be json or bolt")
	}
	if c.ParamStore.Path == "" {
		problems = append(problems, "paramStore.path is required")
	}
	if c.Platform.TimeoutSeconds < 0 || c.Descriptor.TimeoutSeconds < 0 || c.Health.TimeoutSeconds < 0 {
		problems = append(problems, "timeouts must not be negative")
	}
	if c.Observability.Enabled && strings.TrimSpace(c.Observability.ListenAddress) == "" {
		problems = append(problems, "observability.listenAddress is required when observability is enabled")
	}
	hasID := c.Platform.ClientID != ""
	if hasID != (c.Platform.ClientSecret != "") || (hasID && c.Platform.TokenURL == "") {
		problems = append(problems, "platform.clientID, platform.clientSecret and platform.tokenURL must be set together")
	}
	if len(problems) > 0 {
		return domain.E(domain.CodeInvalidArgument, "app.validate_config", strings.Join(problems, "; "), nil)
	}
	return nil
}

func resolvePath(baseDir, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
