// Package config loads streamui settings from a YAML file, STREAMUI_*
// environment variables and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	streamui "github.com/haowjy/meridian-streamui-go"
)

// Config is the complete streamui configuration.
type Config struct {
	Provider     string `mapstructure:"provider"`
	Model        string `mapstructure:"model"`
	SystemPrompt string `mapstructure:"system_prompt"`

	// CapabilitiesFile is an optional YAML catalog merged over the embedded one
	CapabilitiesFile string `mapstructure:"capabilities_file"`

	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// OpenAIConfig holds OpenAI credentials and an optional gateway URL.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic credentials.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr     string `mapstructure:"addr"`
	HomePath string `mapstructure:"home_path"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

var defaults = map[string]interface{}{
	"provider":                "openai",
	"model":                   "",
	"system_prompt":           "",
	"capabilities_file":       "",
	"openai.api_key":          "",
	"openai.base_url":         "",
	"anthropic.api_key":       "",
	"server.addr":             ":3000",
	"server.home_path":        "/home",
	"log.level":               "info",
	"log.format":              "text",
	"telemetry.enabled":       false,
	"telemetry.otlp_endpoint": "",
}

// Load reads the configuration. When path is empty, streamui.yaml is
// searched in the user config dir and the working directory; a missing file
// is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("STREAMUI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("streamui")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "streamui"))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.OpenAI.APIKey = expandEnv(cfg.OpenAI.APIKey)
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Anthropic.APIKey == "" {
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !streamui.ProviderID(c.Provider).IsValid() {
		return fmt.Errorf("unknown provider %q (want openai, anthropic or lorem)", c.Provider)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if !strings.HasPrefix(c.Server.HomePath, "/") || c.Server.HomePath == "/" {
		return fmt.Errorf("server.home_path %q must be an absolute path other than /", c.Server.HomePath)
	}
	return nil
}

// ProviderID returns the configured provider.
func (c *Config) ProviderID() streamui.ProviderID {
	return streamui.ProviderID(c.Provider)
}

// ResolvedModel returns the configured model or the provider default.
func (c *Config) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	return c.ProviderID().DefaultModel()
}

// ApplyOverrides replaces provider and model with non-empty command-line values.
func (c *Config) ApplyOverrides(provider, model string) {
	if provider != "" && provider != c.Provider {
		c.Provider = provider
		// A model configured for another provider does not carry over
		c.Model = ""
	}
	if model != "" {
		c.Model = model
	}
}

// LoadEnv searches for a .env file starting from the current directory
// and walking up the directory tree. It loads the first .env file found.
// Variables already set in the environment win.
func LoadEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}

	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}
