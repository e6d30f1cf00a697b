// ABOUTME: Configuration loading for panelctl
// ABOUTME: Supports YAML files with environment variable expansion plus a pure-env mode

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete panelctl client configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	OAuth      OAuthConfig      `yaml:"oauth"`
	FirstParty FirstPartyConfig `yaml:"first_party"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// APIConfig holds the backend endpoints.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	AuthBaseURL string        `yaml:"auth_base_url"`
	Timeout     time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// OAuthConfig holds the password-grant client credentials.
type OAuthConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Scope        string `yaml:"scope"`
}

// FirstPartyConfig holds the request-signing credentials.
type FirstPartyConfig struct {
	ID     string `yaml:"id"`
	Secret string `yaml:"secret"`
}

// StorageConfig holds the local state database location.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const defaultTimeout = 30 * time.Second

// DefaultPath returns the XDG config file location for panelctl.
func DefaultPath() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "panelctl", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "panelctl", "config.yaml")
}

// DefaultStoragePath returns the default state database location.
func DefaultStoragePath() string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return filepath.Join(v, "panelctl", "state.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "panelctl", "state.db")
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded before
// parsing, so secrets can stay out of the file itself.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.parseTimeout(); err != nil {
		return nil, fmt.Errorf("parsing timeout: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv builds a Config purely from environment variables, for
// deployments that pass everything through the process environment.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL:     os.Getenv("API_BASE_URL"),
			AuthBaseURL: os.Getenv("AUTH_BASE_URL"),
		},
		OAuth: OAuthConfig{
			ClientID:     os.Getenv("OAUTH_CLIENT_ID"),
			ClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
			Scope:        os.Getenv("OAUTH_SCOPE"),
		},
		FirstParty: FirstPartyConfig{
			ID:     os.Getenv("FIRST_PARTY_ID"),
			Secret: os.Getenv("FIRST_PARTY_SECRET"),
		},
		Storage: StorageConfig{Path: os.Getenv("PANELCTL_STATE_PATH")},
		Logging: LoggingConfig{Level: os.Getenv("PANELCTL_LOG_LEVEL")},
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) parseTimeout() error {
	if c.API.TimeoutRaw == "" {
		return nil
	}
	d, err := time.ParseDuration(c.API.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("api.timeout %q: %w", c.API.TimeoutRaw, err)
	}
	c.API.Timeout = d
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Timeout <= 0 {
		c.API.Timeout = defaultTimeout
	}
	if c.OAuth.ClientID == "" {
		c.OAuth.ClientID = "1"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that required config fields are present and valid. A
// missing value here is a startup failure; nothing downstream re-checks.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if err := validateHTTPURL("api.base_url", c.API.BaseURL); err != nil {
		return err
	}
	if c.API.AuthBaseURL == "" {
		return fmt.Errorf("api.auth_base_url is required")
	}
	if err := validateHTTPURL("api.auth_base_url", c.API.AuthBaseURL); err != nil {
		return err
	}
	if c.OAuth.ClientSecret == "" {
		return fmt.Errorf("oauth.client_secret is required")
	}
	if c.OAuth.Scope == "" {
		return fmt.Errorf("oauth.scope is required")
	}
	if c.FirstParty.ID == "" {
		return fmt.Errorf("first_party.id is required")
	}
	if c.FirstParty.Secret == "" {
		return fmt.Errorf("first_party.secret is required")
	}
	return nil
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme", field)
	}
	return nil
}
