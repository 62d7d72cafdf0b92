package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL       = "http://localhost:8000"
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 15 * time.Minute
)

// Config holds client settings. Fields are filled from defaults, then the
// YAML file, then .env and the process environment, then flags.
type Config struct {
	APIURL       string        `yaml:"api_url" env:"QUESTLOG_API_URL"`
	GraphQLURL   string        `yaml:"graphql_url" env:"QUESTLOG_GRAPHQL_URL"`
	Timeout      time.Duration `yaml:"timeout" env:"QUESTLOG_TIMEOUT"`
	CampaignID   int           `yaml:"campaign" env:"QUESTLOG_CAMPAIGN"`
	PollInterval time.Duration `yaml:"poll_interval" env:"QUESTLOG_POLL_INTERVAL"`
	PollTimeout  time.Duration `yaml:"poll_timeout" env:"QUESTLOG_POLL_TIMEOUT"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() Config {
	return Config{
		APIURL:       DefaultAPIURL,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		PollTimeout:  DefaultPollTimeout,
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/questlog/config.yaml
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "questlog", "config.yaml")
}

// LoadConfig reads the YAML file at path (missing is fine), a .env file in
// the working directory (missing is fine) and the environment.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			LogDebug("no config file at %s", path)
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, &ParseError{Source: "config", Key: path, Err: err}
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		LogWarn("failed to load .env: %v", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg.withDerived(), nil
}

// withDerived fills values that depend on others
func (c Config) withDerived() Config {
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.GraphQLURL == "" {
		c.GraphQLURL = c.APIURL + "/graphql"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	return c
}

// WithOverrides applies non-zero flag values on top of the loaded config
func (c Config) WithOverrides(apiURL, graphqlURL string, timeout time.Duration) Config {
	if apiURL != "" {
		c.APIURL = apiURL
		if graphqlURL == "" {
			c.GraphQLURL = ""
		}
	}
	if graphqlURL != "" {
		c.GraphQLURL = graphqlURL
	}
	if timeout > 0 {
		c.Timeout = timeout
	}
	return c.withDerived()
}
