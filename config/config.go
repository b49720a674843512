package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all server configuration. Tags use mapstructure for Viper
// unmarshalling; every key can be overridden through the environment.
type Config struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"` // optional; empty selects the in-memory token cache
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`

	GithubClientID     string `mapstructure:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `mapstructure:"GITHUB_CLIENT_SECRET"`
	GithubRedirectURI  string `mapstructure:"GITHUB_REDIRECT_URI"`
	GithubScopes       string `mapstructure:"GITHUB_SCOPES"`

	SessionTimeoutSec    int    `mapstructure:"SESSION_TIMEOUT"`
	UserTokenLifetimeSec int    `mapstructure:"USER_TOKEN_LIFETIME"`
	UserTokenPrefix      string `mapstructure:"USER_TOKEN_PREFIX"`

	JanitorIntervalSec int `mapstructure:"JANITOR_INTERVAL"`

	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`
}

// SessionTTL returns the sign-in session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTimeoutSec) * time.Second
}

// UserTokenTTL returns the bearer token lifetime.
func (c *Config) UserTokenTTL() time.Duration {
	return time.Duration(c.UserTokenLifetimeSec) * time.Second
}

// JanitorInterval returns how often the expiry sweep runs.
func (c *Config) JanitorInterval() time.Duration {
	return time.Duration(c.JanitorIntervalSec) * time.Second
}

// Load reads configuration from an optional config file, environment
// variables and defaults, in that order of precedence (env wins).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/readsync/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/readsync")
	v.SetDefault("MONGO_DB_NAME", "readsync")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)

	v.SetDefault("GITHUB_CLIENT_ID", "")
	v.SetDefault("GITHUB_CLIENT_SECRET", "")
	v.SetDefault("GITHUB_REDIRECT_URI", "")
	v.SetDefault("GITHUB_SCOPES", "read:user user:email")

	v.SetDefault("SESSION_TIMEOUT", 300)
	v.SetDefault("USER_TOKEN_LIFETIME", 7200)
	v.SetDefault("USER_TOKEN_PREFIX", "ur_")
	v.SetDefault("JANITOR_INTERVAL", 60)
	v.SetDefault("METRICS_ENABLED", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the fields the auth flow cannot run without.
func (c *Config) Validate() error {
	if c.GithubClientID == "" || c.GithubClientSecret == "" {
		return fmt.Errorf("GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET are required")
	}
	if c.GithubRedirectURI == "" {
		return fmt.Errorf("GITHUB_REDIRECT_URI is required")
	}
	if c.SessionTimeoutSec <= 0 || c.UserTokenLifetimeSec <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT and USER_TOKEN_LIFETIME must be positive")
	}
	return nil
}
