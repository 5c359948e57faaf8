// Package config loads and validates gateway configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Origin   OriginConfig   `mapstructure:"origin"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Detector DetectorConfig `mapstructure:"detector"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// OriginConfig identifies the backing server for non-crawler traffic.
type OriginConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AuditConfig identifies the external log collector.
type AuditConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DetectorConfig carries the crawler signature table, keyed by a
// human-readable name. Swapping the table never touches detector code.
type DetectorConfig struct {
	Signatures map[string]string `mapstructure:"signatures"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// defaultSignatures is the known AI crawler list, used when the config
// provides no table of its own.
func defaultSignatures() map[string]string {
	return map[string]string{
		"gptbot":            "GPTBot",
		"oai-searchbot":     "OAI-SearchBot",
		"chatgpt-user":      "ChatGPT-User",
		"anthropic-ai":      "anthropic-ai",
		"claudebot":         "ClaudeBot",
		"perplexitybot":     "PerplexityBot",
		"google-extended":   "Google-Extended",
		"bytespider":        "Bytespider",
		"amazonbot":         "Amazonbot",
		"applebot-extended": "Applebot-Extended",
		"ccbot":             "CCBot",
	}
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AIGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Deployment-surface aliases kept from the original worker environment.
	v.BindEnv("origin.url", "AIGATE_ORIGIN_URL", "ORIGIN_URL")    //nolint:errcheck // key is non-empty
	v.BindEnv("audit.url", "AIGATE_AUDIT_URL", "LOG_SERVICE_URL") //nolint:errcheck // key is non-empty

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/aigate/")
		v.AddConfigPath("$HOME/.aigate")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.Detector.Signatures) == 0 {
		cfg.Detector.Signatures = defaultSignatures()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("origin.url", "http://www.mysite.com")
	v.SetDefault("origin.timeout_seconds", 30)
	v.SetDefault("audit.url", "https://httpbin.org/post")
	v.SetDefault("audit.timeout_seconds", 10)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Origin.TimeoutSeconds <= 0 {
		return fmt.Errorf("origin.timeout_seconds must be > 0")
	}
	if c.Audit.TimeoutSeconds <= 0 {
		return fmt.Errorf("audit.timeout_seconds must be > 0")
	}
	if u, err := url.Parse(c.Origin.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("origin.url %q is not an absolute URL", c.Origin.URL)
	}
	if c.Audit.URL != "" {
		if u, err := url.Parse(c.Audit.URL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("audit.url %q is not an absolute URL", c.Audit.URL)
		}
	}
	for name, pattern := range c.Detector.Signatures {
		if pattern == "" {
			return fmt.Errorf("detector.signatures[%s] must not be empty", name)
		}
	}
	return nil
}

// OriginTimeout converts the origin timeout config into a duration.
func (c Config) OriginTimeout() time.Duration {
	return time.Duration(c.Origin.TimeoutSeconds) * time.Second
}

// AuditTimeout converts the audit timeout config into a duration.
func (c Config) AuditTimeout() time.Duration {
	return time.Duration(c.Audit.TimeoutSeconds) * time.Second
}
