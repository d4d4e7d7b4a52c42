// Package config provides configuration management for lettuce.
//
// Settings come from an optional YAML file with defaults for everything;
// secrets are taken from the environment only and never written to disk.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultListenAddr      = ":8080"
	DefaultRedisAddr       = "localhost:6379"
	DefaultCacheTTL        = 24 * time.Hour
	DefaultConversationTTL = time.Hour
)

// DefaultOrgs are the GitHub organizations scanned for projects.
var DefaultOrgs = []string{"OWASP"}

// Duration wraps time.Duration so YAML values like "24h" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all lettuce settings.
type Config struct {
	ListenAddr      string   `yaml:"listen_addr"`
	RedisAddr       string   `yaml:"redis_addr"`
	RedisDB         int      `yaml:"redis_db"`
	GithubOrgs      []string `yaml:"github_orgs"`
	CacheTTL        Duration `yaml:"cache_ttl"`
	ConversationTTL Duration `yaml:"conversation_ttl"`

	// RefreshInterval drives the background catalog warmer. Zero means
	// "same as CacheTTL".
	RefreshInterval Duration `yaml:"refresh_interval"`

	// Secrets, environment only.
	SlackSigningSecret string `yaml:"-"`
	SlackBotToken      string `yaml:"-"`
	GithubToken        string `yaml:"-"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ListenAddr:      DefaultListenAddr,
		RedisAddr:       DefaultRedisAddr,
		GithubOrgs:      append([]string(nil), DefaultOrgs...),
		CacheTTL:        Duration(DefaultCacheTTL),
		ConversationTTL: Duration(DefaultConversationTTL),
	}
}

// Load reads the YAML file at path, layered over defaults, then applies
// environment overrides. A missing file is not an error; defaults plus
// environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = cfg.CacheTTL
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LETTUCE_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("LETTUCE_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	c.SlackSigningSecret = os.Getenv("SLACK_SIGNING_SECRET")
	c.SlackBotToken = os.Getenv("SLACK_BOT_TOKEN")
	c.GithubToken = os.Getenv("GITHUB_TOKEN")
}

// Validate checks that the settings required to serve traffic are set.
func (c *Config) Validate() error {
	if c.SlackSigningSecret == "" {
		return fmt.Errorf("SLACK_SIGNING_SECRET is required")
	}
	if c.SlackBotToken == "" {
		return fmt.Errorf("SLACK_BOT_TOKEN is required")
	}
	if len(c.GithubOrgs) == 0 {
		return fmt.Errorf("at least one GitHub organization is required")
	}
	return nil
}
