// Package config tests.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// ConfigSuite is a test suite for config operations.
type ConfigSuite struct {
	suite.Suite
	tempDir string
	origEnv map[string]string
}

var envKeys = []string{
	"LETTUCE_LISTEN_ADDR", "LETTUCE_REDIS_ADDR",
	"SLACK_SIGNING_SECRET", "SLACK_BOT_TOKEN", "GITHUB_TOKEN",
}

func (s *ConfigSuite) SetupTest() {
	s.tempDir = s.T().TempDir()

	s.origEnv = make(map[string]string, len(envKeys))
	for _, key := range envKeys {
		s.origEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
}

func (s *ConfigSuite) TearDownTest() {
	for key, value := range s.origEnv {
		if value == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, value)
		}
	}
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDefault() {
	cfg := Default()

	s.Equal(DefaultListenAddr, cfg.ListenAddr)
	s.Equal(DefaultRedisAddr, cfg.RedisAddr)
	s.Equal([]string{"OWASP"}, cfg.GithubOrgs)
	s.Equal(DefaultCacheTTL, cfg.CacheTTL.Std())
	s.Equal(DefaultConversationTTL, cfg.ConversationTTL.Std())
}

func (s *ConfigSuite) TestLoad_MissingFileUsesDefaults() {
	cfg, err := Load(filepath.Join(s.tempDir, "nope.yaml"))
	s.Require().NoError(err)
	s.Equal(DefaultListenAddr, cfg.ListenAddr)
	s.Equal(cfg.CacheTTL, cfg.RefreshInterval, "refresh interval defaults to cache TTL")
}

func (s *ConfigSuite) TestLoad_File() {
	path := filepath.Join(s.tempDir, "lettuce.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(`
listen_addr: ":9090"
redis_addr: "redis:6379"
redis_db: 2
github_orgs: [OWASP, OWASP-BLT]
cache_ttl: 12h
conversation_ttl: 30m
refresh_interval: 6h
`), 0o644))

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal(":9090", cfg.ListenAddr)
	s.Equal("redis:6379", cfg.RedisAddr)
	s.Equal(2, cfg.RedisDB)
	s.Equal([]string{"OWASP", "OWASP-BLT"}, cfg.GithubOrgs)
	s.Equal(12*time.Hour, cfg.CacheTTL.Std())
	s.Equal(30*time.Minute, cfg.ConversationTTL.Std())
	s.Equal(6*time.Hour, cfg.RefreshInterval.Std())
}

func (s *ConfigSuite) TestLoad_BadDuration() {
	path := filepath.Join(s.tempDir, "lettuce.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("cache_ttl: soon\n"), 0o644))

	_, err := Load(path)
	s.Error(err)
}

func (s *ConfigSuite) TestLoad_EnvOverrides() {
	os.Setenv("LETTUCE_LISTEN_ADDR", ":7777")
	os.Setenv("LETTUCE_REDIS_ADDR", "cache:6379")
	os.Setenv("SLACK_SIGNING_SECRET", "sekrit")
	os.Setenv("SLACK_BOT_TOKEN", "xoxb-1")
	os.Setenv("GITHUB_TOKEN", "ghp_x")

	cfg, err := Load("")
	s.Require().NoError(err)
	s.Equal(":7777", cfg.ListenAddr)
	s.Equal("cache:6379", cfg.RedisAddr)
	s.Equal("sekrit", cfg.SlackSigningSecret)
	s.Equal("xoxb-1", cfg.SlackBotToken)
	s.Equal("ghp_x", cfg.GithubToken)
}

func (s *ConfigSuite) TestValidate() {
	cfg := Default()
	s.Error(cfg.Validate(), "secrets missing")

	cfg.SlackSigningSecret = "sekrit"
	s.Error(cfg.Validate(), "bot token missing")

	cfg.SlackBotToken = "xoxb-1"
	s.NoError(cfg.Validate())

	cfg.GithubOrgs = nil
	s.Error(cfg.Validate())
}
