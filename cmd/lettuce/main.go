// Package main is the lettuce bot entry point.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/owasp-blt/lettuce/internal/catalog"
	"github.com/owasp-blt/lettuce/internal/config"
	"github.com/owasp-blt/lettuce/internal/conversation"
	"github.com/owasp-blt/lettuce/internal/flowchart"
	"github.com/owasp-blt/lettuce/internal/kv"
	"github.com/owasp-blt/lettuce/internal/slack"
	"github.com/owasp-blt/lettuce/internal/stats"
	"github.com/owasp-blt/lettuce/internal/watcher"
	"github.com/owasp-blt/lettuce/internal/worker"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "lettuce.yaml", "Path to config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	graph := flowchart.New()
	if err := graph.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Broken flowchart graph")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("Shutting down")
		cancel()
	}()

	store := kv.NewRedisStore(cfg.RedisAddr, cfg.RedisDB)
	defer store.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		pingCancel()
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable")
	}
	pingCancel()

	fetcher := catalog.NewFetcher(catalog.FetcherConfig{Token: cfg.GithubToken})
	cache := catalog.NewCache(store, fetcher, cfg.GithubOrgs, cfg.CacheTTL.Std())

	service := worker.New(
		cfg,
		graph,
		conversation.NewStore(store, cfg.ConversationTTL.Std()),
		cache,
		stats.NewRecorder(store),
		slack.NewVerifier(cfg.SlackSigningSecret),
		slack.NewClient(slack.ClientConfig{Token: cfg.SlackBotToken}),
	)

	go service.RunRefreshLoop(ctx, cfg.RefreshInterval.Std())

	startConfigWatcher(*configPath)

	log.Info().Str("version", Version).Strs("orgs", cfg.GithubOrgs).Msg("Starting lettuce bot")
	if err := service.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("HTTP server error")
	}
}

// startConfigWatcher exits the process on config changes so a
// supervisor restarts it with fresh settings.
func startConfigWatcher(configPath string) {
	w, err := watcher.New(configPath, func() {
		log.Warn().Str("path", configPath).Msg("Config file changed, exiting for restart...")
		time.Sleep(100 * time.Millisecond) // Give logs time to flush
		os.Exit(0)
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create config watcher")
		return
	}
	if err := w.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start config watcher")
		return
	}
	log.Info().Str("path", configPath).Msg("Config file watcher started")
}
