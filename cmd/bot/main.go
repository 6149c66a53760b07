// Package main is the entry point for the Daily Picks Bot.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"daily-picks-bot/internal/bot"
	"daily-picks-bot/internal/cache"
	"daily-picks-bot/internal/config"
	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/pkg/db"
	"daily-picks-bot/internal/pkg/kv"
	"daily-picks-bot/internal/pkg/lock"
	"daily-picks-bot/internal/provider"
	"daily-picks-bot/internal/repository"
	"daily-picks-bot/internal/resolver"
	"daily-picks-bot/internal/scoring"
	"daily-picks-bot/internal/service"
)

const cacheSweepInterval = time.Hour

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Info().Str("store", cfg.Store.Driver).Str("log_level", level.String()).Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closer, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close store")
		}
	}()

	clock := service.NewClock(time.Now, time.Local)

	registry, err := buildRegistry(cfg.Provider.Sports)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build sport registry")
	}

	httpClient := &http.Client{Timeout: cfg.Provider.Timeout}
	scoreCache := cache.New(store, &cache.Config{
		Prefix:       "scores",
		Grace:        cfg.Cache.Grace,
		CompletedTTL: cfg.Cache.CompletedTTL,
	})
	scoreboard := provider.NewScoreboard(
		registry,
		provider.NewESPNClient(cfg.Provider.ESPNBaseURL, httpClient),
		provider.NewOddsClient(cfg.Provider.OddsBaseURL, cfg.Provider.OddsAPIKey, httpClient),
		scoreCache,
		provider.TTLs{
			Live:      cfg.Cache.LiveTTL,
			Final:     cfg.Cache.DefaultTTL,
			Odds:      cfg.Cache.DefaultTTL,
			Completed: cfg.Cache.CompletedTTL,
		},
	)

	states := repository.NewStateRepository(store).WithDefaultMode(scoring.ParseMode(cfg.Scoring.DefaultMode))
	slates := service.NewSlateService(scoreboard, repository.NewSlateRepository(store), registry.Codes(), clock)
	res := resolver.New(scoreboard, repository.NewResultRepository(store)).WithClock(clock.Now)
	engine := scoring.New(&scoring.Rules{
		MinPicksForPerfect:     cfg.Scoring.MinPicksForPerfect,
		MinPicksForNearPerfect: cfg.Scoring.MinPicksForNearPerfect,
	})
	cards := service.NewCardService(states, slates, res, engine, lock.NewUserLock(), clock)

	poller := service.NewPoller(scoreboard, registry.Codes(), cards, clock, service.PollIntervals{
		Live:    cfg.Poll.LiveInterval,
		Results: cfg.Poll.ResultsInterval,
		Idle:    cfg.Poll.IdleInterval,
	}).WithSweeper(scoreCache, cacheSweepInterval)

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:     cfg,
		Cards:      cards,
		Scoreboard: scoreboard,
		Poller:     poller,
		Clock:      clock,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	poller.Start(ctx)
	go telegramBot.Start()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	poller.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openStore opens the configured kv backend.
func openStore(ctx context.Context, cfg *config.Config) (kv.Store, io.Closer, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory store, state is lost on restart")
		return kv.NewMemoryStore(), closerFunc(func() error { return nil }), nil
	case config.DriverBolt:
		s, err := kv.OpenBolt(cfg.Store.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.Store.BoltPath).Msg("Opened bolt store")
		return s, s, nil
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewKVRepository(pool.Pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		return repo, closerFunc(func() error { pool.Close(); return nil }), nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// buildRegistry keeps the configured sports from the default set.
func buildRegistry(codes []string) (*provider.Registry, error) {
	if len(codes) == 0 {
		return provider.NewDefaultRegistry(), nil
	}
	known := make(map[model.Sport]provider.Sport)
	for _, s := range provider.DefaultSports() {
		known[s.Code] = s
	}

	registry := provider.NewRegistry()
	for _, code := range codes {
		s, ok := known[model.Sport(strings.ToUpper(strings.TrimSpace(code)))]
		if !ok {
			return nil, fmt.Errorf("%w: %s", provider.ErrUnknownSport, code)
		}
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}
	log.Info().Int("sport_count", registry.Count()).Msg("Sports registered")
	return registry, nil
}
