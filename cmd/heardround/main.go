// Package main runs the fleet combat bot. It wires together configuration,
// the optional snapshot database, the Discord bot, and the telnet hot-seat.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/heardround/internal/config"
	"github.com/cory-johannsen/heardround/internal/frontend/discord"
	"github.com/cory-johannsen/heardround/internal/frontend/handlers"
	"github.com/cory-johannsen/heardround/internal/frontend/telnet"
	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/game/command"
	"github.com/cory-johannsen/heardround/internal/gameserver"
	"github.com/cory-johannsen/heardround/internal/observability"
	"github.com/cory-johannsen/heardround/internal/server"
	"github.com/cory-johannsen/heardround/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/heardround.yaml", "path to configuration file")
	healthInterval := flag.Duration("db-health", 30*time.Second, "database health check interval")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting fleet combat bot", zap.String("mode", cfg.Server.Mode))

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	// Snapshots are optional; without a database encounters do not survive a restart.
	var (
		store   gameserver.Store
		resumer discord.Resumer
	)
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		repo := postgres.NewEncounterRepository(pool.DB())
		store, resumer = repo, repo

		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				_ = pool.MonitorHealth(ctx, *healthInterval, 5*time.Second, logger)
				return nil
			},
			StopFn: pool.Close,
		})
	}

	engine := combat.NewEngine()
	registry := command.DefaultRegistry()

	if cfg.Server.RunsDiscord() {
		encounters := gameserver.NewEncounterHandler(engine, store, logger.Named("discord"))
		bot, err := discord.NewBot(cfg.Discord, registry, encounters, resumer, logger.Named("discord"))
		if err != nil {
			logger.Fatal("creating discord bot", zap.Error(err))
		}
		lifecycle.Add("discord", bot)
	}

	if cfg.Server.RunsTelnet() {
		// A terminal session cannot be resumed after a restart, so hot-seat
		// encounters are not stored.
		encounters := gameserver.NewEncounterHandler(engine, nil, logger.Named("telnet"))
		hotseat := handlers.NewHotseatHandler(registry, encounters, logger.Named("telnet"))
		lifecycle.Add("telnet", telnet.NewAcceptor(cfg.Telnet, hotseat, logger.Named("telnet")))
	}

	logger.Info("bot initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Bool("discord", cfg.Server.RunsDiscord()),
		zap.Bool("telnet", cfg.Server.RunsTelnet()),
		zap.Bool("snapshots", cfg.Database.Enabled),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
