package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/FireRedz/gulag/internal/bancho"
	"github.com/FireRedz/gulag/internal/beatmap"
	"github.com/FireRedz/gulag/internal/commands"
	"github.com/FireRedz/gulag/internal/config"
	"github.com/FireRedz/gulag/internal/db"
	"github.com/FireRedz/gulag/internal/geoloc"
	"github.com/FireRedz/gulag/internal/web"
)

const ConfigPath = "config/bancho.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config
	cfgPath := ConfigPath
	if p := os.Getenv("GULAG_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Configure slog
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	slog.Info("gulag starting", "addr", cfg.Addr, "domain", cfg.Domain)

	// Connect to database
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	// Run migrations
	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// Assemble the session server
	srv := bancho.NewServer(cfg, database, geoloc.New(), beatmap.NewSource(database.Pool()))
	srv.SetCommandProcessor(commands.New(srv, cfg.CommandPrefix))

	if err := srv.LoadChannels(ctx); err != nil {
		return fmt.Errorf("loading channels: %w", err)
	}

	front := web.NewServer(cfg, srv)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return front.Run(gctx)
	})

	g.Go(func() error {
		return front.RunMetrics(gctx)
	})

	g.Go(func() error {
		return srv.SweepInactive(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
