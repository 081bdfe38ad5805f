package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/wordgame-go/internal/api"
	"github.com/mcoot/wordgame-go/internal/config"
	"github.com/mcoot/wordgame-go/internal/factory"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	var (
		configFile string
		envFile    string
	)

	cmd := &cobra.Command{
		Use:           "wordgame-server",
		Short:         "Serve single-player and two-player word games over HTTP and websockets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, cfg, logger); err != nil {
				logger.Error("server failed", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "Config file (yaml, json or toml)")
	flags.StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading WORDGAME_* variables")
	flags.String("addr", ":8080", "Listen address")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("storage", config.StorageMemory, "Storage backend: memory or redis")
	flags.String("redis-url", "", "Redis URL when --storage=redis")
	flags.String("archive", "", "Sqlite results database path (empty keeps results in memory)")
	flags.String("dictionary", "", "Word list file, one word per line")

	for key, flag := range map[string]string{
		config.KeyAddr:           "addr",
		config.KeyLogLevel:       "log-level",
		config.KeyStorageType:    "storage",
		config.KeyRedisURL:       "redis-url",
		config.KeyArchivePath:    "archive",
		config.KeyDictionaryPath: "dictionary",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	app, err := factory.New(ctx, factory.FromSettings(cfg, logger))
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close storage", slog.String("error", err.Error()))
		}
	}()
	logger.Info("dictionary loaded", slog.Int("words", app.DictionaryService.WordCount()))

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		RoomController: app.RoomController,
		Archive:        app.Archive,
		WSHandler:      app.WSHandler,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.Addr
	server := api.NewServer(router, serverConfig, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		return app.RoomController.RunSweeper(gctx, cfg.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
