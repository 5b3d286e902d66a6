package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"site_cms/internal/app"
	"site_cms/internal/config"
	"site_cms/internal/lib/logger/handlers/slogpretty"
	"site_cms/internal/lib/logger/sl"
	"site_cms/internal/storage/postgresql"

	"github.com/spf13/cobra"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "site_cms",
		Short: "Content management backend for the company site",
		RunE:  serve,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config (falls back to CONFIG_PATH)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations",
			RunE:  migrateDB,
		},
		&cobra.Command{
			Use:   "sweep",
			Short: "Retry blob deletions left in the removal journal",
			RunE:  sweep,
		},
	)

	root.CompletionOptions.HiddenDefaultCmd = true

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	log.Info("starting site_cms", slog.String("env", cfg.Env))

	application, err := app.New(cmd.Context(), log, cfg)
	if err != nil {
		log.Error("failed to init application", sl.Err(err))
		return err
	}

	go func() {
		removed, pending, err := application.Remover.Sweep(context.Background())
		if err != nil {
			log.Error("startup sweep failed", sl.Err(err))
			return
		}
		if removed > 0 || pending > 0 {
			log.Info("startup sweep finished", slog.Int("removed", removed), slog.Int("pending", pending))
		}
	}()

	go func() {
		application.HTTPServer.MustRun()
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	<-stop
	application.Stop(context.Background())

	log.Info("Gracefully stopped")

	return nil
}

func migrateDB(_ *cobra.Command, _ []string) error {
	cfg := config.MustLoad(configPath)
	log := setupLogger(cfg.Env)

	version, err := postgresql.Migrate(cfg.DSN)
	if err != nil {
		log.Error("migration failed", sl.Err(err))
		return err
	}

	log.Info("database migrated", slog.Uint64("version", uint64(version)))

	return nil
}

func sweep(cmd *cobra.Command, _ []string) error {
	cfg := config.MustLoad(configPath)
	log := setupLogger(cfg.Env)

	remover, closeFn, err := app.NewSweeper(log, cfg)
	if err != nil {
		log.Error("failed to init sweeper", sl.Err(err))
		return err
	}
	defer closeFn()

	removed, pending, err := remover.Sweep(cmd.Context())
	if err != nil {
		log.Error("sweep failed", sl.Err(err))
		return err
	}

	log.Info("sweep finished", slog.Int("removed", removed), slog.Int("pending", pending))

	return nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
