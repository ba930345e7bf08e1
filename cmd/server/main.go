package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/bruce4585/yt-transcribe/internal/config"
	"github.com/bruce4585/yt-transcribe/internal/httpapi"
	"github.com/bruce4585/yt-transcribe/internal/jobs"
	"github.com/bruce4585/yt-transcribe/internal/resolver"
	"github.com/bruce4585/yt-transcribe/internal/transcriber"
)

func main() {
	app := &cli.App{
		Name:  "yt-transcribe",
		Usage: "turn a YouTube URL into a transcript via external audio and speech-to-text APIs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "HTTP listen address (overrides LISTEN_ADDR)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "path to an env file loaded before configuration",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	// Missing .env is fine; real deployments use process environment.
	_ = godotenv.Load(c.String("env-file"))

	log, err := newLogger(c.Bool("debug"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	registry := jobs.NewRegistry(log)
	res := resolver.New(cfg.Resolver, log)
	backend := transcriber.NewClient(cfg.Backend, log)

	srv := httpapi.NewServer(res, backend, registry,
		httpapi.WithDefaultLanguage(cfg.Server.DefaultLanguage),
		httpapi.WithLogger(log),
	)

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.Jobs.SweepExpr, func() {
		registry.Sweep(cfg.Jobs.Retention)
	}); err != nil {
		return fmt.Errorf("schedule job sweep: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	addr := cfg.Server.ListenAddr
	if c.String("addr") != "" {
		addr = c.String("addr")
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
