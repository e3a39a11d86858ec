package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"spelling-bee/internal/config"
	"spelling-bee/internal/httpapi"
	"spelling-bee/internal/logging"
	"spelling-bee/internal/quiz"
	"spelling-bee/internal/roster"
	"spelling-bee/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	fs := pflag.NewFlagSet("spellbee-server", pflag.ExitOnError)
	cfg.BindFlags(fs)
	_ = fs.Parse(os.Args[1:])
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	words := quiz.DefaultWordList()
	if len(cfg.Words) > 0 {
		if words, err = quiz.NewWordList(cfg.Words); err != nil {
			return err
		}
	}

	policy, err := roster.ParseImportPolicy(cfg.ImportPolicy)
	if err != nil {
		return err
	}

	rosterService := roster.NewService(repo)
	controller := quiz.NewController(rosterService, words, logger)
	sessions := quiz.NewSessionStore(cfg.SessionTTL)
	api := httpapi.NewAPI(rosterService, controller, sessions, httpapi.Options{
		SessionSecret:     []byte(cfg.SessionSecret),
		AdminPasswordHash: cfg.AdminPasswordHash,
		ImportPolicy:      policy,
		Logger:            logger,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(api),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sessions.Run(gctx, cfg.SweepInterval)
	})
	g.Go(func() error {
		logger.Info("spellbee-server listening",
			"addr", cfg.Addr,
			"db_driver", cfg.DBDriver,
			"words", words.Len(),
			"admin_auth", cfg.AdminPasswordHash != "",
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
