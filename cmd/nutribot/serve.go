package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/nutribot/internal/db"
	"github.com/vbonduro/nutribot/internal/feedback"
	"github.com/vbonduro/nutribot/internal/logging"
	"github.com/vbonduro/nutribot/internal/recommend"
	"github.com/vbonduro/nutribot/internal/service"
	"github.com/vbonduro/nutribot/internal/store"
	"github.com/vbonduro/nutribot/internal/web"
	"github.com/vbonduro/nutribot/internal/web/templates"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	cat, err := loadCatalog(cfg)
	if err != nil {
		logger.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		return err
	}

	var sink *service.FeedbackService
	if cfg.SinkEnabled {
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			return err
		}
		defer closeDB(database, logger.Error)
		sink = service.NewFeedbackService(store.NewFeedbackStore(database), logger)
	}

	server := web.NewServer(web.Deps{
		Engine:     recommend.New(cat),
		Feedback:   feedback.NewClient(cfg.FeedbackURL, cfg.FeedbackTimeout, logger),
		Sink:       sink,
		Templates:  templates.FS,
		ThinkDelay: cfg.ThinkDelay,
	}, logger)
	httpServer := server.HTTPServer(cfg.ListenAddr)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", cfg.ListenAddr,
			"snacks", cat.Len(),
			"sink", cfg.SinkEnabled,
			"feedback_url", cfg.FeedbackURL,
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return err
	}
	return nil
}

func closeDB(database *sql.DB, logError func(msg string, args ...any)) {
	if err := database.Close(); err != nil {
		logError("failed to close database", "error", err)
	}
}
