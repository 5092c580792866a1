package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/kirillkom/claimsense/internal/adapters/http"
	"github.com/kirillkom/claimsense/internal/bootstrap"
	"github.com/kirillkom/claimsense/internal/config"
	"github.com/kirillkom/claimsense/internal/observability/logging"
	"github.com/kirillkom/claimsense/internal/observability/metrics"
)

const sessionSweepInterval = 5 * time.Minute

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	logging.Install("api", cfg.LogLevel)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, metrics.NewHTTPServerMetrics("api"))
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	go app.Sessions.RunSweeper(ctx, sessionSweepInterval)
	go app.Prober.Run(ctx)

	router := httpadapter.NewRouter(cfg, httpadapter.Dependencies{
		Auth:      app.AuthUC,
		Claims:    app.ClaimUC,
		Assistant: app.AssistantUC,
		Exporter:  app.Exporter,
		Metrics:   app.Metrics,
	}).Handler()

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ExtractionTimeout + 30*time.Second,
		// Streamed assistant replies reveal one rune every ~30ms.
		WriteTimeout: cfg.ExtractionTimeout + 2*time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening",
			"port", cfg.APIPort,
			"ledger_backend", cfg.LedgerBackend,
			"events", cfg.NATSURL != "",
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
