package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/claimsense/internal/config"
	"github.com/kirillkom/claimsense/internal/core/ports"
	"github.com/kirillkom/claimsense/internal/core/usecase"
	"github.com/kirillkom/claimsense/internal/infrastructure/assistant"
	"github.com/kirillkom/claimsense/internal/infrastructure/directory"
	"github.com/kirillkom/claimsense/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/claimsense/internal/infrastructure/extraction"
	"github.com/kirillkom/claimsense/internal/infrastructure/keepalive"
	"github.com/kirillkom/claimsense/internal/infrastructure/queue/nats"
	"github.com/kirillkom/claimsense/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/claimsense/internal/infrastructure/resilience"
	"github.com/kirillkom/claimsense/internal/infrastructure/session"
	"github.com/kirillkom/claimsense/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/claimsense/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Directory *directory.Directory
	Sessions  *session.MemoryStore
	Ledger    ports.ClaimLedger
	Exporter  ports.LedgerExporter
	Metrics   *metrics.HTTPServerMetrics
	Prober    *keepalive.Prober

	AuthUC      ports.Authenticator
	ClaimUC     ports.ClaimService
	AssistantUC ports.AssistantService

	closeFn func()
}

// New wires the API process. Metrics may be nil.
func New(ctx context.Context, cfg config.Config, m *metrics.HTTPServerMetrics) (*App, error) {
	dir, err := directory.Load(cfg.DirectoryPath)
	if err != nil {
		return nil, fmt.Errorf("load user directory: %w", err)
	}

	tokens, err := session.NewJWTIssuer(cfg.SessionSigningKey)
	if err != nil {
		return nil, fmt.Errorf("init session tokens: %w", err)
	}
	if cfg.SessionSigningKey == "" {
		slog.Warn("session_signing_key_generated", "detail", "sessions will not survive a restart")
	}
	sessions := session.NewMemoryStore()

	executor := resilience.NewExecutor(cfg.Resilience)
	if m != nil {
		executor.OnStateChange(m.SetCircuitOpen)
	}

	extractor := extraction.New(cfg.ExtractionURL, cfg.ExtractionTimeout, executor)
	if m != nil {
		extractor.WithObserver(m.RecordExtraction)
	}
	assistantClient := assistant.New(cfg.AssistantURL, cfg.AssistantTimeout, executor)

	ledger, closeLedger, err := OpenLedger(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var publisher ports.ClaimEventPublisher = nats.NoopPublisher{}
	closeQueue := func() {}
	if cfg.NATSURL != "" {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor})
		if err != nil {
			closeLedger()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		publisher = queue
		closeQueue = queue.Close
	}

	var sink keepalive.StatusSink
	if m != nil {
		sink = m.SetUpstreamUp
	}
	prober := keepalive.NewProber([]keepalive.Target{
		{Name: "extraction", URL: cfg.ExtractionURL},
		{Name: "assistant", URL: cfg.AssistantURL},
	}, cfg.KeepAliveInterval, sink)

	verifier := session.NewFixedCodeVerifier(cfg.DemoOTP)

	return &App{
		Config: cfg,

		Directory: dir,
		Sessions:  sessions,
		Ledger:    ledger,
		Exporter:  xlsx.NewExporter(),
		Metrics:   m,
		Prober:    prober,

		AuthUC:      usecase.NewAuthUseCase(dir, verifier, sessions, tokens, cfg.SessionTTL),
		ClaimUC:     usecase.NewClaimUseCase(dir, extractor, ledger, publisher),
		AssistantUC: usecase.NewAssistantUseCase(assistantClient),

		closeFn: func() {
			closeQueue()
			closeLedger()
		},
	}, nil
}

// OpenLedger opens the configured claim ledger backend.
func OpenLedger(ctx context.Context, cfg config.Config) (ports.ClaimLedger, func(), error) {
	switch cfg.LedgerBackend {
	case config.LedgerBackendPostgres:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := ensureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return postgres.NewClaimLedgerRepository(db), func() { _ = db.Close() }, nil
	case config.LedgerBackendLocalFS, "":
		storage, err := localfs.New(cfg.StoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("init ledger storage: %w", err)
		}
		return localfs.NewClaimLedger(storage), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return postgres.EnsureSchema(ctx, db)
}

type Worker struct {
	Config     config.Config
	Subscriber ports.ClaimEventSubscriber
	Reviewer   ports.ClaimReviewer

	closeFn func()
}

// NewWorker wires the review worker. It requires NATS.
func NewWorker(cfg config.Config) (*Worker, error) {
	if cfg.NATSURL == "" {
		return nil, fmt.Errorf("worker requires NATS_URL")
	}
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(cfg.Resilience),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}
	return &Worker{
		Config:     cfg,
		Subscriber: queue,
		Reviewer:   usecase.NewReviewUseCase(),
		closeFn:    queue.Close,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func (w *Worker) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
