package httpadapter

import (
	"net/http"
	"time"

	"github.com/kirillkom/claimsense/internal/config"
	"github.com/kirillkom/claimsense/internal/core/ports"
	"github.com/kirillkom/claimsense/internal/core/usecase"
	"github.com/kirillkom/claimsense/internal/observability/metrics"
)

const (
	assistantLanguageHeader = "X-Assistant-Language"
	assistantFallbackHeader = "X-Assistant-Fallback"

	uploadQueueWait = 5 * time.Second
	// multipartOverhead leaves room for boundaries and headers around the file part.
	multipartOverhead = 1 << 20
)

// Dependencies are the inbound services the router exposes.
// Exporter and Metrics are optional.
type Dependencies struct {
	Auth      ports.Authenticator
	Claims    ports.ClaimService
	Assistant ports.AssistantService
	Exporter  ports.LedgerExporter
	Metrics   *metrics.HTTPServerMetrics
}

type Router struct {
	cfg       config.Config
	auth      ports.Authenticator
	claims    ports.ClaimService
	assistant ports.AssistantService
	exporter  ports.LedgerExporter
	metrics   *metrics.HTTPServerMetrics
	pace      usecase.RevealPacer
}

func NewRouter(cfg config.Config, deps Dependencies) *Router {
	return &Router{
		cfg:       cfg,
		auth:      deps.Auth,
		claims:    deps.Claims,
		assistant: deps.Assistant,
		exporter:  deps.Exporter,
		metrics:   deps.Metrics,
		pace:      usecase.TypingPacer(),
	}
}

// WithRevealPacer replaces the typing cadence used by streamed assistant replies.
func (rt *Router) WithRevealPacer(pace usecase.RevealPacer) *Router {
	rt.pace = pace
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.Handle("POST /v1/auth/login", rateLimitMiddleware(
		http.HandlerFunc(rt.handleLogin),
		rt.cfg.LoginRateLimitRPS,
		rt.cfg.LoginRateLimitBurst,
	))
	mux.Handle("POST /v1/auth/logout", rt.requireSession(rt.handleLogout))
	mux.Handle("GET /v1/session", rt.requireSession(rt.handleSession))
	mux.Handle("GET /v1/dashboard", rt.requireSession(rt.handleDashboard))

	mux.Handle("POST /v1/claims/extract", backpressureMiddleware(
		rt.requireSession(rt.handleExtract),
		rt.cfg.ExtractionMaxConcurrent,
		uploadQueueWait,
	))
	mux.Handle("POST /v1/claims/verify-identity", rt.requireSession(rt.handleVerifyIdentity))
	mux.Handle("POST /v1/claims/evaluate", rt.requireSession(rt.handleEvaluate))
	mux.Handle("POST /v1/claims", rt.requireSession(rt.handleSubmit))
	mux.Handle("GET /v1/claims", rt.requireSession(rt.handleListClaims))
	mux.Handle("GET /v1/claims/export.xlsx", rt.requireSession(rt.handleExportClaims))

	mux.Handle("POST /v1/assistant/chat", rt.requireSession(rt.handleAssistantChat))

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	if len(rt.cfg.CORSAllowedOrigins) > 0 {
		handler = corsMiddleware(rt.cfg.CORSAllowedOrigins)(handler)
	}
	return handler
}
