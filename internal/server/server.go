// Package server provides the HTTP API of the career analyzer: the stateless
// collaborator endpoints (parsing, export, narrative) and the session-scoped
// categorization workflow.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-analyzer/internal/catalog"
	"github.com/jonathan/career-analyzer/internal/config"
	"github.com/jonathan/career-analyzer/internal/metrics"
	"github.com/jonathan/career-analyzer/internal/narrative"
	"github.com/jonathan/career-analyzer/internal/parsing"
	"github.com/jonathan/career-analyzer/internal/rendering"
	"github.com/jonathan/career-analyzer/internal/server/middleware"
	"github.com/jonathan/career-analyzer/internal/server/ratelimit"
	"github.com/jonathan/career-analyzer/internal/session"
	"github.com/jonathan/career-analyzer/internal/workflow"
)

// Deps are the collaborators of a Server. Nil fields get defaults built from Config.
type Deps struct {
	Config    *config.Config
	Session   *config.SessionConfig
	Parser    *parsing.Parser
	Narrative *narrative.Service
	PDF       rendering.PDFRenderer
	Metrics   *metrics.Metrics
	Limiter   *ratelimit.Limiter
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	handler    http.Handler

	sessions    *session.Manager
	jwtService  *JWTService
	parser      *parsing.Parser
	narrative   *narrative.Service
	pdf         rendering.PDFRenderer
	metrics     *metrics.Metrics
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a new server instance
func New(d Deps) (*Server, error) {
	if d.Config == nil {
		cfg := config.Default()
		d.Config = &cfg
	}
	if err := d.Config.Validate(); err != nil {
		return nil, err
	}
	if d.Session == nil {
		sc, err := config.NewSessionConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create session config: %w", err)
		}
		d.Session = sc
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Parser == nil {
		d.Parser = parsing.New(d.Config.MaxUploadBytes, d.Logger)
	}
	if d.Narrative == nil {
		d.Narrative = narrative.New(nil, d.Logger)
	}
	if d.PDF == nil {
		d.PDF = rendering.NewChromePDF(d.Config.PDFConcurrency, time.Duration(d.Config.ChromeTimeout), d.Logger)
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Limiter == nil {
		d.Limiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	}
	if d.Session.Ephemeral {
		d.Logger.Warn("SESSION_SECRET not set, using a random secret; session tokens will not survive a restart")
	}

	s := &Server{
		cfg:         d.Config,
		jwtService:  NewJWTService(d.Session),
		parser:      d.Parser,
		narrative:   d.Narrative,
		pdf:         d.PDF,
		metrics:     d.Metrics,
		rateLimiter: d.Limiter,
		validate:    catalog.NewValidator(),
		logger:      d.Logger,
		now:         d.Clock,
	}
	s.sessions = session.NewManager(session.Options{
		TTL:     time.Duration(d.Config.SessionTTL),
		Factory: s.newWorkflow,
		Logger:  d.Logger,
		Gauge:   d.Metrics.ActiveSessions,
		Clock:   d.Clock,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Collaborator endpoints
	mux.HandleFunc("POST /api/parse-resume", s.handleParseResume)
	mux.HandleFunc("POST /api/export/{format}", s.handleExport)
	mux.HandleFunc("POST /api/narrative", s.handleNarrative)

	// Catalogs for clients building the onboarding and bin views
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)

	// Workflow sessions
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	authed := func(pattern string, h sessionHandler) {
		mux.Handle(pattern, auth(s.withSession(h)))
	}
	authed("GET /api/session", s.handleGetSession)
	authed("DELETE /api/session", s.handleDeleteSession)
	authed("POST /api/session/upload", s.handleUpload)
	authed("POST /api/session/back", s.handleBack)
	authed("POST /api/session/preview/bullets", s.handleAddBullet)
	authed("PUT /api/session/preview/bullets/{id}", s.handleEditBullet)
	authed("DELETE /api/session/preview/bullets/{id}", s.handleDeletePreviewBullet)
	authed("POST /api/session/preview/confirm", s.handleConfirmPreview)
	authed("POST /api/session/drag/start", s.handleDragStart)
	authed("POST /api/session/drag/end", s.handleDragEnd)
	authed("POST /api/session/bins/{bin_id}/bullets", s.handleMove)
	authed("DELETE /api/session/bins/{bin_id}/bullets/{id}", s.handleRemoveFromBin)
	authed("POST /api/session/bullets/{id}/duplicate", s.handleDuplicate)
	authed("DELETE /api/session/bullets/{id}", s.handleDeleteDuplicate)
	authed("POST /api/session/complete", s.handleComplete)
	authed("PUT /api/session/onboarding", s.handleOnboarding)
	authed("POST /api/session/narrative", s.handleSessionNarrative)
	authed("GET /api/session/export/{format}", s.handleSessionExport)
	authed("POST /api/session/reset", s.handleReset)

	s.handler = s.withRecover(s.withMetrics(s.withRateLimit(s.withLogging(s.withCORS(mux)))))
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", d.Config.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      2 * time.Minute, // PDF rendering and model calls
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Sessions exposes the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Run serves until ctx is canceled, then shuts down gracefully. The session
// janitor runs alongside the listener.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.sessions.Run(ctx, time.Minute)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		defer s.rateLimiter.Stop()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// Close releases background resources when Run was never called.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

func (s *Server) newWorkflow(sessionID string) *workflow.Workflow {
	return workflow.New(catalog.Bins(),
		workflow.WithClock(s.now),
		workflow.WithObserver(func(from, to workflow.Phase) {
			s.metrics.ObserveTransition(string(from), string(to))
			s.logger.Info("phase transition", "session", sessionID, "from", from, "to", to)
		}),
	)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"sessions":  s.sessions.Len(),
		"narrative": s.narrative.Available(),
	})
}
