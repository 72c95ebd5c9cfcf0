// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dashboard serves the clinical decision support web dashboard: a
// query builder, a run trigger with a results page, a small JSON API over
// the same workflow, the survival figure and Prometheus metrics.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/oncology-cdss/internal/metrics"
	"github.com/pdiddy/oncology-cdss/internal/pipeline"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8501"

const shutdownTimeout = 10 * time.Second

//go:embed templates/*.html
var templateFS embed.FS

// Runner executes one workflow run.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Report, error)
}

// SessionReader reads persisted session records.
type SessionReader interface {
	Sessions(ctx context.Context, sessionID string) ([]types.SessionRecord, error)
	Recent(ctx context.Context, limit int) ([]types.SessionRecord, error)
}

// Config holds dashboard settings.
type Config struct {
	Addr string

	// FigurePath is the survival plot served at /figure.
	FigurePath string

	// APIKey is the model credential. A run is refused while it is missing
	// or still the example placeholder.
	APIKey string
}

// Server is the dashboard HTTP server.
type Server struct {
	cfg      Config
	runner   Runner
	sessions SessionReader
	metrics  *metrics.Collector
	logger   *zap.Logger
	router   *gin.Engine

	// runs share the figure file, so they are serialized.
	runMu sync.Mutex
}

// New builds the server and its routes. sessions and m may be nil.
func New(cfg Config, runner Runner, sessions SessionReader, m *metrics.Collector, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	tmpl, err := template.New("").Funcs(viewFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard templates: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		runner:   runner,
		sessions: sessions,
		metrics:  m,
		logger:   logger.With(zap.String("component", "dashboard")),
	}
	s.router = s.setupRouter(tmpl)
	return s, nil
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRouter(tmpl *template.Template) *gin.Engine {
	router := gin.New()
	router.Use(recovery(s.logger))
	router.Use(requestLogger(s.logger, s.metrics))
	router.SetHTMLTemplate(tmpl)

	router.GET("/", s.index)
	router.POST("/analyze", s.analyzeForm)
	router.GET("/figure", s.figure)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", s.analyzeJSON)
		v1.GET("/sessions", s.listSessions)
		v1.GET("/sessions/:id", s.getSession)
	}

	return router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// A run makes two external lookups and renders a figure.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("dashboard server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	return nil
}
