// Package server implements the lesson preview web server behind `lore serve`.
// It renders lessons as HTML pages, exposes a read-only JSON API over the
// catalog and publishes Prometheus metrics. The server never writes to the
// content tree.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/render"
)

// Options tunes a Server beyond what lore.yml configures.
type Options struct {
	Addr  string // Listen address, overrides serve.addr from lore.yml when set
	Debug bool   // Human-readable debug logging instead of JSON
}

// Server serves a content repository over HTTP. The tree is rescanned on
// every request, so edits show up on refresh without a file watcher.
type Server struct {
	cfg    *config.Config
	log    *zap.SugaredLogger
	html   *render.HTML
	engine *gin.Engine
	addr   string
}

// New builds a server for the given content repository.
func New(cfg *config.Config, opts Options) (*Server, error) {
	log, err := newLogger(opts.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	addr := opts.Addr
	if addr == "" {
		addr = cfg.Serve.Addr
	}

	s := &Server{
		cfg:  cfg,
		log:  log,
		html: render.NewHTML(),
		addr: addr,
	}
	s.engine = s.newRouter()

	return s, nil
}

// Addr returns the address the server will listen on.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the HTTP handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) newRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), requestMetrics())

	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", s.handleIndex)
	r.GET("/lessons/:level/:slug", s.handleLesson)
	r.GET("/lessons/:level/:slug/*file", s.handleLessonFile)

	api := r.Group("/api")
	{
		api.GET("/lessons", s.handleAPILessons)
		api.GET("/lessons/:level/:slug", s.handleAPILesson)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully with a 10
// second drain timeout. A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("serving lessons", "addr", s.addr, "root", s.cfg.Root)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	s.log.Infow("stopped")
	return nil
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
