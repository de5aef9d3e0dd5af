// Package server exposes the feed search over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/scipunch/feedsearch/config"
	"github.com/scipunch/feedsearch/fetcher/types"
)

type Server struct {
	cfg        config.Config
	fetcher    types.FeedFetcher
	echo       *echo.Echo
	metrics    *metrics
	accessLog  *zap.Logger
	httpSrv    *http.Server
	metricsSrv *http.Server
}

type Option func(*Server)

// WithAccessLogger enables the per-request log
func WithAccessLogger(l *zap.Logger) Option {
	return func(s *Server) { s.accessLog = l }
}

// WithRegistry registers metrics in reg instead of a private registry
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.metrics = newMetrics(reg) }
}

func New(cfg config.Config, f types.FeedFetcher, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		fetcher: f,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newMetrics(prometheus.NewRegistry())
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(requestID())
	e.Use(middleware.Recover())
	if s.accessLog != nil {
		e.Use(accessLog(s.accessLog))
	}
	if cfg.RateLimit > 0 {
		e.Use(rateLimit(cfg.RateLimit))
	}

	e.GET("/rss", s.handleRSS)

	s.echo = e

	// Both servers exist before Start so Shutdown never races with it
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		// leave room for a full upstream fetch plus rendering
		WriteTimeout: cfg.FetchTimeout.Duration + 10*time.Second,
	}
	if cfg.MetricsPort > 0 {
		s.metricsSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler:           s.metrics.handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return s
}

// Handler returns the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called. The metrics listener, if configured,
// runs alongside the main one.
func (s *Server) Start() error {
	if s.metricsSrv != nil {
		go func() {
			slog.Info("serving metrics", "addr", s.metricsSrv.Addr)
			if err := s.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
	}

	slog.Info("starting server", "addr", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	errs := []error{s.httpSrv.Shutdown(ctx)}
	if s.metricsSrv != nil {
		errs = append(errs, s.metricsSrv.Shutdown(ctx))
	}
	if s.accessLog != nil {
		// stderr sync fails on some platforms, nothing to do about it
		_ = s.accessLog.Sync()
	}
	return errors.Join(errs...)
}
