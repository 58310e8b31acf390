// Package server exposes the dashboard over HTTP: the HTML page, the chart
// images, the bubble hit-test endpoint and JSON views of the aggregates.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jgoulah/pumplog/internal/dashboard"
)

const hitPath = "/api/bubbles/hit"

// Options configures the HTTP surface
type Options struct {
	Unit   string
	Width  int // default chart width when the request has none
	Height int
	// RefreshOnLoad rebuilds the snapshot on every page view. Without it
	// the page shows whatever the refresh loop built last.
	RefreshOnLoad bool
	Logger        *zap.Logger
}

// Server serves one dashboard
type Server struct {
	dash   *dashboard.Dashboard
	opts   Options
	log    *zap.Logger
	engine *gin.Engine
}

// New builds the router
func New(d *dashboard.Dashboard, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Unit == "" {
		opts.Unit = "ml"
	}
	if opts.Width <= 0 {
		opts.Width = 600
	}
	if opts.Height <= 0 {
		opts.Height = 300
	}

	s := &Server{dash: d, opts: opts, log: opts.Logger}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CorrelationIDMiddleware(s.log))
	router.SetHTMLTemplate(template.Must(template.New("index").Parse(indexHTML)))

	router.GET("/", s.handleIndex)
	router.GET("/charts/:file", s.handleChart)
	router.GET(hitPath, s.handleHit)
	router.GET("/api/today", s.handleToday)
	router.GET("/api/week", s.handleWeek)
	router.POST("/api/refresh", s.handleRefresh)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine = router
	return s
}

// Handler returns the router for use with httptest or a custom server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serving http: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return <-errCh
}
