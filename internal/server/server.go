// Package server exposes a notification center over HTTP: a browser page,
// a JSON API and a websocket stream of lifecycle events.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/toastui/internal/center"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/theme"
)

// Paths served by the router.
const (
	PathPage    = "/"
	PathSurface = "/surface"
	PathTheme   = "/theme.css"
	PathToasts  = "/api/toasts"
	PathStream  = "/ws"
)

const shutdownTimeout = 5 * time.Second

// Server serves one center.
type Server struct {
	center *center.Center
	themes *theme.Loader
	logger *slog.Logger

	mu      sync.RWMutex
	config  *config.DaemonConfig
	limiter *rate.Limiter // nil when creation is unlimited

	upgrader websocket.Upgrader
	router   chi.Router
}

// New creates a server for c. themes may be nil, in which case pages carry
// no stylesheet.
func New(c *center.Center, themes *theme.Loader, cfg *config.DaemonConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}

	s := &Server{
		center: c,
		themes: themes,
		logger: logger,
		config: cfg,
	}
	s.limiter = newLimiter(cfg)
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get(PathPage, s.uiPage)
	r.Get(PathSurface, s.uiSurface)
	r.Get(PathTheme, s.uiTheme)

	r.Get(PathToasts, s.apiListToasts)
	r.With(s.limitCreate).Post(PathToasts, s.apiCreateToast)
	r.Delete(PathToasts, s.apiClearToasts)
	r.Get(PathToasts+"/{id}", s.apiGetToast)
	r.Delete(PathToasts+"/{id}", s.apiDismissToast)

	r.Get(PathStream, s.wsStream)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// UpdateConfig applies reloaded settings: color scheme, allowed origins and
// rate limit. A changed listen address takes effect on restart.
func (s *Server) UpdateConfig(cfg *config.DaemonConfig) {
	if cfg == nil {
		return
	}
	s.mu.Lock()
	s.config = cfg
	s.limiter = newLimiter(cfg)
	s.mu.Unlock()
}

func newLimiter(cfg *config.DaemonConfig) *rate.Limiter {
	if cfg.Server.RateLimit <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.Burst)
}

// limitCreate rejects toast creation beyond the configured rate.
func (s *Server) limitCreate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		limiter := s.limiter
		s.mu.RUnlock()

		if limiter != nil && !limiter.Allow() {
			s.logger.Warn("toast creation rate limited", "remote", r.RemoteAddr)
			w.Header().Set("Retry-After", "1")
			s.writeError(w, http.StatusTooManyRequests, "too many toasts")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) currentConfig() *config.DaemonConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.currentConfig().Server.Listen
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
