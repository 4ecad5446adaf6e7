package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/logging"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "dailyedition-api"

// Trigger starts daily runs and reports on them.
type Trigger interface {
	Submit() (string, error)
	Running() (string, bool)
	Latest() (domain.RunReport, bool)
}

// Options tune the router.
type Options struct {
	AllowedOrigins []string
	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler
	Logger  *slog.Logger
}

type server struct {
	trigger Trigger
	logger  *slog.Logger
}

// NewRouter exposes the trigger surface at the root and under /api.
func NewRouter(trigger Trigger, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &server{trigger: trigger, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS(opts.AllowedOrigins))

	s.routes(r)
	r.Route("/api", s.routes)

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}
	return r
}

func (s *server) routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Post("/run-daily", s.handleRunDaily)
	r.Get("/runs/latest", s.handleLatest)
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type runResponse struct {
	Status  string `json:"status"`
	RunID   string `json:"runId"`
	Message string `json:"message"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{Status: "ok", Service: ServiceName})
}

func (s *server) handleRunDaily(w http.ResponseWriter, r *http.Request) {
	id, err := s.trigger.Submit()
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, runResponse{Status: "busy", RunID: id, Message: "a daily run is already in progress"})
	case err != nil:
		s.logger.Error("run submission failed", "error", err)
		_ = render.Render(w, r, ErrInternal(err))
	default:
		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, runResponse{Status: "started", RunID: id, Message: "daily edition run started in background"})
	}
}

func (s *server) handleLatest(w http.ResponseWriter, r *http.Request) {
	report, ok := s.trigger.Latest()
	if !ok {
		_ = render.Render(w, r, ErrNotFound("no run has finished yet"))
		return
	}
	render.JSON(w, r, report)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down within timeout.
func Serve(ctx context.Context, srv *http.Server, timeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
