package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Xausdorf/mattermost-governance/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// AccountHeader carries the invoking account id.
	AccountHeader = "X-Account-ID"

	shutdownTimeout = 5 * time.Second
)

type Config struct {
	Addr string
}

// LoadConfig reads HTTP_ADDR.
func LoadConfig() Config {
	var cfg Config

	cfg.Addr = os.Getenv("HTTP_ADDR")
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	return cfg
}

type Server struct {
	cfg    Config
	gov    *usecase.Governance
	logger *slog.Logger
}

func NewServer(cfg Config, gov *usecase.Governance, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		gov:    gov,
		logger: usecase.ResolveLogger(logger),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/polls", s.handleCreatePoll)
	r.Get("/polls/{pollID}", s.handleGetPoll)
	r.With(requireAccount).Post("/polls/{pollID}/votes", s.handleVote)
	r.With(requireAccount).Post("/polls/{pollID}/withdrawal", s.handleWithdraw)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("governance api listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down governance api")
		return srv.Shutdown(shutdownCtx)
	}
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
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
