package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/handlers"
	"github.com/akolanti/ragchain/internal/metrics"
	"github.com/akolanti/ragchain/internal/middleware"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

type Server struct {
	http   *http.Server
	logger *logger_i.Logger
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func NewRouter(h *handlers.JobHandler, mw *middleware.Middleware) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/chat", mw.Wrap(h.ChatHandler))
	r.Get("/status/{id}", mw.Wrap(h.GetStatusHandler))
	r.Post("/ingest", mw.Wrap(h.PostIngestHandler))
	r.Get("/health", mw.Public(h.HealthHandler))
	r.Handle("/metrics", metrics.Handler())
	return r
}

func New(listenAddr string, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:         listenAddr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server"),
	}
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("Server is listening at", "address", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server crashed", "error", err, "addr", s.http.Addr)
		return err
	}
	return nil
}

// ShutDownHandler waits for a signal, then stops the listener, the workers
// and the external services in that order.
func (s *Server) ShutDownHandler(params ShutdownParams) {
	state := <-params.GracefulShutdown
	s.logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.http.SetKeepAlivesEnabled(false)

		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("Could not shutdown gracefully", "error", err)
		}

		close(params.WorkerStop)
		params.Group.Wait()
		params.CloseServices()
		close(params.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Gracefully shut down")
	case <-ctx.Done():
		s.logger.Error("Force shut down")
		os.Exit(1)
	}
}
