package inbound

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/goliatone/go-enigma/core"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/gorilla/mux"
)

const (
	RouteEnigma = "/enigma"
	RouteHealth = "/healthz"

	FieldName   = "name"
	FieldSecret = "secret"
)

// maxFormMemory caps the in-memory part of multipart bodies.
const maxFormMemory = 1 << 20

type Verifier interface {
	Verify(ctx context.Context, req core.VerifyRequest) (core.VerifyResult, error)
}

// HealthCheckFunc reports whether the backing store is reachable.
type HealthCheckFunc func(ctx context.Context) error

type Server struct {
	verifier Verifier
	health   HealthCheckFunc
	logger   glog.Logger
	router   *mux.Router
}

type ServerOption func(*Server)

func WithHealthCheck(check HealthCheckFunc) ServerOption {
	return func(s *Server) {
		s.health = check
	}
}

func WithLogger(logger glog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewServer(verifier Verifier, opts ...ServerOption) (*Server, error) {
	if verifier == nil {
		return nil, inboundInternal("inbound: verifier is required", nil)
	}
	s := &Server{
		verifier: verifier,
		logger:   glog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc(RouteEnigma, s.handleEnigma).Methods(http.MethodPost)
	r.HandleFunc(RouteHealth, s.handleHealth).Methods(http.MethodGet)
	s.router = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleEnigma(w http.ResponseWriter, r *http.Request) {
	// Only body fields count; query string values are ignored.
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.logger.WithContext(r.Context()).Warn("enigma form could not be parsed", "error", err.Error())
	}
	req := core.VerifyRequest{
		Name:   r.PostFormValue(FieldName),
		Secret: r.PostFormValue(FieldSecret),
	}

	result, err := s.verifier.Verify(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.WithContext(r.Context()).Error("health check failed", "error", err.Error())
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.WithContext(r.Context()).Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// ListenAndServe serves handler on addr until ctx is done, then shuts the
// server down gracefully within shutdownTimeout.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, logger glog.Logger) error {
	if logger == nil {
		logger = glog.Nop()
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("inbound: listen on %s: %w", addr, err)
	}
	return Serve(ctx, listener, handler, shutdownTimeout, logger)
}

func Serve(ctx context.Context, listener net.Listener, handler http.Handler, shutdownTimeout time.Duration, logger glog.Logger) error {
	if logger == nil {
		logger = glog.Nop()
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", listener.Addr().String())
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("http server shutting down")
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("inbound: shutdown: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("http server stopped")
	return nil
}
