package server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// HTTPServer runs the battle API over a net/http server with graceful
// shutdown. It implements the Service interface so the Lifecycle can
// manage it alongside other components.
type HTTPServer struct {
	srv    *http.Server
	cfg    config.ServerConfig
	logger *zap.Logger
}

// NewHTTPServer creates an HTTPServer serving the handler's routes.
//
// Precondition: handler and logger must be non-nil.
func NewHTTPServer(cfg config.ServerConfig, handler *Handler, logger *zap.Logger) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler.Router(),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Start serves HTTP requests until Stop is called.
//
// Postcondition: Returns nil after a graceful Stop, or the listen error.
func (s *HTTPServer) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and closes the listener.
func (s *HTTPServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown incomplete", zap.Error(err))
	}
}
