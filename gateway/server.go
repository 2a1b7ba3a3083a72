package gateway

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/errors"
)

// Server is the gateway http server.
type Server struct {
	// Config is the configuration for the gateway.
	Config *config.Gateway
	// Server is the underlying http server.
	Server *http.Server
}

// NewServer creates the server for the 'handler' with the 'cfg' timeouts and address.
func NewServer(cfg *config.Gateway, handler http.Handler) *Server {
	if cfg == nil {
		cfg = config.DefaultGateway()
	}
	return &Server{
		Config: cfg,
		Server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Hostname, cfg.Port),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}
}

// Run starts listening and serving. The server is shut down gracefully when the context is done
// or the interrupt or termination signal is received.
func (s *Server) Run(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() {
		logger.Infof("Start listening at: %s...", s.Server.Addr)
		if err := s.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
		close(listenErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-listenErr:
		if ok {
			logger.Errorf("Listen failed: %v", err)
			return errors.NewDet(ClassServer, "listen failed").SetDetails(err.Error())
		}
		return nil
	case <-ctx.Done():
		logger.Infof("Shutting down the server with context: %v", ctx.Err())
	case sig := <-quit:
		logger.Infof("Received signal: '%s'. Shutdown server begins...", sig)
	}
	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server within the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.Config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Config.ShutdownTimeout)
		defer cancel()
	}
	if err := s.Server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
		return errors.NewDet(ClassServer, "shutdown failed").SetDetails(err.Error())
	}
	logger.Infof("Server shutdown successfully.")
	return nil
}
