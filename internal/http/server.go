// Package http bridges UI surfaces to the background process: requests come in over
// POST /api/messages and every broadcast goes out over GET /api/events.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

type Config struct {
	Host           string
	Port           string
	AllowedOrigins []string
}

type Server struct {
	srv *http.Server
}

func NewServer(cfg Config, h *Handler) *Server {
	gin.SetMode(gin.ReleaseMode)
	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", host, cfg.Port),
			Handler:           NewRouter(h, cfg.AllowedOrigins),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http: listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http: shutdown: %w", err)
	}
	return nil
}
