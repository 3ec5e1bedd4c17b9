// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mgiroux/lostinspace/internal/config"
	"github.com/mgiroux/lostinspace/internal/handlers"
	"github.com/mgiroux/lostinspace/internal/metrics"
	"github.com/mgiroux/lostinspace/internal/middleware"
)

// Server is the process-wide handle around the HTTP/WebSocket surface.
// Start binds the listener before returning, so a nil error means the
// address reported by Addr is accepting connections.
type Server struct {
	cfg    *config.Config
	logger *logrus.Logger

	GameServer *handlers.GameServer

	httpServer *http.Server
	listener   net.Listener
}

// New wires the registry, handlers and middleware into a Server. Nothing
// is listening until Start is called.
func New(cfg *config.Config, logger *logrus.Logger) *Server {
	m := metrics.New(cfg.MetricsNamespace)
	gs := handlers.NewGameServer(logger, m)

	logged := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()
	mux.Handle("/game/create", logged(handlers.CreateGameHandler(gs)))
	mux.Handle("/game/list", logged(handlers.ListGamesHandler(gs)))
	mux.Handle("/game/", logged(handlers.GetGameHandler(gs)))
	mux.Handle("/ws/", logged(handlers.LobbyWSHandler(gs)))
	mux.Handle("/metrics", m.Handler())

	return &Server{
		cfg:        cfg,
		logger:     logger,
		GameServer: gs,
		httpServer: &http.Server{Handler: mux},
	}
}

// Start binds the configured address and begins serving in the
// background. An address that cannot be bound is returned as an error
// rather than logged and ignored, so callers (the entrypoint, the test
// harness) can abort.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("start server on %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.logger.Infof("Server listening on %s", ln.Addr())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("server exited: %v", err)
		}
	}()
	return nil
}

// Addr returns the listener's host:port. Only valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down, releasing the listener. Safe to
// call once after Start, regardless of in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
