// internal/handlers/game_server.go
package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mgiroux/lostinspace/internal/game"
	"github.com/mgiroux/lostinspace/internal/metrics"
	"github.com/mgiroux/lostinspace/internal/models"
)

// GameServer holds the registry and the realtime session hub shared by
// every HTTP and WebSocket handler. It is built once per server and
// passed explicitly, never through an ambient global.
type GameServer struct {
	Registry *game.Registry
	Metrics  *metrics.Metrics
	Logger   *logrus.Logger

	hub *sessionHub
}

func NewGameServer(logger *logrus.Logger, m *metrics.Metrics) *GameServer {
	return &GameServer{
		Registry: game.NewRegistry(),
		Metrics:  m,
		Logger:   logger,
		hub:      newSessionHub(),
	}
}

// RegisterGame saves a game into the registry, keeping the metrics
// counters in step with the outcome.
func (gs *GameServer) RegisterGame(g *models.Game) error {
	if err := gs.Registry.Save(g); err != nil {
		gs.Metrics.DuplicateRejections.Inc()
		return err
	}
	gs.Metrics.GamesRegistered.Inc()
	return nil
}

// sessionHub tracks which realtime sessions are watching which game so
// game events can be fanned out to everyone seated in it.
type sessionHub struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]map[uuid.UUID]*LobbySession // gameID -> sessionID
}

func newSessionHub() *sessionHub {
	return &sessionHub{
		sessions: make(map[uuid.UUID]map[uuid.UUID]*LobbySession),
	}
}

func (h *sessionHub) add(gameID uuid.UUID, sess *LobbySession) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[gameID] == nil {
		h.sessions[gameID] = make(map[uuid.UUID]*LobbySession)
	}
	h.sessions[gameID][sess.ID] = sess
}

func (h *sessionHub) remove(gameID, sessionID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if group, ok := h.sessions[gameID]; ok {
		delete(group, sessionID)
		if len(group) == 0 {
			delete(h.sessions, gameID)
		}
	}
}

// broadcast queues msg for every session in gameID except exceptID
// (pass uuid.Nil to reach everyone). Sessions with a full out channel
// are skipped rather than blocking the sender.
func (h *sessionHub) broadcast(gameID, exceptID uuid.UUID, msg map[string]interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sess := range h.sessions[gameID] {
		if sess.ID == exceptID {
			continue
		}
		sess.trySend(msg)
	}
}
