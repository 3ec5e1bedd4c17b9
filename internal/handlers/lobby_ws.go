// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mgiroux/lostinspace/internal/game"
	"github.com/mgiroux/lostinspace/internal/middleware"
	"github.com/mgiroux/lostinspace/internal/models"
)

// WSMessage is the envelope for every incoming realtime message. Which
// fields are meaningful depends on Type.
type WSMessage struct {
	Type       string               `json:"type"`
	GameID     string               `json:"gameId,omitempty"`
	Username   string               `json:"username,omitempty"`
	Host       string               `json:"host,omitempty"`
	MaxPlayers int                  `json:"maxPlayers,omitempty"`
	Mission    *models.Mission      `json:"mission,omitempty"`
	Status     *models.PlayerStatus `json:"status,omitempty"`
}

// LobbySession is one client's presence on the realtime endpoint.
type LobbySession struct {
	ID        uuid.UUID
	Namespace string
	Username  string
	GameID    uuid.UUID

	// Out is drained by the session's write pump; handlers never write
	// to the socket directly.
	Out    chan map[string]interface{}
	Cancel context.CancelFunc
}

// trySend queues msg without blocking. Returns false if the session's
// out channel is full.
func (s *LobbySession) trySend(msg map[string]interface{}) bool {
	select {
	case s.Out <- msg:
		return true
	default:
		return false
	}
}

// LobbyWSHandler serves the realtime endpoint at /ws/{namespace}. The
// server acknowledges every accepted connection with a "connected"
// message before reading anything, so clients (and the test harness)
// can block on that ack to know the handshake completed.
func LobbyWSHandler(gs *GameServer) http.HandlerFunc {
	logger := gs.Logger
	return func(w http.ResponseWriter, r *http.Request) {
		namespace := strings.Trim(strings.TrimPrefix(r.URL.Path, "/ws/"), "/")
		if namespace == "" {
			http.Error(w, "missing namespace (/ws/{namespace})", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("websocket accept error on namespace %s: %v", namespace, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, namespace)
		gs.Metrics.ActiveConnections.Inc()
		defer gs.Metrics.ActiveConnections.Dec()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sess := &LobbySession{
			ID:        uuid.New(),
			Namespace: namespace,
			Out:       make(chan map[string]interface{}, 16),
			Cancel:    cancel,
		}
		go writePump(ctx, c, sess, logger)

		// Handshake ack: sent before the read loop starts.
		if err := wsjson.Write(ctx, c, map[string]interface{}{
			"type":      "connected",
			"namespace": namespace,
		}); err != nil {
			logger.Warnf("failed to send connected ack to %s: %v", r.RemoteAddr, err)
			return
		}

		for {
			var msg WSMessage
			if err := wsjson.Read(ctx, c, &msg); err != nil {
				gs.leaveGame(sess)
				middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, namespace, err)
				c.Close(websocket.StatusNormalClosure, "bye")
				return
			}
			gs.Metrics.MessagesHandled.Inc()
			gs.handleLobbyMessage(sess, &msg)
		}
	}
}

// writePump drains the session's out channel onto the socket. It exits
// when the session context ends or a write fails.
func writePump(ctx context.Context, c *websocket.Conn, sess *LobbySession, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sess.Out:
			if err := wsjson.Write(ctx, c, msg); err != nil {
				logger.Debugf("write to session %s failed: %v", sess.ID, err)
				sess.Cancel()
				return
			}
		}
	}
}

// handleLobbyMessage dispatches one realtime message.
func (gs *GameServer) handleLobbyMessage(sess *LobbySession, msg *WSMessage) {
	switch msg.Type {
	case "create_game":
		gs.handleCreateGameWS(sess, msg)
	case "join_game":
		gs.handleJoinGameWS(sess, msg)
	case "list_games":
		gs.handleListGamesWS(sess)
	case "status":
		gs.handleStatusWS(sess, msg)
	case "leave_game":
		gs.leaveGame(sess)
		sess.trySend(map[string]interface{}{"type": "game_left"})
	default:
		sess.trySend(map[string]interface{}{
			"type":  "error",
			"error": "unknown message type: " + msg.Type,
		})
	}
}

func (gs *GameServer) handleCreateGameWS(sess *LobbySession, msg *WSMessage) {
	if msg.Host == "" || msg.MaxPlayers < 1 || msg.Mission == nil || len(msg.Mission.EndPos) != 2 {
		sess.trySend(map[string]interface{}{
			"type":  "error",
			"error": "create_game requires host, maxPlayers and a mission with end_pos",
		})
		return
	}
	if sess.GameID != uuid.Nil {
		gs.leaveGame(sess)
	}

	g := models.NewGame(msg.Host, msg.MaxPlayers, *msg.Mission)
	if err := gs.RegisterGame(g); err != nil {
		var dup *game.DuplicateIDError
		reason := err.Error()
		if errors.As(err, &dup) {
			reason = "duplicate game id: " + dup.ID.String()
		}
		sess.trySend(map[string]interface{}{"type": "error", "error": reason})
		return
	}

	sess.Username = msg.Host
	sess.GameID = g.ID
	gs.hub.add(g.ID, sess)

	sess.trySend(map[string]interface{}{"type": "game_created", "game": g.Snapshot()})
}

func (gs *GameServer) handleJoinGameWS(sess *LobbySession, msg *WSMessage) {
	gameID, err := uuid.Parse(msg.GameID)
	if err != nil {
		sess.trySend(map[string]interface{}{"type": "error", "error": "invalid game id"})
		return
	}
	if msg.Username == "" {
		sess.trySend(map[string]interface{}{"type": "error", "error": "username is required"})
		return
	}

	g, ok := gs.Registry.FindByID(gameID)
	if !ok {
		sess.trySend(map[string]interface{}{"type": "error", "error": "game not found"})
		return
	}
	if !g.AddPlayer(msg.Username) {
		sess.trySend(map[string]interface{}{"type": "error", "error": "game full or username taken"})
		return
	}

	if sess.GameID != uuid.Nil {
		gs.leaveGame(sess)
	}
	sess.Username = msg.Username
	sess.GameID = g.ID
	gs.hub.add(g.ID, sess)

	sess.trySend(map[string]interface{}{"type": "game_joined", "game": g.Snapshot()})
	gs.hub.broadcast(g.ID, sess.ID, map[string]interface{}{
		"type":     "player_joined",
		"gameId":   g.ID.String(),
		"username": msg.Username,
		"players":  g.PlayerNames(),
	})
}

func (gs *GameServer) handleListGamesWS(sess *LobbySession) {
	views := snapshotGames(gs.Registry.FindAllAvailable())
	sess.trySend(map[string]interface{}{"type": "game_list", "games": views})
}

func (gs *GameServer) handleStatusWS(sess *LobbySession, msg *WSMessage) {
	if sess.GameID == uuid.Nil || msg.Status == nil {
		sess.trySend(map[string]interface{}{"type": "error", "error": "status requires being seated in a game"})
		return
	}
	g, ok := gs.Registry.FindByID(sess.GameID)
	if !ok {
		sess.trySend(map[string]interface{}{"type": "error", "error": "game not found"})
		return
	}
	if !g.UpdateStatus(sess.Username, *msg.Status) {
		sess.trySend(map[string]interface{}{"type": "error", "error": "not seated in this game"})
		return
	}

	gs.hub.broadcast(g.ID, sess.ID, map[string]interface{}{
		"type":     "player_status",
		"gameId":   g.ID.String(),
		"username": sess.Username,
		"status":   msg.Status,
	})

	if winner := g.UpdateWinner(); winner != "" {
		gs.hub.broadcast(g.ID, uuid.Nil, map[string]interface{}{
			"type":   "game_won",
			"gameId": g.ID.String(),
			"winner": winner,
		})
	}
}

// leaveGame frees the session's seat, tells the rest of the game, and
// drops the game from the registry once nobody is seated. Safe to call
// when the session is not in a game.
func (gs *GameServer) leaveGame(sess *LobbySession) {
	if sess.GameID == uuid.Nil {
		return
	}
	gameID := sess.GameID
	gs.hub.remove(gameID, sess.ID)
	sess.GameID = uuid.Nil

	g, ok := gs.Registry.FindByID(gameID)
	if !ok {
		return
	}
	remaining := g.RemovePlayer(sess.Username)
	if remaining == 0 {
		gs.Registry.Remove(gameID)
		return
	}
	gs.hub.broadcast(gameID, uuid.Nil, map[string]interface{}{
		"type":     "player_left",
		"gameId":   gameID.String(),
		"username": sess.Username,
		"players":  g.PlayerNames(),
	})
}
