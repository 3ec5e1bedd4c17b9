// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mgiroux/lostinspace/internal/game"
	"github.com/mgiroux/lostinspace/internal/models"
)

// createGameRequest is the payload for POST /game/create. The host is
// seated immediately, matching the realtime create_game flow.
type createGameRequest struct {
	Host       string         `json:"host"`
	MaxPlayers int            `json:"maxPlayers"`
	Mission    models.Mission `json:"mission"`
}

// CreateGameHandler registers a new game in memory and returns it.
// A duplicate id is answered with 409; the registry never overwrites.
func CreateGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad game request payload", http.StatusBadRequest)
			return
		}
		if req.Host == "" || req.MaxPlayers < 1 {
			http.Error(w, "host and a positive maxPlayers are required", http.StatusBadRequest)
			return
		}
		if len(req.Mission.EndPos) != 2 {
			http.Error(w, "mission end_pos must be a coordinate pair", http.StatusBadRequest)
			return
		}

		g := models.NewGame(req.Host, req.MaxPlayers, req.Mission)
		if err := gs.RegisterGame(g); err != nil {
			var dup *game.DuplicateIDError
			if errors.As(err, &dup) {
				http.Error(w, dup.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(g.Snapshot())
	}
}

// ListGamesHandler returns the joinable games. The registry hands them
// back in map order, so the view is sorted by creation time here to keep
// responses stable for clients. Each game is copied before encoding so
// concurrent seat changes cannot race the marshaler.
func ListGamesHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views := snapshotGames(gs.Registry.FindAllAvailable())

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(views)
	}
}

// snapshotGames copies games into marshal-safe views, oldest first.
func snapshotGames(games []*models.Game) []models.GameSnapshot {
	views := make([]models.GameSnapshot, 0, len(games))
	for _, g := range games {
		views = append(views, g.Snapshot())
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})
	return views
}

// GetGameHandler is the point lookup: GET /game/{id}. A missing game is
// 404, not a server error.
func GetGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := strings.TrimPrefix(r.URL.Path, "/game/")
		id, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		g, ok := gs.Registry.FindByID(id)
		if !ok {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(g.Snapshot())
	}
}
