// internal/models/game.go
package models

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgiroux/lostinspace/internal/geom"
)

// winRadius is how close (in map units) a ship must get to the mission
// end point to win the race.
const winRadius = 10.0

// Mission describes the map a game is played on. The coordinate pairs and
// obstacle polygons come straight from the mission payload the host submits.
type Mission struct {
	StartPos  []float64     `json:"start_pos"`
	EndPos    []float64     `json:"end_pos"`
	Obstacles [][][]float64 `json:"obstacles,omitempty"`
}

// PlayerStatus is one ship's most recent self-report.
type PlayerStatus struct {
	Pos    []float64 `json:"pos"`
	Angle  float64   `json:"angle"`
	Thrust bool      `json:"thrust"`
}

// Player is a seated participant in a game.
type Player struct {
	Username  string       `json:"username"`
	Status    PlayerStatus `json:"status"`
	Connected bool         `json:"connected"`
}

// Game is a single race session. Its ID is the sole identity key; the
// registry owns the entity once it is saved, so callers hold and mutate
// the same instance the registry returns. Mutable state is read and
// written only under Mu; handlers serialize a game with Snapshot rather
// than marshaling the live entity.
type Game struct {
	ID         uuid.UUID
	Host       string
	MaxPlayers int
	Mission    Mission

	Players []*Player
	Winner  string

	CreatedAt time.Time

	// available reports whether the game can still be joined. It flips
	// to false once the last seat fills and back to true if a seat
	// frees up before the race is decided.
	available bool

	// Mu protects Players, Winner and available.
	Mu sync.Mutex
}

// GameSnapshot is a point-in-time copy of a game's state, safe to
// marshal and hand to clients while the live entity keeps mutating.
type GameSnapshot struct {
	ID         uuid.UUID `json:"id"`
	Host       string    `json:"host"`
	MaxPlayers int       `json:"maxPlayers"`
	Mission    Mission   `json:"mission"`
	Available  bool      `json:"isAvailable"`
	Players    []Player  `json:"players"`
	Winner     string    `json:"winner,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewGame builds a game hosted by host. The host is seated immediately,
// so a 1-player game starts out full.
func NewGame(host string, maxPlayers int, mission Mission) *Game {
	g := &Game{
		ID:         uuid.New(),
		Host:       host,
		MaxPlayers: maxPlayers,
		Mission:    mission,
		available:  true,
		CreatedAt:  time.Now(),
	}
	g.AddPlayer(host)
	return g
}

// Available reports whether the game can still be joined.
func (g *Game) Available() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.available
}

// SetAvailable overrides the joinable flag. Seat changes and win
// detection maintain it automatically; this is for lifecycle logic that
// needs to close or reopen a game directly.
func (g *Game) SetAvailable(available bool) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.available = available
}

// Snapshot copies the game's current state for serialization.
func (g *Game) Snapshot() GameSnapshot {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	players := make([]Player, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, *p)
	}
	return GameSnapshot{
		ID:         g.ID,
		Host:       g.Host,
		MaxPlayers: g.MaxPlayers,
		Mission:    g.Mission,
		Available:  g.available,
		Players:    players,
		Winner:     g.Winner,
		CreatedAt:  g.CreatedAt,
	}
}

// AddPlayer seats username in the game. Returns false if the game is
// already full or the username is already seated.
func (g *Game) AddPlayer(username string) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if len(g.Players) >= g.MaxPlayers {
		return false
	}
	for _, p := range g.Players {
		if p.Username == username {
			return false
		}
	}
	g.Players = append(g.Players, &Player{Username: username, Connected: true})
	if len(g.Players) >= g.MaxPlayers {
		g.available = false
	}
	return true
}

// RemovePlayer frees username's seat. A game that lost a player before a
// winner was decided becomes joinable again. Returns the remaining player
// count.
func (g *Game) RemovePlayer(username string) int {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	for i, p := range g.Players {
		if p.Username == username {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			break
		}
	}
	if g.Winner == "" && len(g.Players) < g.MaxPlayers {
		g.available = true
	}
	return len(g.Players)
}

// PlayerNames returns the usernames of all seated players.
func (g *Game) PlayerNames() []string {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	names := make([]string, 0, len(g.Players))
	for _, p := range g.Players {
		names = append(names, p.Username)
	}
	return names
}

// IsFull reports whether every seat is taken.
func (g *Game) IsFull() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return len(g.Players) >= g.MaxPlayers
}

// RemainingPlaces returns how many seats are still open.
func (g *Game) RemainingPlaces() int {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.MaxPlayers - len(g.Players)
}

// Statuses returns a username -> latest status snapshot for broadcast.
func (g *Game) Statuses() map[string]PlayerStatus {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	statuses := make(map[string]PlayerStatus, len(g.Players))
	for _, p := range g.Players {
		statuses[p.Username] = p.Status
	}
	return statuses
}

// UpdateStatus records username's latest self-report. Returns false if
// the player is not seated in this game.
func (g *Game) UpdateStatus(username string, status PlayerStatus) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	for _, p := range g.Players {
		if p.Username == username {
			p.Status = status
			return true
		}
	}
	return false
}

// UpdateWinner checks every ship against the mission end point and
// declares the first one within winRadius the winner. Once a winner is
// set it never changes; a decided game is no longer joinable. Returns
// the winner's username, or "" if the race is still open.
func (g *Game) UpdateWinner() string {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Winner != "" {
		return g.Winner
	}
	end, err := geom.FromSlice(g.Mission.EndPos)
	if err != nil {
		return ""
	}
	for _, p := range g.Players {
		pos, err := geom.FromSlice(p.Status.Pos)
		if err != nil {
			continue
		}
		if geom.Dist(pos, end) <= winRadius {
			g.Winner = p.Username
			g.available = false
			return g.Winner
		}
	}
	return ""
}
