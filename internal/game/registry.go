// internal/game/registry.go
package game

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mgiroux/lostinspace/internal/models"
)

// Registry is the authoritative in-memory store of active games, keyed by
// game ID. It is safe for concurrent use; Save's existence check and
// insert happen under one lock so two racing registrations for the same
// id can never both succeed.
type Registry struct {
	mu    sync.Mutex
	games map[uuid.UUID]*models.Game
}

// NewRegistry initializes an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[uuid.UUID]*models.Game),
	}
}

// Save registers a game under its ID. It fails with *DuplicateIDError if
// a game with that id already exists; Save is a one-time registration,
// not an upsert. On success the registry owns the entity: later lookups
// return this same pointer, so availability changes made through it are
// visible without another Save.
func (r *Registry) Save(g *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.games[g.ID]; exists {
		return &DuplicateIDError{ID: g.ID}
	}
	r.games[g.ID] = g
	return nil
}

// FindByID looks up a game by exact id. A miss is the false second
// return, not an error.
func (r *Registry) FindByID(id uuid.UUID) (*models.Game, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	return g, ok
}

// FindAllAvailable returns every registered game that can still be
// joined, in no particular order. Callers needing a deterministic order
// sort the result themselves. Availability is read through the game's
// own lock, since seat changes mutate it concurrently.
func (r *Registry) FindAllAvailable() []*models.Game {
	r.mu.Lock()
	defer r.mu.Unlock()

	available := make([]*models.Game, 0, len(r.games))
	for _, g := range r.games {
		if g.Available() {
			available = append(available, g)
		}
	}
	return available
}

// Remove drops a game from the registry, typically once its last
// connection has left. Removing an unknown id is a no-op.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, id)
}

// Len returns the number of registered games.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}
