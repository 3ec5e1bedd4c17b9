// internal/game/registry_test.go
package game

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgiroux/lostinspace/internal/models"
)

func newTestGame(host string, maxPlayers int) *models.Game {
	return models.NewGame(host, maxPlayers, models.Mission{
		StartPos: []float64{0, 0},
		EndPos:   []float64{100, 100},
	})
}

func TestRegistry_SaveAndFindByID(t *testing.T) {
	r := NewRegistry()
	g := newTestGame("alice", 4)

	require.NoError(t, r.Save(g))

	found, ok := r.FindByID(g.ID)
	require.True(t, ok)
	// Identity, not a copy: the registry hands back the saved entity.
	assert.Same(t, g, found)
}

func TestRegistry_FindByIDMissing(t *testing.T) {
	r := NewRegistry()

	found, ok := r.FindByID(uuid.New())
	assert.False(t, ok)
	assert.Nil(t, found)
}

func TestRegistry_SaveDuplicateFails(t *testing.T) {
	r := NewRegistry()
	g := newTestGame("alice", 4)
	require.NoError(t, r.Save(g))

	// A different entity under the same id must be rejected, and the
	// original entity must survive untouched.
	clone := newTestGame("bob", 2)
	clone.ID = g.ID

	err := r.Save(clone)
	require.Error(t, err)

	var dup *DuplicateIDError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, g.ID, dup.ID)

	found, ok := r.FindByID(g.ID)
	require.True(t, ok)
	assert.Same(t, g, found)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_FindAllAvailable(t *testing.T) {
	r := NewRegistry()

	open1 := newTestGame("alice", 4)
	open2 := newTestGame("bob", 4)
	full := newTestGame("carol", 1) // host fills the only seat

	require.NoError(t, r.Save(open1))
	require.NoError(t, r.Save(full))
	require.NoError(t, r.Save(open2))

	available := r.FindAllAvailable()
	assert.Len(t, available, 2)
	assert.Contains(t, available, open1)
	assert.Contains(t, available, open2)
	assert.NotContains(t, available, full)
}

func TestRegistry_AvailabilityMutationVisibleWithoutResave(t *testing.T) {
	r := NewRegistry()
	g := newTestGame("alice", 4)
	require.NoError(t, r.Save(g))

	assert.Len(t, r.FindAllAvailable(), 1)

	found, ok := r.FindByID(g.ID)
	require.True(t, ok)
	found.SetAvailable(false)

	assert.Empty(t, r.FindAllAvailable())

	found.SetAvailable(true)
	assert.Len(t, r.FindAllAvailable(), 1)
}

// TestRegistry_FindAllAvailableDuringSeatChanges lists games while seats
// on one of them are churning. Availability is read under the game's own
// lock, so this must stay clean under the race detector.
func TestRegistry_FindAllAvailableDuringSeatChanges(t *testing.T) {
	r := NewRegistry()
	g := newTestGame("alice", 2)
	require.NoError(t, r.Save(g))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if g.AddPlayer("bob") {
				g.RemovePlayer("bob")
			}
		}
	}()

	for {
		select {
		case <-done:
			// Bob is gone, so the game ends up joinable again.
			assert.Len(t, r.FindAllAvailable(), 1)
			return
		default:
			r.FindAllAvailable()
		}
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	g := newTestGame("alice", 4)
	require.NoError(t, r.Save(g))

	r.Remove(g.ID)
	_, ok := r.FindByID(g.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())

	// Removing again is a no-op.
	r.Remove(g.ID)
}

func TestRegistry_ConcurrentSaveSameID(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	const racers = 32
	games := make([]*models.Game, racers)
	for i := range games {
		g := newTestGame("racer", 4)
		g.ID = id
		games[i] = g
	}

	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Save(games[i])
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var dup *DuplicateIDError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, id, dup.ID)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, r.Len())
}
