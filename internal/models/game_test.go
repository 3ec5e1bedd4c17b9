// internal/models/game_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMission() Mission {
	return Mission{
		StartPos: []float64{0, 0},
		EndPos:   []float64{100, 100},
	}
}

func TestNewGame_HostIsSeated(t *testing.T) {
	g := NewGame("alice", 3, testMission())

	require.NotEqual(t, "", g.ID.String())
	assert.Equal(t, []string{"alice"}, g.PlayerNames())
	assert.Equal(t, 2, g.RemainingPlaces())
	assert.True(t, g.Available())
}

func TestNewGame_SinglePlayerGameStartsFull(t *testing.T) {
	g := NewGame("alice", 1, testMission())

	assert.True(t, g.IsFull())
	assert.False(t, g.Available())
}

func TestGame_AddPlayer(t *testing.T) {
	g := NewGame("alice", 2, testMission())

	require.True(t, g.AddPlayer("bob"))
	assert.True(t, g.IsFull())
	assert.False(t, g.Available())

	// Full game rejects further joins.
	assert.False(t, g.AddPlayer("carol"))
	// Duplicate usernames are rejected too.
	g2 := NewGame("alice", 3, testMission())
	assert.False(t, g2.AddPlayer("alice"))
}

func TestGame_RemovePlayerReopensGame(t *testing.T) {
	g := NewGame("alice", 2, testMission())
	require.True(t, g.AddPlayer("bob"))
	require.False(t, g.Available())

	remaining := g.RemovePlayer("bob")
	assert.Equal(t, 1, remaining)
	assert.True(t, g.Available())
	assert.Equal(t, []string{"alice"}, g.PlayerNames())
}

func TestGame_UpdateStatus(t *testing.T) {
	g := NewGame("alice", 2, testMission())

	status := PlayerStatus{Pos: []float64{1, 2}, Angle: 90, Thrust: true}
	require.True(t, g.UpdateStatus("alice", status))
	assert.False(t, g.UpdateStatus("nobody", status))

	statuses := g.Statuses()
	assert.Equal(t, status, statuses["alice"])
}

func TestGame_UpdateWinner(t *testing.T) {
	g := NewGame("alice", 2, testMission())
	require.True(t, g.AddPlayer("bob"))

	// Nobody near the end point yet.
	g.UpdateStatus("alice", PlayerStatus{Pos: []float64{0, 0}})
	assert.Equal(t, "", g.UpdateWinner())

	// Bob gets within the win radius.
	g.UpdateStatus("bob", PlayerStatus{Pos: []float64{94, 100}})
	assert.Equal(t, "bob", g.UpdateWinner())
	assert.False(t, g.Available())

	// The first winner sticks even if another ship arrives later.
	g.UpdateStatus("alice", PlayerStatus{Pos: []float64{100, 100}})
	assert.Equal(t, "bob", g.UpdateWinner())
}

func TestGame_UpdateWinner_NoPositionReported(t *testing.T) {
	g := NewGame("alice", 2, testMission())
	assert.Equal(t, "", g.UpdateWinner())
}

func TestGame_SnapshotIsACopy(t *testing.T) {
	g := NewGame("alice", 2, testMission())
	snap := g.Snapshot()

	require.Len(t, snap.Players, 1)
	assert.Equal(t, "alice", snap.Players[0].Username)
	assert.True(t, snap.Available)

	// Later mutations of the live entity do not reach the snapshot.
	require.True(t, g.AddPlayer("bob"))
	assert.Len(t, snap.Players, 1)
	assert.True(t, snap.Available)

	fresh := g.Snapshot()
	assert.Len(t, fresh.Players, 2)
	assert.False(t, fresh.Available)
}
