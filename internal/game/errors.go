// internal/game/errors.go
package game

import (
	"fmt"

	"github.com/google/uuid"
)

// DuplicateIDError is returned by Registry.Save when a game with the same
// ID is already registered. The registry never silently overwrites, so the
// caller decides whether to pick a new id or treat the game as already
// registered.
type DuplicateIDError struct {
	ID uuid.UUID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("game %s is already registered", e.ID)
}
