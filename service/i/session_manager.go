package i

import (
	"context"

	"github.com/beka-birhanu/vinom-warden/config"
	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/guard"
	"github.com/beka-birhanu/vinom-warden/game/session"
	"github.com/google/uuid"
)

// SessionManager runs simulations and answers questions about them.
type SessionManager interface {
	// NewSession builds and starts a session owned by the operator.
	NewSession(ctx context.Context, operator uuid.UUID, scenario *config.Scenario) (uuid.UUID, error)

	// Status returns the live state of a session.
	Status(id uuid.UUID) (session.Status, error)

	// Layout returns the world rows of a session, top row first.
	Layout(id uuid.UUID) ([]string, error)

	// Transitions returns squad state changes recorded for a session, oldest first.
	Transitions(ctx context.Context, id uuid.UUID) ([]guard.Transition, error)

	// Command steers the intruder of a session owned by the operator.
	Command(id, operator uuid.UUID, cmd session.Command) error

	// Stop halts and forgets a session owned by the operator.
	Stop(id, operator uuid.UUID) error

	// Purge stops a session owned by the operator and deletes its transitions.
	Purge(ctx context.Context, id, operator uuid.UUID) error
}

// WorldPreviewer composes worlds without running them.
type WorldPreviewer interface {
	Preview(ctx context.Context, scenario *config.Scenario) (*WorldView, error)
}

// WorldView is a composed world as text.
type WorldView struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Rows      []string    `json:"rows"`
	Courtyard int         `json:"courtyard_tiles"`
	Finish    *game.Point `json:"finish,omitempty"`
	Cached    bool        `json:"cached"`
}
