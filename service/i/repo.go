package i

import (
	"github.com/beka-birhanu/vinom-warden/identity"
	"github.com/google/uuid"
)

// OperatorRepo defines the interface for operator persistence operations.
type OperatorRepo interface {
	// Save inserts or updates an operator in the repository.
	// A different operator holding the same username is rejected.
	Save(operator *identity.Operator) error

	// ByID retrieves an operator by their unique ID.
	// Returns an error if the operator is not found or in case of an unexpected error.
	ByID(id uuid.UUID) (*identity.Operator, error)

	// ByUsername retrieves an operator by their username.
	// Returns an error if the operator is not found or in case of an unexpected error.
	ByUsername(username string) (*identity.Operator, error)
}
