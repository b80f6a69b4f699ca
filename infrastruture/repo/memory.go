package repo

import (
	"sync"

	"github.com/beka-birhanu/vinom-warden/identity"
	"github.com/beka-birhanu/vinom-warden/service/i"
	"github.com/google/uuid"
)

var _ i.OperatorRepo = &MemoryOperatorRepo{}

// MemoryOperatorRepo keeps operators in process. Used when no database is configured.
type MemoryOperatorRepo struct {
	sync.RWMutex
	byID map[uuid.UUID]identity.Operator
}

// NewMemoryOperatorRepo creates an empty repository.
func NewMemoryOperatorRepo() *MemoryOperatorRepo {
	return &MemoryOperatorRepo{byID: make(map[uuid.UUID]identity.Operator)}
}

// Save inserts or updates an operator. A username held by another operator is rejected.
func (m *MemoryOperatorRepo) Save(operator *identity.Operator) error {
	m.Lock()
	defer m.Unlock()

	for id, o := range m.byID {
		if id != operator.ID && o.Username == operator.Username {
			return ErrUsernameConflict
		}
	}
	m.byID[operator.ID] = *operator
	return nil
}

// ByID retrieves an operator by their ID.
func (m *MemoryOperatorRepo) ByID(id uuid.UUID) (*identity.Operator, error) {
	m.RLock()
	defer m.RUnlock()

	o, ok := m.byID[id]
	if !ok {
		return nil, ErrOperatorNotFound
	}
	return &o, nil
}

// ByUsername retrieves an operator by their username.
func (m *MemoryOperatorRepo) ByUsername(username string) (*identity.Operator, error) {
	m.RLock()
	defer m.RUnlock()

	for _, o := range m.byID {
		if o.Username == username {
			return &o, nil
		}
	}
	return nil, ErrOperatorNotFound
}
