// Package store provides the authoritative in-memory user store.
// The store is volatile: nothing survives a process restart.
package store

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/pointkeep/pointkeep/internal/model"
)

// UserStore maps user IDs to users and their ledgers.
// Records are copied on the way in and on the way out, so callers never
// share memory with the stored value.
type UserStore struct {
	users *xsync.MapOf[string, *model.User]
}

// New creates an empty UserStore.
func New() *UserStore {
	return &UserStore{
		users: xsync.NewMapOf[string, *model.User](),
	}
}

// CreateUser stores a new user with zero balance and an empty ledger.
// Email uniqueness is the caller's responsibility.
func (s *UserStore) CreateUser(id, name, email string) *model.User {
	user := model.NewUser(id, name, email)
	s.users.Store(id, user.Clone())
	return user
}

// GetUser retrieves a user by ID.
func (s *UserStore) GetUser(id string) (*model.User, bool) {
	user, ok := s.users.Load(id)
	if !ok {
		return nil, false
	}
	return user.Clone(), true
}

// Exists reports whether id is stored, without copying the record.
func (s *UserStore) Exists(id string) bool {
	_, ok := s.users.Load(id)
	return ok
}

// GetUserByEmail scans all users for an exact email match.
// There is no secondary index; this is O(n) in the number of users.
func (s *UserStore) GetUserByEmail(email string) (*model.User, bool) {
	var found *model.User
	s.users.Range(func(_ string, user *model.User) bool {
		if user.Email == email {
			found = user
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	return found.Clone(), true
}

// UpdateUser replaces the stored record for user.ID. Last writer wins.
func (s *UserStore) UpdateUser(user *model.User) {
	s.users.Store(user.ID, user.Clone())
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	return s.users.Size()
}

// Reset removes every user.
func (s *UserStore) Reset() {
	s.users.Clear()
}

// Ping satisfies the health checker contract. The in-memory store is
// always reachable.
func (s *UserStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
