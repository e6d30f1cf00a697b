// ABOUTME: SessionStore interface for panelctl's durable client state
// ABOUTME: The bearer token is the only value that survives the process

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("not found")

// tokenKey is the key under which the bearer token is stored. The client has
// exactly one durable value; everything else is rebuilt from the server.
const tokenKey = "bearer_token"

// SessionStore persists the bearer token between runs. It is written on
// login, read at startup to seed the session, and cleared on logout.
type SessionStore interface {
	SaveToken(ctx context.Context, token string) error
	LoadToken(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
	Close() error
}

// MemoryStore is an in-memory SessionStore for tests and ephemeral runs.
type MemoryStore struct {
	token string
	set   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) SaveToken(_ context.Context, token string) error {
	m.token, m.set = token, true
	return nil
}

func (m *MemoryStore) LoadToken(_ context.Context) (string, error) {
	if !m.set {
		return "", ErrNotFound
	}
	return m.token, nil
}

func (m *MemoryStore) ClearToken(_ context.Context) error {
	m.token, m.set = "", false
	return nil
}

func (m *MemoryStore) Close() error { return nil }
