package ports

import (
	"context"

	"github.com/aretw0/totem/pkg/domain"
)

// SessionStore defines the interface for persisting quiz sessions.
// Eviction (TTL) is a store concern; the engine never expires sessions.
type SessionStore interface {
	// Save persists the session for a given user ID, replacing any previous one.
	Save(ctx context.Context, userID string, session *domain.Session) error

	// Load retrieves the session for a given user ID.
	// Returns domain.ErrUnknownSession if the session does not exist.
	Load(ctx context.Context, userID string) (*domain.Session, error)

	// Delete removes the session for a given user ID.
	Delete(ctx context.Context, userID string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
