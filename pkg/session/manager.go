package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/totem/internal/logging"
	"github.com/aretw0/totem/pkg/domain"
	"github.com/aretw0/totem/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(userID) after unlocking.
func (m *Manager) acquire(userID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		entry = &lockEntry{}
		m.locks[userID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, userID)
	}
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, userID string) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx, userID)
		return err
	})
	return s, err
}

// Save persists the session, replacing whatever the user had before.
func (m *Manager) Save(ctx context.Context, userID string, s *domain.Session) error {
	return m.SaveThen(ctx, userID, s, nil)
}

// SaveThen is Save followed by then, which runs after the write while the user's lock is still held.
func (m *Manager) SaveThen(ctx context.Context, userID string, s *domain.Session, then func(context.Context, *domain.Session)) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		if err := m.store.Save(ctx, userID, s); err != nil {
			return err
		}
		if then != nil {
			then(ctx, s)
		}
		return nil
	})
}

// Update loads the session, lets fn mutate it and saves the result, all under the user's lock.
// If fn returns an error nothing is saved and the error is returned unchanged.
func (m *Manager) Update(ctx context.Context, userID string, fn func(*domain.Session) error) (*domain.Session, error) {
	return m.UpdateThen(ctx, userID, fn, nil)
}

// UpdateThen is Update followed by then, which runs after the save while the user's lock is still held.
// Callbacks of one user therefore observe its state transitions in order.
// then must not call back into the Manager for the same user.
func (m *Manager) UpdateThen(ctx context.Context, userID string, fn func(*domain.Session) error, then func(context.Context, *domain.Session)) (*domain.Session, error) {
	var updated *domain.Session
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		s, err := m.store.Load(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		if err := m.store.Save(ctx, userID, s); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		if then != nil {
			then(ctx, s)
		}
		updated = s
		return nil
	})
	return updated, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, userID string) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		return m.store.Delete(ctx, userID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the user.
func (m *Manager) WithLock(ctx context.Context, userID string, fn func(context.Context) error) error {
	entry := m.acquire(userID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(userID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, userID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"user_id", userID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
