package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/shared"
)

// Manager is the single owner of the session.
type Manager struct {
	store  Store
	logger *log.Logger

	mu       sync.RWMutex
	current  *models.User
	restored bool
}

// NewManager wraps store. Call [Manager.Restore] once before reading the session.
func NewManager(store Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{store: store, logger: logger}
}

// Restore loads the persisted user. Later calls return the in-memory session without
// touching the store. A corrupt entry is cleared and treated as logged out.
func (m *Manager) Restore() (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.restored {
		return m.current, nil
	}

	user, err := m.store.Load()
	if err != nil {
		m.logger.Warn("discarding unreadable session", "error", err)
		if cerr := m.store.Clear(); cerr != nil {
			return nil, errors.Join(err, cerr)
		}
		user = nil
	}

	m.current = user
	m.restored = true
	if user != nil {
		m.logger.Debug("session restored", "user", user.Name, "id", user.UserID)
	}
	return user, nil
}

// Login persists user as the active session.
func (m *Manager) Login(user *models.User) error {
	if user == nil {
		return fmt.Errorf("%w: no user", shared.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(user); err != nil {
		return err
	}
	m.current = user
	m.restored = true
	m.logger.Info("logged in", "user", user.Name, "id", user.UserID)
	return nil
}

// Logout clears the session.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		return err
	}
	if m.current != nil {
		m.logger.Info("logged out", "user", m.current.Name)
	}
	m.current = nil
	m.restored = true
	return nil
}

// Current returns the logged-in user or nil.
func (m *Manager) Current() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Authenticated reports whether a user is logged in.
func (m *Manager) Authenticated() bool {
	return m.Current() != nil
}

// Require returns the current user or [shared.ErrNotAuthenticated].
func (m *Manager) Require() (*models.User, error) {
	user := m.Current()
	if user == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return user, nil
}
