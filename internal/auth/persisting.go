package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
)

// ErrNoTokenPersister is returned when a token is obtained but nothing is
// configured to save it.
var ErrNoTokenPersister = errors.New("no token persister configured")

// TokenPersister saves tokens so a later process can reuse them.
type TokenPersister interface {
	SaveToken(host, token string, expiresAt time.Time) error
}

// PersistingTokenManager wraps another TokenManager and saves every new token
// it hands out. Persistence failures are logged and never fail a request.
type PersistingTokenManager struct {
	manager   TokenManager
	persister TokenPersister
	host      string
	logger    aidbox.Logger

	mu       sync.Mutex
	lastSeen string
}

// NewPersistingTokenManager wraps manager. initialToken is the token already
// saved for host, which is not written again.
func NewPersistingTokenManager(manager TokenManager, persister TokenPersister, host, initialToken string, logger aidbox.Logger) *PersistingTokenManager {
	return &PersistingTokenManager{
		manager:   manager,
		persister: persister,
		host:      host,
		logger:    logger,
		lastSeen:  initialToken,
	}
}

// GetToken returns a token from the wrapped manager and saves it if it changed.
func (m *PersistingTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.manager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.remember(token)

	return token, nil
}

// RefreshToken refreshes through the wrapped manager and saves the result.
func (m *PersistingTokenManager) RefreshToken(ctx context.Context) error {
	err := m.manager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	token, err := m.manager.GetToken(ctx)
	if err != nil {
		return err
	}

	m.remember(token)

	return nil
}

// SetToken replaces the token in the wrapped manager without saving it.
func (m *PersistingTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	m.lastSeen = token
	m.mu.Unlock()

	m.manager.SetToken(token, expiresAt)
}

func (m *PersistingTokenManager) remember(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token == m.lastSeen {
		return
	}

	m.lastSeen = token

	err := m.persist(token)
	if err != nil && m.logger != nil {
		m.logger.Warn("failed to persist token", map[string]interface{}{
			"host":  m.host,
			"error": err.Error(),
		})
	}
}

func (m *PersistingTokenManager) persist(token string) error {
	if m.persister == nil {
		return ErrNoTokenPersister
	}

	expiresAt, err := ParseExpiry(token)
	if err != nil {
		expiresAt = time.Time{}
	}

	err = m.persister.SaveToken(m.host, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}
