package commands

import (
	"fmt"
	"sync"
	"time"
)

// ConfigPersister implements auth.TokenPersister by writing tokens to the
// config file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// SaveToken stores token for the host saved under name.
func (p *ConfigPersister) SaveToken(name, token string, expiresAt time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config, err := loadConfig()
	if err != nil {
		return err
	}

	host, exists := config.Hosts[name]
	if !exists {
		return fmt.Errorf("host '%s': %w", name, ErrHostNotFound)
	}

	host.Token = token
	host.TokenExpiresAt = expiresAt
	host.LastRefreshed = time.Now()

	return saveConfigStruct(config)
}
