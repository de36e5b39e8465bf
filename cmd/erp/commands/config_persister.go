package commands

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

// ConfigPersister implements the auth.ConfigPersister interface by writing
// refreshed tokens to the CLI config file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateToken stores the token, its expiry and the refresh token.
func (p *ConfigPersister) UpdateToken(accessToken string, expiresAt time.Time, refreshToken string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	config.Token = accessToken
	if !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	if refreshToken != "" {
		config.RefreshToken = refreshToken
	}

	now := time.Now()
	config.LastRefreshed = &now

	err := saveConfigStruct(config)
	if err != nil {
		return err
	}

	// Later loads in this process see the new token.
	viper.Set("token", config.Token)
	viper.Set("refresh_token", config.RefreshToken)

	return nil
}
