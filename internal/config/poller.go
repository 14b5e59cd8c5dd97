package config

import (
	"errors"
	"time"
)

type PollerConfig struct {
	StalenessCheckInterval time.Duration `mapstructure:"staleness-check-interval"`
	VaultSyncInterval      time.Duration `mapstructure:"vault-sync-interval"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.StalenessCheckInterval <= 0 {
		return errors.New("staleness-check-interval must be positive")
	}

	if cfg.VaultSyncInterval <= 0 {
		return errors.New("vault-sync-interval must be positive")
	}

	return nil
}
