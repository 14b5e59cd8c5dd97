package config

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/types"
	"github.com/haeli05/4626/internal/vault"
)

// VaultConfig defines the construction-time parameters of the vault ledger.
// MinDeposit is a base-unit integer carried as a string so it survives
// amounts beyond 64 bits.
type VaultConfig struct {
	VaultID      string   `mapstructure:"vault-id"`
	Mode         string   `mapstructure:"mode"`
	Subject      string   `mapstructure:"subject"`
	FeeRateBps   uint32   `mapstructure:"fee-rate-bps"`
	MaxFeeBps    uint32   `mapstructure:"max-fee-bps"`
	MinDeposit   string   `mapstructure:"min-deposit"`
	VaultAddress string   `mapstructure:"vault-address"`
	FeeRecipient string   `mapstructure:"fee-recipient"`
	Operators    []string `mapstructure:"operators"`
}

func (cfg *VaultConfig) Validate() error {
	if cfg.VaultID == "" {
		return fmt.Errorf("vault-id cannot be empty")
	}
	if len(cfg.Operators) == 0 {
		return fmt.Errorf("at least one operator address is required")
	}
	_, err := cfg.ToEngineConfig()
	return err
}

// ToEngineConfig converts the file representation into the ledger's config,
// which performs the full semantic validation.
func (cfg *VaultConfig) ToEngineConfig() (vault.Config, error) {
	minDeposit, ok := sdkmath.NewIntFromString(cfg.MinDeposit)
	if !ok {
		return vault.Config{}, fmt.Errorf("invalid min-deposit value: %q", cfg.MinDeposit)
	}

	engineCfg := vault.Config{
		Mode:         types.PriceMode(cfg.Mode),
		Subject:      cfg.Subject,
		FeeRateBps:   cfg.FeeRateBps,
		MaxFeeBps:    cfg.MaxFeeBps,
		MinDeposit:   minDeposit,
		VaultAddress: cfg.VaultAddress,
		FeeRecipient: cfg.FeeRecipient,
	}
	if err := engineCfg.Validate(); err != nil {
		return vault.Config{}, err
	}
	return engineCfg, nil
}
