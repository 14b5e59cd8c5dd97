package types

import "fmt"

// Enum values for vault pricing mode
type PriceMode string

const (
	// PriceModeInternal converts at the vault's own supply/asset ratio.
	PriceModeInternal PriceMode = "INTERNAL_RATIO"
	// PriceModeOracle additionally applies the externally pushed price for
	// the vault's subject, and blocks conversions while an update is due.
	PriceModeOracle PriceMode = "ORACLE_PRICE"
)

func (m PriceMode) String() string {
	return string(m)
}

func (m PriceMode) Validate() error {
	switch m {
	case PriceModeInternal, PriceModeOracle:
		return nil
	default:
		return fmt.Errorf("unknown price mode: %s", m)
	}
}
