package model

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/vault"
)

const VaultStateCollection = "vault_state"

// VaultStateDocument is the persisted aggregate state of the vault. There
// is a single document per vault, keyed by the vault id.
type VaultStateDocument struct {
	ID                 string `bson:"_id"`
	TotalAssets        string `bson:"total_assets"`
	TotalShares        string `bson:"total_shares"`
	FeeRateBps         uint32 `bson:"fee_rate_bps"`
	AccumulatedFees    string `bson:"accumulated_fees"`
	MinDeposit         string `bson:"min_deposit"`
	PendingLiquidation string `bson:"pending_liquidation"`
	UnwindCursor       uint64 `bson:"unwind_cursor"`
	WriteCursor        uint64 `bson:"write_cursor"`
	OperationArenaSize uint64 `bson:"operation_arena_size"`
}

func NewVaultStateDocument(vaultID string, s vault.Snapshot) *VaultStateDocument {
	return &VaultStateDocument{
		ID:                 vaultID,
		TotalAssets:        s.TotalAssets.String(),
		TotalShares:        s.TotalShares.String(),
		FeeRateBps:         s.FeeRateBps,
		AccumulatedFees:    s.AccumulatedFees.String(),
		MinDeposit:         s.MinDeposit.String(),
		PendingLiquidation: s.PendingLiquidation.String(),
		UnwindCursor:       s.UnwindCursor,
		WriteCursor:        s.WriteCursor,
		OperationArenaSize: s.OperationArenaSize,
	}
}

// ToSnapshot converts the document back into engine state.
func (d *VaultStateDocument) ToSnapshot() (vault.Snapshot, error) {
	totalAssets, err := parseInt(d.TotalAssets, "total_assets")
	if err != nil {
		return vault.Snapshot{}, err
	}
	totalShares, err := parseInt(d.TotalShares, "total_shares")
	if err != nil {
		return vault.Snapshot{}, err
	}
	fees, err := parseInt(d.AccumulatedFees, "accumulated_fees")
	if err != nil {
		return vault.Snapshot{}, err
	}
	minDeposit, err := parseInt(d.MinDeposit, "min_deposit")
	if err != nil {
		return vault.Snapshot{}, err
	}
	pending, err := parseInt(d.PendingLiquidation, "pending_liquidation")
	if err != nil {
		return vault.Snapshot{}, err
	}

	return vault.Snapshot{
		TotalAssets:        totalAssets,
		TotalShares:        totalShares,
		FeeRateBps:         d.FeeRateBps,
		AccumulatedFees:    fees,
		MinDeposit:         minDeposit,
		PendingLiquidation: pending,
		UnwindCursor:       d.UnwindCursor,
		WriteCursor:        d.WriteCursor,
		OperationArenaSize: d.OperationArenaSize,
	}, nil
}

func parseInt(s, field string) (sdkmath.Int, error) {
	v, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid %s value: %q", field, s)
	}
	return v, nil
}
