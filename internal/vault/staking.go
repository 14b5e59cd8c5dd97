package vault

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/types"
)

// Contribution is one record in the append-only staking log. Records are
// never physically removed: an individual unstake flips Active, and an
// administrative sweep advances the unwind cursor past the record instead.
// A record below the unwind cursor is settled regardless of its flag.
type Contribution struct {
	Contributor string
	Amount      sdkmath.Int
	Timestamp   time.Time
	Active      bool
}

// StakeInfo pairs a live contribution with its absolute log index.
type StakeInfo struct {
	Index uint64
	Contribution
}

func (l *Ledger) writeCursor() uint64 {
	return uint64(len(l.contributions))
}

func (l *Ledger) appendContribution(contributor string, amount sdkmath.Int) uint64 {
	idx := l.writeCursor()
	l.contributions = append(l.contributions, Contribution{
		Contributor: contributor,
		Amount:      amount,
		Timestamp:   l.now(),
		Active:      true,
	})
	l.pendingLiquidation = l.pendingLiquidation.Add(amount)
	return idx
}

type UnstakeResult struct {
	Assets sdkmath.Int
	Shares sdkmath.Int
}

// Unstake deactivates every live contribution of the caller at or above
// the unwind cursor, burns the corresponding shares (rounded up) and pays
// the accumulated amount out. With no live records it returns zero amounts
// and emits nothing, so it is always safe to call speculatively.
func (l *Ledger) Unstake(ctx context.Context, caller string) (UnstakeResult, error) {
	release, err := l.guard.enter()
	if err != nil {
		return UnstakeResult{}, err
	}
	defer release()

	if err := l.requireActive(ctx); err != nil {
		return UnstakeResult{}, err
	}
	if caller == "" {
		return UnstakeResult{}, types.ErrZeroAddress
	}

	var indices []uint64
	amount := sdkmath.ZeroInt()
	for i := l.unwindCursor; i < l.writeCursor(); i++ {
		rec := l.contributions[i]
		if rec.Active && rec.Contributor == caller {
			indices = append(indices, i)
			amount = amount.Add(rec.Amount)
		}
	}
	if len(indices) == 0 {
		return UnstakeResult{Assets: sdkmath.ZeroInt(), Shares: sdkmath.ZeroInt()}, nil
	}

	price, err := l.price()
	if err != nil {
		return UnstakeResult{}, err
	}
	shares, err := ConvertToShares(amount, l.totalAssets, l.totalShares, price, l.priceMode, RoundUp)
	if err != nil {
		return UnstakeResult{}, err
	}
	if amount.GT(l.totalAssets) {
		return UnstakeResult{}, fmt.Errorf("%s above pool %s: %w", amount, l.totalAssets, types.ErrInsufficientAssets)
	}

	if err := l.shares.Burn(ctx, caller, shares); err != nil {
		return UnstakeResult{}, fmt.Errorf("failed to burn shares: %w", err)
	}
	if err := l.currency.Transfer(ctx, caller, amount); err != nil {
		if rbErr := l.shares.Mint(ctx, caller, shares); rbErr != nil {
			return UnstakeResult{}, fmt.Errorf("failed to transfer assets: %w (share restore also failed: %v)", err, rbErr)
		}
		return UnstakeResult{}, fmt.Errorf("failed to transfer assets: %w", err)
	}

	for _, i := range indices {
		l.contributions[i].Active = false
	}
	l.totalAssets = l.totalAssets.Sub(amount)
	l.totalShares = l.totalShares.Sub(shares)
	l.pendingLiquidation = l.pendingLiquidation.Sub(amount)
	if l.pendingLiquidation.IsNegative() {
		l.pendingLiquidation = sdkmath.ZeroInt()
	}

	l.emit(types.EventUnstake, types.UnstakePayload{
		Staker: caller,
		Assets: amount,
		Shares: shares,
	})
	return UnstakeResult{Assets: amount, Shares: shares}, nil
}

// GetStakingInfo returns the contributor's live records: active ones at or
// above the unwind cursor. Records swept by AdminWithdraw do not appear
// even when their Active flag was never flipped.
func (l *Ledger) GetStakingInfo(contributor string) []StakeInfo {
	defer l.guard.read()()
	var out []StakeInfo
	for i := l.unwindCursor; i < l.writeCursor(); i++ {
		rec := l.contributions[i]
		if rec.Active && rec.Contributor == contributor {
			out = append(out, StakeInfo{Index: i, Contribution: rec})
		}
	}
	return out
}

// Contributions returns a copy of the full log for persistence.
func (l *Ledger) Contributions() []Contribution {
	defer l.guard.read()()
	out := make([]Contribution, len(l.contributions))
	copy(out, l.contributions)
	return out
}

// RestoreContributions installs a persisted log. Bootstrap only.
func (l *Ledger) RestoreContributions(recs []Contribution) {
	defer l.guard.write()()
	l.contributions = make([]Contribution, len(recs))
	copy(l.contributions, recs)
}
