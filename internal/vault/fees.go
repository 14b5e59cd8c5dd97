package vault

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/types"
)

// Basis-point denominator for fee rates.
const bpsDenominator = 10_000

// ComputeFee returns assets * bps / 10000, rounded down. Used on the
// deposit path where the fee is netted out of the incoming amount.
func ComputeFee(assets sdkmath.Int, bps uint32) sdkmath.Int {
	return assets.MulRaw(int64(bps)).QuoRaw(bpsDenominator)
}

// ComputeFeeOnTop returns assets * bps / 10000, rounded up. Used on the
// mint path where the fee is added on top of the net assets, so the
// remainder accrues to the pool rather than the minter.
func ComputeFeeOnTop(assets sdkmath.Int, bps uint32) sdkmath.Int {
	return assets.MulRaw(int64(bps)).AddRaw(bpsDenominator - 1).QuoRaw(bpsDenominator)
}

// SetFeeRate replaces the fee rate. Authorized callers only; rates above
// the configured cap are rejected.
func (l *Ledger) SetFeeRate(ctx context.Context, caller string, newRateBps uint32) error {
	release, err := l.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := l.requireAuthorized(ctx, caller); err != nil {
		return err
	}
	if newRateBps > l.maxFeeBps {
		return fmt.Errorf("%d bps: %w", newRateBps, types.ErrInvalidFee)
	}

	old := l.feeRateBps
	l.feeRateBps = newRateBps
	l.emit(types.EventFeeUpdated, types.FeeUpdatedPayload{
		OldRateBps: old,
		NewRateBps: newRateBps,
	})
	return nil
}

// WithdrawFees transfers the accumulated fee balance to the fee recipient
// and resets it. Accumulated fees are a bookkeeping claim against custody,
// tracked outside totalAssets, so the pool totals are untouched here.
func (l *Ledger) WithdrawFees(ctx context.Context, caller string) (sdkmath.Int, error) {
	release, err := l.guard.enter()
	if err != nil {
		return sdkmath.Int{}, err
	}
	defer release()

	if err := l.requireAuthorized(ctx, caller); err != nil {
		return sdkmath.Int{}, err
	}

	amount := l.accumulatedFees
	if amount.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	l.accumulatedFees = sdkmath.ZeroInt()
	if err := l.currency.Transfer(ctx, l.feeRecipient, amount); err != nil {
		l.accumulatedFees = amount
		return sdkmath.Int{}, fmt.Errorf("failed to transfer fees: %w", err)
	}

	l.emit(types.EventFeesCollected, types.FeesCollectedPayload{
		Receiver: l.feeRecipient,
		Amount:   amount,
	})
	return amount, nil
}
