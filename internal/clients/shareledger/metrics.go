package shareledger

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/observability/metrics"
)

type clientWithMetrics struct {
	shares Client
}

func NewClientWithMetrics(shares Client) *clientWithMetrics {
	return &clientWithMetrics{shares: shares}
}

func (c *clientWithMetrics) Mint(ctx context.Context, to string, amount sdkmath.Int) error {
	_, err := runShareLedgerMethodWithMetrics("Mint", func() (struct{}, error) {
		return struct{}{}, c.shares.Mint(ctx, to, amount)
	})
	return err
}

func (c *clientWithMetrics) Burn(ctx context.Context, from string, amount sdkmath.Int) error {
	_, err := runShareLedgerMethodWithMetrics("Burn", func() (struct{}, error) {
		return struct{}{}, c.shares.Burn(ctx, from, amount)
	})
	return err
}

func (c *clientWithMetrics) SpendAllowance(ctx context.Context, owner, spender string, amount sdkmath.Int) error {
	_, err := runShareLedgerMethodWithMetrics("SpendAllowance", func() (struct{}, error) {
		return struct{}{}, c.shares.SpendAllowance(ctx, owner, spender, amount)
	})
	return err
}

func (c *clientWithMetrics) RestoreAllowance(ctx context.Context, owner, spender string, amount sdkmath.Int) error {
	_, err := runShareLedgerMethodWithMetrics("RestoreAllowance", func() (struct{}, error) {
		return struct{}{}, c.shares.RestoreAllowance(ctx, owner, spender, amount)
	})
	return err
}

func (c *clientWithMetrics) BalanceOf(ctx context.Context, addr string) (sdkmath.Int, error) {
	return runShareLedgerMethodWithMetrics("BalanceOf", func() (sdkmath.Int, error) {
		return c.shares.BalanceOf(ctx, addr)
	})
}

func (c *clientWithMetrics) TotalSupply(ctx context.Context) (sdkmath.Int, error) {
	return runShareLedgerMethodWithMetrics("TotalSupply", func() (sdkmath.Int, error) {
		return c.shares.TotalSupply(ctx)
	})
}

func runShareLedgerMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordShareLedgerClientLatency(duration, method, err != nil)
	return v, err
}
