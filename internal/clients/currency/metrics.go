package currency

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/observability/metrics"
)

type clientWithMetrics struct {
	currency Client
}

func NewClientWithMetrics(currency Client) *clientWithMetrics {
	return &clientWithMetrics{currency: currency}
}

func (c *clientWithMetrics) Transfer(ctx context.Context, to string, amount sdkmath.Int) error {
	_, err := runCurrencyMethodWithMetrics("Transfer", func() (struct{}, error) {
		return struct{}{}, c.currency.Transfer(ctx, to, amount)
	})
	return err
}

func (c *clientWithMetrics) TransferFrom(ctx context.Context, from, to string, amount sdkmath.Int) error {
	_, err := runCurrencyMethodWithMetrics("TransferFrom", func() (struct{}, error) {
		return struct{}{}, c.currency.TransferFrom(ctx, from, to, amount)
	})
	return err
}

func (c *clientWithMetrics) BalanceOf(ctx context.Context, addr string) (sdkmath.Int, error) {
	return runCurrencyMethodWithMetrics("BalanceOf", func() (sdkmath.Int, error) {
		return c.currency.BalanceOf(ctx, addr)
	})
}

func (c *clientWithMetrics) Allowance(ctx context.Context, owner, spender string) (sdkmath.Int, error) {
	return runCurrencyMethodWithMetrics("Allowance", func() (sdkmath.Int, error) {
		return c.currency.Allowance(ctx, owner, spender)
	})
}

func runCurrencyMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordCurrencyClientLatency(duration, method, err != nil)
	return v, err
}
