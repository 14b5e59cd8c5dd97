package services

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/observability/metrics"
	"github.com/haeli05/4626/internal/observability/tracing"
	"github.com/haeli05/4626/internal/vault"
)

// The service front-door for vault operations: each call gets a trace id
// and an operation-duration sample around the engine call.

func (s *Service) Deposit(ctx context.Context, caller, receiver string, assets sdkmath.Int) (vault.DepositResult, error) {
	ctx = tracing.InjectTraceID(ctx)
	return runVaultOperation("Deposit", func() (vault.DepositResult, error) {
		return s.ledger.Deposit(ctx, caller, receiver, assets)
	})
}

func (s *Service) Mint(ctx context.Context, caller, receiver string, shares sdkmath.Int) (vault.MintResult, error) {
	ctx = tracing.InjectTraceID(ctx)
	return runVaultOperation("Mint", func() (vault.MintResult, error) {
		return s.ledger.Mint(ctx, caller, receiver, shares)
	})
}

func (s *Service) Withdraw(ctx context.Context, caller, receiver, owner string, assets sdkmath.Int) (vault.WithdrawResult, error) {
	ctx = tracing.InjectTraceID(ctx)
	return runVaultOperation("Withdraw", func() (vault.WithdrawResult, error) {
		return s.ledger.Withdraw(ctx, caller, receiver, owner, assets)
	})
}

func (s *Service) Redeem(ctx context.Context, caller, receiver, owner string, shares sdkmath.Int) (vault.RedeemResult, error) {
	ctx = tracing.InjectTraceID(ctx)
	return runVaultOperation("Redeem", func() (vault.RedeemResult, error) {
		return s.ledger.Redeem(ctx, caller, receiver, owner, shares)
	})
}

func (s *Service) Unstake(ctx context.Context, caller string) (vault.UnstakeResult, error) {
	ctx = tracing.InjectTraceID(ctx)
	return runVaultOperation("Unstake", func() (vault.UnstakeResult, error) {
		return s.ledger.Unstake(ctx, caller)
	})
}

func (s *Service) AdminWithdraw(ctx context.Context, caller, receiver string, assets sdkmath.Int) error {
	ctx = tracing.InjectTraceID(ctx)
	_, err := runVaultOperation("AdminWithdraw", func() (struct{}, error) {
		return struct{}{}, s.ledger.AdminWithdraw(ctx, caller, receiver, assets)
	})
	return err
}

func (s *Service) SetFeeRate(ctx context.Context, caller string, newRateBps uint32) error {
	ctx = tracing.InjectTraceID(ctx)
	_, err := runVaultOperation("SetFeeRate", func() (struct{}, error) {
		return struct{}{}, s.ledger.SetFeeRate(ctx, caller, newRateBps)
	})
	return err
}

func (s *Service) WithdrawFees(ctx context.Context, caller string) (sdkmath.Int, error) {
	ctx = tracing.InjectTraceID(ctx)
	return runVaultOperation("WithdrawFees", func() (sdkmath.Int, error) {
		return s.ledger.WithdrawFees(ctx, caller)
	})
}

func (s *Service) SetMinDeposit(ctx context.Context, caller string, min sdkmath.Int) error {
	ctx = tracing.InjectTraceID(ctx)
	_, err := runVaultOperation("SetMinDeposit", func() (struct{}, error) {
		return struct{}{}, s.ledger.SetMinDeposit(ctx, caller, min)
	})
	return err
}

func (s *Service) InitiateDeposit(ctx context.Context, caller, receiver string, assets sdkmath.Int) (uint64, error) {
	ctx = tracing.InjectTraceID(ctx)
	return runVaultOperation("InitiateDeposit", func() (uint64, error) {
		return s.ledger.InitiateDeposit(ctx, caller, receiver, assets)
	})
}

func (s *Service) CompleteDeposit(ctx context.Context, caller string, operationID uint64) (sdkmath.Int, error) {
	ctx = tracing.InjectTraceID(ctx)
	return runVaultOperation("CompleteDeposit", func() (sdkmath.Int, error) {
		return s.ledger.CompleteDeposit(ctx, caller, operationID)
	})
}

func (s *Service) InitiateRedeem(ctx context.Context, caller, receiver, owner string, shares sdkmath.Int) (uint64, error) {
	ctx = tracing.InjectTraceID(ctx)
	return runVaultOperation("InitiateRedeem", func() (uint64, error) {
		return s.ledger.InitiateRedeem(ctx, caller, receiver, owner, shares)
	})
}

func (s *Service) CompleteRedeem(ctx context.Context, caller string, operationID uint64) (sdkmath.Int, error) {
	ctx = tracing.InjectTraceID(ctx)
	return runVaultOperation("CompleteRedeem", func() (sdkmath.Int, error) {
		return s.ledger.CompleteRedeem(ctx, caller, operationID)
	})
}

// Ledger exposes the engine for read-only queries (previews, staking info,
// pool totals).
func (s *Service) Ledger() *vault.Ledger {
	return s.ledger
}

func runVaultOperation[T any](operation string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordVaultOperationDuration(duration, operation, err != nil)
	return v, err
}
