package shareledger

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// Client is the share-token capability. The engine is the only minter and
// burner; balance and allowance bookkeeping live behind this interface.
type Client interface {
	Mint(ctx context.Context, to string, amount sdkmath.Int) error
	Burn(ctx context.Context, from string, amount sdkmath.Int) error
	// SpendAllowance consumes spender's allowance over owner's shares,
	// failing if it is insufficient.
	SpendAllowance(ctx context.Context, owner, spender string, amount sdkmath.Int) error
	// RestoreAllowance returns a previously spent allowance. Compensation
	// only: the engine calls it when a later step of the same operation
	// fails after SpendAllowance already succeeded.
	RestoreAllowance(ctx context.Context, owner, spender string, amount sdkmath.Int) error
	BalanceOf(ctx context.Context, addr string) (sdkmath.Int, error)
	TotalSupply(ctx context.Context) (sdkmath.Int, error)
}
