package currency

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// Client is the fungible base-currency capability the engine collaborates
// with. Transfers fail on insufficient balance or allowance; the engine
// treats any failure as fatal to the calling operation.
type Client interface {
	// Transfer moves amount from the vault's custody account to `to`.
	Transfer(ctx context.Context, to string, amount sdkmath.Int) error
	// TransferFrom moves amount from `from` into the vault's custody
	// account, spending the vault's allowance.
	TransferFrom(ctx context.Context, from, to string, amount sdkmath.Int) error
	BalanceOf(ctx context.Context, addr string) (sdkmath.Int, error)
	Allowance(ctx context.Context, owner, spender string) (sdkmath.Int, error)
}
