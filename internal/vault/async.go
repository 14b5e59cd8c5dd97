package vault

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/types"
)

// AsyncOperation is one record in the two-phase arena. The payload is
// immutable; resolution is deletion. A zeroed record (Timestamp.IsZero())
// is what a completed operation leaves behind, which is deliberately
// indistinguishable from an id that never carried a record of that kind.
type AsyncOperation struct {
	ID        uint64
	User      string
	Amount    sdkmath.Int
	Timestamp time.Time
	Kind      types.OperationKind
}

// Pending reports whether the record still awaits completion.
func (op AsyncOperation) Pending() bool {
	return !op.Timestamp.IsZero()
}

// nextOperationID allocates a monotonic id. Ids are 1-based so that a zero
// id is never valid.
func (l *Ledger) nextOperationID() uint64 {
	return uint64(len(l.ops)) + 1
}

// InitiateDeposit pulls the asset amount into custody immediately and
// records the intent. Completion only settles the share side; the pulled
// funds are already irrevocably committed.
func (l *Ledger) InitiateDeposit(ctx context.Context, caller, receiver string, assets sdkmath.Int) (uint64, error) {
	release, err := l.guard.enter()
	if err != nil {
		return 0, err
	}
	defer release()

	if err := l.requireActive(ctx); err != nil {
		return 0, err
	}
	if receiver == "" {
		return 0, types.ErrZeroAddress
	}
	if assets.IsNil() || assets.LT(l.minDeposit) {
		return 0, fmt.Errorf("%s below %s: %w", assets, l.minDeposit, types.ErrBelowMinimum)
	}

	if err := l.currency.TransferFrom(ctx, caller, l.vaultAddr, assets); err != nil {
		return 0, fmt.Errorf("failed to pull deposit: %w", err)
	}

	id := l.nextOperationID()
	l.ops = append(l.ops, AsyncOperation{
		ID:        id,
		User:      receiver,
		Amount:    assets,
		Timestamp: l.now(),
		Kind:      types.OperationDeposit,
	})

	l.emit(types.EventAsyncDepositInitiated, types.AsyncInitiatedPayload{
		OperationID: id,
		User:        receiver,
		Amount:      assets,
	})
	return id, nil
}

// CompleteDeposit settles a pending deposit: the fee is charged at the
// rate current now, shares are minted on the net amount at the current
// price, and the record is deleted. A second completion fails.
func (l *Ledger) CompleteDeposit(ctx context.Context, caller string, operationID uint64) (sdkmath.Int, error) {
	release, err := l.guard.enter()
	if err != nil {
		return sdkmath.Int{}, err
	}
	defer release()

	if err := l.requireActive(ctx); err != nil {
		return sdkmath.Int{}, err
	}
	if err := l.requireAuthorized(ctx, caller); err != nil {
		return sdkmath.Int{}, err
	}

	op, err := l.pendingOperation(operationID, types.OperationDeposit)
	if err != nil {
		return sdkmath.Int{}, err
	}

	price, err := l.price()
	if err != nil {
		return sdkmath.Int{}, err
	}
	fee := ComputeFee(op.Amount, l.feeRateBps)
	net := op.Amount.Sub(fee)
	shares, err := ConvertToShares(net, l.totalAssets, l.totalShares, price, l.priceMode, RoundDown)
	if err != nil {
		return sdkmath.Int{}, err
	}

	if err := l.shares.Mint(ctx, op.User, shares); err != nil {
		return sdkmath.Int{}, fmt.Errorf("failed to mint shares: %w", err)
	}

	l.totalAssets = l.totalAssets.Add(net)
	l.totalShares = l.totalShares.Add(shares)
	l.accumulatedFees = l.accumulatedFees.Add(fee)
	l.ops[operationID-1] = AsyncOperation{}

	l.emit(types.EventAsyncOperationCompleted, types.AsyncCompletedPayload{
		OperationID: operationID,
		User:        op.User,
		Amount:      shares,
		IsDeposit:   true,
	})
	return shares, nil
}

// InitiateRedeem burns the owner's shares immediately and records the
// intent; the asset side settles at completion, at whatever price is
// current then.
func (l *Ledger) InitiateRedeem(ctx context.Context, caller, receiver, owner string, shares sdkmath.Int) (uint64, error) {
	release, err := l.guard.enter()
	if err != nil {
		return 0, err
	}
	defer release()

	if err := l.requireActive(ctx); err != nil {
		return 0, err
	}
	if receiver == "" || owner == "" {
		return 0, types.ErrZeroAddress
	}
	if shares.IsNil() || !shares.IsPositive() {
		return 0, types.ErrZeroAmount
	}

	if err := l.burnFor(ctx, caller, owner, shares); err != nil {
		return 0, err
	}
	l.totalShares = l.totalShares.Sub(shares)

	id := l.nextOperationID()
	l.ops = append(l.ops, AsyncOperation{
		ID:        id,
		User:      receiver,
		Amount:    shares,
		Timestamp: l.now(),
		Kind:      types.OperationRedeem,
	})

	l.emit(types.EventAsyncRedeemInitiated, types.AsyncInitiatedPayload{
		OperationID: id,
		User:        receiver,
		Amount:      shares,
	})
	return id, nil
}

// CompleteRedeem settles a pending redeem: the stored share amount is
// converted at the current price, rounded down, and paid to the stored
// receiver. The record is deleted; a second completion fails.
func (l *Ledger) CompleteRedeem(ctx context.Context, caller string, operationID uint64) (sdkmath.Int, error) {
	release, err := l.guard.enter()
	if err != nil {
		return sdkmath.Int{}, err
	}
	defer release()

	if err := l.requireActive(ctx); err != nil {
		return sdkmath.Int{}, err
	}
	if err := l.requireAuthorized(ctx, caller); err != nil {
		return sdkmath.Int{}, err
	}

	op, err := l.pendingOperation(operationID, types.OperationRedeem)
	if err != nil {
		return sdkmath.Int{}, err
	}

	price, err := l.price()
	if err != nil {
		return sdkmath.Int{}, err
	}
	assets, err := ConvertToAssets(op.Amount, l.totalAssets, l.totalShares, price, l.priceMode, RoundDown)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if assets.GT(l.totalAssets) {
		return sdkmath.Int{}, fmt.Errorf("%s above pool %s: %w", assets, l.totalAssets, types.ErrInsufficientAssets)
	}

	if err := l.currency.Transfer(ctx, op.User, assets); err != nil {
		return sdkmath.Int{}, fmt.Errorf("failed to transfer assets: %w", err)
	}

	l.totalAssets = l.totalAssets.Sub(assets)
	l.ops[operationID-1] = AsyncOperation{}

	l.emit(types.EventAsyncOperationCompleted, types.AsyncCompletedPayload{
		OperationID: operationID,
		User:        op.User,
		Amount:      assets,
		IsDeposit:   false,
	})
	return assets, nil
}

// pendingOperation resolves an id to its live record. Ids beyond the arena
// were never allocated; an allocated slot whose record is zeroed has been
// completed (or, equivalently, never held this kind — see the note on
// AsyncOperation).
func (l *Ledger) pendingOperation(id uint64, kind types.OperationKind) (AsyncOperation, error) {
	if id == 0 || id > uint64(len(l.ops)) {
		return AsyncOperation{}, fmt.Errorf("operation %d: %w", id, types.ErrNotFound)
	}
	op := l.ops[id-1]
	if !op.Pending() {
		return AsyncOperation{}, fmt.Errorf("operation %d: %w", id, types.ErrAlreadyCompleted)
	}
	if op.Kind != kind {
		return AsyncOperation{}, fmt.Errorf("operation %d is %s: %w", id, op.Kind, types.ErrNotFound)
	}
	return op, nil
}

// Operations returns a copy of the full arena, zeroed slots included, for
// persistence.
func (l *Ledger) Operations() []AsyncOperation {
	defer l.guard.read()()
	out := make([]AsyncOperation, len(l.ops))
	copy(out, l.ops)
	return out
}

// PendingOperations returns the live records for persistence and
// inspection.
func (l *Ledger) PendingOperations() []AsyncOperation {
	defer l.guard.read()()
	var out []AsyncOperation
	for _, op := range l.ops {
		if op.Pending() {
			out = append(out, op)
		}
	}
	return out
}

// RestoreOperations rebuilds the arena from persisted records. arenaSize
// is the highest id ever allocated; slots without a live record stay
// zeroed so completed ids keep failing AlreadyCompleted after a restart.
func (l *Ledger) RestoreOperations(ops []AsyncOperation, arenaSize uint64) {
	defer l.guard.write()()
	l.ops = make([]AsyncOperation, arenaSize)
	for _, op := range ops {
		if op.ID == 0 || op.ID > arenaSize {
			continue
		}
		l.ops[op.ID-1] = op
	}
}
