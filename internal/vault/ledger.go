package vault

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/clients/currency"
	"github.com/haeli05/4626/internal/clients/gate"
	"github.com/haeli05/4626/internal/clients/shareledger"
	"github.com/haeli05/4626/internal/pricestore"
	"github.com/haeli05/4626/internal/types"
)

// Ledger owns the vault's aggregate accounting state: pool totals, the fee
// ledger, the append-only contribution log and the two-phase operation
// arena. Every mutation runs under the re-entrancy guard and mutates
// in-memory state only after all preconditions and arithmetic have passed,
// so a failed call leaves nothing behind.
type Ledger struct {
	guard guard
	now   func() time.Time
	sink  types.EventSink

	prices   *pricestore.Store
	currency currency.Client
	shares   shareledger.Client
	gate     gate.Client

	vaultAddr    string
	feeRecipient string

	priceMode types.PriceMode
	subject   string

	totalAssets     sdkmath.Int
	totalShares     sdkmath.Int
	feeRateBps      uint32
	maxFeeBps       uint32
	accumulatedFees sdkmath.Int
	minDeposit      sdkmath.Int

	// staking log, see staking.go
	contributions      []Contribution
	unwindCursor       uint64
	pendingLiquidation sdkmath.Int

	// two-phase arena, see async.go
	ops []AsyncOperation
}

// Config carries the construction-time parameters of a vault.
type Config struct {
	Mode         types.PriceMode
	Subject      string
	FeeRateBps   uint32
	MaxFeeBps    uint32
	MinDeposit   sdkmath.Int
	VaultAddress string
	FeeRecipient string
}

func (cfg *Config) Validate() error {
	if err := cfg.Mode.Validate(); err != nil {
		return err
	}
	if cfg.Mode == types.PriceModeOracle && cfg.Subject == "" {
		return fmt.Errorf("oracle mode requires a price subject")
	}
	if cfg.MaxFeeBps > bpsDenominator {
		return fmt.Errorf("max fee cap above %d bps: %w", bpsDenominator, types.ErrInvalidFee)
	}
	if cfg.FeeRateBps > cfg.MaxFeeBps {
		return fmt.Errorf("%d bps above cap %d: %w", cfg.FeeRateBps, cfg.MaxFeeBps, types.ErrInvalidFee)
	}
	if cfg.MinDeposit.IsNil() || !cfg.MinDeposit.IsPositive() {
		return types.ErrInvalidMinDeposit
	}
	if cfg.VaultAddress == "" || cfg.FeeRecipient == "" {
		return types.ErrZeroAddress
	}
	return nil
}

type Option func(*Ledger)

// WithClock overrides the time source used for contribution and operation
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithEventSink attaches the observability sink.
func WithEventSink(sink types.EventSink) Option {
	return func(l *Ledger) {
		l.sink = sink
	}
}

func New(
	cfg Config,
	prices *pricestore.Store,
	cur currency.Client,
	shares shareledger.Client,
	g gate.Client,
	opts ...Option,
) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Ledger{
		now:                time.Now,
		sink:               types.NoopSink{},
		prices:             prices,
		currency:           cur,
		shares:             shares,
		gate:               g,
		vaultAddr:          cfg.VaultAddress,
		feeRecipient:       cfg.FeeRecipient,
		priceMode:          cfg.Mode,
		subject:            cfg.Subject,
		totalAssets:        sdkmath.ZeroInt(),
		totalShares:        sdkmath.ZeroInt(),
		feeRateBps:         cfg.FeeRateBps,
		maxFeeBps:          cfg.MaxFeeBps,
		accumulatedFees:    sdkmath.ZeroInt(),
		minDeposit:         cfg.MinDeposit,
		pendingLiquidation: sdkmath.ZeroInt(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Ledger) emit(t types.EventTypes, payload interface{}) {
	l.sink.Emit(types.Event{
		Type:      t,
		Timestamp: l.now(),
		Payload:   payload,
	})
}

func (l *Ledger) requireActive(ctx context.Context) error {
	paused, err := l.gate.IsPaused(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pause state: %w", err)
	}
	if paused {
		return types.ErrPaused
	}
	return nil
}

func (l *Ledger) requireAuthorized(ctx context.Context, caller string) error {
	ok, err := l.gate.IsAuthorized(ctx, caller)
	if err != nil {
		return fmt.Errorf("failed to check authorization: %w", err)
	}
	if !ok {
		return fmt.Errorf("caller %s: %w", caller, types.ErrUnauthorized)
	}
	return nil
}

type DepositResult struct {
	Shares            sdkmath.Int
	Fee               sdkmath.Int
	ContributionIndex uint64
}

// Deposit pulls a gross asset amount from the caller, nets the fee out of
// it, credits the pool and mints shares on the net amount, rounded down.
func (l *Ledger) Deposit(ctx context.Context, caller, receiver string, assets sdkmath.Int) (DepositResult, error) {
	release, err := l.guard.enter()
	if err != nil {
		return DepositResult{}, err
	}
	defer release()

	if err := l.requireActive(ctx); err != nil {
		return DepositResult{}, err
	}
	if receiver == "" {
		return DepositResult{}, types.ErrZeroAddress
	}
	if assets.IsNil() || assets.LT(l.minDeposit) {
		return DepositResult{}, fmt.Errorf("%s below %s: %w", assets, l.minDeposit, types.ErrBelowMinimum)
	}

	price, err := l.price()
	if err != nil {
		return DepositResult{}, err
	}
	fee := ComputeFee(assets, l.feeRateBps)
	net := assets.Sub(fee)
	shares, err := ConvertToShares(net, l.totalAssets, l.totalShares, price, l.priceMode, RoundDown)
	if err != nil {
		return DepositResult{}, err
	}

	if err := l.currency.TransferFrom(ctx, caller, l.vaultAddr, assets); err != nil {
		return DepositResult{}, fmt.Errorf("failed to pull deposit: %w", err)
	}
	if err := l.shares.Mint(ctx, receiver, shares); err != nil {
		// return the pulled funds; nothing else has been applied yet
		if rbErr := l.currency.Transfer(ctx, caller, assets); rbErr != nil {
			return DepositResult{}, fmt.Errorf("failed to mint shares: %w (refund also failed: %v)", err, rbErr)
		}
		return DepositResult{}, fmt.Errorf("failed to mint shares: %w", err)
	}

	l.totalAssets = l.totalAssets.Add(net)
	l.totalShares = l.totalShares.Add(shares)
	l.accumulatedFees = l.accumulatedFees.Add(fee)
	idx := l.appendContribution(receiver, net)

	l.emit(types.EventDeposit, types.DepositPayload{
		Caller:   caller,
		Receiver: receiver,
		Assets:   assets,
		Shares:   shares,
		Fee:      fee,
	})
	return DepositResult{Shares: shares, Fee: fee, ContributionIndex: idx}, nil
}

type MintResult struct {
	Assets            sdkmath.Int
	Fee               sdkmath.Int
	ContributionIndex uint64
}

// Mint is the share-denominated twin of Deposit: the caller receives
// exactly shares and pays the asset amount that requires, rounded up, plus
// the fee on top.
func (l *Ledger) Mint(ctx context.Context, caller, receiver string, shares sdkmath.Int) (MintResult, error) {
	release, err := l.guard.enter()
	if err != nil {
		return MintResult{}, err
	}
	defer release()

	if err := l.requireActive(ctx); err != nil {
		return MintResult{}, err
	}
	if receiver == "" {
		return MintResult{}, types.ErrZeroAddress
	}
	if shares.IsNil() || !shares.IsPositive() {
		return MintResult{}, types.ErrZeroAmount
	}

	price, err := l.price()
	if err != nil {
		return MintResult{}, err
	}
	net, err := ConvertToAssets(shares, l.totalAssets, l.totalShares, price, l.priceMode, RoundUp)
	if err != nil {
		return MintResult{}, err
	}
	fee := ComputeFeeOnTop(net, l.feeRateBps)
	gross := net.Add(fee)
	if gross.LT(l.minDeposit) {
		return MintResult{}, fmt.Errorf("%s below %s: %w", gross, l.minDeposit, types.ErrBelowMinimum)
	}

	if err := l.currency.TransferFrom(ctx, caller, l.vaultAddr, gross); err != nil {
		return MintResult{}, fmt.Errorf("failed to pull assets: %w", err)
	}
	if err := l.shares.Mint(ctx, receiver, shares); err != nil {
		if rbErr := l.currency.Transfer(ctx, caller, gross); rbErr != nil {
			return MintResult{}, fmt.Errorf("failed to mint shares: %w (refund also failed: %v)", err, rbErr)
		}
		return MintResult{}, fmt.Errorf("failed to mint shares: %w", err)
	}

	l.totalAssets = l.totalAssets.Add(net)
	l.totalShares = l.totalShares.Add(shares)
	l.accumulatedFees = l.accumulatedFees.Add(fee)
	idx := l.appendContribution(receiver, net)

	l.emit(types.EventDeposit, types.DepositPayload{
		Caller:   caller,
		Receiver: receiver,
		Assets:   gross,
		Shares:   shares,
		Fee:      fee,
	})
	return MintResult{Assets: gross, Fee: fee, ContributionIndex: idx}, nil
}

type WithdrawResult struct {
	Shares sdkmath.Int
}

// Withdraw burns the share amount the requested assets cost, rounded up,
// and pays out exactly assets. When caller and owner differ the caller
// spends the owner's share allowance first.
func (l *Ledger) Withdraw(ctx context.Context, caller, receiver, owner string, assets sdkmath.Int) (WithdrawResult, error) {
	release, err := l.guard.enter()
	if err != nil {
		return WithdrawResult{}, err
	}
	defer release()

	if err := l.requireActive(ctx); err != nil {
		return WithdrawResult{}, err
	}
	if receiver == "" || owner == "" {
		return WithdrawResult{}, types.ErrZeroAddress
	}
	if assets.IsNil() || !assets.IsPositive() {
		return WithdrawResult{}, types.ErrZeroAmount
	}
	if assets.GT(l.totalAssets) {
		return WithdrawResult{}, fmt.Errorf("%s above pool %s: %w", assets, l.totalAssets, types.ErrInsufficientAssets)
	}

	price, err := l.price()
	if err != nil {
		return WithdrawResult{}, err
	}
	shares, err := ConvertToShares(assets, l.totalAssets, l.totalShares, price, l.priceMode, RoundUp)
	if err != nil {
		return WithdrawResult{}, err
	}

	if err := l.burnFor(ctx, caller, owner, shares); err != nil {
		return WithdrawResult{}, err
	}
	if err := l.currency.Transfer(ctx, receiver, assets); err != nil {
		if rbErr := l.unburnFor(ctx, caller, owner, shares); rbErr != nil {
			return WithdrawResult{}, fmt.Errorf("failed to transfer assets: %w (share restore also failed: %v)", err, rbErr)
		}
		return WithdrawResult{}, fmt.Errorf("failed to transfer assets: %w", err)
	}

	l.totalAssets = l.totalAssets.Sub(assets)
	l.totalShares = l.totalShares.Sub(shares)

	l.emit(types.EventWithdraw, types.WithdrawPayload{
		Caller:   caller,
		Receiver: receiver,
		Owner:    owner,
		Assets:   assets,
		Shares:   shares,
	})
	return WithdrawResult{Shares: shares}, nil
}

type RedeemResult struct {
	Assets sdkmath.Int
}

// Redeem burns exactly shares and pays out their asset value, rounded
// down.
func (l *Ledger) Redeem(ctx context.Context, caller, receiver, owner string, shares sdkmath.Int) (RedeemResult, error) {
	release, err := l.guard.enter()
	if err != nil {
		return RedeemResult{}, err
	}
	defer release()

	if err := l.requireActive(ctx); err != nil {
		return RedeemResult{}, err
	}
	if receiver == "" || owner == "" {
		return RedeemResult{}, types.ErrZeroAddress
	}
	if shares.IsNil() || !shares.IsPositive() {
		return RedeemResult{}, types.ErrZeroAmount
	}

	price, err := l.price()
	if err != nil {
		return RedeemResult{}, err
	}
	assets, err := ConvertToAssets(shares, l.totalAssets, l.totalShares, price, l.priceMode, RoundDown)
	if err != nil {
		return RedeemResult{}, err
	}
	if assets.GT(l.totalAssets) {
		return RedeemResult{}, fmt.Errorf("%s above pool %s: %w", assets, l.totalAssets, types.ErrInsufficientAssets)
	}

	if err := l.burnFor(ctx, caller, owner, shares); err != nil {
		return RedeemResult{}, err
	}
	if err := l.currency.Transfer(ctx, receiver, assets); err != nil {
		if rbErr := l.unburnFor(ctx, caller, owner, shares); rbErr != nil {
			return RedeemResult{}, fmt.Errorf("failed to transfer assets: %w (share restore also failed: %v)", err, rbErr)
		}
		return RedeemResult{}, fmt.Errorf("failed to transfer assets: %w", err)
	}

	l.totalAssets = l.totalAssets.Sub(assets)
	l.totalShares = l.totalShares.Sub(shares)

	l.emit(types.EventWithdraw, types.WithdrawPayload{
		Caller:   caller,
		Receiver: receiver,
		Owner:    owner,
		Assets:   assets,
		Shares:   shares,
	})
	return RedeemResult{Assets: assets}, nil
}

// burnFor spends the owner's allowance when caller and owner differ, then
// burns the shares. A burn failure returns the spent allowance so a failed
// operation leaves the owner's grant intact.
func (l *Ledger) burnFor(ctx context.Context, caller, owner string, shares sdkmath.Int) error {
	if caller != owner {
		if err := l.shares.SpendAllowance(ctx, owner, caller, shares); err != nil {
			return fmt.Errorf("failed to spend allowance: %w", err)
		}
	}
	if err := l.shares.Burn(ctx, owner, shares); err != nil {
		if caller != owner {
			if rbErr := l.shares.RestoreAllowance(ctx, owner, caller, shares); rbErr != nil {
				return fmt.Errorf("failed to burn shares: %w (allowance restore also failed: %v)", err, rbErr)
			}
		}
		return fmt.Errorf("failed to burn shares: %w", err)
	}
	return nil
}

// unburnFor reverses a successful burnFor when a later step fails: the
// shares are minted back and, for a third-party caller, the spent
// allowance is returned.
func (l *Ledger) unburnFor(ctx context.Context, caller, owner string, shares sdkmath.Int) error {
	if err := l.shares.Mint(ctx, owner, shares); err != nil {
		return err
	}
	if caller != owner {
		return l.shares.RestoreAllowance(ctx, owner, caller, shares)
	}
	return nil
}

// AdminWithdraw moves assets out of the pool and declares every
// outstanding contribution settled: pendingLiquidation is zeroed and the
// unwind cursor jumps to the write cursor regardless of the amount
// withdrawn. The sweep coupling is intentional, not proportional.
func (l *Ledger) AdminWithdraw(ctx context.Context, caller, receiver string, assets sdkmath.Int) error {
	release, err := l.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := l.requireAuthorized(ctx, caller); err != nil {
		return err
	}
	if receiver == "" {
		return types.ErrZeroAddress
	}
	if assets.IsNil() || assets.IsNegative() {
		return types.ErrZeroAmount
	}
	if assets.GT(l.totalAssets) {
		return fmt.Errorf("%s above pool %s: %w", assets, l.totalAssets, types.ErrInsufficientAssets)
	}

	if assets.IsPositive() {
		if err := l.currency.Transfer(ctx, receiver, assets); err != nil {
			return fmt.Errorf("failed to transfer assets: %w", err)
		}
	}

	l.totalAssets = l.totalAssets.Sub(assets)
	l.pendingLiquidation = sdkmath.ZeroInt()
	l.unwindCursor = l.writeCursor()

	l.emit(types.EventAdminWithdraw, types.AdminWithdrawPayload{
		Caller:   caller,
		Receiver: receiver,
		Assets:   assets,
	})
	return nil
}

// SetMinDeposit replaces the deposit floor. Authorized callers only.
func (l *Ledger) SetMinDeposit(ctx context.Context, caller string, min sdkmath.Int) error {
	release, err := l.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := l.requireAuthorized(ctx, caller); err != nil {
		return err
	}
	if min.IsNil() || !min.IsPositive() {
		return types.ErrInvalidMinDeposit
	}
	l.minDeposit = min
	return nil
}

func (l *Ledger) TotalAssets() sdkmath.Int {
	defer l.guard.read()()
	return l.totalAssets
}

func (l *Ledger) TotalShares() sdkmath.Int {
	defer l.guard.read()()
	return l.totalShares
}

func (l *Ledger) AccumulatedFees() sdkmath.Int {
	defer l.guard.read()()
	return l.accumulatedFees
}

func (l *Ledger) FeeRateBps() uint32 {
	defer l.guard.read()()
	return l.feeRateBps
}

func (l *Ledger) MinDeposit() sdkmath.Int {
	defer l.guard.read()()
	return l.minDeposit
}

// Snapshot is the persistable aggregate state of the vault.
type Snapshot struct {
	TotalAssets        sdkmath.Int
	TotalShares        sdkmath.Int
	FeeRateBps         uint32
	AccumulatedFees    sdkmath.Int
	MinDeposit         sdkmath.Int
	PendingLiquidation sdkmath.Int
	UnwindCursor       uint64
	WriteCursor        uint64
	OperationArenaSize uint64
}

func (l *Ledger) Snapshot() Snapshot {
	defer l.guard.read()()
	return Snapshot{
		TotalAssets:        l.totalAssets,
		TotalShares:        l.totalShares,
		FeeRateBps:         l.feeRateBps,
		AccumulatedFees:    l.accumulatedFees,
		MinDeposit:         l.minDeposit,
		PendingLiquidation: l.pendingLiquidation,
		UnwindCursor:       l.unwindCursor,
		WriteCursor:        l.writeCursor(),
		OperationArenaSize: uint64(len(l.ops)),
	}
}

// RestoreSnapshot installs persisted aggregate state. Used only during
// bootstrap, before the ledger serves traffic.
func (l *Ledger) RestoreSnapshot(s Snapshot) {
	defer l.guard.write()()
	l.totalAssets = s.TotalAssets
	l.totalShares = s.TotalShares
	l.feeRateBps = s.FeeRateBps
	l.accumulatedFees = s.AccumulatedFees
	l.minDeposit = s.MinDeposit
	l.pendingLiquidation = s.PendingLiquidation
	l.unwindCursor = s.UnwindCursor
}
