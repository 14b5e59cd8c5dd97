package vault

import (
	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/pricestore"
	"github.com/haeli05/4626/internal/types"
)

// Rounding selects the direction fractional remainders are resolved in.
// Directions are fixed per call site, never caller-chosen: deposit-path and
// withdraw-path conversions both round in the vault's favor.
type Rounding int

const (
	RoundDown Rounding = iota
	RoundUp
)

// mulDiv returns a * b / c with the numerator fully formed before the
// division, rounded per r. cosmossdk.io/math caps Ints at 256 bits and
// panics on overflow, so a wrapped result can never be produced.
func mulDiv(a, b, c sdkmath.Int, r Rounding) (sdkmath.Int, error) {
	if c.IsZero() {
		return sdkmath.Int{}, types.ErrDivisionByZero
	}
	num := a.Mul(b)
	if r == RoundUp {
		// ceil(num / c) for non-negative operands
		return num.Add(c.SubRaw(1)).Quo(c), nil
	}
	return num.Quo(c), nil
}

// ConvertToShares converts an asset amount into shares given the pool
// totals and, in oracle mode, the subject price. When no shares are
// outstanding the conversion is the 1:1 bootstrap identity.
func ConvertToShares(assets, totalAssets, totalShares, price sdkmath.Int, mode types.PriceMode, r Rounding) (sdkmath.Int, error) {
	if totalShares.IsZero() {
		return assets, nil
	}
	if mode == types.PriceModeOracle {
		if price.IsNil() || !price.IsPositive() {
			return sdkmath.Int{}, types.ErrInvalidPrice
		}
		// shares = assets * price * totalShares / (PriceScale * totalAssets)
		return mulDiv(assets.Mul(price), totalShares, pricestore.PriceScale.Mul(totalAssets), r)
	}
	return mulDiv(assets, totalShares, totalAssets, r)
}

// ConvertToAssets is the inverse of ConvertToShares.
func ConvertToAssets(shares, totalAssets, totalShares, price sdkmath.Int, mode types.PriceMode, r Rounding) (sdkmath.Int, error) {
	if totalShares.IsZero() {
		return shares, nil
	}
	if mode == types.PriceModeOracle {
		if price.IsNil() || !price.IsPositive() {
			return sdkmath.Int{}, types.ErrInvalidPrice
		}
		// assets = shares * totalAssets * PriceScale / (totalShares * price)
		return mulDiv(shares.Mul(totalAssets), pricestore.PriceScale, totalShares.Mul(price), r)
	}
	return mulDiv(shares, totalAssets, totalShares, r)
}

// price returns the trusted oracle price for the vault's subject, or a nil
// Int in internal-ratio mode. Conversions are refused outright while an
// update is due: the old price is not numerically wrong, but the heartbeat
// contract says it can no longer be trusted.
func (l *Ledger) price() (sdkmath.Int, error) {
	if l.priceMode != types.PriceModeOracle {
		return sdkmath.Int{}, nil
	}
	if l.prices.UpdateDue(l.subject) {
		return sdkmath.Int{}, types.ErrPriceUpdateRequired
	}
	p, err := l.prices.GetPrice(l.subject)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if !p.IsPositive() {
		return sdkmath.Int{}, types.ErrInvalidPrice
	}
	return p, nil
}

// PreviewDeposit returns the shares minted for a gross deposit of assets
// under the current fee rate. Rounds down.
func (l *Ledger) PreviewDeposit(assets sdkmath.Int) (sdkmath.Int, error) {
	defer l.guard.read()()
	price, err := l.price()
	if err != nil {
		return sdkmath.Int{}, err
	}
	net := assets.Sub(ComputeFee(assets, l.feeRateBps))
	return ConvertToShares(net, l.totalAssets, l.totalShares, price, l.priceMode, RoundDown)
}

// PreviewMint returns the gross assets required to mint exactly shares,
// fee included. Rounds up.
func (l *Ledger) PreviewMint(shares sdkmath.Int) (sdkmath.Int, error) {
	defer l.guard.read()()
	price, err := l.price()
	if err != nil {
		return sdkmath.Int{}, err
	}
	net, err := ConvertToAssets(shares, l.totalAssets, l.totalShares, price, l.priceMode, RoundUp)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return net.Add(ComputeFeeOnTop(net, l.feeRateBps)), nil
}

// PreviewWithdraw returns the shares burned to withdraw assets. Rounds up.
func (l *Ledger) PreviewWithdraw(assets sdkmath.Int) (sdkmath.Int, error) {
	defer l.guard.read()()
	price, err := l.price()
	if err != nil {
		return sdkmath.Int{}, err
	}
	return ConvertToShares(assets, l.totalAssets, l.totalShares, price, l.priceMode, RoundUp)
}

// PreviewRedeem returns the assets paid out for redeeming shares. Rounds
// down.
func (l *Ledger) PreviewRedeem(shares sdkmath.Int) (sdkmath.Int, error) {
	defer l.guard.read()()
	price, err := l.price()
	if err != nil {
		return sdkmath.Int{}, err
	}
	return ConvertToAssets(shares, l.totalAssets, l.totalShares, price, l.priceMode, RoundDown)
}
