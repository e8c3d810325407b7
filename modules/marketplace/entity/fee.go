package entity

import "math/big"

const (
	// MaxFeeRateBps caps the platform fee rate to 10% to bound operator abuse.
	MaxFeeRateBps = 1000

	// FeeDenominatorBps is the basis-point denominator for fee math.
	FeeDenominatorBps = 10000

	// DefaultFeeRateBps is the fee rate a fresh deployment starts with (2.5%).
	DefaultFeeRateBps = 250
)

// FeeState is the operator's fee ledger. AccumulatedFees only decreases on
// withdrawal.
type FeeState struct {
	AccumulatedFees *big.Int
	FeeRateBps      uint16
}

// Split divides price into (fee, sellerProceeds). The fee rounds down and the
// seller receives the remainder, so fee + proceeds == price exactly.
func (f FeeState) Split(price *big.Int) (fee, proceeds *big.Int) {
	fee = new(big.Int).Mul(price, big.NewInt(int64(f.FeeRateBps)))
	fee.Div(fee, big.NewInt(FeeDenominatorBps))
	proceeds = new(big.Int).Sub(price, fee)
	return fee, proceeds
}
