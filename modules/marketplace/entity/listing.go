package entity

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ListingKey is the identity of a listing. Unique listings are keyed by
// (contract, tokenId) only: there can be at most one of them per token.
// SemiFungible listings are additionally scoped by seller, since multiple
// sellers can list the same token id at the same time.
type ListingKey struct {
	Standard TokenStandard
	Contract common.Address
	TokenID  *big.Int
	Seller   common.Address
}

func NewUniqueKey(contract common.Address, tokenID *big.Int) ListingKey {
	return ListingKey{
		Standard: TokenStandardUnique,
		Contract: contract,
		TokenID:  tokenID,
	}
}

func NewSemiFungibleKey(contract common.Address, tokenID *big.Int, seller common.Address) ListingKey {
	return ListingKey{
		Standard: TokenStandardSemiFungible,
		Contract: contract,
		TokenID:  tokenID,
		Seller:   seller,
	}
}

// String returns the canonical identity string: seller-scoped for
// SemiFungible, unscoped for Unique.
func (k ListingKey) String() string {
	base := fmt.Sprintf("%s:%s", strings.ToLower(k.Contract.Hex()), k.TokenID.String())
	if k.Standard == TokenStandardSemiFungible {
		return fmt.Sprintf("%s:%s", base, strings.ToLower(k.Seller.Hex()))
	}
	return base
}

// Unscoped returns the identity string without the seller component,
// regardless of standard. Sold events for Unique tokens invalidate
// listings by this key.
func (k ListingKey) Unscoped() string {
	return fmt.Sprintf("%s:%s", strings.ToLower(k.Contract.Hex()), k.TokenID.String())
}

// Scoped returns the seller-scoped identity string regardless of standard.
// Cancelled events invalidate listings by this key.
func (k ListingKey) Scoped() string {
	return fmt.Sprintf("%s:%s:%s", strings.ToLower(k.Contract.Hex()), k.TokenID.String(), strings.ToLower(k.Seller.Hex()))
}

// Listing is an offer to sell a fixed amount of a token at a fixed price.
// Listings are non-custodial: the seller keeps the asset until purchase.
type Listing struct {
	Seller   common.Address
	Contract common.Address
	TokenID  *big.Int
	Price    *big.Int // native currency, smallest unit; > 0 while active
	Amount   uint64   // >= 1 while active; always 1 for Unique
	Standard TokenStandard
	Active   bool
}

func (l *Listing) Key() ListingKey {
	if l.Standard == TokenStandardSemiFungible {
		return NewSemiFungibleKey(l.Contract, l.TokenID, l.Seller)
	}
	return NewUniqueKey(l.Contract, l.TokenID)
}
