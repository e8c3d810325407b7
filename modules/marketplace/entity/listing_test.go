package entity

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestListingKeyScoping(t *testing.T) {
	contract := common.HexToAddress("0x0000000000000000000000000000000000000721")
	sellerA := common.HexToAddress("0x0000000000000000000000000000000000000a11")
	sellerB := common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	tokenID := big.NewInt(42)

	t.Run("unique_key_ignores_seller", func(t *testing.T) {
		key := NewUniqueKey(contract, tokenID)
		withSeller := key
		withSeller.Seller = sellerA
		assert.Equal(t, key.String(), withSeller.String())
		assert.Equal(t, key.Unscoped(), key.String())
	})

	t.Run("semi_fungible_key_scoped_by_seller", func(t *testing.T) {
		keyA := NewSemiFungibleKey(contract, tokenID, sellerA)
		keyB := NewSemiFungibleKey(contract, tokenID, sellerB)
		assert.NotEqual(t, keyA.String(), keyB.String())
		assert.Equal(t, keyA.Unscoped(), keyB.Unscoped())
		assert.Equal(t, keyA.String(), keyA.Scoped())
	})

	t.Run("listing_key_matches_standard", func(t *testing.T) {
		unique := &Listing{
			Seller:   sellerA,
			Contract: contract,
			TokenID:  tokenID,
			Standard: TokenStandardUnique,
		}
		assert.Equal(t, NewUniqueKey(contract, tokenID), unique.Key())

		semi := &Listing{
			Seller:   sellerA,
			Contract: contract,
			TokenID:  tokenID,
			Standard: TokenStandardSemiFungible,
		}
		assert.Equal(t, NewSemiFungibleKey(contract, tokenID, sellerA), semi.Key())
	})
}

func TestEventRecordOrdering(t *testing.T) {
	earlier := &EventRecord{BlockHeight: 1, LogIndex: 5}
	sameBlockLater := &EventRecord{BlockHeight: 1, LogIndex: 6}
	laterBlock := &EventRecord{BlockHeight: 2, LogIndex: 0}

	assert.True(t, earlier.Before(sameBlockLater))
	assert.True(t, sameBlockLater.Before(laterBlock))
	assert.False(t, laterBlock.Before(earlier))
	assert.False(t, earlier.Before(earlier))
}
