package projector

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"github.com/openmarket-network/market-indexer/modules/marketplace/ledger"
	"github.com/openmarket-network/market-indexer/modules/marketplace/repository/memory"
	"github.com/openmarket-network/market-indexer/modules/marketplace/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	operator = common.HexToAddress("0x00000000000000000000000000000000000000fe")
	alice    = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bob      = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	nft      = common.HexToAddress("0x0000000000000000000000000000000000000721")
)

func price(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func newFixture(t *testing.T) (*ledger.Ledger, *Projector) {
	t.Helper()
	l := ledger.New(memory.NewRepository(0), operator)
	return l, New(scanner.New(l, 0, scanner.Config{}))
}

func TestAccountHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("classification_and_order", func(t *testing.T) {
		l, p := newFixture(t)
		require.NoError(t, l.MintUnique(ctx, nft, big.NewInt(1), alice))
		require.NoError(t, l.MintUnique(ctx, nft, big.NewInt(2), alice))
		require.NoError(t, l.SetApprovalForAll(ctx, alice, nft, true))
		require.NoError(t, l.Deposit(ctx, bob, price(100)))

		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, price(10), entity.TokenStandardUnique)
		require.NoError(t, err)
		_, err = l.List(ctx, alice, nft, big.NewInt(2), 1, price(20), entity.TokenStandardUnique)
		require.NoError(t, err)
		_, err = l.Cancel(ctx, alice, entity.NewUniqueKey(nft, big.NewInt(2)))
		require.NoError(t, err)
		_, err = l.Buy(ctx, bob, entity.NewUniqueKey(nft, big.NewInt(1)), price(10))
		require.NoError(t, err)

		// Seller view: sold, cancelled, listed, listed (most recent first).
		history, err := p.AccountHistory(ctx, alice)
		require.NoError(t, err)
		require.Len(t, history, 4)
		assert.Equal(t, entity.ActivitySold, history[0].Kind)
		assert.Equal(t, bob, history[0].Counterparty)
		assert.Equal(t, entity.ActivityCancelled, history[1].Kind)
		assert.Equal(t, entity.ActivityListed, history[2].Kind)
		assert.Equal(t, entity.ActivityListed, history[3].Kind)
		for i := 1; i < len(history); i++ {
			assert.GreaterOrEqual(t, history[i-1].BlockHeight, history[i].BlockHeight)
		}

		// Buyer view: a single purchase.
		history, err = p.AccountHistory(ctx, bob)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, entity.ActivityBought, history[0].Kind)
		assert.Equal(t, alice, history[0].Counterparty)
	})

	t.Run("uninvolved_account_empty", func(t *testing.T) {
		l, p := newFixture(t)
		require.NoError(t, l.MintUnique(ctx, nft, big.NewInt(1), alice))
		require.NoError(t, l.SetApprovalForAll(ctx, alice, nft, true))
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, price(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		history, err := p.AccountHistory(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("self_purchase_not_duplicated", func(t *testing.T) {
		l, p := newFixture(t)
		require.NoError(t, l.MintUnique(ctx, nft, big.NewInt(1), alice))
		require.NoError(t, l.SetApprovalForAll(ctx, alice, nft, true))
		require.NoError(t, l.Deposit(ctx, alice, price(100)))
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, price(10), entity.TokenStandardUnique)
		require.NoError(t, err)
		_, err = l.Buy(ctx, alice, entity.NewUniqueKey(nft, big.NewInt(1)), price(10))
		require.NoError(t, err)

		history, err := p.AccountHistory(ctx, alice)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, entity.ActivitySold, history[0].Kind)
		assert.Equal(t, entity.ActivityListed, history[1].Kind)
	})
}
