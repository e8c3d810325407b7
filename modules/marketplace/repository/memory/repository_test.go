package memory

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testContract = common.HexToAddress("0x0000000000000000000000000000000000000721")
	testSeller   = common.HexToAddress("0x0000000000000000000000000000000000000a11")
)

func testListing(price int64) *entity.Listing {
	return &entity.Listing{
		Seller:   testSeller,
		Contract: testContract,
		TokenID:  big.NewInt(1),
		Price:    big.NewInt(price),
		Amount:   1,
		Standard: entity.TokenStandardUnique,
		Active:   true,
	}
}

func TestTransaction(t *testing.T) {
	ctx := context.Background()
	key := entity.NewUniqueKey(testContract, big.NewInt(1))

	t.Run("commit_applies_staged_writes", func(t *testing.T) {
		repo := NewRepository(0)
		tx, err := repo.BeginMarketTx(ctx)
		require.NoError(t, err)

		require.NoError(t, tx.PutListing(ctx, testListing(10)))
		require.NoError(t, tx.SetChainHead(ctx, 1))
		require.NoError(t, tx.AppendEvent(ctx, &entity.EventRecord{
			Type:        entity.EventTypeListed,
			Seller:      testSeller,
			Contract:    testContract,
			TokenID:     big.NewInt(1),
			Price:       big.NewInt(10),
			Amount:      1,
			Standard:    entity.TokenStandardUnique,
			BlockHeight: 1,
		}))

		// Nothing visible outside the transaction before commit.
		_, err = repo.GetListing(ctx, key)
		assert.ErrorIs(t, err, errs.NotFound)
		head, err := repo.GetChainHead(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), head)

		require.NoError(t, tx.Commit(ctx))

		listing, err := repo.GetListing(ctx, key)
		require.NoError(t, err)
		assert.True(t, listing.Active)
		head, err = repo.GetChainHead(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), head)
		events, err := repo.GetEvents(ctx, datagateway.EventFilter{}, 0, 1)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("rollback_discards_staged_writes", func(t *testing.T) {
		repo := NewRepository(0)
		tx, err := repo.BeginMarketTx(ctx)
		require.NoError(t, err)

		require.NoError(t, tx.PutListing(ctx, testListing(10)))
		require.NoError(t, tx.SetChainHead(ctx, 1))
		require.NoError(t, tx.Rollback(ctx))

		_, err = repo.GetListing(ctx, key)
		assert.ErrorIs(t, err, errs.NotFound)
		head, err := repo.GetChainHead(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), head)
	})

	t.Run("reads_see_own_staged_writes", func(t *testing.T) {
		repo := NewRepository(0)
		require.NoError(t, repo.PutListing(ctx, testListing(10)))

		tx, err := repo.BeginMarketTx(ctx)
		require.NoError(t, err)
		updated := testListing(20)
		require.NoError(t, tx.PutListing(ctx, updated))

		inTx, err := tx.GetListing(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(20), inTx.Price.Int64())

		outside, err := repo.GetListing(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(10), outside.Price.Int64())

		require.NoError(t, tx.Rollback(ctx))
	})

	t.Run("rollback_after_commit_is_noop", func(t *testing.T) {
		repo := NewRepository(0)
		tx, err := repo.BeginMarketTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.PutListing(ctx, testListing(10)))
		require.NoError(t, tx.Commit(ctx))
		require.NoError(t, tx.Rollback(ctx))

		listing, err := repo.GetListing(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(10), listing.Price.Int64())
	})

	t.Run("nested_transaction_unsupported", func(t *testing.T) {
		repo := NewRepository(0)
		tx, err := repo.BeginMarketTx(ctx)
		require.NoError(t, err)
		_, err = tx.BeginMarketTx(ctx)
		assert.ErrorIs(t, err, errs.Unsupported)
		require.NoError(t, tx.Rollback(ctx))
	})
}

func TestGetEvents(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, repo *Repository) {
		t.Helper()
		for height := uint64(1); height <= 10; height++ {
			eventType := entity.EventTypeListed
			if height%2 == 0 {
				eventType = entity.EventTypeSold
			}
			require.NoError(t, repo.AppendEvent(ctx, &entity.EventRecord{
				Type:        eventType,
				Seller:      testSeller,
				Contract:    testContract,
				TokenID:     big.NewInt(1),
				Price:       big.NewInt(10),
				Amount:      1,
				Standard:    entity.TokenStandardUnique,
				BlockHeight: height,
			}))
		}
	}

	t.Run("range_cap", func(t *testing.T) {
		repo := NewRepository(5)
		seed(t, repo)

		_, err := repo.GetEvents(ctx, datagateway.EventFilter{}, 1, 10)
		assert.ErrorIs(t, err, datagateway.ErrRangeTooLarge)

		events, err := repo.GetEvents(ctx, datagateway.EventFilter{}, 1, 5)
		require.NoError(t, err)
		assert.Len(t, events, 5)
	})

	t.Run("no_cap_when_zero", func(t *testing.T) {
		repo := NewRepository(0)
		seed(t, repo)

		events, err := repo.GetEvents(ctx, datagateway.EventFilter{}, 1, 10)
		require.NoError(t, err)
		assert.Len(t, events, 10)
	})

	t.Run("inverted_range", func(t *testing.T) {
		repo := NewRepository(0)
		_, err := repo.GetEvents(ctx, datagateway.EventFilter{}, 5, 1)
		assert.ErrorIs(t, err, errs.InvalidArgument)
	})

	t.Run("type_filter", func(t *testing.T) {
		repo := NewRepository(0)
		seed(t, repo)

		events, err := repo.GetEvents(ctx, datagateway.EventFilter{
			Types: []entity.EventType{entity.EventTypeSold},
		}, 1, 10)
		require.NoError(t, err)
		assert.Len(t, events, 5)
		for _, event := range events {
			assert.Equal(t, entity.EventTypeSold, event.Type)
		}
	})

	t.Run("seller_filter", func(t *testing.T) {
		repo := NewRepository(0)
		seed(t, repo)

		events, err := repo.GetEvents(ctx, datagateway.EventFilter{
			Seller: common.HexToAddress("0x00000000000000000000000000000000000000ff"),
		}, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestListingIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(0)
	key := entity.NewUniqueKey(testContract, big.NewInt(1))

	require.NoError(t, repo.PutListing(ctx, testListing(10)))

	// Mutating a returned listing must not affect the stored one.
	listing, err := repo.GetListing(ctx, key)
	require.NoError(t, err)
	listing.Price.SetInt64(999)
	listing.Active = false

	stored, err := repo.GetListing(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.Price.Int64())
	assert.True(t, stored.Active)
}
