package ledger

import (
	"context"
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"github.com/openmarket-network/market-indexer/modules/marketplace/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	operator = common.HexToAddress("0x00000000000000000000000000000000000000fe")
	alice    = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bob      = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol    = common.HexToAddress("0x00000000000000000000000000000000000ca201")
	nft      = common.HexToAddress("0x0000000000000000000000000000000000000721")
	multi    = common.HexToAddress("0x0000000000000000000000000000000000001155")
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return New(memory.NewRepository(1_000_000), operator)
}

// mintAndApprove gives alice token #1 on the nft contract, marketplace
// approval, and funds bob with 100 native units.
func setupUniqueSale(t *testing.T, l *Ledger) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, l.MintUnique(ctx, nft, big.NewInt(1), alice))
	require.NoError(t, l.SetApprovalForAll(ctx, alice, nft, true))
	require.NoError(t, l.Deposit(ctx, bob, eth(100)))
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("unique_happy_path", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)

		event, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)
		assert.Equal(t, entity.EventTypeListed, event.Type)
		assert.Equal(t, alice, event.Seller)
		assert.Equal(t, uint64(1), event.Amount)
		assert.NotZero(t, event.TxHash)

		listing, err := l.GetListing(ctx, entity.NewUniqueKey(nft, big.NewInt(1)))
		require.NoError(t, err)
		assert.True(t, listing.Active)
		assert.Equal(t, 0, listing.Price.Cmp(eth(10)))
	})

	t.Run("not_owner", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)

		_, err := l.List(ctx, bob, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		assert.ErrorIs(t, err, ErrNotTokenOwner)
	})

	t.Run("unminted_token", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)

		_, err := l.List(ctx, alice, nft, big.NewInt(99), 1, eth(10), entity.TokenStandardUnique)
		assert.ErrorIs(t, err, ErrNotTokenOwner)
	})

	t.Run("not_approved", func(t *testing.T) {
		l := newTestLedger(t)
		require.NoError(t, l.MintUnique(ctx, nft, big.NewInt(1), alice))

		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		assert.ErrorIs(t, err, ErrNotApprovedForMarketplace)
	})

	t.Run("zero_price", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)

		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, big.NewInt(0), entity.TokenStandardUnique)
		assert.ErrorIs(t, err, ErrPriceCannotBeZero)
	})

	t.Run("unique_amount_forced_to_one", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)

		event, err := l.List(ctx, alice, nft, big.NewInt(1), 5, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), event.Amount)
	})

	t.Run("invalid_standard", func(t *testing.T) {
		l := newTestLedger(t)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandard("erc20"))
		assert.ErrorIs(t, err, ErrUnsupportedTokenType)
	})

	t.Run("semi_fungible_zero_amount", func(t *testing.T) {
		l := newTestLedger(t)
		require.NoError(t, l.MintSemiFungible(ctx, multi, big.NewInt(7), alice, 10))
		require.NoError(t, l.SetApprovalForAll(ctx, alice, multi, true))

		_, err := l.List(ctx, alice, multi, big.NewInt(7), 0, eth(1), entity.TokenStandardSemiFungible)
		assert.ErrorIs(t, err, ErrAmountCannotBeZero)
	})

	t.Run("semi_fungible_insufficient_balance", func(t *testing.T) {
		l := newTestLedger(t)
		require.NoError(t, l.MintSemiFungible(ctx, multi, big.NewInt(7), alice, 3))
		require.NoError(t, l.SetApprovalForAll(ctx, alice, multi, true))

		_, err := l.List(ctx, alice, multi, big.NewInt(7), 5, eth(1), entity.TokenStandardSemiFungible)
		assert.ErrorIs(t, err, ErrNotTokenOwner)
	})

	t.Run("relist_overwrites", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		key := entity.NewUniqueKey(nft, big.NewInt(1))

		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)
		_, err = l.Cancel(ctx, alice, key)
		require.NoError(t, err)
		_, err = l.List(ctx, alice, nft, big.NewInt(1), 1, eth(20), entity.TokenStandardUnique)
		require.NoError(t, err)

		listing, err := l.GetListing(ctx, key)
		require.NoError(t, err)
		assert.True(t, listing.Active)
		assert.Equal(t, 0, listing.Price.Cmp(eth(20)))
	})
}

func TestBuy(t *testing.T) {
	ctx := context.Background()
	key := entity.NewUniqueKey(nft, big.NewInt(1))

	t.Run("happy_path_settles_atomically", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		event, err := l.Buy(ctx, bob, key, eth(10))
		require.NoError(t, err)
		assert.Equal(t, entity.EventTypeSold, event.Type)
		assert.Equal(t, bob, event.Buyer)

		owner, err := l.GetUniqueOwner(ctx, nft, big.NewInt(1))
		require.NoError(t, err)
		assert.Equal(t, bob, owner)

		// Fee is 2.5% of 10, seller gets the rest.
		fee := new(big.Int).Div(new(big.Int).Mul(eth(10), big.NewInt(entity.DefaultFeeRateBps)), big.NewInt(entity.FeeDenominatorBps))
		proceeds := new(big.Int).Sub(eth(10), fee)

		buyerBalance, err := l.GetNativeBalance(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, 0, buyerBalance.Cmp(eth(90)))

		sellerBalance, err := l.GetNativeBalance(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, 0, sellerBalance.Cmp(proceeds))

		feeState, err := l.GetFeeState(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, feeState.AccumulatedFees.Cmp(fee))
		assert.Equal(t, 0, new(big.Int).Add(fee, proceeds).Cmp(eth(10)))

		listing, err := l.GetListing(ctx, key)
		require.NoError(t, err)
		assert.False(t, listing.Active)
	})

	t.Run("overpayment_debits_price_only", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		_, err = l.Buy(ctx, bob, key, eth(15))
		require.NoError(t, err)

		buyerBalance, err := l.GetNativeBalance(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, 0, buyerBalance.Cmp(eth(90)), "buyer must be debited the listing price, not the payment")
	})

	t.Run("insufficient_payment", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		_, err = l.Buy(ctx, bob, key, eth(9))
		assert.ErrorIs(t, err, ErrInsufficientPayment)
	})

	t.Run("insufficient_balance", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		_, err = l.Buy(ctx, carol, key, eth(10))
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("listing_not_active", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)

		_, err := l.Buy(ctx, bob, key, eth(10))
		assert.ErrorIs(t, err, ErrListingNotActive)
	})

	t.Run("double_buy", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		require.NoError(t, l.Deposit(ctx, carol, eth(100)))
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		_, err = l.Buy(ctx, bob, key, eth(10))
		require.NoError(t, err)
		_, err = l.Buy(ctx, carol, key, eth(10))
		assert.ErrorIs(t, err, ErrListingNotActive)
	})

	t.Run("stale_listing_after_owner_moved_asset", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		// Simulate an off-market transfer after listing. The sale must
		// fail and leave every balance untouched.
		dg := l.dg.(*memory.Repository)
		tx, err := dg.BeginMarketTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.SetUniqueOwner(ctx, nft, big.NewInt(1), carol))
		require.NoError(t, tx.Commit(ctx))

		_, err = l.Buy(ctx, bob, key, eth(10))
		assert.ErrorIs(t, err, ErrNotTokenOwner)

		buyerBalance, err := l.GetNativeBalance(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, 0, buyerBalance.Cmp(eth(100)))
		feeState, err := l.GetFeeState(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, feeState.AccumulatedFees.Sign())
	})

	t.Run("stale_listing_after_approval_revoked", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)
		require.NoError(t, l.SetApprovalForAll(ctx, alice, nft, false))

		_, err = l.Buy(ctx, bob, key, eth(10))
		assert.ErrorIs(t, err, ErrNotApprovedForMarketplace)
	})

	t.Run("semi_fungible_partial_inventory", func(t *testing.T) {
		l := newTestLedger(t)
		require.NoError(t, l.MintSemiFungible(ctx, multi, big.NewInt(7), alice, 10))
		require.NoError(t, l.SetApprovalForAll(ctx, alice, multi, true))
		require.NoError(t, l.Deposit(ctx, bob, eth(100)))

		_, err := l.List(ctx, alice, multi, big.NewInt(7), 4, eth(2), entity.TokenStandardSemiFungible)
		require.NoError(t, err)

		sfKey := entity.NewSemiFungibleKey(multi, big.NewInt(7), alice)
		_, err = l.Buy(ctx, bob, sfKey, eth(2))
		require.NoError(t, err)

		aliceBalance, err := l.GetSemiFungibleBalance(ctx, multi, big.NewInt(7), alice)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), aliceBalance)
		bobBalance, err := l.GetSemiFungibleBalance(ctx, multi, big.NewInt(7), bob)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), bobBalance)
	})
}

func TestSemiFungibleMultiSeller(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	tokenID := big.NewInt(7)

	require.NoError(t, l.MintSemiFungible(ctx, multi, tokenID, alice, 10))
	require.NoError(t, l.MintSemiFungible(ctx, multi, tokenID, bob, 10))
	require.NoError(t, l.SetApprovalForAll(ctx, alice, multi, true))
	require.NoError(t, l.SetApprovalForAll(ctx, bob, multi, true))
	require.NoError(t, l.Deposit(ctx, carol, eth(100)))

	_, err := l.List(ctx, alice, multi, tokenID, 3, eth(2), entity.TokenStandardSemiFungible)
	require.NoError(t, err)
	_, err = l.List(ctx, bob, multi, tokenID, 5, eth(3), entity.TokenStandardSemiFungible)
	require.NoError(t, err)

	// Buying from alice must not touch bob's listing.
	_, err = l.Buy(ctx, carol, entity.NewSemiFungibleKey(multi, tokenID, alice), eth(2))
	require.NoError(t, err)

	aliceListing, err := l.GetListing(ctx, entity.NewSemiFungibleKey(multi, tokenID, alice))
	require.NoError(t, err)
	assert.False(t, aliceListing.Active)

	bobListing, err := l.GetListing(ctx, entity.NewSemiFungibleKey(multi, tokenID, bob))
	require.NoError(t, err)
	assert.True(t, bobListing.Active)
	assert.Equal(t, uint64(5), bobListing.Amount)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	key := entity.NewUniqueKey(nft, big.NewInt(1))

	t.Run("happy_path", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		event, err := l.Cancel(ctx, alice, key)
		require.NoError(t, err)
		assert.Equal(t, entity.EventTypeCancelled, event.Type)

		listing, err := l.GetListing(ctx, key)
		require.NoError(t, err)
		assert.False(t, listing.Active)

		// Seller keeps custody.
		owner, err := l.GetUniqueOwner(ctx, nft, big.NewInt(1))
		require.NoError(t, err)
		assert.Equal(t, alice, owner)
	})

	t.Run("not_seller", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		_, err = l.Cancel(ctx, bob, key)
		assert.ErrorIs(t, err, ErrNotSeller)
	})

	t.Run("cancel_inactive_emits_nothing", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)
		_, err = l.Cancel(ctx, alice, key)
		require.NoError(t, err)

		before, err := l.CurrentHeight(ctx)
		require.NoError(t, err)

		_, err = l.Cancel(ctx, alice, key)
		assert.ErrorIs(t, err, ErrListingNotActive)

		after, err := l.CurrentHeight(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after, "failed cancel must not advance the chain")

		events, err := l.FilterEvents(ctx, datagateway.EventFilter{Types: []entity.EventType{entity.EventTypeCancelled}}, 0, after)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("cancel_missing_listing", func(t *testing.T) {
		l := newTestLedger(t)
		_, err := l.Cancel(ctx, alice, key)
		assert.ErrorIs(t, err, ErrListingNotActive)
	})
}

func TestReprice(t *testing.T) {
	ctx := context.Background()
	key := entity.NewUniqueKey(nft, big.NewInt(1))

	t.Run("happy_path", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		event, err := l.Reprice(ctx, alice, key, eth(20))
		require.NoError(t, err)
		assert.Equal(t, entity.EventTypeRepriced, event.Type)
		assert.Equal(t, 0, event.Price.Cmp(eth(20)))
		assert.Equal(t, 0, event.OldPrice.Cmp(eth(10)))

		listing, err := l.GetListing(ctx, key)
		require.NoError(t, err)
		assert.True(t, listing.Active)
		assert.Equal(t, 0, listing.Price.Cmp(eth(20)))
	})

	t.Run("not_seller", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		_, err = l.Reprice(ctx, bob, key, eth(20))
		assert.ErrorIs(t, err, ErrNotSeller)
	})

	t.Run("zero_price", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)

		_, err = l.Reprice(ctx, alice, key, big.NewInt(0))
		assert.ErrorIs(t, err, ErrPriceCannotBeZero)
	})

	t.Run("inactive_listing", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)
		_, err = l.Cancel(ctx, alice, key)
		require.NoError(t, err)

		_, err = l.Reprice(ctx, alice, key, eth(20))
		assert.ErrorIs(t, err, ErrListingNotActive)
	})
}

func TestFees(t *testing.T) {
	ctx := context.Background()

	t.Run("set_fee_rate", func(t *testing.T) {
		l := newTestLedger(t)
		require.NoError(t, l.SetFeeRate(ctx, operator, 500))

		feeState, err := l.GetFeeState(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint16(500), feeState.FeeRateBps)
	})

	t.Run("set_fee_rate_not_operator", func(t *testing.T) {
		l := newTestLedger(t)
		err := l.SetFeeRate(ctx, alice, 500)
		assert.ErrorIs(t, err, ErrNotOperator)
	})

	t.Run("set_fee_rate_above_cap", func(t *testing.T) {
		l := newTestLedger(t)
		err := l.SetFeeRate(ctx, operator, entity.MaxFeeRateBps+1)
		assert.ErrorIs(t, err, ErrFeeTooHigh)
	})

	t.Run("withdraw", func(t *testing.T) {
		l := newTestLedger(t)
		setupUniqueSale(t, l)
		_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
		require.NoError(t, err)
		_, err = l.Buy(ctx, bob, entity.NewUniqueKey(nft, big.NewInt(1)), eth(10))
		require.NoError(t, err)

		fee := new(big.Int).Div(new(big.Int).Mul(eth(10), big.NewInt(entity.DefaultFeeRateBps)), big.NewInt(entity.FeeDenominatorBps))

		withdrawn, err := l.WithdrawFees(ctx, operator)
		require.NoError(t, err)
		assert.Equal(t, 0, withdrawn.Cmp(fee))

		operatorBalance, err := l.GetNativeBalance(ctx, operator)
		require.NoError(t, err)
		assert.Equal(t, 0, operatorBalance.Cmp(fee))

		feeState, err := l.GetFeeState(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, feeState.AccumulatedFees.Sign())

		_, err = l.WithdrawFees(ctx, operator)
		assert.ErrorIs(t, err, ErrNoFeesToWithdraw)
	})

	t.Run("withdraw_not_operator", func(t *testing.T) {
		l := newTestLedger(t)
		_, err := l.WithdrawFees(ctx, alice)
		assert.ErrorIs(t, err, ErrNotOperator)
	})

	t.Run("fee_rounds_down_in_platform_favor_never", func(t *testing.T) {
		// 3 wei at 250 bps: fee floors to 0, seller gets all 3.
		feeState := entity.FeeState{AccumulatedFees: big.NewInt(0), FeeRateBps: entity.DefaultFeeRateBps}
		fee, proceeds := feeState.Split(big.NewInt(3))
		assert.Equal(t, int64(0), fee.Int64())
		assert.Equal(t, int64(3), proceeds.Int64())
	})
}

func TestEventOrdering(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	setupUniqueSale(t, l)
	key := entity.NewUniqueKey(nft, big.NewInt(1))

	_, err := l.List(ctx, alice, nft, big.NewInt(1), 1, eth(10), entity.TokenStandardUnique)
	require.NoError(t, err)
	_, err = l.Reprice(ctx, alice, key, eth(12))
	require.NoError(t, err)
	_, err = l.Buy(ctx, bob, key, eth(12))
	require.NoError(t, err)

	head, err := l.CurrentHeight(ctx)
	require.NoError(t, err)

	events, err := l.FilterEvents(ctx, datagateway.EventFilter{}, 0, head)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, entity.EventTypeListed, events[0].Type)
	assert.Equal(t, entity.EventTypeRepriced, events[1].Type)
	assert.Equal(t, entity.EventTypeSold, events[2].Type)
	for i := 1; i < len(events); i++ {
		assert.True(t, events[i-1].Before(events[i]))
	}
	for _, event := range events {
		assert.Equal(t, uint32(0), event.LogIndex)
		assert.NotZero(t, event.TxHash)
	}
}

func TestMint(t *testing.T) {
	ctx := context.Background()

	t.Run("mint_unique_twice", func(t *testing.T) {
		l := newTestLedger(t)
		require.NoError(t, l.MintUnique(ctx, nft, big.NewInt(1), alice))
		err := l.MintUnique(ctx, nft, big.NewInt(1), bob)
		assert.ErrorIs(t, err, errs.InvalidArgument)
	})

	t.Run("mint_semi_fungible_zero", func(t *testing.T) {
		l := newTestLedger(t)
		err := l.MintSemiFungible(ctx, multi, big.NewInt(7), alice, 0)
		assert.ErrorIs(t, err, ErrAmountCannotBeZero)
	})

	t.Run("deposit_non_positive", func(t *testing.T) {
		l := newTestLedger(t)
		err := l.Deposit(ctx, alice, big.NewInt(0))
		assert.ErrorIs(t, err, errs.InvalidArgument)
		err = l.Deposit(ctx, alice, big.NewInt(-1))
		assert.ErrorIs(t, err, errs.InvalidArgument)
	})
}

func TestErrorKinds(t *testing.T) {
	// Wrapped precondition failures must stay matchable.
	err := errors.Wrap(ErrInsufficientPayment, "error during buy")
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	assert.NotErrorIs(t, err, ErrInsufficientBalance)
}
