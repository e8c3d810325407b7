package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

// Ledger is the settlement state machine. Every mutating operation runs as a
// single datagateway transaction at its own block height, so either all of an
// operation's effects persist or none do. Operations are serialized by a
// mutex, mirroring the total ordering a chain imposes on transactions.
//
// Listings are non-custodial. Sellers keep their assets until purchase, so
// List and Buy check ownership and approval at execution time while Cancel
// and Reprice touch bookkeeping only.
type Ledger struct {
	dg       datagateway.MarketDataGateway
	operator common.Address
	mu       sync.Mutex
}

func New(dg datagateway.MarketDataGateway, operator common.Address) *Ledger {
	return &Ledger{
		dg:       dg,
		operator: operator,
	}
}

// Operator returns the address allowed to manage fees.
func (l *Ledger) Operator() common.Address {
	return l.operator
}

// List creates or overwrites the listing for the given token as active. The
// caller must own the token and must have approved the marketplace for the
// contract. Amount is fixed at 1 for Unique tokens.
func (l *Ledger) List(ctx context.Context, caller common.Address, contract common.Address, tokenID *big.Int, amount uint64, price *big.Int, standard entity.TokenStandard) (*entity.EventRecord, error) {
	if !standard.IsValid() {
		return nil, errors.WithStack(ErrUnsupportedTokenType)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.dg.BeginMarketTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	switch standard {
	case entity.TokenStandardUnique:
		owner, err := tx.GetUniqueOwner(ctx, contract, tokenID)
		if err != nil && !errors.Is(err, errs.NotFound) {
			return nil, errors.Wrap(err, "failed to get token owner")
		}
		if owner != caller {
			return nil, errors.WithStack(ErrNotTokenOwner)
		}
		amount = 1
	case entity.TokenStandardSemiFungible:
		balance, err := tx.GetSemiFungibleBalance(ctx, contract, tokenID, caller)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get token balance")
		}
		if balance < amount || balance == 0 {
			return nil, errors.WithStack(ErrNotTokenOwner)
		}
	}

	approved, err := tx.IsApprovedForMarketplace(ctx, contract, caller)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get approval")
	}
	if !approved {
		return nil, errors.WithStack(ErrNotApprovedForMarketplace)
	}
	if price == nil || price.Sign() <= 0 {
		return nil, errors.WithStack(ErrPriceCannotBeZero)
	}
	if amount == 0 {
		return nil, errors.WithStack(ErrAmountCannotBeZero)
	}

	listing := &entity.Listing{
		Seller:   caller,
		Contract: contract,
		TokenID:  tokenID,
		Price:    price,
		Amount:   amount,
		Standard: standard,
		Active:   true,
	}
	if err := tx.PutListing(ctx, listing); err != nil {
		return nil, errors.Wrap(err, "failed to put listing")
	}

	event := &entity.EventRecord{
		Type:     entity.EventTypeListed,
		Seller:   caller,
		Contract: contract,
		TokenID:  tokenID,
		Price:    price,
		Amount:   amount,
		Standard: standard,
	}
	if err := l.commit(ctx, tx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Buy settles an active listing against the buyer's native balance. On
// success the asset moves to the buyer, the seller is credited price minus
// fee, the fee ledger is credited the fee, and the listing is deactivated.
// The buyer is debited the price only, so any overpayment is refunded.
func (l *Ledger) Buy(ctx context.Context, buyer common.Address, key entity.ListingKey, payment *big.Int) (*entity.EventRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.dg.BeginMarketTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	listing, err := l.activeListing(ctx, tx, key)
	if err != nil {
		return nil, err
	}
	if payment == nil || payment.Cmp(listing.Price) < 0 {
		return nil, errors.WithStack(ErrInsufficientPayment)
	}
	balance, err := tx.GetNativeBalance(ctx, buyer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get buyer balance")
	}
	if balance.Cmp(payment) < 0 {
		return nil, errors.WithStack(ErrInsufficientBalance)
	}

	// The seller may have moved the asset or revoked approval since
	// listing. Custody is re-checked at settlement time, like the
	// transfer itself would.
	if err := l.transferAsset(ctx, tx, listing, buyer); err != nil {
		return nil, err
	}

	feeState, err := tx.GetFeeState(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get fee state")
	}
	fee, proceeds := feeState.Split(listing.Price)

	if err := tx.SetNativeBalance(ctx, buyer, new(big.Int).Sub(balance, listing.Price)); err != nil {
		return nil, errors.Wrap(err, "failed to debit buyer")
	}
	sellerBalance, err := tx.GetNativeBalance(ctx, listing.Seller)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get seller balance")
	}
	if err := tx.SetNativeBalance(ctx, listing.Seller, new(big.Int).Add(sellerBalance, proceeds)); err != nil {
		return nil, errors.Wrap(err, "failed to credit seller")
	}
	feeState.AccumulatedFees = new(big.Int).Add(feeState.AccumulatedFees, fee)
	if err := tx.SetFeeState(ctx, feeState); err != nil {
		return nil, errors.Wrap(err, "failed to set fee state")
	}

	listing.Active = false
	if err := tx.PutListing(ctx, listing); err != nil {
		return nil, errors.Wrap(err, "failed to put listing")
	}

	event := &entity.EventRecord{
		Type:     entity.EventTypeSold,
		Seller:   listing.Seller,
		Buyer:    buyer,
		Contract: listing.Contract,
		TokenID:  listing.TokenID,
		Price:    listing.Price,
		Amount:   listing.Amount,
		Standard: listing.Standard,
	}
	if err := l.commit(ctx, tx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Cancel deactivates the caller's listing. No asset movement happens since
// the seller retained custody the whole time.
func (l *Ledger) Cancel(ctx context.Context, caller common.Address, key entity.ListingKey) (*entity.EventRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.dg.BeginMarketTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	listing, err := l.sellerListing(ctx, tx, caller, key)
	if err != nil {
		return nil, err
	}

	listing.Active = false
	if err := tx.PutListing(ctx, listing); err != nil {
		return nil, errors.Wrap(err, "failed to put listing")
	}

	event := &entity.EventRecord{
		Type:     entity.EventTypeCancelled,
		Seller:   listing.Seller,
		Contract: listing.Contract,
		TokenID:  listing.TokenID,
		Price:    listing.Price,
		Amount:   listing.Amount,
		Standard: listing.Standard,
	}
	if err := l.commit(ctx, tx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Reprice updates an active listing's price in place. The listing stays
// active and keeps its identity.
func (l *Ledger) Reprice(ctx context.Context, caller common.Address, key entity.ListingKey, newPrice *big.Int) (*entity.EventRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.dg.BeginMarketTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	listing, err := l.sellerListing(ctx, tx, caller, key)
	if err != nil {
		return nil, err
	}
	if newPrice == nil || newPrice.Sign() <= 0 {
		return nil, errors.WithStack(ErrPriceCannotBeZero)
	}

	oldPrice := listing.Price
	listing.Price = newPrice
	if err := tx.PutListing(ctx, listing); err != nil {
		return nil, errors.Wrap(err, "failed to put listing")
	}

	event := &entity.EventRecord{
		Type:     entity.EventTypeRepriced,
		Seller:   listing.Seller,
		Contract: listing.Contract,
		TokenID:  listing.TokenID,
		Price:    newPrice,
		OldPrice: oldPrice,
		Amount:   listing.Amount,
		Standard: listing.Standard,
	}
	if err := l.commit(ctx, tx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// SetFeeRate updates the platform fee rate in basis points. Operator only.
func (l *Ledger) SetFeeRate(ctx context.Context, caller common.Address, rateBps uint16) error {
	if caller != l.operator {
		return errors.WithStack(ErrNotOperator)
	}
	if rateBps > entity.MaxFeeRateBps {
		return errors.WithStack(ErrFeeTooHigh)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.dg.BeginMarketTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	feeState, err := tx.GetFeeState(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get fee state")
	}
	feeState.FeeRateBps = rateBps
	if err := tx.SetFeeState(ctx, feeState); err != nil {
		return errors.Wrap(err, "failed to set fee state")
	}
	return l.commit(ctx, tx, nil)
}

// WithdrawFees moves all accumulated fees to the operator's native balance
// and returns the amount withdrawn. Operator only.
func (l *Ledger) WithdrawFees(ctx context.Context, caller common.Address) (*big.Int, error) {
	if caller != l.operator {
		return nil, errors.WithStack(ErrNotOperator)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.dg.BeginMarketTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	feeState, err := tx.GetFeeState(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get fee state")
	}
	if feeState.AccumulatedFees == nil || feeState.AccumulatedFees.Sign() == 0 {
		return nil, errors.WithStack(ErrNoFeesToWithdraw)
	}

	withdrawn := feeState.AccumulatedFees
	balance, err := tx.GetNativeBalance(ctx, l.operator)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get operator balance")
	}
	if err := tx.SetNativeBalance(ctx, l.operator, new(big.Int).Add(balance, withdrawn)); err != nil {
		return nil, errors.Wrap(err, "failed to credit operator")
	}
	feeState.AccumulatedFees = big.NewInt(0)
	if err := tx.SetFeeState(ctx, feeState); err != nil {
		return nil, errors.Wrap(err, "failed to set fee state")
	}
	if err := l.commit(ctx, tx, nil); err != nil {
		return nil, err
	}
	return withdrawn, nil
}

// activeListing loads the listing for key and fails unless it is active.
func (l *Ledger) activeListing(ctx context.Context, tx datagateway.MarketDataGatewayWithTx, key entity.ListingKey) (*entity.Listing, error) {
	listing, err := tx.GetListing(ctx, key)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.WithStack(ErrListingNotActive)
		}
		return nil, errors.Wrap(err, "failed to get listing")
	}
	if !listing.Active {
		return nil, errors.WithStack(ErrListingNotActive)
	}
	return listing, nil
}

// sellerListing loads the listing for key and fails unless the caller is its
// seller and it is active.
func (l *Ledger) sellerListing(ctx context.Context, tx datagateway.MarketDataGatewayWithTx, caller common.Address, key entity.ListingKey) (*entity.Listing, error) {
	listing, err := tx.GetListing(ctx, key)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.WithStack(ErrListingNotActive)
		}
		return nil, errors.Wrap(err, "failed to get listing")
	}
	if listing.Seller != caller {
		return nil, errors.WithStack(ErrNotSeller)
	}
	if !listing.Active {
		return nil, errors.WithStack(ErrListingNotActive)
	}
	return listing, nil
}

// transferAsset moves the listed amount from the seller to the buyer,
// re-checking custody and approval at settlement time.
func (l *Ledger) transferAsset(ctx context.Context, tx datagateway.MarketDataGatewayWithTx, listing *entity.Listing, buyer common.Address) error {
	approved, err := tx.IsApprovedForMarketplace(ctx, listing.Contract, listing.Seller)
	if err != nil {
		return errors.Wrap(err, "failed to get approval")
	}
	if !approved {
		return errors.WithStack(ErrNotApprovedForMarketplace)
	}

	switch listing.Standard {
	case entity.TokenStandardUnique:
		owner, err := tx.GetUniqueOwner(ctx, listing.Contract, listing.TokenID)
		if err != nil {
			return errors.Wrap(err, "failed to get token owner")
		}
		if owner != listing.Seller {
			return errors.WithStack(ErrNotTokenOwner)
		}
		if err := tx.SetUniqueOwner(ctx, listing.Contract, listing.TokenID, buyer); err != nil {
			return errors.Wrap(err, "failed to transfer token")
		}
	case entity.TokenStandardSemiFungible:
		sellerBalance, err := tx.GetSemiFungibleBalance(ctx, listing.Contract, listing.TokenID, listing.Seller)
		if err != nil {
			return errors.Wrap(err, "failed to get seller token balance")
		}
		if sellerBalance < listing.Amount {
			return errors.WithStack(ErrNotTokenOwner)
		}
		buyerBalance, err := tx.GetSemiFungibleBalance(ctx, listing.Contract, listing.TokenID, buyer)
		if err != nil {
			return errors.Wrap(err, "failed to get buyer token balance")
		}
		if err := tx.SetSemiFungibleBalance(ctx, listing.Contract, listing.TokenID, listing.Seller, sellerBalance-listing.Amount); err != nil {
			return errors.Wrap(err, "failed to debit seller token balance")
		}
		if err := tx.SetSemiFungibleBalance(ctx, listing.Contract, listing.TokenID, buyer, buyerBalance+listing.Amount); err != nil {
			return errors.Wrap(err, "failed to credit buyer token balance")
		}
	default:
		return errors.WithStack(ErrUnsupportedTokenType)
	}
	return nil
}

// commit advances the chain head by one block, stamps and appends the event
// (if any) at position 0 of the new block, and commits the transaction.
func (l *Ledger) commit(ctx context.Context, tx datagateway.MarketDataGatewayWithTx, event *entity.EventRecord) error {
	head, err := tx.GetChainHead(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get chain head")
	}
	height := head + 1
	if event != nil {
		event.BlockHeight = height
		event.LogIndex = 0
		event.TxHash = crypto.Keccak256Hash([]byte(fmt.Sprintf("%d:%s:%s:%s", height, event.Type, event.Contract.Hex(), event.TokenID.String())))
		if err := tx.AppendEvent(ctx, event); err != nil {
			return errors.Wrap(err, "failed to append event")
		}
	}
	if err := tx.SetChainHead(ctx, height); err != nil {
		return errors.Wrap(err, "failed to set chain head")
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}
