package ledger

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

// GetListing returns the listing for the given key. Returns errs.NotFound if
// no listing was ever created for the key.
func (l *Ledger) GetListing(ctx context.Context, key entity.ListingKey) (*entity.Listing, error) {
	listing, err := l.dg.GetListing(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get listing")
	}
	return listing, nil
}

// VerifyListing implements datagateway.ListingVerifier. The Reconciler uses
// it as the authoritative point read.
func (l *Ledger) VerifyListing(ctx context.Context, key entity.ListingKey) (*entity.Listing, error) {
	return l.GetListing(ctx, key)
}

func (l *Ledger) GetFeeState(ctx context.Context) (entity.FeeState, error) {
	feeState, err := l.dg.GetFeeState(ctx)
	if err != nil {
		return entity.FeeState{}, errors.Wrap(err, "failed to get fee state")
	}
	return feeState, nil
}

// CurrentHeight implements datagateway.EventSource.
func (l *Ledger) CurrentHeight(ctx context.Context) (uint64, error) {
	head, err := l.dg.GetChainHead(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get chain head")
	}
	return head, nil
}

// FilterEvents implements datagateway.EventSource. The range cap of the
// underlying gateway applies, so callers scan in windows.
func (l *Ledger) FilterEvents(ctx context.Context, filter datagateway.EventFilter, fromHeight, toHeight uint64) ([]*entity.EventRecord, error) {
	return l.dg.GetEvents(ctx, filter, fromHeight, toHeight)
}

func (l *Ledger) GetUniqueOwner(ctx context.Context, contract common.Address, tokenID *big.Int) (common.Address, error) {
	return l.dg.GetUniqueOwner(ctx, contract, tokenID)
}

func (l *Ledger) GetSemiFungibleBalance(ctx context.Context, contract common.Address, tokenID *big.Int, account common.Address) (uint64, error) {
	return l.dg.GetSemiFungibleBalance(ctx, contract, tokenID, account)
}

func (l *Ledger) GetNativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	return l.dg.GetNativeBalance(ctx, account)
}
