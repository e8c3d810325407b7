package usecase

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"github.com/openmarket-network/market-indexer/modules/marketplace/reconciler"
)

// ListingsFilter narrows GetActiveListings results. Zero-value fields are
// ignored.
type ListingsFilter struct {
	Contract common.Address
	TokenID  *big.Int
	Seller   common.Address
}

// GetActiveListings returns the reconciled, verified set of active listings.
func (u *Usecase) GetActiveListings(ctx context.Context, filter ListingsFilter) ([]*reconciler.ActiveListing, error) {
	listings, err := u.reconciler.Reconcile(ctx, datagateway.EventFilter{
		Contract: filter.Contract,
		TokenID:  filter.TokenID,
		Seller:   filter.Seller,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to reconcile listings")
	}
	return listings, nil
}

// GetListing point-reads one listing by identity. Returns errs.NotFound if no
// listing was ever created for the key.
func (u *Usecase) GetListing(ctx context.Context, key entity.ListingKey) (*entity.Listing, error) {
	listing, err := u.ledger.GetListing(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get listing")
	}
	return listing, nil
}

// GetAccountHistory returns the account's activity feed, most recent first.
func (u *Usecase) GetAccountHistory(ctx context.Context, account common.Address) ([]*entity.AccountActivity, error) {
	activities, err := u.projector.AccountHistory(ctx, account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to project account history")
	}
	return activities, nil
}
