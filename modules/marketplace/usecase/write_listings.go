package usecase

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

func (u *Usecase) ListItem(ctx context.Context, caller common.Address, contract common.Address, tokenID *big.Int, amount uint64, price *big.Int, standard entity.TokenStandard) (*entity.EventRecord, error) {
	event, err := u.ledger.List(ctx, caller, contract, tokenID, amount, price, standard)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list item")
	}
	return event, nil
}

func (u *Usecase) BuyItem(ctx context.Context, buyer common.Address, key entity.ListingKey, payment *big.Int) (*entity.EventRecord, error) {
	event, err := u.ledger.Buy(ctx, buyer, key, payment)
	if err != nil {
		return nil, errors.Wrap(err, "failed to buy item")
	}
	return event, nil
}

func (u *Usecase) CancelListing(ctx context.Context, caller common.Address, key entity.ListingKey) (*entity.EventRecord, error) {
	event, err := u.ledger.Cancel(ctx, caller, key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to cancel listing")
	}
	return event, nil
}

func (u *Usecase) RepriceListing(ctx context.Context, caller common.Address, key entity.ListingKey, newPrice *big.Int) (*entity.EventRecord, error) {
	event, err := u.ledger.Reprice(ctx, caller, key, newPrice)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reprice listing")
	}
	return event, nil
}
