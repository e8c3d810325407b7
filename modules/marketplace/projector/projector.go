package projector

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"golang.org/x/sync/errgroup"
)

type EventScanner interface {
	Scan(ctx context.Context, filter datagateway.EventFilter) ([]*entity.EventRecord, error)
}

// Projector builds a chronological activity feed for one account. History is
// immutable, so unlike the reconciler it needs no verification against
// current ledger state.
type Projector struct {
	scanner EventScanner
}

func New(scanner EventScanner) *Projector {
	return &Projector{scanner: scanner}
}

// AccountHistory classifies every event involving the account, as seller or
// buyer, most recent first.
func (p *Projector) AccountHistory(ctx context.Context, account common.Address) ([]*entity.AccountActivity, error) {
	var asSeller, asBuyer []*entity.EventRecord

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		events, err := p.scanner.Scan(egctx, datagateway.EventFilter{
			Seller: account,
			Types: []entity.EventType{
				entity.EventTypeListed,
				entity.EventTypeCancelled,
				entity.EventTypeSold,
			},
		})
		if err != nil {
			return errors.Wrap(err, "failed to scan seller events")
		}
		asSeller = events
		return nil
	})
	eg.Go(func() error {
		events, err := p.scanner.Scan(egctx, datagateway.EventFilter{
			Buyer: account,
			Types: []entity.EventType{entity.EventTypeSold},
		})
		if err != nil {
			return errors.Wrap(err, "failed to scan buyer events")
		}
		asBuyer = events
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, errors.WithStack(err)
	}

	activities := make([]*entity.AccountActivity, 0, len(asSeller)+len(asBuyer))
	for _, event := range asSeller {
		activities = append(activities, classify(event, account))
	}
	for _, event := range asBuyer {
		// A self-purchase already appears in the seller scan.
		if event.Seller == account {
			continue
		}
		activities = append(activities, classify(event, account))
	}

	sort.Slice(activities, func(i, j int) bool {
		a, b := activities[i], activities[j]
		if a.BlockHeight != b.BlockHeight {
			return a.BlockHeight > b.BlockHeight
		}
		return a.LogIndex > b.LogIndex
	})
	return activities, nil
}

func classify(event *entity.EventRecord, account common.Address) *entity.AccountActivity {
	activity := &entity.AccountActivity{
		Contract:    event.Contract,
		TokenID:     event.TokenID,
		Price:       event.Price,
		Amount:      event.Amount,
		Standard:    event.Standard,
		BlockHeight: event.BlockHeight,
		LogIndex:    event.LogIndex,
		TxHash:      event.TxHash,
	}
	switch event.Type {
	case entity.EventTypeListed:
		activity.Kind = entity.ActivityListed
	case entity.EventTypeCancelled:
		activity.Kind = entity.ActivityCancelled
	case entity.EventTypeSold:
		if event.Seller == account {
			activity.Kind = entity.ActivitySold
			activity.Counterparty = event.Buyer
		} else {
			activity.Kind = entity.ActivityBought
			activity.Counterparty = event.Seller
		}
	}
	return activity
}
