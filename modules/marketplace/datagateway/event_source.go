package datagateway

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

// ErrRangeTooLarge is returned by event sources that cap the span of a single
// range query. Callers are expected to retry with a smaller window.
var ErrRangeTooLarge = errors.New("requested block range is too large")

// EventSource is a read-only view of the marketplace event log, as exposed by
// a chain provider. Implementations may cap the range of a single FilterEvents
// call and must return ErrRangeTooLarge (possibly wrapped) when exceeded.
type EventSource interface {
	// CurrentHeight returns the height of the latest block known to the source.
	CurrentHeight(ctx context.Context) (uint64, error)
	// FilterEvents returns events with fromHeight <= BlockHeight <= toHeight matching
	// the filter, ordered by (BlockHeight, LogIndex) ascending.
	FilterEvents(ctx context.Context, filter EventFilter, fromHeight, toHeight uint64) ([]*entity.EventRecord, error)
}

// ListingVerifier point-reads the current state of a single listing. Used by
// the reconciler to confirm log-derived candidates against live state.
type ListingVerifier interface {
	// VerifyListing returns the listing's current on-chain state. Returns errs.NotFound
	// if the listing was never created.
	VerifyListing(ctx context.Context, key entity.ListingKey) (*entity.Listing, error)
}
