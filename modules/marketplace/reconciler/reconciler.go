package reconciler

import (
	"context"
	"sort"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"github.com/openmarket-network/market-indexer/pkg/logger"
	"github.com/openmarket-network/market-indexer/pkg/logger/slogx"
	"golang.org/x/sync/errgroup"
)

// ErrVerificationTimeout is returned when the caller's deadline expires while
// point reads are in flight. No partial listing set is ever returned.
var ErrVerificationTimeout = errs.ErrorKind("listing verification timed out")

const DefaultVerifyConcurrency = 8

type EventScanner interface {
	Scan(ctx context.Context, filter datagateway.EventFilter) ([]*entity.EventRecord, error)
}

// ActiveListing is a verified listing enriched with display metadata.
type ActiveListing struct {
	*entity.Listing
	Metadata entity.TokenMetadata
}

// Reconciler derives the current active listing set from the event history.
//
// Event-derived filtering is only an optimization to avoid point-reading
// every historical Listed event. The live read in the second phase is
// authoritative: whenever history and the ledger disagree, the ledger wins.
type Reconciler struct {
	scanner     EventScanner
	verifier    datagateway.ListingVerifier
	metadata    datagateway.MetadataResolver
	concurrency int
}

func New(scanner EventScanner, verifier datagateway.ListingVerifier, metadata datagateway.MetadataResolver, verifyConcurrency int) *Reconciler {
	return &Reconciler{
		scanner:     scanner,
		verifier:    verifier,
		metadata:    metadata,
		concurrency: utils.Default(verifyConcurrency, DefaultVerifyConcurrency),
	}
}

// Reconcile returns every currently active listing matching the filter,
// verified against the ledger. Results are sorted by identity key.
func (r *Reconciler) Reconcile(ctx context.Context, filter datagateway.EventFilter) ([]*ActiveListing, error) {
	ctx = logger.WithContext(ctx, slogx.String("package", "reconciler"))

	filter.Types = []entity.EventType{
		entity.EventTypeListed,
		entity.EventTypeSold,
		entity.EventTypeCancelled,
	}
	events, err := r.scanner.Scan(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan events")
	}

	candidates := r.surviveCandidates(events)

	verified, err := r.verify(ctx, candidates)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	listings, err := r.enrich(ctx, verified)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	sort.Slice(listings, func(i, j int) bool {
		return listings[i].Key().String() < listings[j].Key().String()
	})
	return listings, nil
}

type orderKey struct {
	height   uint64
	logIndex uint32
}

func (o orderKey) after(other orderKey) bool {
	if o.height != other.height {
		return o.height > other.height
	}
	return o.logIndex > other.logIndex
}

// surviveCandidates walks the history and keeps, per listing identity, the
// latest Listed event not shadowed by a later Cancelled or Sold event.
//
// Cancelled events are seller-scoped. Sold events are unscoped for Unique
// tokens only: a SemiFungible sale terminates just the selling seller's own
// listing and must not shadow other sellers' listings of the same token id.
// The live read catches that seller's own terminated listing instead.
func (r *Reconciler) surviveCandidates(events []*entity.EventRecord) []*entity.EventRecord {
	cancelledAt := make(map[string]orderKey)
	soldAt := make(map[string]orderKey)
	for _, event := range events {
		at := orderKey{height: event.BlockHeight, logIndex: event.LogIndex}
		switch event.Type {
		case entity.EventTypeCancelled:
			key := event.Key().Scoped()
			if at.after(cancelledAt[key]) {
				cancelledAt[key] = at
			}
		case entity.EventTypeSold:
			if event.Standard != entity.TokenStandardUnique {
				continue
			}
			key := event.Key().Unscoped()
			if at.after(soldAt[key]) {
				soldAt[key] = at
			}
		}
	}

	// Ascending walk so a later relist overrides earlier Listed events for
	// the same identity.
	latest := make(map[string]*entity.EventRecord)
	order := make([]string, 0)
	for _, event := range events {
		if event.Type != entity.EventTypeListed {
			continue
		}
		id := event.Key().String()
		if _, ok := latest[id]; !ok {
			order = append(order, id)
		}
		latest[id] = event
	}

	candidates := make([]*entity.EventRecord, 0, len(order))
	for _, id := range order {
		event := latest[id]
		at := orderKey{height: event.BlockHeight, logIndex: event.LogIndex}
		if cancelled, ok := cancelledAt[event.Key().Scoped()]; ok && !at.after(cancelled) {
			continue
		}
		if event.Standard == entity.TokenStandardUnique {
			if sold, ok := soldAt[event.Key().Unscoped()]; ok && !at.after(sold) {
				continue
			}
		}
		candidates = append(candidates, event)
	}
	return candidates
}

// verify point-reads every candidate against the ledger and keeps only the
// ones the ledger reports active. All reads must complete; a single failure
// fails the whole reconcile rather than returning a partial set.
func (r *Reconciler) verify(ctx context.Context, candidates []*entity.EventRecord) ([]*entity.Listing, error) {
	results := make([]*entity.Listing, len(candidates))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.concurrency)
	for i, candidate := range candidates {
		i, candidate := i, candidate
		eg.Go(func() error {
			listing, err := r.verifier.VerifyListing(egctx, candidate.Key())
			if err != nil {
				if errors.Is(err, errs.NotFound) {
					return nil
				}
				return errors.Wrapf(err, "failed to verify listing %s", candidate.Key())
			}
			if !listing.Active {
				return nil
			}
			results[i] = listing
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(ErrVerificationTimeout, err.Error())
		}
		return nil, errors.WithStack(err)
	}

	listings := make([]*entity.Listing, 0, len(candidates))
	for _, listing := range results {
		if listing != nil {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

// enrich resolves display metadata for the verified listings. Resolution
// failures degrade to a placeholder and never block enumeration.
func (r *Reconciler) enrich(ctx context.Context, listings []*entity.Listing) ([]*ActiveListing, error) {
	results := make([]*ActiveListing, len(listings))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.concurrency)
	for i, listing := range listings {
		i, listing := i, listing
		eg.Go(func() error {
			item := &ActiveListing{
				Listing:  listing,
				Metadata: entity.PlaceholderMetadata(listing.TokenID),
			}
			if r.metadata != nil {
				metadata, err := r.metadata.ResolveMetadata(egctx, listing.Contract, listing.TokenID)
				if err != nil {
					logger.WarnContext(egctx, "failed to resolve token metadata, using placeholder",
						slogx.Error(err),
						slogx.String("contract", listing.Contract.Hex()),
						slogx.String("token_id", listing.TokenID.String()),
					)
				} else {
					item.Metadata = metadata
				}
			}
			results[i] = item
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.WithStack(err)
	}
	return results, nil
}
