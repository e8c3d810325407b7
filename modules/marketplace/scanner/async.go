package scanner

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/openmarket-network/market-indexer/internal/subscription"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"github.com/openmarket-network/market-indexer/pkg/logger"
	"github.com/openmarket-network/market-indexer/pkg/logger/slogx"
	cstream "github.com/planxnx/concurrent-stream"
)

// ScanAsync streams event batches to ch in ascending ledger order without
// blocking the caller. Windows are fetched with bounded parallelism; the
// stream reassembles results in window order before dispatch. Errors are
// delivered on the returned subscription's Err channel.
func (s *Scanner) ScanAsync(ctx context.Context, filter datagateway.EventFilter, ch chan<- []*entity.EventRecord) (*subscription.ClientSubscription[[]*entity.EventRecord], error) {
	ctx = logger.WithContext(ctx,
		slogx.String("package", "scanner"),
	)

	from, to, skip, err := s.prepareRange(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare scan range")
	}

	sub := subscription.NewSubscription(ch)
	if skip {
		if err := sub.UnsubscribeWithContext(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to unsubscribe")
		}
		return sub.Client(), nil
	}

	windows := s.partition(from, to)

	out := make(chan []*entity.EventRecord)
	stream := cstream.NewStream(ctx, s.concurrency, out)

	// Wait for stream to finish and close out channel
	go func() {
		defer close(out)
		_ = stream.Wait()
	}()

	// Fan-out ordered batches to the subscription channel
	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case batch, ok := <-out:
				if !ok {
					return
				}
				if len(batch) == 0 {
					continue
				}
				if err := sub.Send(ctx, batch); err != nil {
					logger.ErrorContext(ctx, "failed while dispatch events", err,
						slogx.Uint64("start", batch[0].BlockHeight),
						slogx.Uint64("end", batch[len(batch)-1].BlockHeight),
					)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Parallel fetch windows until all are complete or the subscription is done.
	go func() {
		defer stream.Close()
		done := sub.Done()
		for _, w := range windows {
			w := w
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			default:
				stream.Go(func() []*entity.EventRecord {
					events, err := s.fetchWindow(ctx, filter, w.from, w.to)
					if err != nil {
						logger.ErrorContext(ctx, "failed to fetch window", err,
							slogx.Uint64("from_height", w.from),
							slogx.Uint64("to_height", w.to),
						)
						if err := sub.SendError(ctx, errors.WithStack(err)); err != nil {
							logger.WarnContext(ctx, "failed to send scanner error to subscription client", slogx.Error(err))
						}
						return nil
					}
					return events
				})
			}
		}
	}()

	return sub.Client(), nil
}
