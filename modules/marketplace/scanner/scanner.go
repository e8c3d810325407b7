package scanner

import (
	"context"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"github.com/openmarket-network/market-indexer/pkg/logger"
	"github.com/openmarket-network/market-indexer/pkg/logger/slogx"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrScanFailed is returned when a window cannot be fetched after all
	// retries. The scan produces no output in that case.
	ErrScanFailed = errs.ErrorKind("scan failed")
	// ErrScanTimeout is returned when the caller's deadline expires mid-scan.
	ErrScanTimeout = errs.ErrorKind("scan timed out")
)

const (
	DefaultWindowSize   = 50_000
	DefaultConcurrency  = 4
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 250 * time.Millisecond
)

type Config struct {
	WindowSize   uint64        `mapstructure:"window_size"`
	Concurrency  int           `mapstructure:"concurrency"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// Scanner retrieves the full event history for a filter from an EventSource
// that caps the block span of a single query. The range is partitioned into
// fixed-size windows fetched with bounded parallelism, and the head height is
// fixed once at the start so a long scan does not chase an advancing chain.
type Scanner struct {
	source           datagateway.EventSource
	deploymentHeight uint64
	windowSize       uint64
	concurrency      int
	maxRetries       int
	retryBackoff     time.Duration
}

func New(source datagateway.EventSource, deploymentHeight uint64, config Config) *Scanner {
	return &Scanner{
		source:           source,
		deploymentHeight: deploymentHeight,
		windowSize:       utils.Default(config.WindowSize, DefaultWindowSize),
		concurrency:      utils.Default(config.Concurrency, DefaultConcurrency),
		maxRetries:       utils.Default(config.MaxRetries, DefaultMaxRetries),
		retryBackoff:     utils.Default(config.RetryBackoff, DefaultRetryBackoff),
	}
}

type window struct {
	from uint64
	to   uint64
}

// Scan fetches every event matching the filter between the deployment height
// and the current head, in ascending ledger order. Either the full history is
// returned or an error; there is no partial output.
func (s *Scanner) Scan(ctx context.Context, filter datagateway.EventFilter) ([]*entity.EventRecord, error) {
	ctx = logger.WithContext(ctx,
		slogx.String("package", "scanner"),
		slogx.Stringer("scan_id", uuid.New()),
	)

	from, to, skip, err := s.prepareRange(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare scan range")
	}
	if skip {
		return []*entity.EventRecord{}, nil
	}

	windows := s.partition(from, to)
	results := make([][]*entity.EventRecord, len(windows))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i, w := range windows {
		i, w := i, w
		eg.Go(func() error {
			events, err := s.fetchWindow(egctx, filter, w.from, w.to)
			if err != nil {
				return errors.WithStack(err)
			}
			results[i] = events
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(ErrScanTimeout, err.Error())
		}
		return nil, errors.WithStack(err)
	}

	events := make([]*entity.EventRecord, 0)
	for _, batch := range results {
		events = append(events, batch...)
	}
	logger.DebugContext(ctx, "scan complete",
		slogx.Uint64("from_height", from),
		slogx.Uint64("to_height", to),
		slogx.Int("windows", len(windows)),
		slogx.Int("events", len(events)),
	)
	return events, nil
}

// prepareRange fixes the scan bounds once. The head may advance while the
// scan runs; later events are picked up by the next scan.
func (s *Scanner) prepareRange(ctx context.Context) (from, to uint64, skip bool, err error) {
	head, err := s.source.CurrentHeight(ctx)
	if err != nil {
		return 0, 0, false, errors.Wrap(err, "failed to get current height")
	}
	from = s.deploymentHeight
	to = head
	if from > to {
		return 0, 0, true, nil
	}
	return from, to, false, nil
}

func (s *Scanner) partition(from, to uint64) []window {
	windows := make([]window, 0, (to-from)/s.windowSize+1)
	for start := from; start <= to; start += s.windowSize {
		end := start + s.windowSize - 1
		if end > to {
			end = to
		}
		windows = append(windows, window{from: start, to: end})
	}
	return windows
}

// fetchWindow fetches one window, halving it on range-cap rejections and
// retrying transient failures with exponential backoff.
func (s *Scanner) fetchWindow(ctx context.Context, filter datagateway.EventFilter, from, to uint64) ([]*entity.EventRecord, error) {
	for attempt := 0; ; attempt++ {
		events, err := s.source.FilterEvents(ctx, filter, from, to)
		if err == nil {
			return events, nil
		}
		if errors.Is(err, datagateway.ErrRangeTooLarge) {
			if from == to {
				return nil, errors.Wrapf(ErrScanFailed, "window [%d, %d] rejected at minimum size", from, to)
			}
			logger.DebugContext(ctx, "window rejected as too large, halving",
				slogx.Uint64("from_height", from),
				slogx.Uint64("to_height", to),
			)
			mid := from + (to-from)/2
			left, err := s.fetchWindow(ctx, filter, from, mid)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			right, err := s.fetchWindow(ctx, filter, mid+1, to)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			return append(left, right...), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrapf(ErrScanTimeout, "window [%d, %d]: %s", from, to, ctxErr)
		}
		if attempt+1 >= s.maxRetries {
			return nil, errors.Wrapf(ErrScanFailed, "window [%d, %d]: retries exhausted: %s", from, to, err)
		}
		logger.WarnContext(ctx, "window fetch failed, retrying",
			slogx.Error(err),
			slogx.Uint64("from_height", from),
			slogx.Uint64("to_height", to),
			slogx.Int("attempt", attempt+1),
		)
		select {
		case <-time.After(s.retryBackoff << attempt):
		case <-ctx.Done():
			return nil, errors.Wrapf(ErrScanTimeout, "window [%d, %d]: %s", from, to, ctx.Err())
		}
	}
}
