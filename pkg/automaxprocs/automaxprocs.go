package automaxprocs

import (
	"fmt"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/openmarket-network/market-indexer/pkg/logger"
	"github.com/openmarket-network/market-indexer/pkg/logger/slogx"
	"go.uber.org/automaxprocs/maxprocs"
)

// Init sets GOMAXPROCS to match the Linux container CPU quota (if any).
// It is a no-op on non-Linux systems and in environments without a quota.
func Init() error {
	log := logger.With(
		slogx.String("package", "automaxprocs"),
		slogx.Int("prev_maxprocs", Current()),
	)

	_, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
		log.Info(fmt.Sprintf(format, v...))
	}), maxprocs.Min(1))
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Current returns the current value of GOMAXPROCS.
func Current() int {
	return runtime.GOMAXPROCS(0)
}
