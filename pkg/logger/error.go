package logger

import (
	"fmt"
	"log/slog"

	"github.com/openmarket-network/market-indexer/pkg/logger/slogx"
)

// errorAttrReplacer expands error attributes with a verbose rendering,
// including wrapped causes and stack traces from cockroachdb/errors.
func errorAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 || attr.Key != slogx.ErrorKey {
		return attr
	}
	err, ok := attr.Value.Any().(error)
	if !ok || err == nil {
		return attr
	}
	return slog.Group("", slog.String(slogx.ErrorKey, err.Error()), slog.String("error_verbose", fmt.Sprintf("%+v", err)))
}
