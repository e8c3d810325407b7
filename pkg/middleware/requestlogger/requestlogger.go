package requestlogger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmarket-network/market-indexer/pkg/logger"
)

type Config struct {
	// Disable suppresses INFO-level request logs. Errors are always logged.
	Disable bool `mapstructure:"disable"`
}

func New(config Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		attrs := []any{
			slog.String("event", "api_request"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", c.Route().Path),
			slog.Int("status", status),
			slog.Int64("latency", latency.Milliseconds()),
			slog.String("latencyHuman", latency.String()),
			slog.Int("responseLength", len(c.Response().Body())),
		}

		if err != nil || status >= http.StatusInternalServerError {
			logErr := err
			if logErr == nil {
				logErr = fiber.NewError(status)
			}
			logger.ErrorContext(c.UserContext(), "Request Completed", logErr, attrs...)
			return errors.WithStack(err)
		}
		if !config.Disable {
			logger.InfoContext(c.UserContext(), "Request Completed", attrs...)
		}
		return errors.WithStack(err)
	}
}
