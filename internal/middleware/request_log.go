package middleware

import (
	"errors"
	"time"

	"fishlog/internal/logging"
	"fishlog/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// RequestLog writes one structured log line per request and records its latency.
func RequestLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		// Matched route pattern keeps label cardinality bounded.
		route := c.Route().Path
		metrics.RecordRequest(c.Method(), route, status, elapsed)

		event := logging.Info()
		if status >= fiber.StatusInternalServerError {
			event = logging.Error().Err(err)
		}
		event.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("ip", c.IP()).
			Msg("request")
		return err
	}
}
