package server

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/celsowm/adorn-api-sub006/logger"
)

// requestLogger logs one line per completed request. 5xx responses log
// at error level, 4xx at warn, the rest at info. Health probes are
// skipped.
func requestLogger(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/health" {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			latency := time.Since(start)
			status := c.Response().Status

			event := log.Info()
			switch {
			case status >= 500:
				event = log.Error()
			case status >= 400:
				event = log.Warn()
			}
			if err != nil {
				event = event.Err(err)
			}

			if traceID, ok := TraceIDFromContext(c.Request().Context()); ok {
				event = event.Str("trace_id", traceID)
			}
			event.
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Dur("latency", latency).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("Request completed")

			return err
		}
	}
}
