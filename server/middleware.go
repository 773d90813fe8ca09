package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/celsowm/adorn-api-sub006/config"
	"github.com/celsowm/adorn-api-sub006/logger"
)

// setupMiddlewares installs the standard chain: request ID, trace
// propagation, CORS, request logging, recovery, security headers, body
// limit, gzip and rate limiting.
func setupMiddlewares(e *echo.Echo, log logger.Logger, cfg *config.Config) {
	e.Use(middleware.RequestID())
	e.Use(traceContext())
	e.Use(middleware.CORS())
	e.Use(requestLogger(log))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error().
				Err(err).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("stack", string(stack)).
				Msg("Panic recovered")
			return err
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         3600,
	}))

	e.Use(middleware.BodyLimit("10M"))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))

	e.Use(rateLimit(cfg.Server.Rate.Limit, cfg.Server.Rate.Burst))
}

// rateLimit limits requests per client IP. A zero or negative limit
// disables limiting.
func rateLimit(limit float64, burst int) echo.MiddlewareFunc {
	if limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	if burst <= 0 {
		burst = int(limit) * 2
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:  rate.Limit(limit),
				Burst: burst,
			},
		),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return tooManyRequests(c)
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return tooManyRequests(c)
		},
	})
}

func tooManyRequests(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{
			"message":    "Too many requests",
			"status":     http.StatusTooManyRequests,
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		},
	})
}
