package server

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// W3C trace context headers.
const (
	HeaderTraceParent = "traceparent"
	HeaderTraceState  = "tracestate"
)

type traceIDKey struct{}

// WithTraceID stores a trace ID in the context for outbound use.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace ID stored by the middleware.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(traceIDKey{}).(string)
	return id, ok
}

// traceContext resolves the inbound trace ID and attaches it to the
// request context so handlers and logs can reference it without
// depending on Echo.
func traceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := WithTraceID(req.Context(), resolveTraceID(c))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// resolveTraceID extracts the trace-id field of a well-formed
// traceparent header, falling back to the request ID or a fresh UUID.
func resolveTraceID(c echo.Context) string {
	if tp := c.Request().Header.Get(HeaderTraceParent); tp != "" {
		parts := strings.Split(tp, "-")
		if len(parts) == 4 && len(parts[1]) == 32 {
			return parts[1]
		}
	}
	if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return uuid.NewString()
}
