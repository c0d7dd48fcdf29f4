package helpers

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type GatewayError struct {
	Message string
	Cause   error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// UpstreamError covers network failures, non-success statuses and malformed
// JSON from the data source. Never cached, never fatal.
type UpstreamError struct{ GatewayError }

// ConfigurationError covers invalid process configuration.
type ConfigurationError struct{ GatewayError }

// -----------------------------------------------------------------------------

// ValidationError is a recoverable rejection of a symbol or index parameter.
// Suggestions carry alternatives the caller can act on.
type ValidationError struct {
	GatewayError
	Symbol           string
	Suggestions      []string
	AvailableIndices []string
}

// -----------------------------------------------------------------------------

// MarketStateError reports an operation invoked while the market was in the
// wrong state. RequiredState is "OPEN" or "CLOSE".
type MarketStateError struct {
	GatewayError
	RequiredState string
}

// -----------------------------------------------------------------------------

// RouteNotFoundError reports an unknown logical route name.
type RouteNotFoundError struct {
	GatewayError
	Route string
}

// -----------------------------------------------------------------------------

// NewUpstreamError wraps err as an upstream failure.
func NewUpstreamError(message string, cause error) *UpstreamError {
	return &UpstreamError{GatewayError{Message: message, Cause: cause}}
}

func NewRouteNotFoundError(route string) *RouteNotFoundError {
	return &RouteNotFoundError{
		GatewayError: GatewayError{Message: fmt.Sprintf("route '%s' not found", route)},
		Route:        route,
	}
}

func NewMarketStateError(requiredState string) *MarketStateError {
	msg := "market is closed, this operation requires the market to be open"
	if requiredState == "CLOSE" {
		msg = "market is open, this operation requires the market to be closed"
	}
	return &MarketStateError{
		GatewayError:  GatewayError{Message: msg},
		RequiredState: requiredState,
	}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts fn up to maxRetries times with exponential backoff.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == maxRetries-1 {
			break
		}
		time.Sleep(baseDelay * (1 << attempt))
	}

	return &GatewayError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries), Cause: lastErr}
}
