package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"nepse-gateway/src/logger"
	"nepse-gateway/src/models"

	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func newTestLimiter(t *testing.T) (*SlidingWindowLimiter, *time.Time) {
	t.Helper()

	cfg := models.MRateLimitConfig{
		WindowSeconds:    60,
		ClientThreshold:  1000,
		IdleSweepSeconds: 300,
		Limits: map[string]int{
			"default":              60,
			"health":               50,
			"validation":           120,
			"market_data":          60,
			"websocket_connection": 100,
			"websocket_message":    50,
		},
	}

	l := NewSlidingWindowLimiter(cfg, logger.NewLogger("ERROR", "test"))

	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

// -----------------------------------------------------------------------------

func TestCategorize(t *testing.T) {
	require.Equal(t, "health", Categorize("/health"))
	require.Equal(t, "validation", Categorize("/validate/stock/NABIL"))
	require.Equal(t, "validation", Categorize("/validate/index/NEPSE Index"))
	// "/validation" does not share the "/validate" prefix; stats traffic
	// draws from the default budget
	require.Equal(t, "default", Categorize("/validation/stats"))
	require.Equal(t, "market_data", Categorize("/Summary"))
	require.Equal(t, "market_data", Categorize("/LiveMarket"))
	require.Equal(t, "market_data", Categorize("/TopGainers"))
	require.Equal(t, "websocket_connection", Categorize("websocket_connection"))
	require.Equal(t, "websocket_message", Categorize("websocket_message"))
	require.Equal(t, "default", Categorize("/CompanyList"))
	require.Equal(t, "default", Categorize(""))
}

// -----------------------------------------------------------------------------

func TestAdmitRejectsAboveLimit(t *testing.T) {
	l, _ := newTestLimiter(t)

	for i := 0; i < 50; i++ {
		d := l.Admit("1.2.3.4", "/health")
		require.True(t, d.Allowed, "request %d should pass", i)
		require.Equal(t, 50, d.Limit)
		require.Equal(t, 50-(i+1), d.Remaining)
	}

	d := l.Admit("1.2.3.4", "/health")
	require.False(t, d.Allowed)
	require.Equal(t, 0, d.Remaining)
	require.Equal(t, "health", d.Category)
}

// -----------------------------------------------------------------------------

func TestRejectedRequestNotRecorded(t *testing.T) {
	l, now := newTestLimiter(t)

	for i := 0; i < 50; i++ {
		l.Admit("c", "/health")
	}

	// Hammering past the limit must not extend the penalty
	for i := 0; i < 100; i++ {
		require.False(t, l.Admit("c", "/health").Allowed)
	}

	// Once the original 50 leave the window everything opens up again
	*now = now.Add(61 * time.Second)
	d := l.Admit("c", "/health")
	require.True(t, d.Allowed)
	require.Equal(t, 49, d.Remaining)
}

// -----------------------------------------------------------------------------

func TestWindowSlides(t *testing.T) {
	l, now := newTestLimiter(t)

	for i := 0; i < 50; i++ {
		l.Admit("c", "/health")
	}
	require.False(t, l.Admit("c", "/health").Allowed)

	*now = now.Add(61 * time.Second)
	require.True(t, l.Admit("c", "/health").Allowed)
}

// -----------------------------------------------------------------------------

func TestCategoriesIsolated(t *testing.T) {
	l, _ := newTestLimiter(t)

	for i := 0; i < 50; i++ {
		l.Admit("c", "/health")
	}
	require.False(t, l.Admit("c", "/health").Allowed)

	// Other categories keep their own budget
	require.True(t, l.Admit("c", "/Summary").Allowed)
	require.True(t, l.Admit("c", "/CompanyList").Allowed)
}

// -----------------------------------------------------------------------------

func TestClientsIsolated(t *testing.T) {
	l, _ := newTestLimiter(t)

	for i := 0; i < 50; i++ {
		l.Admit("a", "/health")
	}
	require.False(t, l.Admit("a", "/health").Allowed)
	require.True(t, l.Admit("b", "/health").Allowed)
}

// -----------------------------------------------------------------------------

func TestIdleSweep(t *testing.T) {
	l, now := newTestLimiter(t)
	l.clientThreshold = 10

	for i := 0; i < 11; i++ {
		l.Admit(fmt.Sprintf("client-%d", i), "/Summary")
	}
	require.Equal(t, 11, l.Stats().TotalTrackedClients)

	// All previous clients go idle past the sweep interval; the next Admit
	// crosses the threshold and sweeps them.
	*now = now.Add(301 * time.Second)
	l.Admit("fresh", "/Summary")

	stats := l.Stats()
	require.Equal(t, 1, stats.TotalTrackedClients)
	require.Equal(t, 1, stats.ActiveRequests)
}

// -----------------------------------------------------------------------------

func TestStats(t *testing.T) {
	l, _ := newTestLimiter(t)

	l.Admit("a", "/health")
	l.Admit("a", "/Summary")
	l.Admit("b", "/Summary")

	stats := l.Stats()
	require.Equal(t, 2, stats.TotalTrackedClients)
	require.Equal(t, 3, stats.TotalTrackedWindows)
	require.Equal(t, 3, stats.ActiveRequests)
	require.Equal(t, 60, stats.WindowSizeSeconds)
	require.Equal(t, 300, stats.CleanupIntervalSecs)
	require.Equal(t, 120, stats.Limits["validation"])
}

// -----------------------------------------------------------------------------

func TestUnknownCategoryUsesDefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(t)

	d := l.Admit("c", "/SomethingNew")
	require.True(t, d.Allowed)
	require.Equal(t, 60, d.Limit)
	require.Equal(t, "default", d.Category)
}
