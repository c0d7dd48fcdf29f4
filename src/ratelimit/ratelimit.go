package ratelimit

import (
	"strings"
	"sync"
	"time"

	"nepse-gateway/src/logger"
	"nepse-gateway/src/models"
)

// -----------------------------------------------------------------------------
// Endpoint categories. The numeric limits live in configuration; only the
// categorization rules are code.
// -----------------------------------------------------------------------------

const (
	CategoryDefault      = "default"
	CategoryHealth       = "health"
	CategoryValidation   = "validation"
	CategoryMarketData   = "market_data"
	CategoryWsConnection = "websocket_connection"
	CategoryWsMessage    = "websocket_message"
)

var marketDataEndpoints = map[string]struct{}{
	"/Summary":     {},
	"/LiveMarket":  {},
	"/PriceVolume": {},
	"/TopGainers":  {},
	"/TopLosers":   {},
}

// Categorize maps a route or path string to its endpoint category. Malformed
// or unknown input categorizes as default; this function never fails.
func Categorize(endpoint string) string {
	switch {
	case endpoint == "/health":
		return CategoryHealth
	case strings.HasPrefix(endpoint, "/validate"):
		return CategoryValidation
	case endpoint == CategoryWsConnection:
		return CategoryWsConnection
	case endpoint == CategoryWsMessage:
		return CategoryWsMessage
	default:
		if _, ok := marketDataEndpoints[endpoint]; ok {
			return CategoryMarketData
		}
		return CategoryDefault
	}
}

// -----------------------------------------------------------------------------
// SlidingWindowLimiter admits or rejects requests per (client, category)
// against a trailing window. Safe for concurrent use; all checks run under
// one mutex since the hot path is a small slice scan.
// -----------------------------------------------------------------------------

type SlidingWindowLimiter struct {
	Logger *logger.Logger

	window          time.Duration
	limits          map[string]int
	clientThreshold int
	idleSweep       time.Duration

	mu       sync.Mutex
	requests map[string]map[string][]time.Time
	lastSeen map[string]time.Time

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewSlidingWindowLimiter(cfg models.MRateLimitConfig, log *logger.Logger) *SlidingWindowLimiter {
	limits := make(map[string]int, len(cfg.Limits))
	for k, v := range cfg.Limits {
		limits[k] = v
	}
	if _, ok := limits[CategoryDefault]; !ok {
		limits[CategoryDefault] = 60
	}

	return &SlidingWindowLimiter{
		Logger:          log,
		window:          time.Duration(cfg.WindowSeconds) * time.Second,
		limits:          limits,
		clientThreshold: cfg.ClientThreshold,
		idleSweep:       time.Duration(cfg.IdleSweepSeconds) * time.Second,
		requests:        make(map[string]map[string][]time.Time),
		lastSeen:        make(map[string]time.Time),
		now:             time.Now,
	}
}

// -----------------------------------------------------------------------------

func (l *SlidingWindowLimiter) limitFor(category string) int {
	if limit, ok := l.limits[category]; ok {
		return limit
	}
	return l.limits[CategoryDefault]
}

// -----------------------------------------------------------------------------

// Admit checks one logical request from clientID against the endpoint's
// category window. A rejected request is not recorded.
func (l *SlidingWindowLimiter) Admit(clientID, endpoint string) models.MRateDecision {
	category := Categorize(endpoint)
	limit := l.limitFor(category)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	windows, ok := l.requests[clientID]
	if !ok {
		windows = make(map[string][]time.Time)
		l.requests[clientID] = windows
	}

	// Lazy purge of entries older than the window.
	times := windows[category]
	keep := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	times = keep

	l.lastSeen[clientID] = now
	if len(l.lastSeen) > l.clientThreshold {
		l.sweepIdleClients(now)
	}

	decision := models.MRateDecision{
		Limit:     limit,
		Remaining: max(0, limit-len(times)),
		ResetTime: now.Add(l.window).Unix(),
		Category:  category,
	}

	if len(times) >= limit {
		windows[category] = times
		l.Logger.Warning("Rate limit exceeded for %s on %s: %d/%d", clientID, endpoint, len(times), limit)
		return decision
	}

	times = append(times, now)
	windows[category] = times

	decision.Allowed = true
	decision.Remaining = max(0, limit-len(times))
	return decision
}

// -----------------------------------------------------------------------------

// sweepIdleClients drops clients with no activity inside the idle interval.
// Caller holds the mutex.
func (l *SlidingWindowLimiter) sweepIdleClients(now time.Time) {
	cutoff := now.Add(-l.idleSweep)
	for client, seen := range l.lastSeen {
		if seen.Before(cutoff) {
			delete(l.lastSeen, client)
			delete(l.requests, client)
			l.Logger.Debug("Swept rate limit state for idle client %s", client)
		}
	}
}

// -----------------------------------------------------------------------------

// Stats reports limiter occupancy for the stats endpoint.
func (l *SlidingWindowLimiter) Stats() models.MRateLimiterStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	totalWindows := 0
	active := 0
	for _, windows := range l.requests {
		totalWindows += len(windows)
		for _, times := range windows {
			for _, t := range times {
				if t.After(cutoff) {
					active++
				}
			}
		}
	}

	limits := make(map[string]int, len(l.limits))
	for k, v := range l.limits {
		limits[k] = v
	}

	return models.MRateLimiterStats{
		TotalTrackedClients: len(l.requests),
		TotalTrackedWindows: totalWindows,
		ActiveRequests:      active,
		WindowSizeSeconds:   int(l.window / time.Second),
		Limits:              limits,
		CleanupIntervalSecs: int(l.idleSweep / time.Second),
	}
}
