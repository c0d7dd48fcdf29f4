package models

// -----------------------------------------------------------------------------
// Rate limiting decision and stats shapes.
// -----------------------------------------------------------------------------

// MRateDecision is the outcome of one admit check. ResetTime is a Unix
// timestamp marking the end of the current window.
type MRateDecision struct {
	Allowed   bool   `json:"allowed"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetTime int64  `json:"reset_time"`
	Category  string `json:"category"`
}

type MRateLimiterStats struct {
	TotalTrackedClients int            `json:"total_tracked_ips"`
	TotalTrackedWindows int            `json:"total_tracked_endpoints"`
	ActiveRequests      int            `json:"active_requests_in_window"`
	WindowSizeSeconds   int            `json:"window_size_seconds"`
	Limits              map[string]int `json:"limits"`
	CleanupIntervalSecs int            `json:"cleanup_interval"`
}
