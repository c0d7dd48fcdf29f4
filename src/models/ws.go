package models

import "encoding/json"

// -----------------------------------------------------------------------------
// WebSocket request-reply frames.
// -----------------------------------------------------------------------------

// MWsRequest is one client request frame. MessageID echoes back unchanged so
// clients can correlate concurrent requests.
type MWsRequest struct {
	Route     string            `json:"route"`
	Params    map[string]string `json:"params"`
	MessageID string            `json:"messageId"`
}

type MWsRateInfo struct {
	Remaining int   `json:"remaining"`
	Limit     int   `json:"limit"`
	ResetTime int64 `json:"reset_time"`
}

type MWsResponse struct {
	MessageID string          `json:"messageId"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	RateLimit *MWsRateInfo    `json:"rate_limit,omitempty"`
}
