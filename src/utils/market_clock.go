package utils

import (
	"context"
	"strings"
	"time"

	"nepse-gateway/src/interfaces"
	"nepse-gateway/src/logger"
)

// -----------------------------------------------------------------------------
// MarketClock answers "is the market open right now". The authoritative
// source is the upstream market-status endpoint; when that fetch fails the
// clock falls back to the trading calendar so state-gated routes stay
// usable during upstream outages.
// -----------------------------------------------------------------------------

type MarketClock struct {
	Data     interfaces.IMarketData
	Calendar *TradingCalendar
	Logger   *logger.Logger

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewMarketClock(data interfaces.IMarketData, cal *TradingCalendar, log *logger.Logger) *MarketClock {
	return &MarketClock{
		Data:     data,
		Calendar: cal,
		Logger:   log,
		now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

// IsOpen reports the current market state. Upstream encodes the state as a
// string flag; anything other than "OPEN" counts as closed.
func (mc *MarketClock) IsOpen(ctx context.Context) bool {
	status, err := mc.Data.MarketStatus(ctx)
	if err != nil {
		open := mc.Calendar.IsOpenOnMinute(mc.now())
		mc.Logger.Warning("Market status fetch failed (%v), calendar fallback says open=%t", err, open)
		return open
	}

	return strings.EqualFold(status.IsOpen, "OPEN")
}
