package utils

import (
	"log"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar calculates trading sessions using scmhub/calendar, with a
// built-in NEPSE fallback for exchanges the library does not cover.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar loads a calendar by MIC code (ISO 10383). NEPSE carries no MIC
// in scmhub/calendar, so an empty or unknown MIC selects the fallback
// schedule: Sunday through Thursday, 11:00 to 15:00 local time.
func GetCalendar(mic string, timezone string) *TradingCalendar {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Printf("WARNING: Failed to load timezone '%s', using Asia/Kathmandu.", timezone)
		loc, _ = time.LoadLocation("Asia/Kathmandu")
		if loc == nil {
			loc = time.UTC // Worst case
		}
	}

	if mic != "" {
		// scmhub/calendar.GetCalendar returns a calendar by MIC
		cal := calendar.GetCalendar(mic)
		if cal != nil {
			return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
		}
		log.Printf("WARNING: No calendar for MIC '%s'. Using NEPSE fallback schedule (Sun-Thu 11:00-15:00).", mic)
	}

	return &TradingCalendar{Fallback: true, Timezone: loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		// NEPSE trades Sunday through Thursday
		weekday := date.Weekday()
		return weekday != time.Friday && weekday != time.Saturday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		// 11:00 - 15:00 local time
		hour := t.Hour()
		return hour >= 11 && hour < 15
	}

	return tc.Calendar.IsOpen(t)
}
