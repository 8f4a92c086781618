package domain

import "time"

// CountersID is the key of the singleton counters row.
const CountersID = "emailEvents"

// AnalyticsCounters aggregates tracking events globally and per calendar
// day. The row is mutated exclusively through atomic increments; it is never
// read, modified and written back.
type AnalyticsCounters struct {
	TotalOpens  int64            `json:"total_opens"`
	TotalClicks int64            `json:"total_clicks"`
	DailyOpens  map[string]int64 `json:"daily_opens"`
	DailyClicks map[string]int64 `json:"daily_clicks"`
}

// DayBucket returns the UTC calendar-day key used for the daily counters.
// Both the open and the click path derive their key through this function so
// the bucketing stays consistent.
func DayBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
