package simulator

import "time"

// TradingDays returns the weekday dates in [start, end] in order. Exchange
// holidays are not modeled; days without data are handled per symbol by the
// daily loop.
func TradingDays(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			days = append(days, d)
		}
	}
	return days
}
