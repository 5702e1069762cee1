package service

import (
	"time"

	featuredomain "github.com/quotahub/quotad/internal/feature/domain"
)

// NextBoundary returns the reset boundary following from. Daily windows
// close at the next midnight UTC, weekly windows seven days after the
// start of from's day, monthly windows on the first of the next calendar
// month. All boundaries are midnight UTC.
func NextBoundary(period featuredomain.ResetPeriod, from time.Time) time.Time {
	from = from.UTC()
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)

	switch period {
	case featuredomain.ResetPeriodWeekly:
		return day.AddDate(0, 0, 7)
	case featuredomain.ResetPeriodMonthly:
		return time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	default: // daily
		return day.AddDate(0, 0, 1)
	}
}
