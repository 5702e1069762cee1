package service

import (
	"testing"
	"time"

	featuredomain "github.com/quotahub/quotad/internal/feature/domain"
)

func TestNextBoundary(t *testing.T) {
	cases := []struct {
		name   string
		period featuredomain.ResetPeriod
		from   time.Time
		want   time.Time
	}{
		{
			name:   "daily mid-day",
			period: featuredomain.ResetPeriodDaily,
			from:   time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
			want:   time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "daily at midnight rolls to next day",
			period: featuredomain.ResetPeriodDaily,
			from:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			want:   time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "daily year rollover",
			period: featuredomain.ResetPeriodDaily,
			from:   time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
			want:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "weekly",
			period: featuredomain.ResetPeriodWeekly,
			from:   time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
			want:   time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly",
			period: featuredomain.ResetPeriodMonthly,
			from:   time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
			want:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly december rolls to january",
			period: featuredomain.ResetPeriodMonthly,
			from:   time.Date(2025, 12, 3, 8, 0, 0, 0, time.UTC),
			want:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly across february",
			period: featuredomain.ResetPeriodMonthly,
			from:   time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC),
			want:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "non-utc input normalized",
			period: featuredomain.ResetPeriodDaily,
			from:   time.Date(2026, 1, 15, 23, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60)),
			want:   time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextBoundary(tc.period, tc.from)
			if !got.Equal(tc.want) {
				t.Fatalf("NextBoundary(%s, %s) = %s, want %s", tc.period, tc.from, got, tc.want)
			}
		})
	}
}
