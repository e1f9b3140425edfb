// Package quota computes usage windows for plan features and counts
// recorded usage against their limits.
//
// Periodic (weekly/monthly/yearly) windows are anchored to the user's
// subscription start date rather than the calendar, so quotas reset on
// each user's billing day. Daily windows follow the UTC calendar day.
//
// Checking a limit and recording the new event are two storage calls,
// not one transaction; two concurrent checks near the limit can both
// be allowed. Limits are treated as soft for that reason.
package quota

import (
	"fmt"
	"time"
)

type Period string

const (
	PeriodDaily    Period = "daily"
	PeriodWeekly   Period = "weekly"
	PeriodMonthly  Period = "monthly"
	PeriodYearly   Period = "yearly"
	PeriodLifetime Period = "lifetime"
)

// Window is the current accounting interval of a feature. NextReset is
// nil for lifetime quotas, which never reset.
type Window struct {
	Start     time.Time
	NextReset *time.Time
}

// ComputeWindow returns the window containing now. For periodic
// quotas the start is the latest whole-period boundary from the anchor
// that is <= now; when now precedes the anchor the first window
// [anchor, anchor+period) applies, so usage before the subscription
// start never counts.
func ComputeWindow(period Period, anchor, now time.Time) (Window, error) {
	switch period {
	case PeriodDaily:
		y, m, d := now.UTC().Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		next := start.AddDate(0, 0, 1)
		return Window{Start: start, NextReset: &next}, nil

	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		start := anchor
		for {
			next := advance(period, start)
			if next.After(now) {
				return Window{Start: start, NextReset: &next}, nil
			}
			start = next
		}

	case PeriodLifetime:
		return Window{}, nil

	default:
		return Window{}, fmt.Errorf("unknown quota period %q", period)
	}
}

func advance(period Period, from time.Time) time.Time {
	switch period {
	case PeriodWeekly:
		return from.AddDate(0, 0, 7)
	case PeriodMonthly:
		return from.AddDate(0, 1, 0)
	default: // yearly
		return from.AddDate(1, 0, 0)
	}
}
