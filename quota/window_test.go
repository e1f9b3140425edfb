package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestComputeWindowDaily(t *testing.T) {
	anchor := date(2026, time.January, 15, 0)
	now := date(2026, time.September, 1, 15)

	w, err := ComputeWindow(PeriodDaily, anchor, now)
	assert.NoError(t, err)
	assert.Equal(t, date(2026, time.September, 1, 0), w.Start)
	assert.NotNil(t, w.NextReset)
	assert.Equal(t, date(2026, time.September, 2, 0), *w.NextReset)
}

func TestComputeWindowWeekly(t *testing.T) {
	anchor := date(2026, time.August, 3, 0)
	now := date(2026, time.August, 20, 12)

	w, err := ComputeWindow(PeriodWeekly, anchor, now)
	assert.NoError(t, err)
	assert.Equal(t, date(2026, time.August, 17, 0), w.Start)
	assert.Equal(t, date(2026, time.August, 24, 0), *w.NextReset)
}

func TestComputeWindowMonthlyAnchored(t *testing.T) {
	// Windows follow the subscription day, not the calendar month edge.
	anchor := date(2026, time.January, 15, 0)
	now := date(2026, time.March, 20, 8)

	w, err := ComputeWindow(PeriodMonthly, anchor, now)
	assert.NoError(t, err)
	assert.Equal(t, date(2026, time.March, 15, 0), w.Start)
	assert.Equal(t, date(2026, time.April, 15, 0), *w.NextReset)
}

func TestComputeWindowMonthlyBoundary(t *testing.T) {
	// Exactly on a boundary the new window starts.
	anchor := date(2026, time.January, 1, 0)
	now := date(2026, time.February, 1, 0)

	w, err := ComputeWindow(PeriodMonthly, anchor, now)
	assert.NoError(t, err)
	assert.Equal(t, date(2026, time.February, 1, 0), w.Start)
	assert.Equal(t, date(2026, time.March, 1, 0), *w.NextReset)
}

func TestComputeWindowYearly(t *testing.T) {
	anchor := date(2024, time.May, 1, 0)
	now := date(2026, time.September, 1, 0)

	w, err := ComputeWindow(PeriodYearly, anchor, now)
	assert.NoError(t, err)
	assert.Equal(t, date(2026, time.May, 1, 0), w.Start)
	assert.Equal(t, date(2027, time.May, 1, 0), *w.NextReset)
}

func TestComputeWindowLifetime(t *testing.T) {
	w, err := ComputeWindow(PeriodLifetime, date(2026, time.January, 1, 0), date(2026, time.September, 1, 0))
	assert.NoError(t, err)
	assert.True(t, w.Start.IsZero())
	assert.Nil(t, w.NextReset)
}

func TestComputeWindowBeforeAnchor(t *testing.T) {
	// The first window opens at the anchor itself.
	anchor := date(2026, time.October, 1, 0)
	now := date(2026, time.September, 1, 0)

	w, err := ComputeWindow(PeriodMonthly, anchor, now)
	assert.NoError(t, err)
	assert.Equal(t, anchor, w.Start)
	assert.Equal(t, date(2026, time.November, 1, 0), *w.NextReset)
}

func TestComputeWindowUnknownPeriod(t *testing.T) {
	_, err := ComputeWindow(Period("fortnightly"), time.Time{}, time.Now())
	assert.Error(t, err)
}
