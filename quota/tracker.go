package quota

import (
	"fmt"
	"time"
)

// Feature is the quota-relevant projection of a plan feature.
type Feature struct {
	Key     string
	Label   string
	IsQuota bool
	Limit   int // -1 = unlimited
	Period  Period
}

// UsageStore is the append-only event log a Tracker counts against.
type UsageStore interface {
	CountSince(userID uint, kind string, since time.Time) (int64, error)
	Record(userID uint, kind string, subjectID uint, at time.Time) error
}

// Result tells the caller whether the action may proceed. Message is
// user-facing on denial. Remaining is -1 for unlimited features.
type Result struct {
	Allowed   bool
	Message   string
	Remaining int
	NextReset *time.Time
}

type Tracker struct {
	store UsageStore
}

func NewTracker(store UsageStore) *Tracker {
	return &Tracker{store: store}
}

// CheckAndRecord enforces one feature's quota for one action. Allowed
// calls on quota features append exactly one usage event; denied calls
// append none. Non-quota features are simply included and never
// tracked.
func (t *Tracker) CheckAndRecord(userID uint, f Feature, anchor time.Time, subjectID uint, now time.Time) (Result, error) {
	if !f.IsQuota {
		return Result{Allowed: true, Remaining: -1}, nil
	}

	if f.Limit == -1 {
		if err := t.store.Record(userID, f.Key, subjectID, now); err != nil {
			return Result{}, err
		}
		return Result{Allowed: true, Remaining: -1}, nil
	}

	window, err := ComputeWindow(f.Period, anchor, now)
	if err != nil {
		return Result{}, err
	}

	count, err := t.store.CountSince(userID, f.Key, window.Start)
	if err != nil {
		return Result{}, err
	}

	if count >= int64(f.Limit) {
		return Result{
			Allowed:   false,
			Message:   denialMessage(f),
			Remaining: 0,
			NextReset: window.NextReset,
		}, nil
	}

	if err := t.store.Record(userID, f.Key, subjectID, now); err != nil {
		return Result{}, err
	}
	return Result{
		Allowed:   true,
		Remaining: f.Limit - int(count) - 1,
		NextReset: window.NextReset,
	}, nil
}

func denialMessage(f Feature) string {
	label := f.Label
	if label == "" {
		label = f.Key
	}
	if f.Period == PeriodLifetime {
		return fmt.Sprintf("You have reached your lifetime limit of %d for %s.", f.Limit, label)
	}
	return fmt.Sprintf("You have reached your %s limit of %d for %s. The quota resets automatically.", f.Period, f.Limit, label)
}
