package bookings

import (
	"fmt"
	"time"

	"orders/internal/domain"
)

const DefaultMinLeadTime = 2 * time.Hour

// LookupMode decides what happens to a time-window check when the menu
// service cannot be reached.
type LookupMode string

const (
	// LookupStrict fails the operation.
	LookupStrict LookupMode = "strict"
	// LookupBestEffort skips the window check.
	LookupBestEffort LookupMode = "best-effort"
)

func ParseLookupMode(s string) (LookupMode, error) {
	switch LookupMode(s) {
	case LookupStrict, LookupBestEffort:
		return LookupMode(s), nil
	default:
		return "", fmt.Errorf("unknown menu lookup mode %q, expected %q or %q", s, LookupStrict, LookupBestEffort)
	}
}

type Policy struct {
	Lifecycle     *Lifecycle
	DefaultStatus Status
	MinLeadTime   time.Duration
	Location      *time.Location
	LookupMode    LookupMode
}

func (p Policy) Validate() error {
	if p.Lifecycle == nil {
		return fmt.Errorf("policy has no status lifecycle")
	}
	if !p.Lifecycle.Has(p.DefaultStatus) {
		return fmt.Errorf("default status %q is not in the status set", p.DefaultStatus)
	}
	if p.MinLeadTime < 0 {
		return fmt.Errorf("min lead time cannot be negative")
	}
	if _, err := ParseLookupMode(string(p.LookupMode)); err != nil {
		return err
	}
	return nil
}

// TimeZone is the reference time zone menu dates and times are read in.
func (p Policy) TimeZone() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// LeadTime is the time left between now and the meal.
func LeadTime(mealTime, now time.Time) time.Duration {
	return mealTime.Sub(now)
}

// CheckOrderWindow rejects orders placed less than MinLeadTime before the meal.
// Exactly MinLeadTime is still accepted.
func (p Policy) CheckOrderWindow(mealTime, now time.Time) error {
	if LeadTime(mealTime, now) < p.MinLeadTime {
		return domain.NewError(
			ErrTooLateToOrder,
			fmt.Sprintf("orders must be placed at least %s before meal time", humanDuration(p.MinLeadTime)),
		)
	}
	return nil
}

// CheckCancelWindow rejects cancellations less than MinLeadTime before the meal.
func (p Policy) CheckCancelWindow(mealTime, now time.Time) error {
	if LeadTime(mealTime, now) < p.MinLeadTime {
		return domain.NewError(
			ErrTooLateToCancel,
			fmt.Sprintf("orders can only be cancelled at least %s before meal time", humanDuration(p.MinLeadTime)),
		)
	}
	return nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
