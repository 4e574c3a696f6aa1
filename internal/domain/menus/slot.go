package menus

import (
	"fmt"
	"strings"
	"time"
)

// Slot is a menu entry owned by the menu service: one dish served on a date
// during a meal period.
type Slot struct {
	MenuID          int64  `json:"id_menu"`
	DishID          int64  `json:"dish_id"`
	PeriodID        int64  `json:"period_id"`
	Category        string `json:"dish_category"`
	MenuDate        string `json:"menu_date"`
	DishName        string `json:"dish_name"`
	DishDescription string `json:"dish_description,omitempty"`
	Period          string `json:"menu_period,omitempty"`
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
}

// MealTime combines the slot date and start time in loc.
func (s Slot) MealTime(loc *time.Location) (time.Time, error) {
	if s.MenuDate == "" || s.StartTime == "" {
		return time.Time{}, fmt.Errorf("menu %d has no date or start time", s.MenuID)
	}
	if loc == nil {
		loc = time.UTC
	}

	date, err := parseDate(s.MenuDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("menu %d: %w", s.MenuID, err)
	}

	clock, err := parseClock(s.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("menu %d: %w", s.MenuID, err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0,
		loc,
	), nil
}

// parseDate accepts a plain date or a timestamp whose first ten characters
// are the date, as the menu service serializes DATE columns either way.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) > len(time.DateOnly) {
		value = value[:len(time.DateOnly)]
	}

	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid menu date %q: %w", value, err)
	}
	return date, nil
}

func parseClock(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.TimeOnly, "15:04"} {
		if clock, err := time.Parse(layout, value); err == nil {
			return clock, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start time %q", value)
}
