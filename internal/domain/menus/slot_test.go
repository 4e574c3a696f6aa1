package menus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders/internal/domain/menus"
)

func TestSlot_MealTime(t *testing.T) {
	lisbon, err := time.LoadLocation("Europe/Lisbon")
	require.NoError(t, err)

	testCases := []struct {
		name    string
		slot    menus.Slot
		loc     *time.Location
		want    time.Time
		wantErr bool
	}{
		{
			name: "date and time with seconds",
			slot: menus.Slot{MenuID: 7, MenuDate: "2026-02-01", StartTime: "12:00:00"},
			loc:  time.UTC,
			want: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "time without seconds",
			slot: menus.Slot{MenuID: 7, MenuDate: "2026-02-01", StartTime: "19:30"},
			loc:  time.UTC,
			want: time.Date(2026, 2, 1, 19, 30, 0, 0, time.UTC),
		},
		{
			name: "timestamp date",
			slot: menus.Slot{MenuID: 7, MenuDate: "2026-02-01T00:00:00.000Z", StartTime: "12:00:00"},
			loc:  time.UTC,
			want: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "reference time zone",
			slot: menus.Slot{MenuID: 7, MenuDate: "2026-07-01", StartTime: "12:00:00"},
			loc:  lisbon,
			want: time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC),
		},
		{
			name: "nil location means UTC",
			slot: menus.Slot{MenuID: 7, MenuDate: "2026-02-01", StartTime: "12:00"},
			want: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		},
		{name: "missing start time", slot: menus.Slot{MenuID: 7, MenuDate: "2026-02-01"}, wantErr: true},
		{name: "missing date", slot: menus.Slot{MenuID: 7, StartTime: "12:00"}, wantErr: true},
		{name: "bad date", slot: menus.Slot{MenuID: 7, MenuDate: "01/02/2026", StartTime: "12:00"}, wantErr: true},
		{name: "bad time", slot: menus.Slot{MenuID: 7, MenuDate: "2026-02-01", StartTime: "noon"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.slot.MealTime(tc.loc)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}
