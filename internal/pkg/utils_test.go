package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekStartMondayAnchored(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{"monday maps to itself", time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC), "2026-08-31"},
		{"tuesday maps back one day", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), "2026-08-31"},
		{"sunday maps back six days", time.Date(2026, 9, 6, 23, 59, 59, 0, time.UTC), "2026-08-31"},
		{"next monday opens a new week", time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), "2026-09-07"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WeekStartKey(tc.in))
		})
	}
}

func TestWeekStartNormalizesZone(t *testing.T) {
	zone := time.FixedZone("UTC+9", 9*60*60)
	// Monday 03:00 UTC+9 is Sunday 18:00 UTC, still the previous week
	local := time.Date(2026, 9, 7, 3, 0, 0, 0, zone)
	assert.Equal(t, "2026-08-31", WeekStartKey(local))
}

func TestDateKeysBack(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, DateKeysBack(now, 0))
	assert.Equal(t, []string{"2026-03-02", "2026-03-01", "2026-02-28"}, DateKeysBack(now, 3))
}

func TestWeekDateKeys(t *testing.T) {
	keys := WeekDateKeys(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC))

	assert.Len(t, keys, 7)
	assert.Equal(t, "2026-03-09", keys[0])
	assert.Equal(t, "2026-03-15", keys[6])
}
