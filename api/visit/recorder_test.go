package visit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOnlyFollowsLocalDay(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			// 01:00 IST is still the previous day in UTC; the visit
			// must key on the local day.
			name: "early morning before UTC midnight rollover",
			in:   time.Date(2026, 8, 30, 1, 0, 0, 0, ist),
			want: "2026-08-30",
		},
		{
			name: "late evening",
			in:   time.Date(2026, 8, 30, 23, 30, 0, 0, ist),
			want: "2026-08-30",
		},
		{
			name: "utc clock unchanged",
			in:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			want: "2026-08-30",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dateOnly(tt.in)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.UTC, got.Location())
			assert.True(t, got.Equal(got.Truncate(24*time.Hour)), "must be a bare date")
		})
	}
}
