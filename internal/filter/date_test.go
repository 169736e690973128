package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePostedDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2026-10-01", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), true},
		{"2026-10-01T08:00:00Z", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), true},
		{"05/10/2026", time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC), true},
		{"3d ago", now.AddDate(0, 0, -3), true},
		{"30+ days ago", now.AddDate(0, 0, -30), true},
		{"Posted 2 weeks ago", now.AddDate(0, 0, -14), true},
		{"5h ago", now.Add(-5 * time.Hour), true},
		{"Just posted", now, true},
		{"Yesterday", now.AddDate(0, 0, -1), true},
		{"2 months ago", now.AddDate(0, -2, 0), true},
		{"N/A", time.Time{}, false},
		{"whenever", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePostedDate(tt.in, now)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestIsRecent(t *testing.T) {
	week := 7 * 24 * time.Hour
	assert.True(t, IsRecent("3d ago", week, now))
	assert.False(t, IsRecent("30+ days ago", week, now))
	assert.True(t, IsRecent("", week, now))
	assert.False(t, IsRecent("2027-01-01", week, now), "far future dates are rejected")
}
