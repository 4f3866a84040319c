package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdateCheckDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	hoursAgo := func(h int) *time.Time {
		ts := now.Add(-time.Duration(h) * time.Hour)
		return &ts
	}

	tests := []struct {
		name      string
		onStartup bool
		frequency string
		last      *time.Time
		expected  bool
	}{
		{name: "disabled", onStartup: false, frequency: CheckEveryLaunch, expected: false},
		{name: "never checked", onStartup: true, frequency: CheckWeekly, expected: true},
		{name: "every launch", onStartup: true, frequency: CheckEveryLaunch, last: hoursAgo(1), expected: true},
		{name: "daily too soon", onStartup: true, frequency: CheckDaily, last: hoursAgo(5), expected: false},
		{name: "daily elapsed", onStartup: true, frequency: CheckDaily, last: hoursAgo(25), expected: true},
		{name: "weekly too soon", onStartup: true, frequency: CheckWeekly, last: hoursAgo(48), expected: false},
		{name: "weekly elapsed", onStartup: true, frequency: CheckWeekly, last: hoursAgo(24 * 8), expected: true},
		{name: "unknown frequency", onStartup: true, frequency: "hourly", last: hoursAgo(0), expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings()
			s.Updates.CheckOnStartup = tt.onStartup
			s.Updates.CheckFrequency = tt.frequency
			s.Updates.LastChecked = tt.last
			assert.Equal(t, tt.expected, s.UpdateCheckDue(now))
		})
	}
}
