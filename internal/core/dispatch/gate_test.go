package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chakavak/internal/core/settings"
)

func TestShouldDispatch(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	halfHourAgo := now.Add(-30 * time.Minute)
	twoHoursAgo := now.Add(-2 * time.Hour)

	tests := []struct {
		name          string
		settings      *settings.PostingSettings
		postsInWindow int
		wantOK        bool
		wantReason    SkipReason
	}{
		{
			name:       "nil settings treated as disabled",
			settings:   nil,
			wantOK:     false,
			wantReason: SkipPolicyDisabled,
		},
		{
			name: "auto posting disabled",
			settings: &settings.PostingSettings{
				AutoPostEnabled: false, PostIntervalMinutes: 60, MaxPostsPerDay: 10,
			},
			wantOK:     false,
			wantReason: SkipPolicyDisabled,
		},
		{
			name: "daily cap reached",
			settings: &settings.PostingSettings{
				AutoPostEnabled: true, PostIntervalMinutes: 60, MaxPostsPerDay: 10,
			},
			postsInWindow: 10,
			wantOK:        false,
			wantReason:    SkipDailyCapReached,
		},
		{
			name: "daily cap exceeded",
			settings: &settings.PostingSettings{
				AutoPostEnabled: true, PostIntervalMinutes: 60, MaxPostsPerDay: 10,
			},
			postsInWindow: 12,
			wantOK:        false,
			wantReason:    SkipDailyCapReached,
		},
		{
			name: "interval not elapsed",
			settings: &settings.PostingSettings{
				AutoPostEnabled: true, PostIntervalMinutes: 60, MaxPostsPerDay: 10,
				LastPostAt: &halfHourAgo,
			},
			postsInWindow: 1,
			wantOK:        false,
			wantReason:    SkipIntervalNotElapsed,
		},
		{
			name: "interval exactly elapsed",
			settings: &settings.PostingSettings{
				AutoPostEnabled: true, PostIntervalMinutes: 120, MaxPostsPerDay: 10,
				LastPostAt: &twoHoursAgo,
			},
			postsInWindow: 1,
			wantOK:        true,
		},
		{
			name: "no previous post passes interval check",
			settings: &settings.PostingSettings{
				AutoPostEnabled: true, PostIntervalMinutes: 60, MaxPostsPerDay: 10,
			},
			wantOK: true,
		},
		{
			name: "all gates pass",
			settings: &settings.PostingSettings{
				AutoPostEnabled: true, PostIntervalMinutes: 60, MaxPostsPerDay: 10,
				LastPostAt: &twoHoursAgo,
			},
			postsInWindow: 3,
			wantOK:        true,
		},
		{
			name: "cap checked before interval",
			settings: &settings.PostingSettings{
				AutoPostEnabled: true, PostIntervalMinutes: 60, MaxPostsPerDay: 5,
				LastPostAt: &halfHourAgo,
			},
			postsInWindow: 5,
			wantOK:        false,
			wantReason:    SkipDailyCapReached,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ShouldDispatch(tt.settings, tt.postsInWindow, now)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}
