package ratelimit

import (
	"testing"
	"time"
)

func TestExceeded(t *testing.T) {
	now := time.Date(2026, 6, 1, 15, 30, 0, 0, time.UTC)
	today := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	tests := []struct {
		name     string
		count    int
		lastDate *time.Time
		want     bool
	}{
		{"never generated", 0, nil, false},
		{"first of the day", 0, &today, false},
		{"one used today", 1, &today, false},
		{"limit reached today", 2, &today, true},
		{"over limit today", 3, &today, true},
		{"limit reached yesterday", 2, &yesterday, false},
		{"stale high count", 5, &yesterday, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Exceeded(tt.count, tt.lastDate, now); got != tt.want {
				t.Errorf("Exceeded(%d, %v) = %v, want %v", tt.count, tt.lastDate, got, tt.want)
			}
		})
	}
}

func TestExceededIgnoresLocalZone(t *testing.T) {
	// 23:30 UTC-5 is 04:30 UTC the next day; the comparison must use UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 6, 1, 23, 30, 0, 0, loc)
	june1 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	if Exceeded(2, &june1, now) {
		t.Error("2026-06-02 UTC should not count against 2026-06-01's limit")
	}
}

func TestAdvance(t *testing.T) {
	now := time.Date(2026, 6, 1, 15, 30, 0, 0, time.UTC)
	today := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	count, date := Advance(1, &today, now)
	if count != 2 || !date.Equal(today) {
		t.Errorf("Advance same day = (%d, %v), want (2, %v)", count, date, today)
	}

	count, date = Advance(2, &yesterday, now)
	if count != 1 || !date.Equal(today) {
		t.Errorf("Advance new day = (%d, %v), want (1, %v)", count, date, today)
	}

	count, date = Advance(0, nil, now)
	if count != 1 || !date.Equal(today) {
		t.Errorf("Advance first ever = (%d, %v), want (1, %v)", count, date, today)
	}
}

func TestDailyCycle(t *testing.T) {
	// Two generations succeed, the third is rejected, the next day resets.
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	count := 0
	var last *time.Time

	for i := 0; i < DailyLimit; i++ {
		if Exceeded(count, last, now) {
			t.Fatalf("generation %d unexpectedly rejected", i+1)
		}
		c, d := Advance(count, last, now)
		count, last = c, &d
	}

	if !Exceeded(count, last, now) {
		t.Error("third generation on the same day should be rejected")
	}

	tomorrow := now.AddDate(0, 0, 1)
	if Exceeded(count, last, tomorrow) {
		t.Error("generation on the next day should be permitted")
	}
	count, _ = Advance(count, last, tomorrow)
	if count != 1 {
		t.Errorf("counter after day rollover = %d, want 1", count)
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 6, 1, 23, 0, 0, 0, time.UTC)
	if got := RetryAfter(now); got != 3600 {
		t.Errorf("RetryAfter one hour before midnight = %d, want 3600", got)
	}

	almostMidnight := time.Date(2026, 6, 1, 23, 59, 59, 500_000_000, time.UTC)
	if got := RetryAfter(almostMidnight); got < 1 {
		t.Errorf("RetryAfter = %d, want >= 1", got)
	}
}
