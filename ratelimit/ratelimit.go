package ratelimit

import "time"

// DailyLimit is the number of successful AI generations a user may run per
// UTC calendar day.
const DailyLimit = 2

// Exceeded reports whether a user with the given daily counter and last
// generation date has used up today's allowance. Dates compare by UTC
// calendar day.
func Exceeded(count int, lastDate *time.Time, now time.Time) bool {
	if lastDate == nil {
		return false
	}
	return sameDay(*lastDate, now) && count >= DailyLimit
}

// Advance returns the counter and date to persist after a successful
// generation: increment when the last generation was today, otherwise start
// a fresh day at 1.
func Advance(count int, lastDate *time.Time, now time.Time) (int, time.Time) {
	today := now.UTC().Truncate(24 * time.Hour)
	if lastDate != nil && sameDay(*lastDate, now) {
		return count + 1, today
	}
	return 1, today
}

// RetryAfter returns the number of seconds until the next UTC midnight,
// when the daily counter conceptually resets.
func RetryAfter(now time.Time) int {
	utc := now.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	secs := int(midnight.Sub(utc).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}

func sameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.YearDay() == bu.YearDay()
}
