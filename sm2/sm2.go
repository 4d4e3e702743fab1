package sm2

import (
	"math"
	"time"
)

// MinEaseFactor is the floor below which the ease factor never drops.
const MinEaseFactor = 1.3

// PassThreshold is the minimum quality rating counted as a successful recall.
const PassThreshold = 3

// DefaultEaseFactor is the ease factor assigned to a brand new card.
const DefaultEaseFactor = 2.5

// State is the scheduling state of a single card.
type State struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
}

// NewState returns the scheduling state of a card that has never been reviewed.
func NewState() State {
	return State{EaseFactor: DefaultEaseFactor, IntervalDays: 0, Repetitions: 0}
}

// Result is the outcome of applying one review to a card.
type Result struct {
	State
	NextReviewDate time.Time
	LastReviewedAt time.Time
}

// Review applies the SM-2 algorithm to the current state for a quality
// rating in [0,5] and returns the next state. The caller is responsible for
// validating the quality range and for making sure each review consumes the
// stored state exactly once.
func Review(s State, quality int, now time.Time) Result {
	next := s

	if quality >= PassThreshold {
		next.Repetitions = s.Repetitions + 1

		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(s.IntervalDays) * s.EaseFactor))
		}

		q := float64(quality)
		ef := s.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
		if ef < MinEaseFactor {
			ef = MinEaseFactor
		}
		next.EaseFactor = ef
	} else {
		// Failed recall: progress resets, ease is not penalized.
		next.Repetitions = 0
		next.IntervalDays = 1
	}

	return Result{
		State:          next,
		NextReviewDate: now.AddDate(0, 0, next.IntervalDays),
		LastReviewedAt: now,
	}
}
