package flashcard

import (
	"errors"
	"fmt"
)

// Params holds the tunable constants of the SM-2 scheduler.
type Params struct {
	// Ratings outside [MinQuality, MaxQuality] are rejected.
	MinQuality int
	MaxQuality int
	// Ratings below PassThreshold count as a failed recall.
	PassThreshold int

	DefaultEaseFactor float64
	MinEaseFactor     float64

	// Interval, in days, after a failed recall.
	RelearnIntervalDays int
	// Intervals after the first and second consecutive successful recall.
	FirstIntervalDays  int
	SecondIntervalDays int
}

// DefaultParams returns the classic SM-2 constants on a 0-5 scale.
func DefaultParams() Params {
	return Params{
		MinQuality:          0,
		MaxQuality:          5,
		PassThreshold:       3,
		DefaultEaseFactor:   2.5,
		MinEaseFactor:       1.3,
		RelearnIntervalDays: 1,
		FirstIntervalDays:   1,
		SecondIntervalDays:  6,
	}
}

// Validate reports every inconsistency in p at once.
func (p Params) Validate() error {
	var errs []error
	if p.MinQuality >= p.MaxQuality {
		errs = append(errs, fmt.Errorf("quality range [%d, %d] is empty", p.MinQuality, p.MaxQuality))
	}
	if p.PassThreshold <= p.MinQuality || p.PassThreshold > p.MaxQuality {
		errs = append(errs, fmt.Errorf("pass threshold %d must be within (%d, %d]", p.PassThreshold, p.MinQuality, p.MaxQuality))
	}
	if p.MinEaseFactor <= 0 {
		errs = append(errs, fmt.Errorf("minimum ease factor %.2f must be positive", p.MinEaseFactor))
	}
	if p.DefaultEaseFactor < p.MinEaseFactor {
		errs = append(errs, fmt.Errorf("default ease factor %.2f is below minimum %.2f", p.DefaultEaseFactor, p.MinEaseFactor))
	}
	if p.RelearnIntervalDays < 0 {
		errs = append(errs, fmt.Errorf("relearn interval %d must not be negative", p.RelearnIntervalDays))
	}
	if p.FirstIntervalDays < 1 {
		errs = append(errs, fmt.Errorf("first interval %d must be at least 1 day", p.FirstIntervalDays))
	}
	if p.SecondIntervalDays <= p.FirstIntervalDays {
		errs = append(errs, fmt.Errorf("second interval %d must exceed first interval %d", p.SecondIntervalDays, p.FirstIntervalDays))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidParams, errors.Join(errs...))
}

// Passed reports whether quality counts as a successful recall.
func (p Params) Passed(quality int) bool {
	return quality >= p.PassThreshold
}
