package flashcard

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
)

const day = 24 * time.Hour

// Scheduler applies SM-2 reviews to cards. It holds no mutable state and is
// safe for concurrent use.
type Scheduler struct {
	params Params
	log    *logger.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger used to flag corrupted card state.
func WithLogger(l *logger.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.log = l
	}
}

// NewScheduler returns a scheduler for params, or an error wrapping
// ErrInvalidParams when they are inconsistent.
func NewScheduler(params Params, opts ...SchedulerOption) (*Scheduler, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{params: params}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var defaultScheduler = &Scheduler{params: DefaultParams()}

// ScheduleReview applies quality to card using DefaultParams.
func ScheduleReview(card models.Card, quality int, now time.Time) (models.Card, error) {
	return defaultScheduler.ScheduleReview(card, quality, now)
}

// Params returns the scheduler's constants.
func (s *Scheduler) Params() Params {
	return s.params
}

func (s *Scheduler) logOrDefault() *logger.Logger {
	if s.log != nil {
		return s.log
	}
	return logger.Default().WithPrefix("scheduler")
}

// InitCard resets card to the state of a freshly added card due at now.
// Content and classification fields are left alone.
func (s *Scheduler) InitCard(card models.Card, now time.Time) models.Card {
	card.EaseFactor = s.params.DefaultEaseFactor
	card.RepetitionNumber = 0
	card.IntervalDays = 0
	card.NextReviewAt = now
	card.LastReviewAt = nil
	card.IsNew = true
	card.Mastered = false
	return card
}

// ValidateQuality returns an error wrapping ErrInvalidRating when quality is
// outside the accepted range.
func (s *Scheduler) ValidateQuality(quality int) error {
	if quality < s.params.MinQuality || quality > s.params.MaxQuality {
		return fmt.Errorf("%w: quality %d outside [%d, %d]", ErrInvalidRating, quality, s.params.MinQuality, s.params.MaxQuality)
	}
	return nil
}

// Normalize clamps scheduling fields that violate the card invariants. The
// returned error wraps ErrInvalidCardState and lists what was repaired; the
// returned card is always usable.
func (s *Scheduler) Normalize(card models.Card) (models.Card, error) {
	var problems []error
	if math.IsNaN(card.EaseFactor) || math.IsInf(card.EaseFactor, 0) {
		problems = append(problems, fmt.Errorf("ease factor %v is not finite", card.EaseFactor))
		card.EaseFactor = s.params.DefaultEaseFactor
	} else if card.EaseFactor < s.params.MinEaseFactor {
		problems = append(problems, fmt.Errorf("ease factor %.4f below %.2f", card.EaseFactor, s.params.MinEaseFactor))
		card.EaseFactor = s.params.MinEaseFactor
	}
	if card.IntervalDays < 0 {
		problems = append(problems, fmt.Errorf("negative interval %d", card.IntervalDays))
		card.IntervalDays = 0
	}
	if card.RepetitionNumber < 0 {
		problems = append(problems, fmt.Errorf("negative repetition number %d", card.RepetitionNumber))
		card.RepetitionNumber = 0
	}
	if len(problems) == 0 {
		return card, nil
	}
	return card, fmt.Errorf("%w: card %s: %w", ErrInvalidCardState, card.ID, errors.Join(problems...))
}

// ScheduleReview returns card updated for a rating of quality given at now.
//
// An out-of-range quality is rejected before anything is touched: the
// original card comes back with an error wrapping ErrInvalidRating. Corrupted
// scheduling fields are repaired and logged, never propagated.
func (s *Scheduler) ScheduleReview(card models.Card, quality int, now time.Time) (models.Card, error) {
	if err := s.ValidateQuality(quality); err != nil {
		return card, err
	}

	next, err := s.Normalize(card)
	if err != nil {
		s.logOrDefault().WithField("card_id", card.ID).Warn("repaired card state before review: %v", err)
	}

	p := s.params
	miss := float64(p.MaxQuality - quality)
	ef := next.EaseFactor + (0.1 - miss*(0.08+miss*0.02))
	if ef < p.MinEaseFactor {
		ef = p.MinEaseFactor
	}
	next.EaseFactor = ef

	if p.Passed(quality) {
		next.RepetitionNumber++
		next.IntervalDays = s.passInterval(next.IntervalDays, next.RepetitionNumber, ef)
	} else {
		next.RepetitionNumber = 0
		next.IntervalDays = p.RelearnIntervalDays
	}

	reviewedAt := now
	next.LastReviewAt = &reviewedAt
	next.NextReviewAt = now.Add(time.Duration(next.IntervalDays) * day)
	next.IsNew = false
	return next, nil
}

// passInterval grows the interval after a successful recall. From the third
// consecutive success on, the interval always grows by at least a day.
func (s *Scheduler) passInterval(prev, reps int, ef float64) int {
	switch reps {
	case 1:
		return s.params.FirstIntervalDays
	case 2:
		return s.params.SecondIntervalDays
	}
	grown := int(math.Round(float64(prev) * ef))
	if grown <= prev {
		grown = prev + 1
	}
	return grown
}
