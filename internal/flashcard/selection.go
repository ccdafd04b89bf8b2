package flashcard

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vytor/vocabflash/internal/models"
)

// Mode selects which cards a study pass draws from.
type Mode string

const (
	// ModeReview selects non-mastered, already-seen cards that are due.
	ModeReview Mode = "review"
	// ModeNew selects non-mastered cards that were never rated.
	ModeNew Mode = "new"
	// ModeAll selects every card.
	ModeAll Mode = "all"
)

// ParseMode parses s into a Mode. An empty string means ModeReview.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeReview, nil
	case ModeReview, ModeNew, ModeAll:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// SelectDue returns the cards eligible under mode at now. Review cards come
// back most overdue first, ties broken by ID; the other modes keep the
// collection's order. The input is never modified. An unknown mode selects
// nothing.
func SelectDue(cards []models.Card, mode Mode, now time.Time) []models.Card {
	out := make([]models.Card, 0)
	switch mode {
	case ModeReview:
		for _, c := range cards {
			if c.IsDue(now) {
				out = append(out, c)
			}
		}
		slices.SortStableFunc(out, compareDue)
	case ModeNew:
		for _, c := range cards {
			if !c.Mastered && c.IsNew {
				out = append(out, c)
			}
		}
	case ModeAll:
		out = append(out, cards...)
	}
	return out
}

func compareDue(a, b models.Card) int {
	if c := a.NextReviewAt.Compare(b.NextReviewAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
