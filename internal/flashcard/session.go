package flashcard

import (
	"time"

	"github.com/vytor/vocabflash/internal/models"
)

// SessionOptions controls how a study session is composed.
type SessionOptions struct {
	// Limit caps the session size. Zero or negative yields an empty session.
	Limit         int
	IncludeReview bool
	IncludeNew    bool
	// MaxNew caps how many new cards may enter the session; 0 means no cap.
	MaxNew int
}

// BuildSession composes a session of at most limit cards: due review cards
// first, most overdue leading, then new cards in collection order.
func BuildSession(cards []models.Card, limit int, includeReview, includeNew bool, now time.Time) []models.Card {
	return ComposeSession(cards, SessionOptions{
		Limit:         limit,
		IncludeReview: includeReview,
		IncludeNew:    includeNew,
	}, now)
}

// ComposeSession is BuildSession with the full set of options.
func ComposeSession(cards []models.Card, opts SessionOptions, now time.Time) []models.Card {
	session := make([]models.Card, 0)
	if opts.Limit <= 0 {
		return session
	}

	if opts.IncludeReview {
		session = append(session, SelectDue(cards, ModeReview, now)...)
	}
	if opts.IncludeNew {
		fresh := SelectDue(cards, ModeNew, now)
		if opts.MaxNew > 0 && len(fresh) > opts.MaxNew {
			fresh = fresh[:opts.MaxNew]
		}
		session = append(session, fresh...)
	}

	if len(session) > opts.Limit {
		session = session[:opts.Limit:opts.Limit]
	}
	return session
}
