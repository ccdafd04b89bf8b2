package flashcard

import "errors"

// Sentinel errors returned by the scheduling engine. Check with errors.Is.
var (
	ErrInvalidRating    = errors.New("flashcard: invalid rating")
	ErrInvalidCardState = errors.New("flashcard: invalid card state")
	ErrInvalidParams    = errors.New("flashcard: invalid scheduling parameters")
	ErrInvalidMode      = errors.New("flashcard: invalid study mode")
)
