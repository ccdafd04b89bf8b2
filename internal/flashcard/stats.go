package flashcard

import (
	"time"

	"github.com/vytor/vocabflash/internal/models"
)

// Summarize counts cards by study state in a single pass. Averages cover
// the cards in the review pipeline and are zero when it is empty.
func Summarize(cards []models.Card, now time.Time) models.CardStats {
	stats := models.CardStats{Total: len(cards)}
	var easeSum float64
	var intervalSum int
	for _, c := range cards {
		switch {
		case c.Mastered:
			stats.Mastered++
		case c.IsNew:
			stats.New++
		default:
			stats.Review++
			easeSum += c.EaseFactor
			intervalSum += c.IntervalDays
			if !c.NextReviewAt.After(now) {
				stats.DueToday++
			}
		}
	}
	if stats.Review > 0 {
		stats.AvgEaseFactor = easeSum / float64(stats.Review)
		stats.AvgIntervalDays = float64(intervalSum) / float64(stats.Review)
	}
	return stats
}
