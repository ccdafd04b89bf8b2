package flashcard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabflash/internal/flashcard"
	"github.com/vytor/vocabflash/internal/models"
)

func reviewCard(id string, due time.Time) models.Card {
	c := newCard(id)
	c.IsNew = false
	c.RepetitionNumber = 1
	c.IntervalDays = 1
	c.NextReviewAt = due
	return c
}

func ids(cards []models.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func mixedCollection() []models.Card {
	mastered := reviewCard("m1", t0.Add(-10*time.Hour))
	mastered.Mastered = true
	masteredNew := newCard("m2")
	masteredNew.Mastered = true

	return []models.Card{
		newCard("n2"),
		reviewCard("r-late", t0.Add(-time.Hour)),
		mastered,
		reviewCard("r-future", t0.Add(time.Hour)),
		newCard("n1"),
		reviewCard("r-b", t0.Add(-5*time.Hour)),
		reviewCard("r-a", t0.Add(-5*time.Hour)),
		reviewCard("r-now", t0),
		masteredNew,
	}
}

func TestSelectDue_Review(t *testing.T) {
	got := flashcard.SelectDue(mixedCollection(), flashcard.ModeReview, t0)

	assert.Equal(t, []string{"r-a", "r-b", "r-late", "r-now"}, ids(got))
	for _, c := range got {
		assert.False(t, c.Mastered)
		assert.False(t, c.IsNew)
		assert.False(t, c.NextReviewAt.After(t0))
	}
}

func TestSelectDue_New(t *testing.T) {
	got := flashcard.SelectDue(mixedCollection(), flashcard.ModeNew, t0)
	assert.Equal(t, []string{"n2", "n1"}, ids(got), "new cards keep collection order")
}

func TestSelectDue_All(t *testing.T) {
	cards := mixedCollection()
	got := flashcard.SelectDue(cards, flashcard.ModeAll, t0)
	assert.Equal(t, ids(cards), ids(got))
}

func TestSelectDue_ExactlyTheDueSet(t *testing.T) {
	cards := mixedCollection()
	got := flashcard.SelectDue(cards, flashcard.ModeReview, t0)

	selected := map[string]bool{}
	for _, c := range got {
		selected[c.ID] = true
	}
	for _, c := range cards {
		want := !c.Mastered && !c.IsNew && !c.NextReviewAt.After(t0)
		assert.Equal(t, want, selected[c.ID], c.ID)
	}
}

func TestSelectDue_DoesNotMutateInput(t *testing.T) {
	cards := mixedCollection()
	before := append([]models.Card(nil), cards...)

	_ = flashcard.SelectDue(cards, flashcard.ModeReview, t0)
	assert.Equal(t, before, cards)
}

func TestSelectDue_EmptyAndUnknown(t *testing.T) {
	assert.Empty(t, flashcard.SelectDue(nil, flashcard.ModeReview, t0))
	assert.NotNil(t, flashcard.SelectDue(nil, flashcard.ModeReview, t0))
	assert.Empty(t, flashcard.SelectDue(mixedCollection(), flashcard.Mode("later"), t0))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want flashcard.Mode
	}{
		{"", flashcard.ModeReview},
		{"review", flashcard.ModeReview},
		{" NEW ", flashcard.ModeNew},
		{"All", flashcard.ModeAll},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := flashcard.ParseMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := flashcard.ParseMode("mastered")
	assert.ErrorIs(t, err, flashcard.ErrInvalidMode)
}
