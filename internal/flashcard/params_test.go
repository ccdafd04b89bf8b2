package flashcard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabflash/internal/flashcard"
)

func TestDefaultParamsAreValid(t *testing.T) {
	require.NoError(t, flashcard.DefaultParams().Validate())
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*flashcard.Params)
		want   string
	}{
		{"empty quality range", func(p *flashcard.Params) { p.MaxQuality = p.MinQuality }, "quality range"},
		{"threshold at minimum", func(p *flashcard.Params) { p.PassThreshold = 0 }, "pass threshold"},
		{"threshold above maximum", func(p *flashcard.Params) { p.PassThreshold = 6 }, "pass threshold"},
		{"non-positive min ease", func(p *flashcard.Params) { p.MinEaseFactor = 0 }, "minimum ease factor"},
		{"default below min", func(p *flashcard.Params) { p.DefaultEaseFactor = 1.2 }, "default ease factor"},
		{"negative relearn", func(p *flashcard.Params) { p.RelearnIntervalDays = -1 }, "relearn interval"},
		{"zero first interval", func(p *flashcard.Params) { p.FirstIntervalDays = 0 }, "first interval"},
		{"second not above first", func(p *flashcard.Params) { p.SecondIntervalDays = 1 }, "second interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := flashcard.DefaultParams()
			tt.mutate(&p)

			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, flashcard.ErrInvalidParams)
			assert.Contains(t, err.Error(), tt.want)

			_, err = flashcard.NewScheduler(p)
			assert.ErrorIs(t, err, flashcard.ErrInvalidParams)
		})
	}
}

func TestParamsPassed(t *testing.T) {
	p := flashcard.DefaultParams()
	assert.False(t, p.Passed(2))
	assert.True(t, p.Passed(3))
	assert.True(t, p.Passed(5))
}
