package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/vocabflash/internal/services"
)

type stubImporter struct {
	n         int
	err       error
	panicWith any
	got       []services.NewCard
}

func (s *stubImporter) ImportCards(_ context.Context, _ int64, in []services.NewCard) (int, error) {
	s.got = in
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.n, s.err
}

func TestImportCardsJob_ReportsOutcome(t *testing.T) {
	imp := &stubImporter{n: 2}
	cards := []services.NewCard{{FrontText: "hola", BackText: "hello"}, {FrontText: "adiós", BackText: "goodbye"}}

	var imported int
	var doneErr error
	job := &ImportCardsJob{Importer: imp, ProfileID: 7, Cards: cards, Done: func(n int, err error) {
		imported, doneErr = n, err
	}}

	assert.Equal(t, "import_cards", job.Name())
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 2, imported)
	assert.NoError(t, doneErr)
	assert.Equal(t, cards, imp.got)
}

func TestImportCardsJob_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	var doneErr error
	job := &ImportCardsJob{Importer: &stubImporter{err: boom}, Done: func(_ int, err error) { doneErr = err }}

	assert.ErrorIs(t, job.Run(context.Background()), boom)
	assert.ErrorIs(t, doneErr, boom)
}

func TestImportCardsJob_ReportsPanicAsFailure(t *testing.T) {
	calls := 0
	var doneErr error
	job := &ImportCardsJob{Importer: &stubImporter{n: 3, panicWith: "disk on fire"}, Done: func(n int, err error) {
		calls++
		assert.Zero(t, n)
		doneErr = err
	}}

	err := job.Run(context.Background())
	assert.ErrorContains(t, err, "disk on fire")
	assert.Equal(t, 1, calls)
	assert.Equal(t, err, doneErr)
}
