package worker

import (
	"context"
	"fmt"

	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/services"
)

// CardImporter stores a batch of new cards for a profile.
type CardImporter interface {
	ImportCards(ctx context.Context, profileID int64, in []services.NewCard) (int, error)
}

// ImportCardsJob adds a batch of cards in the background. Done, if set, is
// called exactly once with the outcome, including when the importer panics.
type ImportCardsJob struct {
	Importer  CardImporter
	ProfileID int64
	Cards     []services.NewCard
	Done      func(imported int, err error)
}

func (j *ImportCardsJob) Name() string { return "import_cards" }

func (j *ImportCardsJob) Run(ctx context.Context) (err error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"profile_id": j.ProfileID,
		"cards":      len(j.Cards),
	})
	log.Info("starting background import")

	var n int
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("import panicked: %v", rec)
			n = 0
		}
		if j.Done != nil {
			j.Done(n, err)
		}
	}()

	n, err = j.Importer.ImportCards(ctx, j.ProfileID, j.Cards)
	if err != nil {
		return err
	}
	log.Info("imported %d cards", n)
	return nil
}
