package services_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/vocabflash/internal/clock"
	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/flashcard"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
	"github.com/vytor/vocabflash/internal/repository/sqlite"
	"github.com/vytor/vocabflash/internal/services"
	"github.com/vytor/vocabflash/internal/testutil"
	"github.com/vytor/vocabflash/internal/testutil/mocks"
)

type CardServiceSuite struct {
	suite.Suite
	svc       services.CardService
	repo      repository.CardRepository
	profileID int64
	now       time.Time
}

func (s *CardServiceSuite) SetupTest() {
	db := testutil.NewTestDB(s.T())
	s.T().Cleanup(func() { testutil.MustClose(s.T(), db) })

	s.now = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	s.repo = sqlite.NewCardRepository(db)
	scheduler, err := flashcard.NewScheduler(flashcard.DefaultParams())
	s.Require().NoError(err)
	s.svc = services.NewCardService(s.repo, scheduler, clock.Func(func() time.Time { return s.now }))
	s.profileID = testutil.MustCreateProfile(s.T(), db, "learner")
}

func rating(q int) *int { return &q }

func (s *CardServiceSuite) add(front, back string) *models.Card {
	c, err := s.svc.AddCard(context.Background(), s.profileID, services.NewCard{Language: "es", FrontText: front, BackText: back})
	s.Require().NoError(err)
	return c
}

func (s *CardServiceSuite) TestAddCardStartsNew() {
	c := s.add("  hola ", "hello")

	s.Equal("hola", c.FrontText)
	s.True(c.IsNew)
	s.False(c.Mastered)
	s.Equal(2.5, c.EaseFactor)
	s.Zero(c.RepetitionNumber)
	s.Zero(c.IntervalDays)
	s.True(c.NextReviewAt.Equal(s.now))
}

func (s *CardServiceSuite) TestAddCardValidates() {
	_, err := s.svc.AddCard(context.Background(), s.profileID, services.NewCard{FrontText: "hola"})
	s.Require().Error(err)
	e := errors.AsAppError(err)
	s.Equal(errors.ErrCodeValidation, e.Code)
	s.Contains(e.Message, "back_text")
}

func (s *CardServiceSuite) TestImportCardsIsAllOrNothing() {
	ctx := context.Background()
	_, err := s.svc.ImportCards(ctx, s.profileID, []services.NewCard{
		{FrontText: "uno", BackText: "one"},
		{FrontText: "", BackText: "two"},
	})
	s.Require().Error(err)

	cards, total, err := s.svc.ListCards(ctx, models.CardFilter{ProfileID: s.profileID})
	s.Require().NoError(err)
	s.Empty(cards)
	s.Zero(total)

	n, err := s.svc.ImportCards(ctx, s.profileID, []services.NewCard{
		{FrontText: "uno", BackText: "one"},
		{FrontText: "dos", BackText: "two"},
	})
	s.Require().NoError(err)
	s.Equal(2, n)

	page, total, err := s.svc.ListCards(ctx, models.CardFilter{ProfileID: s.profileID, Limit: 1})
	s.Require().NoError(err)
	s.Len(page, 1)
	s.Equal(2, total)
}

func (s *CardServiceSuite) TestReviewCardSchedulesAndRecords() {
	ctx := context.Background()
	c := s.add("hola", "hello")

	reviewed, err := s.svc.ReviewCard(ctx, s.profileID, c.ID, services.ReviewInput{Quality: rating(5), TimeSeconds: 2.5})
	s.Require().NoError(err)
	s.False(reviewed.IsNew)
	s.Equal(1, reviewed.RepetitionNumber)
	s.Equal(1, reviewed.IntervalDays)
	s.InDelta(2.6, reviewed.EaseFactor, 1e-9)
	s.True(reviewed.NextReviewAt.Equal(s.now.Add(24 * time.Hour)))
	s.Equal(int64(2), reviewed.Version)

	history, err := s.svc.ReviewHistory(ctx, s.profileID, c.ID, 10)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(5, history[0].Quality)
	s.Equal(2.5, history[0].TimeSeconds)
}

func (s *CardServiceSuite) TestReviewCardRejectsRatingWithoutChanges() {
	ctx := context.Background()
	c := s.add("hola", "hello")

	_, err := s.svc.ReviewCard(ctx, s.profileID, c.ID, services.ReviewInput{Quality: rating(7)})
	s.Require().Error(err)
	e := errors.AsAppError(err)
	s.Equal(errors.ErrCodeRetryable, e.Code)
	s.Equal(http.StatusBadRequest, e.Status)
	s.ErrorIs(err, flashcard.ErrInvalidRating)

	stored, err := s.svc.GetCard(ctx, s.profileID, c.ID)
	s.Require().NoError(err)
	s.True(stored.IsNew)
	s.Equal(c.Version, stored.Version)
}

func (s *CardServiceSuite) TestReviewCardRequiresRating() {
	ctx := context.Background()
	c := s.add("hola", "hello")
	_, err := s.svc.ReviewCard(ctx, s.profileID, c.ID, services.ReviewInput{Quality: rating(5)})
	s.Require().NoError(err)
	before, err := s.svc.GetCard(ctx, s.profileID, c.ID)
	s.Require().NoError(err)

	_, err = s.svc.ReviewCard(ctx, s.profileID, c.ID, services.ReviewInput{TimeSeconds: 2})
	s.Require().Error(err)
	s.Equal(errors.ErrCodeRetryable, errors.AsAppError(err).Code)
	s.ErrorIs(err, flashcard.ErrInvalidRating)

	after, err := s.svc.GetCard(ctx, s.profileID, c.ID)
	s.Require().NoError(err)
	s.Equal(before.Version, after.Version)
	s.Equal(before.RepetitionNumber, after.RepetitionNumber)
	s.Equal(before.IntervalDays, after.IntervalDays)
	s.Equal(before.EaseFactor, after.EaseFactor)
}

func (s *CardServiceSuite) TestReviewCardMissing() {
	_, err := s.svc.ReviewCard(context.Background(), s.profileID, "missing", services.ReviewInput{Quality: rating(4)})
	s.Equal(errors.ErrCodeNotFound, errors.AsAppError(err).Code)
}

func (s *CardServiceSuite) TestReviewCardStaleVersion() {
	ctx := context.Background()
	c := s.add("hola", "hello")

	_, err := s.svc.ReviewCard(ctx, s.profileID, c.ID, services.ReviewInput{Quality: rating(4), ExpectedVersion: c.Version})
	s.Require().NoError(err)

	_, err = s.svc.ReviewCard(ctx, s.profileID, c.ID, services.ReviewInput{Quality: rating(4), ExpectedVersion: c.Version})
	e := errors.AsAppError(err)
	s.Equal(errors.ErrCodeConflict, e.Code)
	s.Equal(http.StatusConflict, e.Status)
}

func (s *CardServiceSuite) TestReviewCardDuplicateSubmissionAppliedOnce() {
	ctx := context.Background()
	c := s.add("hola", "hello")
	in := services.ReviewInput{Quality: rating(5), SubmissionID: c.ID + ":1", ExpectedVersion: c.Version}

	first, err := s.svc.ReviewCard(ctx, s.profileID, c.ID, in)
	s.Require().NoError(err)

	s.now = s.now.Add(time.Minute)
	second, err := s.svc.ReviewCard(ctx, s.profileID, c.ID, in)
	s.Require().NoError(err)

	s.Equal(first.Version, second.Version)
	s.Equal(first.RepetitionNumber, second.RepetitionNumber)
	s.True(first.NextReviewAt.Equal(second.NextReviewAt))

	history, err := s.svc.ReviewHistory(ctx, s.profileID, c.ID, 0)
	s.Require().NoError(err)
	s.Len(history, 1)
}

func (s *CardServiceSuite) TestConcurrentReviewsAreSerialized() {
	ctx := context.Background()
	c := s.add("hola", "hello")

	const reviewers = 8
	var wg sync.WaitGroup
	errs := make(chan error, reviewers)
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.ReviewCard(ctx, s.profileID, c.ID, services.ReviewInput{Quality: rating(5)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	stored, err := s.svc.GetCard(ctx, s.profileID, c.ID)
	s.Require().NoError(err)
	s.Equal(int64(1+reviewers), stored.Version)
	s.Equal(reviewers, stored.RepetitionNumber)
}

func (s *CardServiceSuite) TestSetMasteredAndDelete() {
	ctx := context.Background()
	c := s.add("hola", "hello")

	m, err := s.svc.SetMastered(ctx, s.profileID, c.ID, true)
	s.Require().NoError(err)
	s.True(m.Mastered)

	_, err = s.svc.SetMastered(ctx, s.profileID, "missing", true)
	s.Equal(errors.ErrCodeNotFound, errors.AsAppError(err).Code)

	s.Require().NoError(s.svc.DeleteCard(ctx, s.profileID, c.ID))
	_, err = s.svc.GetCard(ctx, s.profileID, c.ID)
	s.Equal(errors.ErrCodeNotFound, errors.AsAppError(err).Code)

	err = s.svc.DeleteCard(ctx, s.profileID, c.ID)
	s.Equal(errors.ErrCodeNotFound, errors.AsAppError(err).Code)
}

func TestCardServiceSuite(t *testing.T) {
	suite.Run(t, new(CardServiceSuite))
}

func TestReviewCard_ConcurrentWriterConflict(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	card := testutil.NewCard(1, "hola", "hello", now)
	card.ID = "c1"
	card.Version = 3

	repo := new(mocks.MockCardRepository)
	repo.On("Get", ctx, int64(1), "c1").Return(&card, nil)
	repo.On("ApplyReview", ctx, mock.AnythingOfType("models.Card"), mock.AnythingOfType("models.ReviewHistory")).
		Return(models.Card{}, repository.ErrVersionConflict)

	scheduler, err := flashcard.NewScheduler(flashcard.DefaultParams())
	require.NoError(t, err)
	svc := services.NewCardService(repo, scheduler, clock.Fixed(now))

	_, err = svc.ReviewCard(ctx, 1, "c1", services.ReviewInput{Quality: rating(4)})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConflict, errors.AsAppError(err).Code)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	repo.AssertExpectations(t)
}
