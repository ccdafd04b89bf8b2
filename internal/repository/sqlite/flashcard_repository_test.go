package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
	"github.com/vytor/vocabflash/internal/repository/sqlite"
	"github.com/vytor/vocabflash/internal/testutil"
)

type CardRepositorySuite struct {
	suite.Suite
	db        *sql.DB
	repo      repository.CardRepository
	profileID int64
	now       time.Time
}

func (s *CardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewCardRepository(s.db)
	s.profileID = testutil.MustCreateProfile(s.T(), s.db, "learner")
	s.now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *CardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CardRepositorySuite) insert(front, back string) models.Card {
	c, err := s.repo.Insert(context.Background(), testutil.NewCard(s.profileID, front, back, s.now))
	s.Require().NoError(err)
	return c
}

func (s *CardRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	stored := s.insert("hola", "hello")

	s.NotEmpty(stored.ID)
	s.Equal(int64(1), stored.Version)

	got, err := s.repo.Get(ctx, s.profileID, stored.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("hola", got.FrontText)
	s.Equal("hello", got.BackText)
	s.Equal(2.5, got.EaseFactor)
	s.True(got.IsNew)
	s.False(got.Mastered)
	s.Nil(got.LastReviewAt)
	s.True(got.NextReviewAt.Equal(s.now))
}

func (s *CardRepositorySuite) TestGetMissingReturnsNil() {
	got, err := s.repo.Get(context.Background(), s.profileID, "missing")
	s.NoError(err)
	s.Nil(got)
}

func (s *CardRepositorySuite) TestGetIsScopedToProfile() {
	stored := s.insert("hola", "hello")
	other := testutil.MustCreateProfile(s.T(), s.db, "someone-else")

	got, err := s.repo.Get(context.Background(), other, stored.ID)
	s.NoError(err)
	s.Nil(got)
}

func (s *CardRepositorySuite) TestListKeepsInsertionOrder() {
	ctx := context.Background()
	cards := []models.Card{
		testutil.NewCard(s.profileID, "uno", "one", s.now),
		testutil.NewCard(s.profileID, "dos", "two", s.now),
		testutil.NewCard(s.profileID, "tres", "three", s.now),
	}
	cards[2].Category = "numbers"

	stored, err := s.repo.InsertBatch(ctx, cards)
	s.Require().NoError(err)
	s.Len(stored, 3)

	list, err := s.repo.List(ctx, models.CardFilter{ProfileID: s.profileID})
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]string{"uno", "dos", "tres"}, []string{list[0].FrontText, list[1].FrontText, list[2].FrontText})

	numbers, err := s.repo.List(ctx, models.CardFilter{ProfileID: s.profileID, Category: "numbers"})
	s.Require().NoError(err)
	s.Require().Len(numbers, 1)
	s.Equal("tres", numbers[0].FrontText)

	page, err := s.repo.List(ctx, models.CardFilter{ProfileID: s.profileID, Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("dos", page[0].FrontText)

	n, err := s.repo.Count(ctx, models.CardFilter{ProfileID: s.profileID})
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *CardRepositorySuite) TestApplyReview() {
	ctx := context.Background()
	stored := s.insert("hola", "hello")

	reviewedAt := s.now.Add(time.Hour)
	stored.EaseFactor = 2.6
	stored.RepetitionNumber = 1
	stored.IntervalDays = 1
	stored.NextReviewAt = reviewedAt.Add(24 * time.Hour)
	stored.LastReviewAt = &reviewedAt
	stored.IsNew = false

	updated, err := s.repo.ApplyReview(ctx, stored, models.ReviewHistory{
		CardID: stored.ID, SubmissionID: "sub-1", Quality: 5, TimeSeconds: 3, ReviewedAt: reviewedAt,
	})
	s.Require().NoError(err)
	s.Equal(int64(2), updated.Version)

	got, err := s.repo.Get(ctx, s.profileID, stored.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), got.Version)
	s.Equal(1, got.RepetitionNumber)
	s.Equal(1, got.IntervalDays)
	s.InDelta(2.6, got.EaseFactor, 1e-9)
	s.False(got.IsNew)
	s.Require().NotNil(got.LastReviewAt)
	s.True(got.LastReviewAt.Equal(reviewedAt))

	history, err := s.repo.ReviewHistory(ctx, stored.ID, 10)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal("sub-1", history[0].SubmissionID)
	s.Equal(5, history[0].Quality)
}

func (s *CardRepositorySuite) TestApplyReviewStaleVersion() {
	ctx := context.Background()
	stored := s.insert("hola", "hello")

	_, err := s.repo.ApplyReview(ctx, stored, models.ReviewHistory{CardID: stored.ID, Quality: 4, ReviewedAt: s.now})
	s.Require().NoError(err)

	// Same read version a second time: someone else already won.
	_, err = s.repo.ApplyReview(ctx, stored, models.ReviewHistory{CardID: stored.ID, Quality: 1, ReviewedAt: s.now})
	s.ErrorIs(err, repository.ErrVersionConflict)

	history, err := s.repo.ReviewHistory(ctx, stored.ID, 0)
	s.Require().NoError(err)
	s.Len(history, 1)
}

func (s *CardRepositorySuite) TestApplyReviewDuplicateSubmission() {
	ctx := context.Background()
	stored := s.insert("hola", "hello")

	updated, err := s.repo.ApplyReview(ctx, stored, models.ReviewHistory{CardID: stored.ID, SubmissionID: "dup", Quality: 4, ReviewedAt: s.now})
	s.Require().NoError(err)

	seen, err := s.repo.HasSubmission(ctx, stored.ID, "dup")
	s.Require().NoError(err)
	s.True(seen)

	_, err = s.repo.ApplyReview(ctx, updated, models.ReviewHistory{CardID: stored.ID, SubmissionID: "dup", Quality: 4, ReviewedAt: s.now})
	s.ErrorIs(err, repository.ErrDuplicateSubmission)

	// The rolled back transaction must leave the version untouched.
	got, err := s.repo.Get(ctx, s.profileID, stored.ID)
	s.Require().NoError(err)
	s.Equal(updated.Version, got.Version)
}

func (s *CardRepositorySuite) TestReviewsWithoutSubmissionIDNeverCollide() {
	ctx := context.Background()
	c := s.insert("hola", "hello")

	for i := 0; i < 3; i++ {
		var err error
		c, err = s.repo.ApplyReview(ctx, c, models.ReviewHistory{CardID: c.ID, Quality: 5, ReviewedAt: s.now.Add(time.Duration(i) * time.Minute)})
		s.Require().NoError(err)
	}

	history, err := s.repo.ReviewHistory(ctx, c.ID, 2)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.True(history[0].ReviewedAt.After(history[1].ReviewedAt))
}

func (s *CardRepositorySuite) TestSetMastered() {
	ctx := context.Background()
	stored := s.insert("hola", "hello")

	got, err := s.repo.SetMastered(ctx, s.profileID, stored.ID, true)
	s.Require().NoError(err)
	s.True(got.Mastered)
	s.Equal(int64(2), got.Version)

	mastered := true
	list, err := s.repo.List(ctx, models.CardFilter{ProfileID: s.profileID, Mastered: &mastered})
	s.Require().NoError(err)
	s.Len(list, 1)

	_, err = s.repo.SetMastered(ctx, s.profileID, "missing", true)
	s.ErrorIs(err, sql.ErrNoRows)
}

func (s *CardRepositorySuite) TestDelete() {
	ctx := context.Background()
	stored := s.insert("hola", "hello")

	s.Require().NoError(s.repo.Delete(ctx, s.profileID, stored.ID))

	got, err := s.repo.Get(ctx, s.profileID, stored.ID)
	s.NoError(err)
	s.Nil(got)

	s.ErrorIs(s.repo.Delete(ctx, s.profileID, stored.ID), sql.ErrNoRows)
}

func TestCardRepositorySuite(t *testing.T) {
	suite.Run(t, new(CardRepositorySuite))
}
