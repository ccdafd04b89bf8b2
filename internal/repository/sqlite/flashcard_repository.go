package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

var cardColumns = []string{
	"id", "profile_id", "language", "category", "front_text", "back_text",
	"ease_factor", "repetition_number", "interval_days", "next_review_at", "last_review_at",
	"is_new", "mastered", "version", "created_at",
}

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Insert(ctx context.Context, c models.Card) (models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	var stored models.Card
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		stored, err = insertCard(ctx, tx, c)
		return err
	})
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return models.Card{}, err
	}
	log.Debug("card inserted: id=%s, profile_id=%d", stored.ID, stored.ProfileID)
	return stored, nil
}

func (r *cardRepository) InsertBatch(ctx context.Context, cards []models.Card) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting %d cards", len(cards))

	stored := make([]models.Card, 0, len(cards))
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, c := range cards {
			s, err := insertCard(ctx, tx, c)
			if err != nil {
				return err
			}
			stored = append(stored, s)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert card batch: %v", err)
		return nil, err
	}
	return stored, nil
}

func insertCard(ctx context.Context, tx *sql.Tx, c models.Card) (models.Card, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.Version = 1

	_, err := tx.ExecContext(ctx, `
INSERT INTO cards (id, profile_id, language, category, front_text, back_text,
                   ease_factor, repetition_number, interval_days, next_review_at, last_review_at,
                   is_new, mastered, version, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.ID, c.ProfileID, c.Language, c.Category, c.FrontText, c.BackText,
		c.EaseFactor, c.RepetitionNumber, c.IntervalDays, c.NextReviewAt.UTC(), nullTime(c.LastReviewAt),
		c.IsNew, c.Mastered, c.Version, c.CreatedAt.UTC())
	return c, err
}

func (r *cardRepository) Get(ctx context.Context, profileID int64, id string) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%s, profile_id=%d", id, profileID)

	query, args, err := sqlBuilder.Select(cardColumns...).From("cards").
		Where(squirrel.Eq{"id": id, "profile_id": profileID}).ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanCard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	return &c, nil
}

func applyFilter(q squirrel.SelectBuilder, filter models.CardFilter) squirrel.SelectBuilder {
	if filter.ProfileID != 0 {
		q = q.Where(squirrel.Eq{"profile_id": filter.ProfileID})
	}
	if filter.Language != "" {
		q = q.Where(squirrel.Eq{"language": filter.Language})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Mastered != nil {
		q = q.Where(squirrel.Eq{"mastered": *filter.Mastered})
	}
	return q
}

// List returns cards in insertion order.
func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: profile_id=%d, language=%s, category=%s", filter.ProfileID, filter.Language, filter.Category)

	q := applyFilter(sqlBuilder.Select(cardColumns...).From("cards"), filter).OrderBy("seq ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			q = q.Offset(uint64(filter.Offset))
		}
	}

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	cards := make([]models.Card, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d cards", len(cards))
	return cards, rows.Err()
}

func (r *cardRepository) Count(ctx context.Context, filter models.CardFilter) (int, error) {
	query, args, err := applyFilter(sqlBuilder.Select("COUNT(*)").From("cards"), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		logger.FromContext(ctx).WithPrefix("card_repo").Error("failed to count cards: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *cardRepository) ApplyReview(ctx context.Context, c models.Card, review models.ReviewHistory) (models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("applying review: id=%s, version=%d, interval=%d, ease=%.2f", c.ID, c.Version, c.IntervalDays, c.EaseFactor)

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE cards
SET ease_factor = ?, repetition_number = ?, interval_days = ?, next_review_at = ?, last_review_at = ?,
    is_new = ?, mastered = ?, version = version + 1
WHERE id = ? AND profile_id = ? AND version = ?
`, c.EaseFactor, c.RepetitionNumber, c.IntervalDays, c.NextReviewAt.UTC(), nullTime(c.LastReviewAt),
			c.IsNew, c.Mastered, c.ID, c.ProfileID, c.Version)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrVersionConflict
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO review_history (card_id, submission_id, quality, time_seconds, reviewed_at)
VALUES (?, ?, ?, ?, ?)
`, c.ID, nullString(review.SubmissionID), review.Quality, review.TimeSeconds, review.ReviewedAt.UTC())
		if isUniqueViolation(err) {
			return repository.ErrDuplicateSubmission
		}
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) || errors.Is(err, repository.ErrDuplicateSubmission) {
			log.Warn("review not applied: id=%s: %v", c.ID, err)
		} else {
			log.Error("failed to apply review: %v", err)
		}
		return models.Card{}, err
	}

	c.Version++
	return c, nil
}

func (r *cardRepository) SetMastered(ctx context.Context, profileID int64, id string, mastered bool) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("setting mastered: id=%s, mastered=%t", id, mastered)

	res, err := r.db.ExecContext(ctx, `
UPDATE cards SET mastered = ?, version = version + 1
WHERE id = ? AND profile_id = ?
`, mastered, id, profileID)
	if err != nil {
		log.Error("failed to set mastered: %v", err)
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, sql.ErrNoRows
	}
	return r.Get(ctx, profileID, id)
}

func (r *cardRepository) Delete(ctx context.Context, profileID int64, id string) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting card: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ? AND profile_id = ?`, id, profileID)
	if err != nil {
		log.Error("failed to delete card: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *cardRepository) ReviewHistory(ctx context.Context, cardID string, limit int) ([]models.ReviewHistory, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	q := sqlBuilder.Select("id", "card_id", "submission_id", "quality", "time_seconds", "reviewed_at").
		From("review_history").
		Where(squirrel.Eq{"card_id": cardID}).
		OrderBy("reviewed_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review history: %v", err)
		return nil, err
	}
	defer rows.Close()

	history := make([]models.ReviewHistory, 0)
	for rows.Next() {
		var h models.ReviewHistory
		var submission sql.NullString
		if err := rows.Scan(&h.ID, &h.CardID, &submission, &h.Quality, &h.TimeSeconds, &h.ReviewedAt); err != nil {
			log.Error("failed to scan review history row: %v", err)
			return nil, err
		}
		h.SubmissionID = submission.String
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *cardRepository) HasSubmission(ctx context.Context, cardID, submissionID string) (bool, error) {
	query, args, err := sqlBuilder.Select("COUNT(*)").From("review_history").
		Where(squirrel.Eq{"card_id": cardID, "submission_id": submissionID}).ToSql()
	if err != nil {
		return false, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		logger.FromContext(ctx).WithPrefix("card_repo").Error("failed to look up submission: %v", err)
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (models.Card, error) {
	var c models.Card
	var lastReview sql.NullTime
	err := row.Scan(&c.ID, &c.ProfileID, &c.Language, &c.Category, &c.FrontText, &c.BackText,
		&c.EaseFactor, &c.RepetitionNumber, &c.IntervalDays, &c.NextReviewAt, &lastReview,
		&c.IsNew, &c.Mastered, &c.Version, &c.CreatedAt)
	if err != nil {
		return models.Card{}, err
	}
	if lastReview.Valid {
		t := lastReview.Time
		c.LastReviewAt = &t
	}
	return c, nil
}
