package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/nutribot/internal/domain"
)

type FeedbackStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewFeedbackStore(db *sql.DB) *FeedbackStore {
	return &FeedbackStore{db: db, now: time.Now}
}

// Create stores one submission and its ratings atomically.
func (s *FeedbackStore) Create(ctx context.Context, ratings map[string]int) (*domain.FeedbackSubmission, error) {
	id := uuid.NewString()
	receivedAt := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO feedback_submissions (id, received_at) VALUES (?, ?)
	`, id, receivedAt); err != nil {
		return nil, fmt.Errorf("failed to create feedback submission: %w", err)
	}

	dishes := make([]string, 0, len(ratings))
	for dish := range ratings {
		dishes = append(dishes, dish)
	}
	sort.Strings(dishes)

	for _, dish := range dishes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO feedback_ratings (submission_id, dish, rating) VALUES (?, ?, ?)
		`, id, dish, ratings[dish]); err != nil {
			return nil, fmt.Errorf("failed to store rating for %s: %w", dish, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit feedback submission: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *FeedbackStore) GetByID(ctx context.Context, id string) (*domain.FeedbackSubmission, error) {
	sub := &domain.FeedbackSubmission{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, received_at FROM feedback_submissions WHERE id = ?
	`, id).Scan(&sub.ID, &sub.ReceivedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback submission: %w", err)
	}

	byID, err := s.ratingsFor(ctx, `
		SELECT submission_id, dish, rating FROM feedback_ratings WHERE submission_id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	sub.Ratings = byID[id]
	if sub.Ratings == nil {
		sub.Ratings = map[string]int{}
	}

	return sub, nil
}

// List returns the most recent submissions first. A limit of zero or less
// returns every submission.
func (s *FeedbackStore) List(ctx context.Context, limit int) ([]*domain.FeedbackSubmission, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, received_at FROM feedback_submissions
		ORDER BY received_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback submissions: %w", err)
	}

	var subs []*domain.FeedbackSubmission
	for rows.Next() {
		sub := &domain.FeedbackSubmission{Ratings: map[string]int{}}
		if err := rows.Scan(&sub.ID, &sub.ReceivedAt); err != nil {
			closeRows(rows)
			return nil, fmt.Errorf("failed to scan feedback submission: %w", err)
		}
		subs = append(subs, sub)
	}
	err = rows.Err()
	closeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("error iterating feedback submissions: %w", err)
	}

	if len(subs) == 0 {
		return subs, nil
	}

	byID, err := s.ratingsFor(ctx, `
		SELECT submission_id, dish, rating FROM feedback_ratings
		WHERE submission_id IN (
			SELECT id FROM feedback_submissions ORDER BY received_at DESC, rowid DESC LIMIT ?
		)
	`, limit)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		if r, ok := byID[sub.ID]; ok {
			sub.Ratings = r
		}
	}

	return subs, nil
}

// Summarize aggregates ratings per dish, ordered by dish id. Zero ratings are
// unrated and do not count; a dish with no ratings above zero is omitted.
func (s *FeedbackStore) Summarize(ctx context.Context) ([]domain.DishSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dish, COUNT(*), AVG(rating) FROM feedback_ratings
		WHERE rating > 0
		GROUP BY dish ORDER BY dish ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize feedback: %w", err)
	}
	defer closeRows(rows)

	var out []domain.DishSummary
	for rows.Next() {
		var ds domain.DishSummary
		if err := rows.Scan(&ds.Dish, &ds.Count, &ds.Average); err != nil {
			return nil, fmt.Errorf("failed to scan dish summary: %w", err)
		}
		out = append(out, ds)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dish summaries: %w", err)
	}

	return out, nil
}

func (s *FeedbackStore) ratingsFor(ctx context.Context, query string, args ...any) (map[string]map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer closeRows(rows)

	out := map[string]map[string]int{}
	for rows.Next() {
		var id, dish string
		var rating int
		if err := rows.Scan(&id, &dish, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		if out[id] == nil {
			out[id] = map[string]int{}
		}
		out[id][dish] = rating
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}

	return out, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("failed to close rows", "error", err)
	}
}
