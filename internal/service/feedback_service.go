package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vbonduro/nutribot/internal/domain"
	"github.com/vbonduro/nutribot/internal/export"
	"github.com/vbonduro/nutribot/internal/feedback"
)

// ErrEmptyFeedback is returned when a submission carries no ratings.
var ErrEmptyFeedback = errors.New("feedback has no ratings")

// feedbackRepository is the subset of store.FeedbackStore that FeedbackService requires.
type feedbackRepository interface {
	Create(ctx context.Context, ratings map[string]int) (*domain.FeedbackSubmission, error)
	GetByID(ctx context.Context, id string) (*domain.FeedbackSubmission, error)
	List(ctx context.Context, limit int) ([]*domain.FeedbackSubmission, error)
	Summarize(ctx context.Context) ([]domain.DishSummary, error)
}

type FeedbackService struct {
	store  feedbackRepository
	logger *slog.Logger
}

func NewFeedbackService(store feedbackRepository, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{store: store, logger: logger}
}

// Record validates and stores a posted rating form. Every value must be a
// rating from "0" to "5"; validation errors wrap feedback.ErrInvalidRating.
func (s *FeedbackService) Record(ctx context.Context, payload map[string]string) (*domain.FeedbackSubmission, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyFeedback
	}

	ratings := make(map[string]int, len(payload))
	for dish, raw := range payload {
		if dish == "" {
			return nil, fmt.Errorf("%w: empty dish id", feedback.ErrInvalidRating)
		}
		r, err := feedback.ParseRating(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid rating for %s: %w", dish, err)
		}
		ratings[dish] = r.Stars()
	}

	sub, err := s.store.Create(ctx, ratings)
	if err != nil {
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}

	s.logger.Info("feedback recorded", "id", sub.ID, "dishes", len(sub.Ratings))
	return sub, nil
}

func (s *FeedbackService) Get(ctx context.Context, id string) (*domain.FeedbackSubmission, error) {
	return s.store.GetByID(ctx, id)
}

func (s *FeedbackService) Summary(ctx context.Context) ([]domain.DishSummary, error) {
	summary, err := s.store.Summarize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize feedback: %w", err)
	}
	if summary == nil {
		summary = []domain.DishSummary{}
	}
	return summary, nil
}

func (s *FeedbackService) Recent(ctx context.Context, limit int) ([]*domain.FeedbackSubmission, error) {
	return s.store.List(ctx, limit)
}

// Export writes every stored submission to w as an XLSX workbook.
func (s *FeedbackService) Export(ctx context.Context, w io.Writer) error {
	subs, err := s.store.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to load feedback for export: %w", err)
	}
	if err := export.WriteFeedbackXLSX(w, subs); err != nil {
		return fmt.Errorf("failed to export feedback: %w", err)
	}
	s.logger.Info("feedback exported", "submissions", len(subs))
	return nil
}
