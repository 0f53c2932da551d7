package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/nitesh/blog/internal/logging"
	"github.com/nitesh/blog/internal/metrics"
	"github.com/nitesh/blog/pkg/models"
)

// ArticleStore is the persistence contract the service needs. Get, Update
// and Delete return models.ErrNotFound for a missing id.
type ArticleStore interface {
	Create(ctx context.Context, a *models.Article) error
	List(ctx context.Context) ([]*models.Article, error)
	Get(ctx context.Context, id int64) (*models.Article, error)
	Update(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   ArticleStore
	logger *slog.Logger
}

func NewService(repo ArticleStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Create validates the fields and stores a new article. The store assigns
// the id and the creation date.
func (s *Service) Create(ctx context.Context, title, intro, text string) (*models.Article, error) {
	if err := validate(title, intro, text); err != nil {
		s.record(ctx, "create", err)
		return nil, err
	}

	art := &models.Article{Title: title, Intro: intro, Text: text}
	if err := s.repo.Create(ctx, art); err != nil {
		s.record(ctx, "create", err)
		return nil, fmt.Errorf("create article: %w", err)
	}
	s.record(ctx, "create", nil)
	return art, nil
}

// List returns all articles, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Article, error) {
	arts, err := s.repo.List(ctx)
	s.record(ctx, "list", err)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return arts, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Article, error) {
	if id <= 0 {
		s.record(ctx, "get", models.ErrNotFound)
		return nil, models.ErrNotFound
	}
	art, err := s.repo.Get(ctx, id)
	s.record(ctx, "get", err)
	if err != nil {
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	return art, nil
}

// Update replaces title, intro and text of an existing article. The id and
// creation date are left as they are.
func (s *Service) Update(ctx context.Context, id int64, title, intro, text string) (*models.Article, error) {
	if id <= 0 {
		s.record(ctx, "update", models.ErrNotFound)
		return nil, models.ErrNotFound
	}
	if err := validate(title, intro, text); err != nil {
		s.record(ctx, "update", err)
		return nil, err
	}

	art := &models.Article{ID: id, Title: title, Intro: intro, Text: text}
	if err := s.repo.Update(ctx, art); err != nil {
		s.record(ctx, "update", err)
		return nil, fmt.Errorf("update article %d: %w", id, err)
	}
	s.record(ctx, "update", nil)
	return art, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		s.record(ctx, "delete", models.ErrNotFound)
		return models.ErrNotFound
	}
	err := s.repo.Delete(ctx, id)
	s.record(ctx, "delete", err)
	if err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	return nil
}

// record counts the outcome of op and logs storage failures.
func (s *Service) record(ctx context.Context, op string, err error) {
	result := metrics.ResultOK
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound):
		result = metrics.ResultNotFound
	case errors.Is(err, models.ErrValidation):
		result = metrics.ResultInvalid
	default:
		result = metrics.ResultError
		logging.FromContext(ctx, s.logger).Error("article operation failed",
			slog.String("operation", op),
			slog.Any("error", err))
	}
	metrics.RecordArticleOperation(op, result)
}

func validate(title, intro, text string) error {
	if err := required("title", title, models.MaxTitleLen); err != nil {
		return err
	}
	if err := required("intro", intro, models.MaxIntroLen); err != nil {
		return err
	}
	return required("text", text, 0)
}

// required rejects empty or blank values and, when limit > 0, values longer
// than limit characters.
func required(field, value string, limit int) error {
	if strings.TrimSpace(value) == "" {
		return &models.ValidationError{Field: field, Message: "is required"}
	}
	if limit > 0 && utf8.RuneCountInString(value) > limit {
		return &models.ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", limit)}
	}
	return nil
}
