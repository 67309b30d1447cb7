package mess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/hostelhub/internal/bootstrap"
	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/mess/dto"
	"anoa.com/hostelhub/internal/modules/mess/repository"
	"anoa.com/hostelhub/internal/observability"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/apperror"
	"anoa.com/hostelhub/pkg/ratelimiter"
	"anoa.com/hostelhub/pkg/sanitize"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// MenuCacheKey holds the JSON encoded weekly menu.
const MenuCacheKey = "mess:menu"

type MessService interface {
	GetMenu(ctx context.Context) ([]entity.MessMenu, error)
	UpdateDay(ctx context.Context, id policy.Identity, day string, req dto.UpdateMenuRequest) (*entity.MessMenu, error)
	UpdateMenu(ctx context.Context, id policy.Identity, items []dto.MenuItemRequest) ([]entity.MessMenu, error)
	CreateFeedback(ctx context.Context, id policy.Identity, req dto.FeedbackRequest) (*entity.MessFeedback, error)
	GetFeedback(ctx context.Context, id policy.Identity) ([]entity.MessFeedback, error)
	GetMyFeedback(ctx context.Context, id policy.Identity) ([]entity.MessFeedback, error)
}

type Config struct {
	CacheTTL     time.Duration
	FeedbackRate time.Duration
}

type messService struct {
	repo    repository.MessRepository
	redis   *redis.Client
	metrics *observability.Metrics
	cfg     Config
}

// NewMessService wires the service. Without redis the menu is read from the
// database every time and feedback is not rate limited.
func NewMessService(repo repository.MessRepository, redisClient *redis.Client, metrics *observability.Metrics, cfg Config) MessService {
	return &messService{
		repo:    repo,
		redis:   redisClient,
		metrics: metrics,
		cfg:     cfg,
	}
}

func (s *messService) GetMenu(ctx context.Context) ([]entity.MessMenu, error) {
	if menu, ok := s.cached(ctx); ok {
		s.metrics.MenuCache(true)
		return menu, nil
	}
	s.metrics.MenuCache(false)

	menu, err := s.repo.Menu(ctx)
	if err != nil {
		return nil, err
	}
	if len(menu) == 0 {
		menu, err = s.repo.SaveMenu(ctx, bootstrap.DefaultMessMenu())
		if err != nil {
			return nil, err
		}
		logrus.Info("default mess menu created on first read")
	}

	s.store(ctx, menu)
	return menu, nil
}

func (s *messService) UpdateDay(ctx context.Context, id policy.Identity, day string, req dto.UpdateMenuRequest) (*entity.MessMenu, error) {
	saved, err := s.UpdateMenu(ctx, id, []dto.MenuItemRequest{{
		Day:         day,
		Breakfast:   req.Breakfast,
		Lunch:       req.Lunch,
		Dinner:      req.Dinner,
		SpecialMenu: req.SpecialMenu,
		Notes:       req.Notes,
	}})
	if err != nil {
		return nil, err
	}
	return &saved[0], nil
}

func (s *messService) UpdateMenu(ctx context.Context, id policy.Identity, items []dto.MenuItemRequest) ([]entity.MessMenu, error) {
	if !id.IsStaff() {
		return nil, fmt.Errorf("only wardens and admins edit the menu: %w", apperror.ErrForbidden)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("menu must contain at least one day: %w", apperror.ErrInvalidInput)
	}

	days := make([]entity.MessMenu, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		day, err := Weekday(item.Day)
		if err != nil {
			return nil, err
		}
		if seen[day] {
			return nil, fmt.Errorf("%s listed more than once: %w", day, apperror.ErrInvalidInput)
		}
		seen[day] = true

		menu := entity.MessMenu{
			Day:         day,
			Breakfast:   sanitize.Text(item.Breakfast),
			Lunch:       sanitize.Text(item.Lunch),
			Dinner:      sanitize.Text(item.Dinner),
			SpecialMenu: sanitize.Optional(item.SpecialMenu),
			Notes:       sanitize.Optional(item.Notes),
		}
		if menu.Breakfast == "" || menu.Lunch == "" || menu.Dinner == "" {
			return nil, fmt.Errorf("breakfast, lunch and dinner are required for %s: %w", day, apperror.ErrInvalidInput)
		}
		days = append(days, menu)
	}

	saved, err := s.repo.SaveMenu(ctx, days)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	logrus.WithFields(logrus.Fields{
		"user_id": id.UserID,
		"days":    len(saved),
	}).Info("mess menu updated")

	return saved, nil
}

// Weekday returns the canonical name of a weekday given in any case.
func Weekday(day string) (string, error) {
	for _, d := range entity.Weekdays {
		if strings.EqualFold(d, strings.TrimSpace(day)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day %q: %w", day, apperror.ErrInvalidInput)
}

func (s *messService) CreateFeedback(ctx context.Context, id policy.Identity, req dto.FeedbackRequest) (*entity.MessFeedback, error) {
	if id.StudentID == nil {
		return nil, fmt.Errorf("only students can give mess feedback: %w", apperror.ErrForbidden)
	}

	text := sanitize.Text(req.Feedback)
	if text == "" {
		return nil, fmt.Errorf("feedback is required: %w", apperror.ErrInvalidInput)
	}

	release, err := ratelimiter.Guard(ctx, s.redis, id.UserID, ratelimiter.ScopeFeedback, s.cfg.FeedbackRate)
	if err != nil {
		return nil, err
	}

	feedback := &entity.MessFeedback{
		StudentID: *id.StudentID,
		Rating:    req.Rating,
		Feedback:  text,
		Date:      time.Now().UTC(),
	}
	if err := s.repo.CreateFeedback(ctx, feedback); err != nil {
		release()
		return nil, err
	}
	return feedback, nil
}

func (s *messService) GetFeedback(ctx context.Context, id policy.Identity) ([]entity.MessFeedback, error) {
	if !id.IsStaff() {
		return nil, fmt.Errorf("students read their own feedback: %w", apperror.ErrForbidden)
	}
	scope, err := policy.Scope(id, policy.KindMessFeedback)
	if err != nil {
		return nil, err
	}
	return s.repo.FindFeedback(ctx, scope)
}

func (s *messService) GetMyFeedback(ctx context.Context, id policy.Identity) ([]entity.MessFeedback, error) {
	if id.StudentID == nil {
		return nil, fmt.Errorf("student profile not found: %w", apperror.ErrForbidden)
	}
	return s.repo.FindFeedbackByStudent(ctx, *id.StudentID)
}

func (s *messService) cached(ctx context.Context) ([]entity.MessMenu, bool) {
	if s.redis == nil || s.cfg.CacheTTL <= 0 {
		return nil, false
	}

	raw, err := s.redis.Get(ctx, MenuCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).Warn("failed to read mess menu cache")
		}
		return nil, false
	}

	var menu []entity.MessMenu
	if err := json.Unmarshal(raw, &menu); err != nil {
		logrus.WithError(err).Warn("discarding malformed mess menu cache")
		return nil, false
	}
	return menu, true
}

func (s *messService) store(ctx context.Context, menu []entity.MessMenu) {
	if s.redis == nil || s.cfg.CacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(menu)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, MenuCacheKey, raw, s.cfg.CacheTTL).Err(); err != nil {
		logrus.WithError(err).Warn("failed to cache mess menu")
	}
}

func (s *messService) invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, MenuCacheKey).Err(); err != nil {
		logrus.WithError(err).Warn("failed to invalidate mess menu cache")
	}
}
