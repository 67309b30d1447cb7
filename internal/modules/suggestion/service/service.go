package suggestion

import (
	"context"
	"fmt"
	"time"

	"anoa.com/hostelhub/internal/entity"
	notification "anoa.com/hostelhub/internal/modules/notification/service"
	"anoa.com/hostelhub/internal/modules/suggestion/dto"
	"anoa.com/hostelhub/internal/modules/suggestion/repository"
	"anoa.com/hostelhub/internal/observability"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/internal/workflow"
	"anoa.com/hostelhub/pkg/apperror"
	"anoa.com/hostelhub/pkg/ratelimiter"
	"anoa.com/hostelhub/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// OpenStatuses are the statuses still waiting for staff.
var OpenStatuses = []string{entity.TicketPending, entity.TicketInProgress}

type SuggestionService interface {
	GetAll(ctx context.Context, id policy.Identity, filter dto.SuggestionFilter) ([]entity.Suggestion, error)
	GetOpen(ctx context.Context, id policy.Identity) ([]entity.Suggestion, error)
	CountOpen(ctx context.Context, id policy.Identity) (int64, error)
	GetByID(ctx context.Context, id policy.Identity, suggestionID uuid.UUID) (*entity.Suggestion, error)
	Create(ctx context.Context, id policy.Identity, req dto.CreateSuggestionRequest) (*entity.Suggestion, error)
	AddComment(ctx context.Context, id policy.Identity, suggestionID uuid.UUID, req dto.CommentRequest) (*entity.Suggestion, error)
	Respond(ctx context.Context, id policy.Identity, suggestionID uuid.UUID, req dto.RespondRequest) (*entity.Suggestion, error)
	UpdateStatus(ctx context.Context, id policy.Identity, suggestionID uuid.UUID, req dto.UpdateStatusRequest) (*entity.Suggestion, error)
	Delete(ctx context.Context, id policy.Identity, suggestionID uuid.UUID) error
}

type suggestionService struct {
	repo      repository.SuggestionRepository
	notifier  notification.Notifier
	redis     *redis.Client
	metrics   *observability.Metrics
	rateLimit time.Duration
	now       func() time.Time
}

func NewSuggestionService(
	repo repository.SuggestionRepository,
	notifier notification.Notifier,
	redisClient *redis.Client,
	metrics *observability.Metrics,
	rateLimit time.Duration,
) SuggestionService {
	return &suggestionService{
		repo:      repo,
		notifier:  notifier,
		redis:     redisClient,
		metrics:   metrics,
		rateLimit: rateLimit,
		now:       time.Now,
	}
}

func (s *suggestionService) GetAll(ctx context.Context, id policy.Identity, filter dto.SuggestionFilter) ([]entity.Suggestion, error) {
	scope, err := policy.Scope(id, policy.KindSuggestion)
	if err != nil {
		return nil, err
	}
	return s.repo.FindAll(ctx, scope, filter)
}

func (s *suggestionService) GetOpen(ctx context.Context, id policy.Identity) ([]entity.Suggestion, error) {
	scope, err := policy.Scope(id, policy.KindSuggestion)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByStatuses(ctx, scope, OpenStatuses)
}

func (s *suggestionService) CountOpen(ctx context.Context, id policy.Identity) (int64, error) {
	scope, err := policy.Scope(id, policy.KindSuggestion)
	if err != nil {
		return 0, err
	}
	return s.repo.CountByStatuses(ctx, scope, OpenStatuses)
}

func (s *suggestionService) GetByID(ctx context.Context, id policy.Identity, suggestionID uuid.UUID) (*entity.Suggestion, error) {
	return s.load(ctx, id, suggestionID)
}

func (s *suggestionService) Create(ctx context.Context, id policy.Identity, req dto.CreateSuggestionRequest) (*entity.Suggestion, error) {
	if id.StudentID == nil {
		return nil, fmt.Errorf("only students can submit suggestions: %w", apperror.ErrForbidden)
	}

	release, err := ratelimiter.Guard(ctx, s.redis, id.UserID, ratelimiter.ScopeSuggestion, s.rateLimit)
	if err != nil {
		return nil, err
	}

	suggestion := &entity.Suggestion{
		StudentID:   *id.StudentID,
		Title:       sanitize.Text(req.Title),
		Description: sanitize.Text(req.Description),
		Category:    req.Category,
		Status:      entity.TicketPending,
	}
	if suggestion.Title == "" || suggestion.Description == "" {
		release()
		return nil, fmt.Errorf("title and description must contain text: %w", apperror.ErrInvalidInput)
	}

	if err := s.repo.Create(ctx, suggestion); err != nil {
		release()
		return nil, err
	}
	s.metrics.SuggestionCreated()

	return s.repo.FindByID(ctx, suggestion.ID)
}

func (s *suggestionService) AddComment(ctx context.Context, id policy.Identity, suggestionID uuid.UUID, req dto.CommentRequest) (*entity.Suggestion, error) {
	suggestion, err := s.load(ctx, id, suggestionID)
	if err != nil {
		return nil, err
	}

	text := sanitize.Text(req.Text)
	if text == "" {
		return nil, fmt.Errorf("comment must not be empty: %w", apperror.ErrInvalidInput)
	}

	if err := s.repo.AddComment(ctx, &entity.SuggestionComment{
		SuggestionID: suggestion.ID,
		UserID:       id.UserID,
		Text:         text,
	}); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, suggestion.ID)
}

// Respond records the staff answer without moving the workflow.
func (s *suggestionService) Respond(ctx context.Context, id policy.Identity, suggestionID uuid.UUID, req dto.RespondRequest) (*entity.Suggestion, error) {
	if !id.IsStaff() {
		return nil, fmt.Errorf("only wardens and admins can respond: %w", apperror.ErrForbidden)
	}

	suggestion, err := s.load(ctx, id, suggestionID)
	if err != nil {
		return nil, err
	}

	text := sanitize.Text(req.Response)
	if text == "" {
		return nil, fmt.Errorf("response must not be empty: %w", apperror.ErrInvalidInput)
	}

	now := s.now()
	responder := id.UserID
	suggestion.Response = &text
	suggestion.RespondedBy = &responder
	suggestion.RespondedAt = &now

	if err := s.repo.SetResponse(ctx, suggestion.ID, text, responder, now); err != nil {
		return nil, err
	}

	s.notify(ctx, id, suggestion, entity.NotificationSuggestionReply,
		fmt.Sprintf("Your suggestion %q received a response", suggestion.Title))

	return suggestion, nil
}

func (s *suggestionService) UpdateStatus(ctx context.Context, id policy.Identity, suggestionID uuid.UUID, req dto.UpdateStatusRequest) (*entity.Suggestion, error) {
	if !id.IsStaff() {
		return nil, fmt.Errorf("only wardens and admins can process suggestions: %w", apperror.ErrForbidden)
	}

	suggestion, err := s.load(ctx, id, suggestionID)
	if err != nil {
		return nil, err
	}

	from := suggestion.Status
	change, err := workflow.Transition(from, req.Status, id.UserID, s.now())
	if err != nil {
		return nil, err
	}

	suggestion.Status = change.Status
	if change.RespondedBy != nil {
		suggestion.RespondedBy = change.RespondedBy
		suggestion.RespondedAt = change.RespondedAt
	}

	if err := s.repo.Transition(ctx, suggestion, from); err != nil {
		return nil, err
	}

	s.notify(ctx, id, suggestion, entity.NotificationSuggestionStatus,
		fmt.Sprintf("Your suggestion %q is now %s", suggestion.Title, suggestion.Status))

	return suggestion, nil
}

func (s *suggestionService) Delete(ctx context.Context, id policy.Identity, suggestionID uuid.UUID) error {
	suggestion, err := s.load(ctx, id, suggestionID)
	if err != nil {
		return err
	}

	if id.IsStudent() {
		if err := workflow.CanWithdraw(suggestion.Status); err != nil {
			return err
		}
		return s.repo.Withdraw(ctx, suggestion.ID)
	}

	return s.repo.Delete(ctx, suggestion.ID)
}

func (s *suggestionService) load(ctx context.Context, id policy.Identity, suggestionID uuid.UUID) (*entity.Suggestion, error) {
	scope, err := policy.Scope(id, policy.KindSuggestion)
	if err != nil {
		return nil, err
	}

	suggestion, err := s.repo.FindByID(ctx, suggestionID)
	if err != nil {
		return nil, err
	}

	block := ""
	if suggestion.Student != nil {
		block = suggestion.Student.HostelBlock
	}
	if err := scope.Check(suggestion.StudentID, block); err != nil {
		return nil, err
	}

	return suggestion, nil
}

func (s *suggestionService) notify(ctx context.Context, id policy.Identity, suggestion *entity.Suggestion, kind, message string) {
	if suggestion.Student == nil {
		logrus.WithField("suggestion_id", suggestion.ID).Warn("suggestion has no student loaded, skipping notification")
		return
	}
	s.notifier.Notify(ctx, &entity.Notification{
		UserID:     suggestion.Student.UserID,
		ActorID:    id.UserID,
		EntityID:   suggestion.ID,
		EntityType: "suggestion",
		Type:       kind,
		Message:    message,
	})
}
