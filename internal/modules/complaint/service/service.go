package complaint

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/complaint/dto"
	"anoa.com/hostelhub/internal/modules/complaint/repository"
	notification "anoa.com/hostelhub/internal/modules/notification/service"
	"anoa.com/hostelhub/internal/observability"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/internal/search"
	"anoa.com/hostelhub/internal/workflow"
	"anoa.com/hostelhub/pkg/apperror"
	"anoa.com/hostelhub/pkg/ratelimiter"
	"anoa.com/hostelhub/pkg/sanitize"
	"anoa.com/hostelhub/pkg/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultSearchLimit = 20

type ComplaintService interface {
	GetAll(ctx context.Context, id policy.Identity, filter dto.ComplaintFilter) ([]entity.Complaint, error)
	Search(ctx context.Context, id policy.Identity, query dto.SearchQuery) ([]entity.Complaint, error)
	GetByID(ctx context.Context, id policy.Identity, complaintID uuid.UUID) (*entity.Complaint, error)
	Create(ctx context.Context, id policy.Identity, req dto.CreateComplaintRequest) (*entity.Complaint, error)
	AttachImage(ctx context.Context, id policy.Identity, complaintID uuid.UUID, file io.Reader, fileName string) (*entity.Complaint, error)
	UpdateStatus(ctx context.Context, id policy.Identity, complaintID uuid.UUID, req dto.UpdateStatusRequest) (*entity.Complaint, error)
	Resolve(ctx context.Context, id policy.Identity, complaintID uuid.UUID, req dto.ResolveRequest) (*entity.Complaint, error)
	Delete(ctx context.Context, id policy.Identity, complaintID uuid.UUID) error
}

// Config carries the tunables of the complaint service.
type Config struct {
	RateLimit   time.Duration
	ImageFolder string
}

type complaintService struct {
	repo     repository.ComplaintRepository
	notifier notification.Notifier
	index    search.ComplaintIndex
	images   storage.ImageStorage
	redis    *redis.Client
	metrics  *observability.Metrics
	cfg      Config
	now      func() time.Time
}

// NewComplaintService wires the service. index, images, redis and metrics may be nil.
func NewComplaintService(
	repo repository.ComplaintRepository,
	notifier notification.Notifier,
	index search.ComplaintIndex,
	images storage.ImageStorage,
	redisClient *redis.Client,
	metrics *observability.Metrics,
	cfg Config,
) ComplaintService {
	return &complaintService{
		repo:     repo,
		notifier: notifier,
		index:    index,
		images:   images,
		redis:    redisClient,
		metrics:  metrics,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *complaintService) GetAll(ctx context.Context, id policy.Identity, filter dto.ComplaintFilter) ([]entity.Complaint, error) {
	scope, err := policy.Scope(id, policy.KindComplaint)
	if err != nil {
		return nil, err
	}
	return s.repo.FindAll(ctx, scope, filter)
}

func (s *complaintService) Search(ctx context.Context, id policy.Identity, query dto.SearchQuery) ([]entity.Complaint, error) {
	scope, err := policy.Scope(id, policy.KindComplaint)
	if err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}

	if s.index != nil {
		ids, err := s.index.Search(ctx, query.Q, scope, limit)
		if err == nil {
			// the index may lag behind, so results are re-checked against the database scope
			return s.repo.FindByIDs(ctx, scope, ids)
		}
		logrus.WithError(err).Warn("complaint index unavailable, falling back to database search")
	}

	return s.repo.SearchText(ctx, scope, query.Q, limit)
}

func (s *complaintService) GetByID(ctx context.Context, id policy.Identity, complaintID uuid.UUID) (*entity.Complaint, error) {
	return s.load(ctx, id, complaintID)
}

func (s *complaintService) Create(ctx context.Context, id policy.Identity, req dto.CreateComplaintRequest) (*entity.Complaint, error) {
	if id.StudentID == nil {
		return nil, fmt.Errorf("only students can file complaints: %w", apperror.ErrForbidden)
	}

	release, err := ratelimiter.Guard(ctx, s.redis, id.UserID, ratelimiter.ScopeComplaint, s.cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	complaint := &entity.Complaint{
		StudentID:   *id.StudentID,
		Title:       sanitize.Text(req.Title),
		Description: sanitize.Text(req.Description),
		Category:    req.Category,
		Status:      entity.TicketPending,
	}
	if complaint.Title == "" || complaint.Description == "" {
		release()
		return nil, fmt.Errorf("title and description must contain text: %w", apperror.ErrInvalidInput)
	}

	if err := s.repo.Create(ctx, complaint); err != nil {
		release()
		return nil, err
	}
	s.metrics.ComplaintCreated()

	created, err := s.repo.FindByID(ctx, complaint.ID)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, created)

	logrus.WithFields(logrus.Fields{
		"complaint_id": created.ID,
		"student_id":   created.StudentID,
		"category":     created.Category,
	}).Info("complaint filed")

	return created, nil
}

func (s *complaintService) AttachImage(ctx context.Context, id policy.Identity, complaintID uuid.UUID, file io.Reader, fileName string) (*entity.Complaint, error) {
	if s.images == nil {
		return nil, fmt.Errorf("image storage is not configured: %w", apperror.ErrUnavailable)
	}

	complaint, err := s.load(ctx, id, complaintID)
	if err != nil {
		return nil, err
	}
	if id.StudentID == nil || *id.StudentID != complaint.StudentID {
		return nil, fmt.Errorf("only the student who filed the complaint can attach images: %w", apperror.ErrForbidden)
	}

	url, err := s.images.UploadImage(ctx, file, s.cfg.ImageFolder, fileName)
	if err != nil {
		return nil, err
	}

	previous := complaint.ImageURL
	if err := s.repo.SetImage(ctx, complaint.ID, url); err != nil {
		return nil, err
	}
	complaint.ImageURL = &url

	if previous != nil && *previous != "" {
		if err := s.images.DeleteImage(ctx, *previous); err != nil {
			logrus.WithError(err).WithField("complaint_id", complaint.ID).Warn("failed to delete replaced complaint image")
		}
	}

	return complaint, nil
}

func (s *complaintService) UpdateStatus(ctx context.Context, id policy.Identity, complaintID uuid.UUID, req dto.UpdateStatusRequest) (*entity.Complaint, error) {
	return s.transition(ctx, id, complaintID, req.Status, sanitize.Optional(req.Resolution))
}

func (s *complaintService) Resolve(ctx context.Context, id policy.Identity, complaintID uuid.UUID, req dto.ResolveRequest) (*entity.Complaint, error) {
	resolution := sanitize.Text(req.Resolution)
	if resolution == "" {
		return nil, fmt.Errorf("resolution must not be empty: %w", apperror.ErrInvalidInput)
	}
	return s.transition(ctx, id, complaintID, entity.TicketResolved, &resolution)
}

func (s *complaintService) transition(ctx context.Context, id policy.Identity, complaintID uuid.UUID, status string, resolution *string) (*entity.Complaint, error) {
	if !id.IsStaff() {
		return nil, fmt.Errorf("only wardens and admins can process complaints: %w", apperror.ErrForbidden)
	}

	complaint, err := s.load(ctx, id, complaintID)
	if err != nil {
		return nil, err
	}

	from := complaint.Status
	change, err := workflow.Transition(from, status, id.UserID, s.now())
	if err != nil {
		return nil, err
	}

	complaint.Status = change.Status
	if change.AssignedTo != nil {
		complaint.AssignedTo = change.AssignedTo
	}
	if change.RespondedBy != nil {
		complaint.RespondedBy = change.RespondedBy
		complaint.RespondedAt = change.RespondedAt
	}
	if resolution != nil && strings.TrimSpace(*resolution) != "" {
		complaint.Resolution = resolution
	}

	if err := s.repo.Transition(ctx, complaint, from); err != nil {
		return nil, err
	}
	s.reindex(ctx, complaint)

	if complaint.Student != nil {
		s.notifier.Notify(ctx, &entity.Notification{
			UserID:     complaint.Student.UserID,
			ActorID:    id.UserID,
			EntityID:   complaint.ID,
			EntityType: "complaint",
			Type:       entity.NotificationComplaintStatus,
			Message:    fmt.Sprintf("Your complaint %q is now %s", complaint.Title, complaint.Status),
		})
	}

	return complaint, nil
}

func (s *complaintService) Delete(ctx context.Context, id policy.Identity, complaintID uuid.UUID) error {
	complaint, err := s.load(ctx, id, complaintID)
	if err != nil {
		return err
	}

	if id.IsStudent() {
		if err := workflow.CanWithdraw(complaint.Status); err != nil {
			return err
		}
		err = s.repo.Withdraw(ctx, complaint.ID)
	} else {
		err = s.repo.Delete(ctx, complaint.ID)
	}
	if err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.Delete(ctx, complaint.ID); err != nil {
			logrus.WithError(err).WithField("complaint_id", complaint.ID).Warn("failed to remove complaint from index")
		}
	}
	if s.images != nil && complaint.ImageURL != nil {
		if err := s.images.DeleteImage(ctx, *complaint.ImageURL); err != nil {
			logrus.WithError(err).WithField("complaint_id", complaint.ID).Warn("failed to delete complaint image")
		}
	}

	return nil
}

// load fetches a complaint and checks it against the caller's scope.
func (s *complaintService) load(ctx context.Context, id policy.Identity, complaintID uuid.UUID) (*entity.Complaint, error) {
	scope, err := policy.Scope(id, policy.KindComplaint)
	if err != nil {
		return nil, err
	}

	complaint, err := s.repo.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	block := ""
	if complaint.Student != nil {
		block = complaint.Student.HostelBlock
	}
	if err := scope.Check(complaint.StudentID, block); err != nil {
		return nil, err
	}

	return complaint, nil
}

func (s *complaintService) reindex(ctx context.Context, complaint *entity.Complaint) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, complaint); err != nil {
		logrus.WithError(err).WithField("complaint_id", complaint.ID).Warn("failed to index complaint")
	}
}
