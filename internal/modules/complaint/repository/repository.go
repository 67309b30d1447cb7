package repository

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/complaint/dto"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/apperror"
	"anoa.com/hostelhub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComplaintRepository interface {
	Create(ctx context.Context, complaint *entity.Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Complaint, error)
	FindAll(ctx context.Context, scope policy.Predicate, filter dto.ComplaintFilter) ([]entity.Complaint, error)
	FindByIDs(ctx context.Context, scope policy.Predicate, ids []uuid.UUID) ([]entity.Complaint, error)
	SearchText(ctx context.Context, scope policy.Predicate, query string, limit int) ([]entity.Complaint, error)
	Recent(ctx context.Context, scope policy.Predicate, limit int) ([]entity.Complaint, error)
	Statuses(ctx context.Context, scope policy.Predicate) ([]string, error)
	// Transition writes the workflow fields only while the stored status is
	// still from. Otherwise nothing changes and ErrConflict is returned.
	Transition(ctx context.Context, complaint *entity.Complaint, from string) error
	SetImage(ctx context.Context, id uuid.UUID, url string) error
	// Withdraw deletes a complaint that is still Pending, ErrConflict otherwise.
	Withdraw(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type complaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) scoped(ctx context.Context, scope policy.Predicate) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entity.Complaint{}).
		Scopes(scope.Owned("student_id"))
}

func (r *complaintRepository) Create(ctx context.Context, complaint *entity.Complaint) error {
	return database.Translate(r.db.WithContext(ctx).Omit("Student").Create(complaint).Error, "complaint")
}

func (r *complaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Complaint, error) {
	var complaint entity.Complaint
	err := r.db.WithContext(ctx).
		Preload("Student.User").
		First(&complaint, "id = ?", id).Error
	if err != nil {
		return nil, database.Translate(err, "complaint")
	}
	return &complaint, nil
}

func (r *complaintRepository) FindAll(ctx context.Context, scope policy.Predicate, filter dto.ComplaintFilter) ([]entity.Complaint, error) {
	query := r.scoped(ctx, scope).Preload("Student.User")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.HostelBlock != "" {
		block := r.db.Session(&gorm.Session{NewDB: true}).
			Model(&entity.StudentProfile{}).
			Select("id").
			Where("hostel_block = ?", filter.HostelBlock)
		query = query.Where("student_id IN (?)", block)
	}

	var complaints []entity.Complaint
	if err := query.Order("created_at desc").Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}

// FindByIDs loads the given complaints in scope, keeping the order of ids.
func (r *complaintRepository) FindByIDs(ctx context.Context, scope policy.Predicate, ids []uuid.UUID) ([]entity.Complaint, error) {
	if len(ids) == 0 {
		return []entity.Complaint{}, nil
	}

	var found []entity.Complaint
	err := r.scoped(ctx, scope).
		Preload("Student.User").
		Where("id IN ?", ids).
		Find(&found).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entity.Complaint, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	ordered := make([]entity.Complaint, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

func (r *complaintRepository) SearchText(ctx context.Context, scope policy.Predicate, query string, limit int) ([]entity.Complaint, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var complaints []entity.Complaint
	err := r.scoped(ctx, scope).
		Preload("Student.User").
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like).
		Order("created_at desc").
		Limit(limit).
		Find(&complaints).Error
	return complaints, err
}

func (r *complaintRepository) Recent(ctx context.Context, scope policy.Predicate, limit int) ([]entity.Complaint, error) {
	var complaints []entity.Complaint
	err := r.scoped(ctx, scope).
		Preload("Student.User").
		Order("created_at desc").
		Limit(limit).
		Find(&complaints).Error
	return complaints, err
}

func (r *complaintRepository) Statuses(ctx context.Context, scope policy.Predicate) ([]string, error) {
	var statuses []string
	err := r.scoped(ctx, scope).Pluck("status", &statuses).Error
	return statuses, err
}

func (r *complaintRepository) Transition(ctx context.Context, complaint *entity.Complaint, from string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Complaint{}).
		Where("id = ? AND status = ?", complaint.ID, from).
		Updates(map[string]interface{}{
			"status":       complaint.Status,
			"resolution":   complaint.Resolution,
			"assigned_to":  complaint.AssignedTo,
			"responded_by": complaint.RespondedBy,
			"responded_at": complaint.RespondedAt,
		})
	if result.Error != nil {
		return database.Translate(result.Error, "complaint")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("complaint is no longer %s: %w", from, apperror.ErrConflict)
	}
	return nil
}

func (r *complaintRepository) SetImage(ctx context.Context, id uuid.UUID, url string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Complaint{}).
		Where("id = ?", id).
		Update("image_url", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("complaint not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (r *complaintRepository) Withdraw(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, entity.TicketPending).
		Delete(&entity.Complaint{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("cannot delete a ticket that is already being processed: %w", apperror.ErrConflict)
	}
	return nil
}

func (r *complaintRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Complaint{}, "id = ?", id).Error
}
