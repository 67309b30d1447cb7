package repository

import (
	"context"
	"fmt"
	"time"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/suggestion/dto"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/apperror"
	"anoa.com/hostelhub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *entity.Suggestion) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Suggestion, error)
	FindAll(ctx context.Context, scope policy.Predicate, filter dto.SuggestionFilter) ([]entity.Suggestion, error)
	FindByStatuses(ctx context.Context, scope policy.Predicate, statuses []string) ([]entity.Suggestion, error)
	CountByStatuses(ctx context.Context, scope policy.Predicate, statuses []string) (int64, error)
	Recent(ctx context.Context, scope policy.Predicate, limit int) ([]entity.Suggestion, error)
	// Transition writes status and responder only while the stored status is
	// still from. Otherwise nothing changes and ErrConflict is returned.
	Transition(ctx context.Context, suggestion *entity.Suggestion, from string) error
	SetResponse(ctx context.Context, id uuid.UUID, response string, by uuid.UUID, at time.Time) error
	AddComment(ctx context.Context, comment *entity.SuggestionComment) error
	// Withdraw deletes a suggestion that is still Pending, ErrConflict otherwise.
	Withdraw(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type suggestionRepository struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) SuggestionRepository {
	return &suggestionRepository{db: db}
}

func (r *suggestionRepository) scoped(ctx context.Context, scope policy.Predicate) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entity.Suggestion{}).
		Scopes(scope.Owned("student_id"))
}

func (r *suggestionRepository) Create(ctx context.Context, suggestion *entity.Suggestion) error {
	return database.Translate(r.db.WithContext(ctx).Omit("Student", "Comments").Create(suggestion).Error, "suggestion")
}

func (r *suggestionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Suggestion, error) {
	var suggestion entity.Suggestion
	err := r.db.WithContext(ctx).
		Preload("Student.User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Preload("Comments.User").
		First(&suggestion, "id = ?", id).Error
	if err != nil {
		return nil, database.Translate(err, "suggestion")
	}
	return &suggestion, nil
}

func (r *suggestionRepository) FindAll(ctx context.Context, scope policy.Predicate, filter dto.SuggestionFilter) ([]entity.Suggestion, error) {
	query := r.scoped(ctx, scope).Preload("Student.User")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var suggestions []entity.Suggestion
	if err := query.Order("created_at desc").Find(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (r *suggestionRepository) FindByStatuses(ctx context.Context, scope policy.Predicate, statuses []string) ([]entity.Suggestion, error) {
	var suggestions []entity.Suggestion
	err := r.scoped(ctx, scope).
		Preload("Student.User").
		Where("status IN ?", statuses).
		Order("created_at desc").
		Find(&suggestions).Error
	return suggestions, err
}

func (r *suggestionRepository) CountByStatuses(ctx context.Context, scope policy.Predicate, statuses []string) (int64, error) {
	var count int64
	err := r.scoped(ctx, scope).Where("status IN ?", statuses).Count(&count).Error
	return count, err
}

func (r *suggestionRepository) Recent(ctx context.Context, scope policy.Predicate, limit int) ([]entity.Suggestion, error) {
	var suggestions []entity.Suggestion
	err := r.scoped(ctx, scope).
		Preload("Student.User").
		Order("created_at desc").
		Limit(limit).
		Find(&suggestions).Error
	return suggestions, err
}

func (r *suggestionRepository) Transition(ctx context.Context, suggestion *entity.Suggestion, from string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Suggestion{}).
		Where("id = ? AND status = ?", suggestion.ID, from).
		Updates(map[string]interface{}{
			"status":       suggestion.Status,
			"responded_by": suggestion.RespondedBy,
			"responded_at": suggestion.RespondedAt,
		})
	if result.Error != nil {
		return database.Translate(result.Error, "suggestion")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("suggestion is no longer %s: %w", from, apperror.ErrConflict)
	}
	return nil
}

func (r *suggestionRepository) SetResponse(ctx context.Context, id uuid.UUID, response string, by uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Suggestion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"response":     response,
			"responded_by": by,
			"responded_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("suggestion not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (r *suggestionRepository) AddComment(ctx context.Context, comment *entity.SuggestionComment) error {
	return r.db.WithContext(ctx).Omit("User").Create(comment).Error
}

func (r *suggestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("suggestion_id = ?", id).Delete(&entity.SuggestionComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Suggestion{}, "id = ?", id).Error
	})
}

func (r *suggestionRepository) Withdraw(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("suggestion_id = ?", id).Delete(&entity.SuggestionComment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND status = ?", id, entity.TicketPending).Delete(&entity.Suggestion{})
		if result.Error != nil {
			return result.Error
		}
		// rolls the comment delete back as well
		if result.RowsAffected == 0 {
			return fmt.Errorf("cannot delete a ticket that is already being processed: %w", apperror.ErrConflict)
		}
		return nil
	})
}
