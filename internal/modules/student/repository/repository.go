package repository

import (
	"context"
	"strings"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/student/dto"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentRepository interface {
	Create(ctx context.Context, user *entity.User, profile *entity.StudentProfile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.StudentProfile, error)
	FindAll(ctx context.Context, scope policy.Predicate, filter dto.StudentFilter) ([]entity.StudentProfile, error)
	Count(ctx context.Context, scope policy.Predicate) (int64, error)
	RollNumberTaken(ctx context.Context, rollNumber string, except *uuid.UUID) (bool, error)
	Update(ctx context.Context, user *entity.User, profile *entity.StudentProfile) error
	Delete(ctx context.Context, profile *entity.StudentProfile) error
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, user *entity.User, profile *entity.StudentProfile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
	return database.Translate(err, "student")
}

func (r *studentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.StudentProfile, error) {
	var profile entity.StudentProfile
	err := r.db.WithContext(ctx).
		Preload("User.Role").
		First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, database.Translate(err, "student")
	}
	return &profile, nil
}

func (r *studentRepository) FindAll(ctx context.Context, scope policy.Predicate, filter dto.StudentFilter) ([]entity.StudentProfile, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.StudentProfile{}).
		Scopes(scope.Profiles()).
		Preload("User.Role")

	if filter.HostelBlock != "" {
		query = query.Where("student_profiles.hostel_block = ?", filter.HostelBlock)
	}
	if filter.Status != "" {
		query = query.Where("student_profiles.status = ?", filter.Status)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		names := r.db.Session(&gorm.Session{NewDB: true}).
			Model(&entity.User{}).
			Select("id").
			Where("LOWER(name) LIKE ?", like)
		query = query.Where("LOWER(student_profiles.roll_number) LIKE ? OR student_profiles.user_id IN (?)", like, names)
	}

	var profiles []entity.StudentProfile
	if err := query.Order("student_profiles.hostel_block, student_profiles.room_number").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *studentRepository) Count(ctx context.Context, scope policy.Predicate) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.StudentProfile{}).
		Scopes(scope.Profiles()).
		Where("student_profiles.status = ?", entity.StatusActive).
		Count(&count).Error
	return count, err
}

func (r *studentRepository) RollNumberTaken(ctx context.Context, rollNumber string, except *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.StudentProfile{}).Where("roll_number = ?", rollNumber)
	if except != nil {
		query = query.Where("id <> ?", *except)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *studentRepository) Update(ctx context.Context, user *entity.User, profile *entity.StudentProfile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Role", "StudentProfile", "WardenProfile").Save(user).Error; err != nil {
			return err
		}
		return tx.Omit("User").Save(profile).Error
	})
	return database.Translate(err, "student")
}

// Delete removes the profile, its user and every record the student owns.
func (r *studentRepository) Delete(ctx context.Context, profile *entity.StudentProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		suggestions := tx.Session(&gorm.Session{NewDB: true}).
			Model(&entity.Suggestion{}).Select("id").Where("student_id = ?", profile.ID)
		if err := tx.Where("suggestion_id IN (?)", suggestions).Delete(&entity.SuggestionComment{}).Error; err != nil {
			return err
		}

		invoices := tx.Session(&gorm.Session{NewDB: true}).
			Model(&entity.Invoice{}).Select("id").Where("student_id = ?", profile.ID)
		if err := tx.Where("invoice_id IN (?)", invoices).Delete(&entity.InvoiceItem{}).Error; err != nil {
			return err
		}

		owned := []interface{}{
			&entity.Complaint{}, &entity.Suggestion{}, &entity.Attendance{},
			&entity.Invoice{}, &entity.MessFeedback{},
		}
		for _, model := range owned {
			if err := tx.Where("student_id = ?", profile.ID).Delete(model).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", profile.UserID).Delete(&entity.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", profile.UserID).Delete(&entity.SuggestionComment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entity.StudentProfile{}, "id = ?", profile.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.User{}, "id = ?", profile.UserID).Error
	})
}
