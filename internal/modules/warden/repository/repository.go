package repository

import (
	"context"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WardenRepository interface {
	Create(ctx context.Context, user *entity.User, profile *entity.WardenProfile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.WardenProfile, error)
	FindAll(ctx context.Context) ([]entity.WardenProfile, error)
	Update(ctx context.Context, user *entity.User, profile *entity.WardenProfile) error
	Delete(ctx context.Context, profile *entity.WardenProfile) error
}

type wardenRepository struct {
	db *gorm.DB
}

func NewWardenRepository(db *gorm.DB) WardenRepository {
	return &wardenRepository{db: db}
}

func (r *wardenRepository) Create(ctx context.Context, user *entity.User, profile *entity.WardenProfile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
	return database.Translate(err, "warden")
}

func (r *wardenRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.WardenProfile, error) {
	var profile entity.WardenProfile
	if err := r.db.WithContext(ctx).Preload("User.Role").First(&profile, "id = ?", id).Error; err != nil {
		return nil, database.Translate(err, "warden")
	}
	return &profile, nil
}

func (r *wardenRepository) FindAll(ctx context.Context) ([]entity.WardenProfile, error) {
	var profiles []entity.WardenProfile
	err := r.db.WithContext(ctx).
		Preload("User.Role").
		Order("hostel_block").
		Find(&profiles).Error
	return profiles, err
}

func (r *wardenRepository) Update(ctx context.Context, user *entity.User, profile *entity.WardenProfile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Role", "StudentProfile", "WardenProfile").Save(user).Error; err != nil {
			return err
		}
		return tx.Omit("User").Save(profile).Error
	})
	return database.Translate(err, "warden")
}

func (r *wardenRepository) Delete(ctx context.Context, profile *entity.WardenProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", profile.UserID).Delete(&entity.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", profile.UserID).Delete(&entity.SuggestionComment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entity.WardenProfile{}, "id = ?", profile.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.User{}, "id = ?", profile.UserID).Error
	})
}
