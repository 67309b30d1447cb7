package repository

import (
	"context"
	"strings"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindRoleByName(ctx context.Context, name string) (*entity.Role, error)
	EmailTaken(ctx context.Context, email string, except *uuid.UUID) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) withProfiles(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Role").
		Preload("StudentProfile").
		Preload("WardenProfile")
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return database.Translate(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.withProfiles(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, database.Translate(err, "user")
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.withProfiles(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, database.Translate(err, "user")
	}
	return &user, nil
}

func (r *userRepository) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	var role entity.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, database.Translate(err, "role")
	}
	return &role, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, except *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	if except != nil {
		query = query.Where("id <> ?", *except)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", role).
		Count(&count).Error
	return count, err
}
