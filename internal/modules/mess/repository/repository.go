package repository

import (
	"context"
	"errors"
	"sort"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessRepository interface {
	// Menu returns the stored days in weekday order.
	Menu(ctx context.Context) ([]entity.MessMenu, error)
	// SaveMenu upserts every day by name in one transaction.
	SaveMenu(ctx context.Context, days []entity.MessMenu) ([]entity.MessMenu, error)
	CreateFeedback(ctx context.Context, feedback *entity.MessFeedback) error
	FindFeedback(ctx context.Context, scope policy.Predicate) ([]entity.MessFeedback, error)
	FindFeedbackByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.MessFeedback, error)
}

type messRepository struct {
	db *gorm.DB
}

func NewMessRepository(db *gorm.DB) MessRepository {
	return &messRepository{db: db}
}

func (r *messRepository) Menu(ctx context.Context) ([]entity.MessMenu, error) {
	var menu []entity.MessMenu
	if err := r.db.WithContext(ctx).Find(&menu).Error; err != nil {
		return nil, err
	}

	order := make(map[string]int, len(entity.Weekdays))
	for i, d := range entity.Weekdays {
		order[d] = i
	}
	sort.SliceStable(menu, func(i, j int) bool {
		return order[menu[i].Day] < order[menu[j].Day]
	})
	return menu, nil
}

func (r *messRepository) SaveMenu(ctx context.Context, days []entity.MessMenu) ([]entity.MessMenu, error) {
	saved := make([]entity.MessMenu, 0, len(days))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, day := range days {
			var existing entity.MessMenu
			err := tx.Where("day = ?", day.Day).First(&existing).Error
			switch {
			case err == nil:
				existing.Breakfast = day.Breakfast
				existing.Lunch = day.Lunch
				existing.Dinner = day.Dinner
				if day.SpecialMenu != nil {
					existing.SpecialMenu = day.SpecialMenu
				}
				if day.Notes != nil {
					existing.Notes = day.Notes
				}
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				saved = append(saved, existing)

			case errors.Is(err, gorm.ErrRecordNotFound):
				created := day
				if err := tx.Create(&created).Error; err != nil {
					return database.Translate(err, "menu day")
				}
				saved = append(saved, created)

			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *messRepository) CreateFeedback(ctx context.Context, feedback *entity.MessFeedback) error {
	return r.db.WithContext(ctx).Omit("Student").Create(feedback).Error
}

func (r *messRepository) FindFeedback(ctx context.Context, scope policy.Predicate) ([]entity.MessFeedback, error) {
	var feedback []entity.MessFeedback
	err := r.db.WithContext(ctx).
		Model(&entity.MessFeedback{}).
		Scopes(scope.Owned("student_id")).
		Preload("Student.User").
		Order("date desc").
		Find(&feedback).Error
	return feedback, err
}

func (r *messRepository) FindFeedbackByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.MessFeedback, error) {
	var feedback []entity.MessFeedback
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date desc").
		Find(&feedback).Error
	return feedback, err
}
