package bootstrap

import (
	"context"

	"anoa.com/hostelhub/internal/entity"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.StudentProfile{},
		&entity.WardenProfile{},
		&entity.Complaint{},
		&entity.Suggestion{},
		&entity.SuggestionComment{},
		&entity.Attendance{},
		&entity.Invoice{},
		&entity.InvoiceItem{},
		&entity.MessMenu{},
		&entity.MessFeedback{},
		&entity.Notification{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Hostel administrator"},
		{Name: entity.RoleWarden, Description: "Block warden"},
		{Name: entity.RoleStudent, Description: "Resident student"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// AdminSeed holds the credentials of the bootstrap administrator.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

func SeedAdminUser(db *gorm.DB, seed AdminSeed) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", seed.Email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logrus.WithField("email", seed.Email).Debug("admin user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Name:         seed.Name,
		Email:        seed.Email,
		PasswordHash: string(hashed),
		RoleID:       &adminRole.ID,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logrus.WithField("email", seed.Email).Info("admin user seeded")
	return nil
}

func DefaultMessMenu() []entity.MessMenu {
	return []entity.MessMenu{
		{Day: "Monday", Breakfast: "Poha, Tea", Lunch: "Rice, Dal, Sabzi, Salad", Dinner: "Roti, Paneer Masala, Curd"},
		{Day: "Tuesday", Breakfast: "Sandwich, Milk, Fruits", Lunch: "Khichdi, Kadhi, Papad", Dinner: "Paratha, Butter, Pickle, Yogurt"},
		{Day: "Wednesday", Breakfast: "Idli, Sambar, Chutney", Lunch: "Jeera Rice, Rajma, Raita", Dinner: "Chole Bhature, Salad"},
		{Day: "Thursday", Breakfast: "Cornflakes, Milk, Toast", Lunch: "Fried Rice, Manchurian", Dinner: "Dal Tadka, Rice, Papad"},
		{Day: "Friday", Breakfast: "Paratha, Curd, Pickle", Lunch: "Biryani, Raita", Dinner: "Roti, Mix Veg, Dal"},
		{Day: "Saturday", Breakfast: "Dosa, Chutney, Sambar", Lunch: "Pulao, Chana Masala", Dinner: "Pav Bhaji, Buttermilk"},
		{Day: "Sunday", Breakfast: "Pancakes, Honey, Fruits", Lunch: "Thali (Roti, Rice, 3 Sabzis, Dessert)", Dinner: "Sandwich, Soup"},
	}
}

// SeedMessMenu inserts the default weekly menu when the table is empty.
func SeedMessMenu(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.MessMenu{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	menu := DefaultMessMenu()
	if err := db.WithContext(ctx).Create(&menu).Error; err != nil {
		return err
	}

	logrus.Info("default mess menu seeded")
	return nil
}
