// Package testutil opens throwaway databases and builds fixtures for tests.
package testutil

import (
	"testing"

	"anoa.com/hostelhub/internal/bootstrap"
	"anoa.com/hostelhub/internal/entity"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const Password = "secret123"

// NewDB returns a migrated in-memory sqlite database with roles seeded.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		t.Fatalf("failed to seed roles: %v", err)
	}

	return db
}

// NewRedis returns a client backed by miniredis.
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func hash(t testing.TB) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(h)
}

func role(t testing.TB, db *gorm.DB, name string) *uint {
	t.Helper()
	var r entity.Role
	if err := db.Where("name = ?", name).First(&r).Error; err != nil {
		t.Fatalf("role %s missing: %v", name, err)
	}
	return &r.ID
}

// CreateAdmin inserts an admin user.
func CreateAdmin(t testing.TB, db *gorm.DB, email string) *entity.User {
	t.Helper()

	user := &entity.User{Name: "Admin", Email: email, PasswordHash: hash(t), RoleID: role(t, db, entity.RoleAdmin)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	return reload(t, db, user)
}

// CreateStudent inserts a student user with its profile.
func CreateStudent(t testing.TB, db *gorm.DB, email, rollNumber, block string) *entity.User {
	t.Helper()

	user := &entity.User{Name: "Student " + rollNumber, Email: email, PasswordHash: hash(t), RoleID: role(t, db, entity.RoleStudent)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create student user: %v", err)
	}

	profile := &entity.StudentProfile{UserID: user.ID, RollNumber: rollNumber, HostelBlock: block, RoomNumber: "101"}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create student profile: %v", err)
	}
	return reload(t, db, user)
}

// CreateWarden inserts a warden user with its profile.
func CreateWarden(t testing.TB, db *gorm.DB, email, block string) *entity.User {
	t.Helper()

	user := &entity.User{Name: "Warden " + block, Email: email, PasswordHash: hash(t), RoleID: role(t, db, entity.RoleWarden)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create warden user: %v", err)
	}

	profile := &entity.WardenProfile{UserID: user.ID, HostelBlock: block}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create warden profile: %v", err)
	}
	return reload(t, db, user)
}

func reload(t testing.TB, db *gorm.DB, user *entity.User) *entity.User {
	t.Helper()

	var out entity.User
	err := db.Preload("Role").Preload("StudentProfile").Preload("WardenProfile").
		First(&out, "id = ?", user.ID).Error
	if err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return &out
}
