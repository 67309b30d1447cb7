package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	RoleAdmin   = "admin"
	RoleWarden  = "warden"
	RoleStudent = "student"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

type User struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Email          string          `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash   string          `gorm:"size:255;not null" json:"-"`
	RoleID         *uint           `json:"role_id"`
	Role           Role            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`
	Status         string          `gorm:"size:20;not null;default:Active" json:"status"`
	StudentProfile *StudentProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"student_profile,omitempty"`
	WardenProfile  *WardenProfile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"warden_profile,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return
}
