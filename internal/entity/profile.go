package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudentProfile is the owner of every student-scoped record.
type StudentProfile struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User          *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RollNumber    string     `gorm:"size:50;uniqueIndex;not null" json:"roll_number"`
	Course        string     `gorm:"size:100" json:"course"`
	Year          int        `json:"year"`
	HostelBlock   string     `gorm:"size:20;index;not null" json:"hostel_block"`
	RoomNumber    string     `gorm:"size:20;not null" json:"room_number"`
	ContactNumber string     `gorm:"size:30" json:"contact_number"`
	ParentName    string     `gorm:"size:100" json:"parent_name"`
	ParentContact string     `gorm:"size:30" json:"parent_contact"`
	Address       string     `gorm:"type:text" json:"address"`
	DateOfBirth   *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	BloodGroup    string     `gorm:"size:5" json:"blood_group"`
	Status        string     `gorm:"size:20;not null;default:Active" json:"status"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *StudentProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	return
}

type WardenProfile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User          *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	HostelBlock   string    `gorm:"size:20;index;not null" json:"hostel_block"`
	ContactNumber string    `gorm:"size:30" json:"contact_number"`
	Status        string    `gorm:"size:20;not null;default:Active" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *WardenProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	return
}
