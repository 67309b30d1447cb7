package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type MessMenu struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Day         string    `gorm:"size:10;uniqueIndex;not null" json:"day"`
	Breakfast   string    `gorm:"type:text;not null" json:"breakfast"`
	Lunch       string    `gorm:"type:text;not null" json:"lunch"`
	Dinner      string    `gorm:"type:text;not null" json:"dinner"`
	SpecialMenu *string   `gorm:"type:text" json:"special_menu,omitempty"`
	Notes       *string   `gorm:"type:text" json:"notes,omitempty"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *MessMenu) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

type MessFeedback struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"student_id"`
	Student   *StudentProfile `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Rating    *int            `json:"rating,omitempty"`
	Feedback  string          `gorm:"type:text;not null" json:"feedback"`
	Date      time.Time       `gorm:"not null" json:"date"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (f *MessFeedback) TableName() string {
	return "mess_feedback"
}

func (f *MessFeedback) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	if f.Date.IsZero() {
		f.Date = time.Now()
	}
	return
}
