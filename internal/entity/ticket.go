package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TicketPending    = "Pending"
	TicketInProgress = "In Progress"
	TicketResolved   = "Resolved"
	TicketRejected   = "Rejected"
)

var ComplaintCategories = []string{"Housekeeping", "Internet", "Plumbing", "Electrical", "Furniture", "Security", "Mess", "Other"}

var SuggestionCategories = []string{"Facilities", "Food", "Academics", "Events", "Rules", "Other"}

type Complaint struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"student_id"`
	Student     *StudentProfile `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Category    string          `gorm:"size:30;not null;index" json:"category"`
	Status      string          `gorm:"size:20;not null;default:Pending;index" json:"status"`
	Resolution  *string         `gorm:"type:text" json:"resolution,omitempty"`
	ImageURL    *string         `gorm:"type:text" json:"image_url,omitempty"`
	AssignedTo  *uuid.UUID      `gorm:"type:uuid" json:"assigned_to,omitempty"`
	RespondedBy *uuid.UUID      `gorm:"type:uuid" json:"responded_by,omitempty"`
	RespondedAt *time.Time      `json:"responded_at,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	if c.Status == "" {
		c.Status = TicketPending
	}
	return
}

type Suggestion struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"student_id"`
	Student     *StudentProfile     `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Title       string              `gorm:"size:200;not null" json:"title"`
	Description string              `gorm:"type:text;not null" json:"description"`
	Category    string              `gorm:"size:30;not null" json:"category"`
	Status      string              `gorm:"size:20;not null;default:Pending;index" json:"status"`
	Response    *string             `gorm:"type:text" json:"response,omitempty"`
	RespondedBy *uuid.UUID          `gorm:"type:uuid" json:"responded_by,omitempty"`
	RespondedAt *time.Time          `json:"responded_at,omitempty"`
	Comments    []SuggestionComment `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CreatedAt   time.Time           `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Suggestion) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	if s.Status == "" {
		s.Status = TicketPending
	}
	return
}

type SuggestionComment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SuggestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"suggestion_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *SuggestionComment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
