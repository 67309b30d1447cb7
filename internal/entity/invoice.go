package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvoicePending = "Pending"
	InvoicePaid    = "Paid"
	InvoiceOverdue = "Overdue"
)

type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"student_id"`
	Student       *StudentProfile `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	InvoiceNumber string          `gorm:"size:30;uniqueIndex;not null" json:"invoice_number"`
	Amount        float64         `gorm:"not null" json:"amount"`
	Items         []InvoiceItem   `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	IssueDate     time.Time       `gorm:"not null" json:"issue_date"`
	DueDate       time.Time       `gorm:"not null;index" json:"due_date"`
	Status        string          `gorm:"size:20;not null;default:Pending" json:"status"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
	PaymentMethod *string         `gorm:"size:30" json:"payment_method,omitempty"`
	TransactionID *string         `gorm:"size:64" json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	if i.Status == "" {
		i.Status = InvoicePending
	}
	return
}

// EffectiveStatus reports Overdue for unpaid invoices past their due date.
func (i *Invoice) EffectiveStatus(now time.Time) string {
	if i.Status != InvoicePaid && now.After(i.DueDate) {
		return InvoiceOverdue
	}
	return i.Status
}

type InvoiceItem struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Description string    `gorm:"size:200;not null" json:"description"`
	Amount      float64   `gorm:"not null" json:"amount"`
}
