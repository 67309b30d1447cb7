package dto

import "github.com/google/uuid"

type InvoiceItemRequest struct {
	Description string  `json:"description" binding:"required,max=200"`
	Amount      float64 `json:"amount" binding:"gt=0"`
}

// CreateInvoiceRequest takes the amount from the items when Amount is omitted.
type CreateInvoiceRequest struct {
	StudentID uuid.UUID            `json:"student_id" binding:"required"`
	Amount    *float64             `json:"amount" binding:"omitempty,gt=0"`
	DueDate   string               `json:"due_date" binding:"required,datetime=2006-01-02"`
	Items     []InvoiceItemRequest `json:"items" binding:"omitempty,dive"`
}

type UpdateStatusRequest struct {
	Status        string  `json:"status" binding:"required,oneof=Pending Paid"`
	PaymentDate   *string `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	PaymentMethod *string `json:"payment_method" binding:"omitempty,max=30"`
}

type InvoiceFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=Pending Paid Overdue"`
}
