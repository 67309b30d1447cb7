package dto

import "github.com/google/uuid"

type MarkAttendanceRequest struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
	Date      string    `json:"date" binding:"required,datetime=2006-01-02"`
	Status    string    `json:"status" binding:"required,oneof=Present Absent Late Weekend Holiday"`
	TimeIn    *string   `json:"time_in" binding:"omitempty,max=10"`
	TimeOut   *string   `json:"time_out" binding:"omitempty,max=10"`
	Remarks   *string   `json:"remarks" binding:"omitempty,max=500"`
}

type BulkRecord struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
	Status    string    `json:"status" binding:"required,oneof=Present Absent Late Weekend Holiday"`
	TimeIn    *string   `json:"time_in" binding:"omitempty,max=10"`
	TimeOut   *string   `json:"time_out" binding:"omitempty,max=10"`
	Remarks   *string   `json:"remarks" binding:"omitempty,max=500"`
}

type BulkMarkRequest struct {
	Date    string       `json:"date" binding:"required,datetime=2006-01-02"`
	Records []BulkRecord `json:"records" binding:"required,min=1,dive"`
}

type BulkMarkResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type AttendanceFilter struct {
	Date        string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	HostelBlock string `form:"hostel_block"`
}
