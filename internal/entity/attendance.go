package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AttendancePresent = "Present"
	AttendanceAbsent  = "Absent"
	AttendanceLate    = "Late"
	AttendanceWeekend = "Weekend"
	AttendanceHoliday = "Holiday"
)

// Attendance holds one record per student per calendar day.
type Attendance struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_student_date,priority:1" json:"student_id"`
	Student   *StudentProfile `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Date      time.Time       `gorm:"type:date;not null;uniqueIndex:idx_attendance_student_date,priority:2;index" json:"date"`
	Status    string          `gorm:"size:20;not null" json:"status"`
	TimeIn    *string         `gorm:"size:10" json:"time_in,omitempty"`
	TimeOut   *string         `gorm:"size:10" json:"time_out,omitempty"`
	MarkedBy  uuid.UUID       `gorm:"type:uuid;not null" json:"marked_by"`
	Remarks   *string         `gorm:"type:text" json:"remarks,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Attendance) TableName() string {
	return "attendance"
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
