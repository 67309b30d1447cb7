package dto

import "anoa.com/hostelhub/internal/report"

type AdminStats struct {
	TotalStudents      int64          `json:"total_students"`
	TotalWardens       int64          `json:"total_wardens"`
	PendingComplaints  int            `json:"pending_complaints"`
	SuggestionsCount   int64          `json:"suggestions_count"`
	ComplaintsByStatus map[string]int `json:"complaints_by_status"`
}

type AdminDashboard struct {
	Stats            AdminStats        `json:"stats"`
	RecentActivities []report.Activity `json:"recent_activities"`
}

type WardenStats struct {
	TotalStudents      int64  `json:"total_students"`
	PendingComplaints  int    `json:"pending_complaints"`
	PendingSuggestions int64  `json:"pending_suggestions"`
	HostelBlock        string `json:"hostel_block"`
}

type WardenDashboard struct {
	Stats            WardenStats       `json:"stats"`
	RecentActivities []report.Activity `json:"recent_activities"`
}

type StudentStats struct {
	StudentName          string  `json:"student_name"`
	RollNumber           string  `json:"roll_number"`
	RoomNumber           string  `json:"room_number"`
	HostelBlock          string  `json:"hostel_block"`
	PendingComplaints    int     `json:"pending_complaints"`
	PendingInvoices      int64   `json:"pending_invoices"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

type StudentDashboard struct {
	Stats            StudentStats      `json:"stats"`
	RecentActivities []report.Activity `json:"recent_activities"`
}
