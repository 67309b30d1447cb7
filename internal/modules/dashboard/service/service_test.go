package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/hostelhub/internal/entity"
	attendanceRepo "anoa.com/hostelhub/internal/modules/attendance/repository"
	complaintRepo "anoa.com/hostelhub/internal/modules/complaint/repository"
	"anoa.com/hostelhub/internal/modules/dashboard/service"
	invoiceRepo "anoa.com/hostelhub/internal/modules/invoice/repository"
	studentRepo "anoa.com/hostelhub/internal/modules/student/repository"
	suggestionRepo "anoa.com/hostelhub/internal/modules/suggestion/repository"
	userRepo "anoa.com/hostelhub/internal/modules/user/repository"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/internal/testutil"
	"anoa.com/hostelhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func complaint(t *testing.T, db *gorm.DB, studentID uuid.UUID, title, status string, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&entity.Complaint{
		StudentID: studentID, Title: title, Description: "d", Category: "Other", Status: status, CreatedAt: at,
	}).Error)
}

func TestDashboards(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := service.NewDashboardService(service.Repositories{
		Users:       userRepo.NewUserRepository(db),
		Students:    studentRepo.NewStudentRepository(db),
		Complaints:  complaintRepo.NewComplaintRepository(db),
		Suggestions: suggestionRepo.NewSuggestionRepository(db),
		Invoices:    invoiceRepo.NewInvoiceRepository(db),
		Attendance:  attendanceRepo.NewAttendanceRepository(db),
	})

	student := policy.NewIdentity(testutil.CreateStudent(t, db, "s@hostel.test", "A-1", "A"))
	blockB := policy.NewIdentity(testutil.CreateStudent(t, db, "b@hostel.test", "B-1", "B"))
	warden := policy.NewIdentity(testutil.CreateWarden(t, db, "wa@hostel.test", "A"))
	testutil.CreateWarden(t, db, "wb@hostel.test", "B")
	admin := policy.NewIdentity(testutil.CreateAdmin(t, db, "admin@hostel.test"))

	base := time.Now().UTC().Add(-time.Hour)
	complaint(t, db, *student.StudentID, "Leaky tap", entity.TicketPending, base)
	complaint(t, db, *student.StudentID, "Broken fan", entity.TicketResolved, base.Add(time.Minute))
	complaint(t, db, *blockB.StudentID, "No wifi", entity.TicketPending, base.Add(2*time.Minute))
	require.NoError(t, db.Create(&entity.Suggestion{
		StudentID: *student.StudentID, Title: "Gym", Description: "d", Category: "Facilities", Status: entity.TicketPending, CreatedAt: base.Add(3 * time.Minute),
	}).Error)
	require.NoError(t, db.Create(&entity.Invoice{
		StudentID: *student.StudentID, InvoiceNumber: "INV-2026-0001", Amount: 100,
		IssueDate: base, DueDate: base.AddDate(0, 0, 10), CreatedAt: base.Add(4 * time.Minute),
	}).Error)

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i, status := range []string{entity.AttendancePresent, entity.AttendanceAbsent} {
		require.NoError(t, db.Create(&entity.Attendance{
			StudentID: *student.StudentID, Date: today.AddDate(0, 0, -i), Status: status, MarkedBy: warden.UserID,
		}).Error)
	}

	t.Run("admin", func(t *testing.T) {
		d, err := svc.Admin(ctx, admin)
		require.NoError(t, err)
		assert.EqualValues(t, 2, d.Stats.TotalStudents)
		assert.EqualValues(t, 2, d.Stats.TotalWardens)
		assert.Equal(t, 2, d.Stats.PendingComplaints)
		assert.EqualValues(t, 1, d.Stats.SuggestionsCount)
		assert.Equal(t, map[string]int{entity.TicketPending: 2, entity.TicketResolved: 1}, d.Stats.ComplaintsByStatus)
		require.Len(t, d.RecentActivities, 4)
		assert.Equal(t, "New suggestion: Gym", d.RecentActivities[0].Title)
		assert.Equal(t, "Student A-1", d.RecentActivities[0].Student)

		_, err = svc.Admin(ctx, warden)
		assert.True(t, errors.Is(err, apperror.ErrForbidden))
	})

	t.Run("warden", func(t *testing.T) {
		d, err := svc.Warden(ctx, warden)
		require.NoError(t, err)
		assert.EqualValues(t, 1, d.Stats.TotalStudents)
		assert.Equal(t, 1, d.Stats.PendingComplaints)
		assert.EqualValues(t, 1, d.Stats.PendingSuggestions)
		assert.Equal(t, "A", d.Stats.HostelBlock)
		for _, a := range d.RecentActivities {
			assert.NotEqual(t, "New complaint: No wifi", a.Title)
		}
	})

	t.Run("student", func(t *testing.T) {
		d, err := svc.Student(ctx, student)
		require.NoError(t, err)
		assert.Equal(t, "Student A-1", d.Stats.StudentName)
		assert.Equal(t, "A", d.Stats.HostelBlock)
		assert.Equal(t, 1, d.Stats.PendingComplaints)
		assert.EqualValues(t, 1, d.Stats.PendingInvoices)
		require.Len(t, d.RecentActivities, 3)
		assert.Equal(t, "invoice", d.RecentActivities[0].Kind)

		// the absent day may fall in the previous month on the 1st
		if today.Day() > 1 {
			assert.Equal(t, 50.0, d.Stats.AttendancePercentage)
		} else {
			assert.Equal(t, 100.0, d.Stats.AttendancePercentage)
		}

		_, err = svc.Student(ctx, warden)
		assert.True(t, errors.Is(err, apperror.ErrForbidden))
	})
}
