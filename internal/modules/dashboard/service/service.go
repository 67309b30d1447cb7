package service

import (
	"context"
	"fmt"
	"time"

	"anoa.com/hostelhub/internal/entity"
	attendanceRepo "anoa.com/hostelhub/internal/modules/attendance/repository"
	complaintRepo "anoa.com/hostelhub/internal/modules/complaint/repository"
	"anoa.com/hostelhub/internal/modules/dashboard/dto"
	invoiceRepo "anoa.com/hostelhub/internal/modules/invoice/repository"
	studentRepo "anoa.com/hostelhub/internal/modules/student/repository"
	suggestionRepo "anoa.com/hostelhub/internal/modules/suggestion/repository"
	userRepo "anoa.com/hostelhub/internal/modules/user/repository"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/internal/report"
	"anoa.com/hostelhub/pkg/apperror"
	commonDto "anoa.com/hostelhub/pkg/dto"
)

const (
	recentPerFeed = 5
	recentLimit   = 5
)

var allTicketStatuses = []string{entity.TicketPending, entity.TicketInProgress, entity.TicketResolved, entity.TicketRejected}

type DashboardService interface {
	Admin(ctx context.Context, id policy.Identity) (*dto.AdminDashboard, error)
	Warden(ctx context.Context, id policy.Identity) (*dto.WardenDashboard, error)
	Student(ctx context.Context, id policy.Identity) (*dto.StudentDashboard, error)
}

// Repositories groups the read models the dashboards aggregate over.
type Repositories struct {
	Users       userRepo.UserRepository
	Students    studentRepo.StudentRepository
	Complaints  complaintRepo.ComplaintRepository
	Suggestions suggestionRepo.SuggestionRepository
	Invoices    invoiceRepo.InvoiceRepository
	Attendance  attendanceRepo.AttendanceRepository
}

type dashboardService struct {
	repos Repositories
	now   func() time.Time
}

func NewDashboardService(repos Repositories) DashboardService {
	return &dashboardService{
		repos: repos,
		now:   time.Now,
	}
}

func (s *dashboardService) Admin(ctx context.Context, id policy.Identity) (*dto.AdminDashboard, error) {
	if !id.IsAdmin() {
		return nil, fmt.Errorf("admin dashboard: %w", apperror.ErrForbidden)
	}
	all := policy.Predicate{All: true}

	students, err := s.repos.Students.Count(ctx, all)
	if err != nil {
		return nil, err
	}
	wardens, err := s.repos.Users.CountByRole(ctx, entity.RoleWarden)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.complaintStatuses(ctx, all)
	if err != nil {
		return nil, err
	}
	suggestions, err := s.repos.Suggestions.CountByStatuses(ctx, all, allTicketStatuses)
	if err != nil {
		return nil, err
	}
	recent, err := s.ticketFeed(ctx, all)
	if err != nil {
		return nil, err
	}

	return &dto.AdminDashboard{
		Stats: dto.AdminStats{
			TotalStudents:      students,
			TotalWardens:       wardens,
			PendingComplaints:  byStatus[entity.TicketPending],
			SuggestionsCount:   suggestions,
			ComplaintsByStatus: byStatus,
		},
		RecentActivities: recent,
	}, nil
}

func (s *dashboardService) Warden(ctx context.Context, id policy.Identity) (*dto.WardenDashboard, error) {
	if !id.IsWarden() {
		return nil, fmt.Errorf("warden dashboard: %w", apperror.ErrForbidden)
	}
	scope, err := policy.Scope(id, policy.KindComplaint)
	if err != nil {
		return nil, err
	}

	students, err := s.repos.Students.Count(ctx, scope)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.complaintStatuses(ctx, scope)
	if err != nil {
		return nil, err
	}
	suggestions, err := s.repos.Suggestions.CountByStatuses(ctx, scope, []string{entity.TicketPending})
	if err != nil {
		return nil, err
	}
	recent, err := s.ticketFeed(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &dto.WardenDashboard{
		Stats: dto.WardenStats{
			TotalStudents:      students,
			PendingComplaints:  byStatus[entity.TicketPending],
			PendingSuggestions: suggestions,
			HostelBlock:        id.HostelBlock,
		},
		RecentActivities: recent,
	}, nil
}

func (s *dashboardService) Student(ctx context.Context, id policy.Identity) (*dto.StudentDashboard, error) {
	if !id.IsStudent() {
		return nil, fmt.Errorf("student dashboard: %w", apperror.ErrForbidden)
	}
	scope, err := policy.Scope(id, policy.KindComplaint)
	if err != nil {
		return nil, err
	}

	profile, err := s.repos.Students.FindByID(ctx, *id.StudentID)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.complaintStatuses(ctx, scope)
	if err != nil {
		return nil, err
	}
	pendingInvoices, err := s.repos.Invoices.CountPending(ctx, scope)
	if err != nil {
		return nil, err
	}

	from, to := commonDto.MonthFilter{}.Range(s.now())
	records, err := s.repos.Attendance.FindByStudent(ctx, profile.ID, &from, &to)
	if err != nil {
		return nil, err
	}

	complaints, err := s.repos.Complaints.Recent(ctx, scope, recentPerFeed)
	if err != nil {
		return nil, err
	}
	invoices, err := s.repos.Invoices.Recent(ctx, scope, recentPerFeed)
	if err != nil {
		return nil, err
	}

	name := ""
	if profile.User != nil {
		name = profile.User.Name
	}

	return &dto.StudentDashboard{
		Stats: dto.StudentStats{
			StudentName:          name,
			RollNumber:           profile.RollNumber,
			RoomNumber:           profile.RoomNumber,
			HostelBlock:          profile.HostelBlock,
			PendingComplaints:    byStatus[entity.TicketPending],
			PendingInvoices:      pendingInvoices,
			AttendancePercentage: report.CountAttendance(records).Percentage(),
		},
		RecentActivities: report.MergeRecent(recentLimit, complaintActivities(complaints), s.invoiceActivities(invoices)),
	}, nil
}

func (s *dashboardService) complaintStatuses(ctx context.Context, scope policy.Predicate) (map[string]int, error) {
	statuses, err := s.repos.Complaints.Statuses(ctx, scope)
	if err != nil {
		return nil, err
	}
	return report.CountByStatus(statuses), nil
}

func (s *dashboardService) ticketFeed(ctx context.Context, scope policy.Predicate) ([]report.Activity, error) {
	complaints, err := s.repos.Complaints.Recent(ctx, scope, recentPerFeed)
	if err != nil {
		return nil, err
	}
	suggestions, err := s.repos.Suggestions.Recent(ctx, scope, recentPerFeed)
	if err != nil {
		return nil, err
	}
	return report.MergeRecent(recentLimit, complaintActivities(complaints), suggestionActivities(suggestions)), nil
}

func complaintActivities(complaints []entity.Complaint) []report.Activity {
	out := make([]report.Activity, 0, len(complaints))
	for _, c := range complaints {
		out = append(out, report.Activity{
			ID:        c.ID,
			Kind:      "complaint",
			Title:     "New complaint: " + c.Title,
			Status:    c.Status,
			Student:   studentName(c.Student),
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}

func suggestionActivities(suggestions []entity.Suggestion) []report.Activity {
	out := make([]report.Activity, 0, len(suggestions))
	for _, sg := range suggestions {
		out = append(out, report.Activity{
			ID:        sg.ID,
			Kind:      "suggestion",
			Title:     "New suggestion: " + sg.Title,
			Status:    sg.Status,
			Student:   studentName(sg.Student),
			CreatedAt: sg.CreatedAt,
		})
	}
	return out
}

func (s *dashboardService) invoiceActivities(invoices []entity.Invoice) []report.Activity {
	now := s.now()
	out := make([]report.Activity, 0, len(invoices))
	for _, inv := range invoices {
		status := inv.EffectiveStatus(now)
		out = append(out, report.Activity{
			ID:        inv.ID,
			Kind:      "invoice",
			Title:     fmt.Sprintf("Invoice %s: %s", inv.InvoiceNumber, status),
			Status:    status,
			CreatedAt: inv.CreatedAt,
		})
	}
	return out
}

func studentName(p *entity.StudentProfile) string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.Name
}
