package attendance

import (
	"context"
	"fmt"
	"time"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/attendance/dto"
	"anoa.com/hostelhub/internal/modules/attendance/repository"
	studentRepo "anoa.com/hostelhub/internal/modules/student/repository"
	"anoa.com/hostelhub/internal/observability"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/internal/report"
	"anoa.com/hostelhub/pkg/apperror"
	commonDto "anoa.com/hostelhub/pkg/dto"
	"anoa.com/hostelhub/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AttendanceService interface {
	GetAll(ctx context.Context, id policy.Identity, filter dto.AttendanceFilter) ([]entity.Attendance, error)
	GetStudentRecords(ctx context.Context, id policy.Identity, studentID uuid.UUID, month commonDto.MonthFilter) ([]entity.Attendance, error)
	GetMine(ctx context.Context, id policy.Identity, month commonDto.MonthFilter) ([]entity.Attendance, error)
	// Mark returns the written record and whether it was newly created.
	Mark(ctx context.Context, id policy.Identity, req dto.MarkAttendanceRequest) (*entity.Attendance, bool, error)
	BulkMark(ctx context.Context, id policy.Identity, req dto.BulkMarkRequest) (*dto.BulkMarkResponse, error)
	Stats(ctx context.Context, id policy.Identity, month commonDto.MonthFilter) (*report.AttendanceSummary, error)
}

type attendanceService struct {
	repo     repository.AttendanceRepository
	students studentRepo.StudentRepository
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewAttendanceService(repo repository.AttendanceRepository, students studentRepo.StudentRepository, metrics *observability.Metrics) AttendanceService {
	return &attendanceService{
		repo:     repo,
		students: students,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (s *attendanceService) GetAll(ctx context.Context, id policy.Identity, filter dto.AttendanceFilter) ([]entity.Attendance, error) {
	if err := staffOnly(id); err != nil {
		return nil, err
	}
	scope, err := policy.Scope(id, policy.KindAttendance)
	if err != nil {
		return nil, err
	}

	var date *time.Time
	if filter.Date != "" {
		d, err := commonDto.ParseDate(filter.Date)
		if err != nil {
			return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", apperror.ErrInvalidInput)
		}
		date = &d
	}

	return s.repo.FindAll(ctx, scope, date, filter.HostelBlock)
}

func (s *attendanceService) GetStudentRecords(ctx context.Context, id policy.Identity, studentID uuid.UUID, month commonDto.MonthFilter) ([]entity.Attendance, error) {
	scope, err := policy.Scope(id, policy.KindAttendance)
	if err != nil {
		return nil, err
	}

	profile, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := scope.Check(profile.ID, profile.HostelBlock); err != nil {
		return nil, err
	}

	return s.records(ctx, profile.ID, month)
}

func (s *attendanceService) GetMine(ctx context.Context, id policy.Identity, month commonDto.MonthFilter) ([]entity.Attendance, error) {
	if id.StudentID == nil {
		return nil, fmt.Errorf("student profile not found: %w", apperror.ErrForbidden)
	}
	return s.records(ctx, *id.StudentID, month)
}

// records without a month filter returns the full history.
func (s *attendanceService) records(ctx context.Context, studentID uuid.UUID, month commonDto.MonthFilter) ([]entity.Attendance, error) {
	if month.IsZero() {
		return s.repo.FindByStudent(ctx, studentID, nil, nil)
	}
	from, to := month.Range(s.now())
	return s.repo.FindByStudent(ctx, studentID, &from, &to)
}

func (s *attendanceService) Mark(ctx context.Context, id policy.Identity, req dto.MarkAttendanceRequest) (*entity.Attendance, bool, error) {
	date, err := s.prepare(ctx, id, req.Date, []uuid.UUID{req.StudentID})
	if err != nil {
		return nil, false, err
	}

	record := &entity.Attendance{
		StudentID: req.StudentID,
		Date:      date,
		Status:    req.Status,
		TimeIn:    req.TimeIn,
		TimeOut:   req.TimeOut,
		Remarks:   sanitize.Optional(req.Remarks),
		MarkedBy:  id.UserID,
	}

	created, err := s.repo.Upsert(ctx, []*entity.Attendance{record})
	if err != nil {
		return nil, false, err
	}
	s.metrics.AttendanceWritten(record.Status)

	return record, created[0], nil
}

func (s *attendanceService) BulkMark(ctx context.Context, id policy.Identity, req dto.BulkMarkRequest) (*dto.BulkMarkResponse, error) {
	ids := make([]uuid.UUID, 0, len(req.Records))
	seen := make(map[uuid.UUID]bool, len(req.Records))
	for _, r := range req.Records {
		if seen[r.StudentID] {
			return nil, fmt.Errorf("student %s listed more than once: %w", r.StudentID, apperror.ErrInvalidInput)
		}
		seen[r.StudentID] = true
		ids = append(ids, r.StudentID)
	}

	date, err := s.prepare(ctx, id, req.Date, ids)
	if err != nil {
		return nil, err
	}

	records := make([]*entity.Attendance, 0, len(req.Records))
	for _, r := range req.Records {
		records = append(records, &entity.Attendance{
			StudentID: r.StudentID,
			Date:      date,
			Status:    r.Status,
			TimeIn:    r.TimeIn,
			TimeOut:   r.TimeOut,
			Remarks:   sanitize.Optional(r.Remarks),
			MarkedBy:  id.UserID,
		})
	}

	if _, err := s.repo.Upsert(ctx, records); err != nil {
		return nil, err
	}
	for _, r := range records {
		s.metrics.AttendanceWritten(r.Status)
	}

	logrus.WithFields(logrus.Fields{
		"marked_by": id.UserID,
		"date":      req.Date,
		"count":     len(records),
	}).Info("attendance bulk marked")

	return &dto.BulkMarkResponse{
		Message: "Attendance marked successfully",
		Count:   len(records),
	}, nil
}

// prepare checks that the caller may write attendance for every student and
// parses the calendar day.
func (s *attendanceService) prepare(ctx context.Context, id policy.Identity, day string, studentIDs []uuid.UUID) (time.Time, error) {
	if err := staffOnly(id); err != nil {
		return time.Time{}, err
	}
	scope, err := policy.Scope(id, policy.KindAttendance)
	if err != nil {
		return time.Time{}, err
	}

	date, err := commonDto.ParseDate(day)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", apperror.ErrInvalidInput)
	}

	for _, studentID := range studentIDs {
		profile, err := s.students.FindByID(ctx, studentID)
		if err != nil {
			return time.Time{}, err
		}
		if err := scope.Check(profile.ID, profile.HostelBlock); err != nil {
			return time.Time{}, err
		}
	}
	return date, nil
}

func (s *attendanceService) Stats(ctx context.Context, id policy.Identity, month commonDto.MonthFilter) (*report.AttendanceSummary, error) {
	if err := staffOnly(id); err != nil {
		return nil, err
	}
	scope, err := policy.Scope(id, policy.KindAttendance)
	if err != nil {
		return nil, err
	}

	from, to := month.Range(s.now())
	records, err := s.repo.InRange(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}
	total, err := s.students.Count(ctx, scope)
	if err != nil {
		return nil, err
	}

	summary := report.SummarizeAttendance(records, int(total))
	return &summary, nil
}

func staffOnly(id policy.Identity) error {
	if !id.IsStaff() {
		return fmt.Errorf("only wardens and admins manage attendance: %w", apperror.ErrForbidden)
	}
	return nil
}
