package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceRepository interface {
	// Upsert writes every record in one transaction and reports which were inserted.
	Upsert(ctx context.Context, records []*entity.Attendance) ([]bool, error)
	FindAll(ctx context.Context, scope policy.Predicate, date *time.Time, hostelBlock string) ([]entity.Attendance, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error)
	InRange(ctx context.Context, scope policy.Predicate, from, to time.Time) ([]entity.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Upsert(ctx context.Context, records []*entity.Attendance) ([]bool, error) {
	created := make([]bool, len(records))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, rec := range records {
			inserted, err := upsert(tx, rec)
			if err != nil {
				return err
			}
			created[i] = inserted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func upsert(tx *gorm.DB, rec *entity.Attendance) (bool, error) {
	var existing entity.Attendance
	err := tx.Where("student_id = ? AND date = ?", rec.StudentID, rec.Date).First(&existing).Error
	switch {
	case err == nil:
		existing.Status = rec.Status
		existing.TimeIn = rec.TimeIn
		existing.TimeOut = rec.TimeOut
		existing.Remarks = rec.Remarks
		existing.MarkedBy = rec.MarkedBy
		if err := tx.Omit("Student").Save(&existing).Error; err != nil {
			return false, err
		}
		*rec = existing
		return false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := insert(tx, rec); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, err
}

// insert fails with ErrDuplicateRecord when a concurrent writer created the
// same student/date row after the lookup missed.
func insert(tx *gorm.DB, rec *entity.Attendance) error {
	err := tx.Omit("Student").Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.ErrDuplicateRecord
	}
	return err
}

func (r *attendanceRepository) FindAll(ctx context.Context, scope policy.Predicate, date *time.Time, hostelBlock string) ([]entity.Attendance, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.Attendance{}).
		Scopes(scope.Owned("student_id")).
		Preload("Student.User")

	if date != nil {
		query = query.Where("date = ?", *date)
	}
	if hostelBlock != "" {
		block := r.db.Session(&gorm.Session{NewDB: true}).
			Model(&entity.StudentProfile{}).
			Select("id").
			Where("hostel_block = ?", hostelBlock)
		query = query.Where("student_id IN (?)", block)
	}

	var records []entity.Attendance
	if err := query.Order("date desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error) {
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date < ?", *to)
	}

	var records []entity.Attendance
	if err := query.Order("date desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) InRange(ctx context.Context, scope policy.Predicate, from, to time.Time) ([]entity.Attendance, error) {
	var records []entity.Attendance
	err := r.db.WithContext(ctx).
		Model(&entity.Attendance{}).
		Scopes(scope.Owned("student_id")).
		Where("date >= ? AND date < ?", from, to).
		Find(&records).Error
	return records, err
}
