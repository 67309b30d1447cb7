package policy

import (
	"fmt"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kind names a resource family for scoping.
type Kind string

const (
	KindStudent      Kind = "student"
	KindWarden       Kind = "warden"
	KindComplaint    Kind = "complaint"
	KindSuggestion   Kind = "suggestion"
	KindAttendance   Kind = "attendance"
	KindInvoice      Kind = "invoice"
	KindMessFeedback Kind = "mess_feedback"
	KindMessMenu     Kind = "mess_menu"
)

// studentOwned lists the kinds whose rows belong to a StudentProfile.
var studentOwned = map[Kind]bool{
	KindStudent:      true,
	KindComplaint:    true,
	KindSuggestion:   true,
	KindAttendance:   true,
	KindInvoice:      true,
	KindMessFeedback: true,
}

// Predicate restricts which student-owned rows an identity may see or change.
// Exactly one of All, StudentID or HostelBlock is set.
type Predicate struct {
	All         bool
	StudentID   *uuid.UUID
	HostelBlock string
}

// Scope computes the predicate of id over kind. It fails with ErrForbidden when
// the identity has no access to the kind at all.
func Scope(id Identity, kind Kind) (Predicate, error) {
	switch id.Role {
	case entity.RoleAdmin:
		return Predicate{All: true}, nil

	case entity.RoleWarden:
		if kind == KindMessMenu {
			return Predicate{All: true}, nil
		}
		if !studentOwned[kind] {
			return Predicate{}, fmt.Errorf("wardens cannot access %s records: %w", kind, apperror.ErrForbidden)
		}
		if id.HostelBlock == "" {
			return Predicate{}, fmt.Errorf("warden profile not found: %w", apperror.ErrForbidden)
		}
		return Predicate{HostelBlock: id.HostelBlock}, nil

	case entity.RoleStudent:
		if kind == KindMessMenu {
			return Predicate{All: true}, nil
		}
		if !studentOwned[kind] {
			return Predicate{}, fmt.Errorf("students cannot access %s records: %w", kind, apperror.ErrForbidden)
		}
		if id.StudentID == nil {
			return Predicate{}, fmt.Errorf("student profile not found: %w", apperror.ErrForbidden)
		}
		studentID := *id.StudentID
		return Predicate{StudentID: &studentID}, nil
	}

	return Predicate{}, fmt.Errorf("unknown role %q: %w", id.Role, apperror.ErrForbidden)
}

// Allows reports whether a single row owned by ownerID (living in ownerBlock) is visible.
func (p Predicate) Allows(ownerID uuid.UUID, ownerBlock string) bool {
	switch {
	case p.All:
		return true
	case p.StudentID != nil:
		return *p.StudentID == ownerID
	case p.HostelBlock != "":
		return p.HostelBlock == ownerBlock
	}
	return false
}

// Check is Allows returning ErrForbidden.
func (p Predicate) Check(ownerID uuid.UUID, ownerBlock string) error {
	if !p.Allows(ownerID, ownerBlock) {
		return fmt.Errorf("record belongs to another student: %w", apperror.ErrForbidden)
	}
	return nil
}

// Owned is a gorm scope filtering a student-owned table by its owner column.
func (p Predicate) Owned(ownerColumn string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case p.All:
			return db
		case p.StudentID != nil:
			return db.Where(ownerColumn+" = ?", *p.StudentID)
		case p.HostelBlock != "":
			sub := db.Session(&gorm.Session{NewDB: true}).
				Model(&entity.StudentProfile{}).
				Select("id").
				Where("hostel_block = ?", p.HostelBlock)
			return db.Where(ownerColumn+" IN (?)", sub)
		}
		// empty predicate matches nothing
		return db.Where("1 = 0")
	}
}

// Profiles is a gorm scope over the student_profiles table itself.
func (p Predicate) Profiles() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case p.All:
			return db
		case p.StudentID != nil:
			return db.Where("student_profiles.id = ?", *p.StudentID)
		case p.HostelBlock != "":
			return db.Where("student_profiles.hostel_block = ?", p.HostelBlock)
		}
		return db.Where("1 = 0")
	}
}
