package policy

import (
	"anoa.com/hostelhub/internal/entity"
	"github.com/google/uuid"
)

// Identity is the authenticated caller as seen by authorization.
type Identity struct {
	UserID      uuid.UUID
	Name        string
	Role        string
	Status      string
	StudentID   *uuid.UUID
	WardenID    *uuid.UUID
	HostelBlock string
}

// NewIdentity builds an identity from a user loaded with its role and profiles.
func NewIdentity(user *entity.User) Identity {
	id := Identity{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role.Name,
		Status: user.Status,
	}

	switch id.Role {
	case entity.RoleStudent:
		if user.StudentProfile != nil {
			studentID := user.StudentProfile.ID
			id.StudentID = &studentID
			id.HostelBlock = user.StudentProfile.HostelBlock
		}
	case entity.RoleWarden:
		if user.WardenProfile != nil {
			wardenID := user.WardenProfile.ID
			id.WardenID = &wardenID
			id.HostelBlock = user.WardenProfile.HostelBlock
		}
	}

	return id
}

func (i Identity) IsAdmin() bool   { return i.Role == entity.RoleAdmin }
func (i Identity) IsWarden() bool  { return i.Role == entity.RoleWarden }
func (i Identity) IsStudent() bool { return i.Role == entity.RoleStudent }

// IsStaff reports whether the caller may process tickets.
func (i Identity) IsStaff() bool { return i.IsAdmin() || i.IsWarden() }
