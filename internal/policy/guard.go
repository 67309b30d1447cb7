package policy

import (
	"context"
	"fmt"
	"slices"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/pkg/apperror"
)

// Guard is one step of the authorization pipeline.
type Guard func(ctx context.Context, id Identity) error

// Decision is the outcome of Evaluate. Reason is nil when authorized.
type Decision struct {
	Identity Identity
	Reason   error
}

func (d Decision) Authorized() bool { return d.Reason == nil }

// Evaluate runs guards in order and stops at the first denial.
func Evaluate(ctx context.Context, id Identity, guards ...Guard) Decision {
	for _, guard := range guards {
		if err := guard(ctx, id); err != nil {
			return Decision{Identity: id, Reason: err}
		}
	}
	return Decision{Identity: id}
}

func RequireActive() Guard {
	return func(_ context.Context, id Identity) error {
		if id.Status != "" && id.Status != entity.StatusActive {
			return fmt.Errorf("account is inactive: %w", apperror.ErrForbidden)
		}
		return nil
	}
}

func RequireRole(roles ...string) Guard {
	return func(_ context.Context, id Identity) error {
		if !slices.Contains(roles, id.Role) {
			return fmt.Errorf("role %s is not allowed here: %w", id.Role, apperror.ErrForbidden)
		}
		return nil
	}
}

// RequireProfile denies students and wardens whose profile is missing.
func RequireProfile() Guard {
	return func(_ context.Context, id Identity) error {
		switch {
		case id.IsStudent() && id.StudentID == nil:
			return fmt.Errorf("student profile not found: %w", apperror.ErrForbidden)
		case id.IsWarden() && id.WardenID == nil:
			return fmt.Errorf("warden profile not found: %w", apperror.ErrForbidden)
		}
		return nil
	}
}
