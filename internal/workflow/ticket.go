// Package workflow holds the state machine shared by complaints and suggestions.
package workflow

import (
	"fmt"
	"slices"
	"time"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/pkg/apperror"
	"github.com/google/uuid"
)

var transitions = map[string][]string{
	entity.TicketPending:    {entity.TicketInProgress, entity.TicketResolved, entity.TicketRejected},
	entity.TicketInProgress: {entity.TicketResolved, entity.TicketRejected},
}

var Statuses = []string{entity.TicketPending, entity.TicketInProgress, entity.TicketResolved, entity.TicketRejected}

func IsTerminal(status string) bool {
	return status == entity.TicketResolved || status == entity.TicketRejected
}

// Change is the result of a permitted transition.
type Change struct {
	Status      string
	AssignedTo  *uuid.UUID
	RespondedBy *uuid.UUID
	RespondedAt *time.Time
}

// Transition validates from -> to for actor. Terminal targets stamp the responder,
// In Progress records the assignee.
func Transition(from, to string, actor uuid.UUID, now time.Time) (Change, error) {
	if !slices.Contains(Statuses, to) {
		return Change{}, fmt.Errorf("unknown status %q: %w", to, apperror.ErrInvalidInput)
	}
	if !slices.Contains(transitions[from], to) {
		return Change{}, fmt.Errorf("cannot move from %s to %s: %w", from, to, apperror.ErrConflict)
	}

	change := Change{Status: to}
	switch {
	case to == entity.TicketInProgress:
		change.AssignedTo = &actor
	case IsTerminal(to):
		change.RespondedBy = &actor
		change.RespondedAt = &now
	}
	return change, nil
}

// CanWithdraw reports whether the owning student may still delete the ticket.
func CanWithdraw(status string) error {
	if status != entity.TicketPending {
		return fmt.Errorf("cannot delete a ticket that is already being processed: %w", apperror.ErrConflict)
	}
	return nil
}
