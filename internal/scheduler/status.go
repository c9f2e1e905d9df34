package scheduler

import (
	"github.com/otavioajr/shaving-project/internal/model"
)

// allowedTransitions is the appointment status state machine. Statuses
// absent from the outer map (COMPLETED, CANCELLED, NO_SHOW) are
// terminal. Self-transitions are not allowed.
var allowedTransitions = map[string]map[string]bool{
	model.StatusPending: {
		model.StatusConfirmed: true,
		model.StatusCancelled: true,
	},
	model.StatusConfirmed: {
		model.StatusCompleted: true,
		model.StatusCancelled: true,
		model.StatusNoShow:    true,
	},
}

// CanTransition reports whether an appointment may move from one
// status to another.
func CanTransition(from, to string) bool {
	return allowedTransitions[from][to]
}

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s string) bool {
	switch s {
	case model.StatusPending, model.StatusConfirmed, model.StatusCompleted,
		model.StatusCancelled, model.StatusNoShow:
		return true
	}
	return false
}
