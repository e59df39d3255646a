package appointment

import (
	"fmt"

	"github.com/ridhamz/AppointmentEase/internal/repo"
)

// transitions lists the successors of every non-terminal status.
// Terminal statuses have no entry.
var transitions = map[repo.Status][]repo.Status{
	repo.StatusPending:   {repo.StatusConfirmed, repo.StatusCanceled},
	repo.StatusConfirmed: {repo.StatusCompleted},
}

// CanTransition reports whether the lifecycle graph has an edge from -> to.
func CanTransition(from, to repo.Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// checkTransition validates a status-update request against the current state.
func checkTransition(current repo.Status, requested string) (repo.Status, error) {
	to, ok := repo.ParseStatus(requested)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, requested)
	}
	if !CanTransition(current, to) {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
	}
	return to, nil
}

// checkMutable fails for appointments that reached a terminal status.
func checkMutable(a *repo.Appointment) error {
	if a.Status.IsTerminal() {
		return fmt.Errorf("%w: status is %s", ErrImmutable, a.Status)
	}
	return nil
}
