package booking

import "fmt"

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// validTransitions is the booking state machine.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
	StatusRejected:  {},
	StatusCancelled: {},
}

// ActiveStatuses are the statuses that hold a claim on a room.
var ActiveStatuses = []Status{StatusPending, StatusApproved, StatusConfirmed}

// OccupyingStatuses are the statuses counted by availability recomputation when the
// booking is also paid.
var OccupyingStatuses = []Status{StatusApproved, StatusConfirmed}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// IsActive reports whether s is pending, approved or confirmed.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved || s == StatusConfirmed
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// CanTransitionTo reports whether s -> target is a legal transition.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
