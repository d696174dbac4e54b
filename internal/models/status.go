package models

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a booking. Transitions are policy,
// not a numeric order.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusAccepted  Status = "Accepted"
	StatusRejected  Status = "Rejected"
	StatusWaiting   Status = "Waiting"
	StatusCompleted Status = "Completed"
)

var ErrIllegalTransition = errors.New("illegal status transition")

// statusEdges lists the legal outgoing transitions per status. Rejected
// and Completed are terminal.
var statusEdges = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusWaiting, StatusRejected},
	StatusAccepted:  {StatusCompleted},
	StatusWaiting:   {StatusCompleted},
	StatusRejected:  {},
	StatusCompleted: {},
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusRejected, StatusWaiting, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status: %q", s)
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(statusEdges[s]) == 0
}

// CanTransitionTo reports whether requested is a legal edge from s.
func (s Status) CanTransitionTo(requested Status) bool {
	for _, next := range statusEdges[s] {
		if next == requested {
			return true
		}
	}
	return false
}

// Transition computes the new status or rejects an illegal edge.
func Transition(current, requested Status) (Status, error) {
	if !current.CanTransitionTo(requested) {
		return "", fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, requested)
	}
	return requested, nil
}
