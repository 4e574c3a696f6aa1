package bookings

import (
	"fmt"

	"orders/internal/domain"
)

// canonicalTransitions is the full state graph. Profiles with a reduced status
// set get this graph restricted to their statuses.
var canonicalTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
	StatusCancelled: nil,
	StatusCompleted: nil,
}

// Lifecycle is the configured booking state machine.
type Lifecycle struct {
	statuses    []Status
	transitions map[Status]map[Status]struct{}
}

// NewLifecycle builds a state machine over statuses. When transitions is nil
// the canonical graph is used, restricted to statuses; a profile without
// "confirmed" lets "pending" take confirmed's outgoing edges.
func NewLifecycle(statuses []Status, transitions map[Status][]Status) (*Lifecycle, error) {
	if len(statuses) == 0 {
		return nil, fmt.Errorf("status set cannot be empty")
	}

	l := &Lifecycle{
		transitions: make(map[Status]map[Status]struct{}, len(statuses)),
	}
	for _, s := range statuses {
		if s == "" {
			return nil, fmt.Errorf("status cannot be empty")
		}
		if _, ok := l.transitions[s]; ok {
			return nil, fmt.Errorf("duplicate status %q", s)
		}
		l.statuses = append(l.statuses, s)
		l.transitions[s] = map[Status]struct{}{}
	}

	if transitions == nil {
		transitions = restrictCanonical(l.transitions)
	}

	for from, targets := range transitions {
		if _, ok := l.transitions[from]; !ok {
			return nil, fmt.Errorf("transition from unknown status %q", from)
		}
		for _, to := range targets {
			if _, ok := l.transitions[to]; !ok {
				return nil, fmt.Errorf("transition from %q to unknown status %q", from, to)
			}
			l.transitions[from][to] = struct{}{}
		}
	}

	return l, nil
}

func restrictCanonical(known map[Status]map[Status]struct{}) map[Status][]Status {
	edges := map[Status][]Status{}
	for from, targets := range canonicalTransitions {
		if _, ok := known[from]; !ok {
			continue
		}
		for _, to := range targets {
			if _, ok := known[to]; ok {
				edges[from] = append(edges[from], to)
			}
		}
	}

	_, hasPending := known[StatusPending]
	_, hasConfirmed := known[StatusConfirmed]
	if hasPending && !hasConfirmed {
		for _, to := range canonicalTransitions[StatusConfirmed] {
			if _, ok := known[to]; ok && !containsStatus(edges[StatusPending], to) {
				edges[StatusPending] = append(edges[StatusPending], to)
			}
		}
	}

	return edges
}

func containsStatus(statuses []Status, s Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (l *Lifecycle) Statuses() []Status {
	return append([]Status(nil), l.statuses...)
}

func (l *Lifecycle) Has(s Status) bool {
	_, ok := l.transitions[s]
	return ok
}

// Validate fails with ErrInvalidStatus when s is outside the status set.
func (l *Lifecycle) Validate(s Status) error {
	if !l.Has(s) {
		return domain.NewError(ErrInvalidStatus, fmt.Sprintf("invalid status value: %q", s))
	}
	return nil
}

func (l *Lifecycle) IsTerminal(s Status) bool {
	return l.Has(s) && len(l.transitions[s]) == 0
}

// CanTransition checks a status change. Staying in a non-terminal status is
// a no-op and allowed.
func (l *Lifecycle) CanTransition(from, to Status) error {
	if err := l.Validate(to); err != nil {
		return err
	}
	if from == StatusCancelled && to == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if !l.Has(from) {
		return domain.NewError(
			ErrInvalidTransition,
			fmt.Sprintf("current status %q is not part of the configured status set", from),
		)
	}
	if from == to && !l.IsTerminal(from) {
		return nil
	}
	if _, ok := l.transitions[from][to]; !ok {
		return domain.NewError(
			ErrInvalidTransition,
			fmt.Sprintf("cannot change status from %q to %q", from, to),
		)
	}
	return nil
}
