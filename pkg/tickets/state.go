// Package tickets gates helpdesk ticket changes client-side before they
// reach the backend.
package tickets

import (
	"strings"
)

// Status of a ticket
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusCancelled  Status = "Cancelled"
)

// Statuses in workflow order
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusCancelled}

var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusResolved, StatusCancelled},
}

// ParseStatus matches s case-insensitively, ignoring '-', '_' and spaces.
func ParseStatus(s string) (Status, bool) {
	norm := func(v string) string {
		return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(v))
	}
	want := norm(s)
	for _, st := range Statuses {
		if norm(string(st)) == want {
			return st, true
		}
	}
	return "", false
}

// Next lists the statuses reachable from s.
func Next(s Status) []Status {
	return transitions[s]
}

// CanTransition reports whether from → to is allowed.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Priority of a ticket
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// ParsePriority matches s case-insensitively; blank is Medium.
func ParsePriority(s string) (Priority, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PriorityMedium, true
	}
	for _, p := range Priorities {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return "", false
}
