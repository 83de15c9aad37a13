// Package viewfilter narrows the cached roster to what the directory view
// shows. Filter is pure; Engine memoizes it so unchanged inputs hand back the
// very same slice.
package viewfilter

import (
	"strings"
	"sync"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/dates"
)

// Status selects employees by employment status
type Status string

const (
	StatusAll      Status = "All"
	StatusActive   Status = "Active"
	StatusResigned Status = "Resigned"
)

// ParseStatus maps user input to a Status, defaulting to StatusAll.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive
	case "resigned", "resign", "inactive":
		return StatusResigned
	default:
		return StatusAll
	}
}

// Predicates are AND-combined and applied in field order.
type Predicates struct {
	Status Status
	// Query matches name, id or department, case-insensitively.
	Query  string
	Joined dates.Range
	Left   dates.Range
}

// Equal compares predicates by value.
func (p Predicates) Equal(o Predicates) bool {
	return normStatus(p.Status) == normStatus(o.Status) &&
		strings.TrimSpace(p.Query) == strings.TrimSpace(o.Query) &&
		p.Joined.Equal(o.Joined) &&
		p.Left.Equal(o.Left)
}

func normStatus(s Status) Status {
	if s == "" {
		return StatusAll
	}
	return s
}

// Filter returns the employees matching p, preserving input order.
func Filter(all []api.Employee, p Predicates) []api.Employee {
	q := strings.ToLower(strings.TrimSpace(p.Query))
	status := normStatus(p.Status)

	out := make([]api.Employee, 0, len(all))
	for _, e := range all {
		if !matchStatus(e, status) {
			continue
		}
		if q != "" && !matchQuery(e, q) {
			continue
		}
		if p.Joined.Active() && !p.Joined.Contains(e.EmployeeJoinDate) {
			continue
		}
		if p.Left.Active() && !p.Left.Contains(e.EmployeeLeftDate) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchStatus(e api.Employee, s Status) bool {
	switch s {
	case StatusActive:
		return e.IsActive()
	case StatusResigned:
		// anything that is not exactly Active, blank included
		return !e.IsActive()
	default:
		return true
	}
}

func matchQuery(e api.Employee, q string) bool {
	return strings.Contains(strings.ToLower(e.EmployeeName), q) ||
		strings.Contains(strings.ToLower(e.EmployeeID), q) ||
		strings.Contains(strings.ToLower(e.EmployeeDepartment), q)
}

// Engine memoizes the last Filter call. Safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	all     []api.Employee
	preds   Predicates
	out     []api.Employee
	primed  bool
	applies int
}

// Apply returns the filtered view. When all is the same slice as last time
// and p is equal, the previous result is returned unchanged.
func (e *Engine) Apply(all []api.Employee, p Predicates) []api.Employee {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.primed && sameSlice(e.all, all) && e.preds.Equal(p) {
		return e.out
	}
	e.all, e.preds = all, p
	e.out = Filter(all, p)
	e.primed = true
	e.applies++
	return e.out
}

// Computations counts how many times Apply actually filtered.
func (e *Engine) Computations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applies
}

func sameSlice(a, b []api.Employee) bool {
	if len(a) != len(b) || (a == nil) != (b == nil) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
