// Package grid is the directory table: per-column filters and sorting on top
// of the view filter output. Whatever it shows is published to the export
// reconciler so bulk actions act on the same rows.
package grid

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/dates"
	"github.com/itops/staffdesk/pkg/export"
)

// Column identifies a table column
type Column string

const (
	ColID         Column = "id"
	ColName       Column = "name"
	ColStatus     Column = "status"
	ColDepartment Column = "department"
	ColPosition   Column = "position"
	ColType       Column = "type"
	ColGender     Column = "gender"
	ColJoinDate   Column = "join_date"
	ColLeftDate   Column = "left_date"
)

var columns = map[Column]func(api.Employee) string{
	ColID:         func(e api.Employee) string { return e.EmployeeID },
	ColName:       func(e api.Employee) string { return e.EmployeeName },
	ColStatus:     func(e api.Employee) string { return e.EmployeeStatus },
	ColDepartment: func(e api.Employee) string { return e.EmployeeDepartment },
	ColPosition:   func(e api.Employee) string { return e.EmployeePosition },
	ColType:       func(e api.Employee) string { return e.EmployeeType },
	ColGender:     func(e api.Employee) string { return e.EmployeeGender },
	ColJoinDate:   func(e api.Employee) string { return dates.Format(e.EmployeeJoinDate) },
	ColLeftDate:   func(e api.Employee) string { return dates.Format(e.EmployeeLeftDate) },
}

// Columns lists every column in display order.
var Columns = []Column{ColID, ColName, ColStatus, ColDepartment, ColPosition, ColType, ColGender, ColJoinDate, ColLeftDate}

func isDate(c Column) bool {
	return c == ColJoinDate || c == ColLeftDate
}

// enumerated columns pick one value from a fixed list, so their filter
// matches the whole value rather than a substring.
func enumerated(c Column) bool {
	switch c {
	case ColStatus, ColDepartment, ColType, ColGender:
		return true
	}
	return false
}

// ParseColumn validates a column name.
func ParseColumn(s string) (Column, error) {
	c := Column(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := columns[c]; !ok {
		return "", fmt.Errorf("unknown column %q", s)
	}
	return c, nil
}

// Table applies column filters and a sort, then publishes the result.
type Table struct {
	mu      sync.Mutex
	filters map[Column]string
	sortBy  Column
	desc    bool
	rec     *export.Reconciler
}

// New creates a table publishing into rec. rec may be nil.
func New(rec *export.Reconciler) *Table {
	return &Table{filters: make(map[Column]string), rec: rec}
}

// SetFilter sets a case-insensitive filter on a column. Enumerated columns
// match the whole value, the others a substring. An empty value removes it.
func (t *Table) SetFilter(c Column, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	value = strings.TrimSpace(value)
	if value == "" {
		delete(t.filters, c)
		return
	}
	t.filters[c] = strings.ToLower(value)
}

// ClearFilters removes every column filter.
func (t *Table) ClearFilters() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filters = make(map[Column]string)
}

// SetSort orders rows by c. An empty column keeps input order.
func (t *Table) SetSort(c Column, desc bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sortBy, t.desc = c, desc
}

// Render returns the visible rows for input and publishes them.
func (t *Table) Render(input []api.Employee) []api.Employee {
	t.mu.Lock()
	filters := make(map[Column]string, len(t.filters))
	for k, v := range t.filters {
		filters[k] = v
	}
	sortBy, desc := t.sortBy, t.desc
	t.mu.Unlock()

	out := make([]api.Employee, 0, len(input))
	for _, e := range input {
		if matches(e, filters) {
			out = append(out, e)
		}
	}
	if sortBy != "" {
		sortRows(out, sortBy, desc)
	}

	if t.rec != nil {
		t.rec.Publish(out)
	}
	return out
}

func matches(e api.Employee, filters map[Column]string) bool {
	for c, want := range filters {
		got := strings.ToLower(strings.TrimSpace(columns[c](e)))
		if enumerated(c) {
			if got != want {
				return false
			}
			continue
		}
		if !strings.Contains(got, want) {
			return false
		}
	}
	return true
}

// sortRows is stable; unparsable dates sort last in either direction.
func sortRows(rows []api.Employee, c Column, desc bool) {
	if isDate(c) {
		raw := func(e api.Employee) string {
			if c == ColJoinDate {
				return e.EmployeeJoinDate
			}
			return e.EmployeeLeftDate
		}
		sort.SliceStable(rows, func(i, j int) bool {
			ti, oki := dates.Parse(raw(rows[i]))
			tj, okj := dates.Parse(raw(rows[j]))
			if oki != okj {
				return oki
			}
			if !oki {
				return false
			}
			if desc {
				return ti.After(tj)
			}
			return ti.Before(tj)
		})
		return
	}

	get := columns[c]
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := strings.ToLower(get(rows[i])), strings.ToLower(get(rows[j]))
		if desc {
			return a > b
		}
		return a < b
	})
}
