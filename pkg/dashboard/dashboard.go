// Package dashboard computes the headline roster figures.
package dashboard

import (
	"strings"
	"time"

	"github.com/itops/staffdesk/pkg/api"
)

// Maternity types the HR system records.
const (
	MaternityPregnancy = "Pregnancy Register"
	MaternityHasBaby   = "Has Baby"
)

// Stats summarises one roster snapshot
type Stats struct {
	Source    string         `json:"source"`
	Total     int            `json:"total"`
	Active    int            `json:"active"`
	Resigned  int            `json:"resigned"`
	Pregnancy int            `json:"pregnancy_register"`
	HasBaby   int            `json:"has_baby"`
	Staff     int            `json:"staff"`
	Worker    int            `json:"worker"`
	OtherType int            `json:"other_type"`
	ByDept    map[string]int `json:"active_by_department"`
	FetchedAt time.Time      `json:"fetched_at,omitempty"`
}

// Compute derives Stats from the roster. Resigned counts every employee
// whose status is not exactly Active. Maternity and type splits count
// active employees only.
func Compute(emps []api.Employee, source string) Stats {
	s := Stats{Source: source, Total: len(emps), ByDept: make(map[string]int)}
	for _, e := range emps {
		if !e.IsActive() {
			s.Resigned++
			continue
		}
		s.Active++

		switch strings.TrimSpace(e.MaternityType) {
		case MaternityPregnancy:
			s.Pregnancy++
		case MaternityHasBaby:
			s.HasBaby++
		}

		switch strings.ToLower(strings.TrimSpace(e.EmployeeType)) {
		case "staff":
			s.Staff++
		case "worker":
			s.Worker++
		default:
			s.OtherType++
		}

		dept := strings.TrimSpace(e.EmployeeDepartment)
		if dept == "" {
			dept = "Unassigned"
		}
		s.ByDept[dept]++
	}
	return s
}
