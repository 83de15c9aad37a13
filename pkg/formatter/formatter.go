// Package formatter turns domain records into display rows for output.
package formatter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/dates"
	"github.com/itops/staffdesk/pkg/dashboard"
	"github.com/itops/staffdesk/pkg/menu"
	"github.com/itops/staffdesk/pkg/output"
)

var (
	Bold    = color.New(color.Bold)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Warning = color.New(color.FgYellow)
)

var EmployeeHeaders = []string{"ID", "NAME", "STATUS", "DEPARTMENT", "POSITION", "TYPE", "JOINED", "LEFT"}

// EmployeeRows renders employees for a table
func EmployeeRows(emps []api.Employee) [][]string {
	rows := make([][]string, 0, len(emps))
	for _, e := range emps {
		rows = append(rows, []string{
			e.EmployeeID,
			e.EmployeeName,
			statusText(e.EmployeeStatus, e.IsActive()),
			e.EmployeeDepartment,
			e.EmployeePosition,
			e.EmployeeType,
			dates.Format(e.EmployeeJoinDate),
			dates.Format(e.EmployeeLeftDate),
		})
	}
	return rows
}

func statusText(s string, active bool) string {
	if s == "" {
		s = "-"
	}
	if active {
		return Success.Sprint(s)
	}
	return Warning.Sprint(s)
}

var AssetHeaders = []string{"ID", "CODE", "CATEGORY", "USAGE", "HEALTH", "ASSIGNED TO"}

// AssetRows renders assets for a table
func AssetRows(list []api.Asset) [][]string {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		rows = append(rows, []string{
			a.ID.String(),
			a.AssetCode,
			firstNonEmpty(a.Category, a.Type),
			a.UsageStatus,
			healthText(a.HealthStatus),
			Assignee(a.AssignedTo),
		})
	}
	return rows
}

func healthText(h string) string {
	switch h {
	case "Critical":
		return Error.Sprint(h)
	case "Warning":
		return Warning.Sprint(h)
	}
	return h
}

// Assignee describes an assignment snapshot in one cell.
func Assignee(as *api.Assignment) string {
	switch {
	case as == nil:
		return "-"
	case as.ExternalName != "":
		return as.ExternalName + " (external)"
	case as.EmployeeDepartment != "":
		return fmt.Sprintf("%s %s (%s)", as.EmployeeID, as.EmployeeName, as.EmployeeDepartment)
	default:
		return strings.TrimSpace(as.EmployeeID + " " + as.EmployeeName)
	}
}

var TicketHeaders = []string{"ID", "STATUS", "PRIORITY", "TITLE", "REQUESTER", "ASSIGNEE"}

// TicketRows renders tickets for a table
func TicketRows(list []api.Ticket) [][]string {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		assignee := "-"
		if t.Assignee != nil && *t.Assignee != "" {
			assignee = *t.Assignee
		}
		rows = append(rows, []string{
			t.ID.String(),
			t.Status,
			priorityText(t.Priority),
			truncate(t.Title, 48),
			t.Requester,
			assignee,
		})
	}
	return rows
}

func priorityText(p string) string {
	switch p {
	case "Critical":
		return Error.Sprint(p)
	case "High":
		return Warning.Sprint(p)
	}
	return p
}

// StatsRecord flattens dashboard stats for PrintRecord.
func StatsRecord(s dashboard.Stats) map[string]interface{} {
	source := s.Source
	if source == "" {
		source = "not loaded"
	}
	return map[string]interface{}{
		"Source":             source,
		"Total":              s.Total,
		"Active":             s.Active,
		"Resigned":           s.Resigned,
		"Pregnancy Register": s.Pregnancy,
		"Has Baby":           s.HasBaby,
		"Staff":              s.Staff,
		"Worker":             s.Worker,
	}
}

// PrintMenu writes the navigation tree as an indented outline.
func PrintMenu(nodes []menu.Node) {
	printNodes(nodes, 0)
}

func printNodes(nodes []menu.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.IsLeaf() {
			fmt.Fprintf(output.Out, "%s- %s %s\n", indent, n.Label, Info.Sprintf("[%s]", n.Key))
			continue
		}
		fmt.Fprintf(output.Out, "%s%s\n", indent, Bold.Sprint(n.Label))
		printNodes(n.Children, depth+1)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
