package formatter

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/dashboard"
	"github.com/itops/staffdesk/pkg/menu"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestEmployeeRows(t *testing.T) {
	rows := EmployeeRows([]api.Employee{{
		EmployeeID:       "E1",
		EmployeeName:     "Ann",
		EmployeeStatus:   "Active",
		EmployeeJoinDate: "03/02/2024",
		EmployeeLeftDate: "invalid date",
	}})

	assert.Equal(t, [][]string{{"E1", "Ann", "Active", "", "", "", "2024-02-03", ""}}, rows)
	assert.Len(t, EmployeeHeaders, len(rows[0]))
}

func TestAssignee(t *testing.T) {
	assert.Equal(t, "-", Assignee(nil))
	assert.Equal(t, "Vendor (external)", Assignee(&api.Assignment{ExternalName: "Vendor"}))
	assert.Equal(t, "E1 Ann (IT)", Assignee(&api.Assignment{EmployeeID: "E1", EmployeeName: "Ann", EmployeeDepartment: "IT"}))
	assert.Equal(t, "E1", Assignee(&api.Assignment{EmployeeID: "E1"}))
}

func TestTicketRows(t *testing.T) {
	who := "mgr"
	rows := TicketRows([]api.Ticket{
		{ID: "1", Status: "Open", Priority: "Low", Title: "Mouse"},
		{ID: "2", Status: "In Progress", Priority: "High", Title: "VPN", Assignee: &who},
	})

	assert.Equal(t, "-", rows[0][5])
	assert.Equal(t, "mgr", rows[1][5])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestStatsRecord(t *testing.T) {
	r := StatsRecord(dashboard.Stats{Total: 10, Active: 7, Resigned: 3})
	assert.Equal(t, "not loaded", r["Source"])
	assert.Equal(t, 7, r["Active"])
}

func TestPrintMenu(t *testing.T) {
	var buf bytes.Buffer
	prev := output.Out
	output.Out = &buf
	defer func() { output.Out = prev }()

	PrintMenu(menu.Compose("Staff", nil))

	assert.Contains(t, buf.String(), "Dashboard\n  - Overview [dashboard]")
	assert.Contains(t, buf.String(), "    - All Assets [assets.inventory.all]")
}
