package grid

import (
	"testing"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(emps []api.Employee) []string {
	out := make([]string, 0, len(emps))
	for _, e := range emps {
		out = append(out, e.EmployeeID)
	}
	return out
}

var rows = []api.Employee{
	{EmployeeID: "E3", EmployeeName: "Cuong", EmployeeDepartment: "IT", EmployeeJoinDate: "2022-05-01"},
	{EmployeeID: "E1", EmployeeName: "an", EmployeeDepartment: "Finance", EmployeeJoinDate: "null"},
	{EmployeeID: "E2", EmployeeName: "Binh", EmployeeDepartment: "IT Support", EmployeeJoinDate: "01/02/2021"},
}

func TestColumnFilterPublishes(t *testing.T) {
	rec := export.NewReconciler()
	tbl := New(rec)
	tbl.SetFilter(ColDepartment, "it")

	out := tbl.Render(rows)

	assert.Equal(t, []string{"E3"}, ids(out))
	assert.Equal(t, []string{"E3"}, ids(rec.Visible()))

	tbl.SetFilter(ColDepartment, "")
	assert.Len(t, tbl.Render(rows), 3)
	assert.Len(t, rec.Visible(), 3)
}

func TestSortByName(t *testing.T) {
	tbl := New(nil)
	tbl.SetSort(ColName, false)
	assert.Equal(t, []string{"E1", "E2", "E3"}, ids(tbl.Render(rows)))

	tbl.SetSort(ColName, true)
	assert.Equal(t, []string{"E3", "E2", "E1"}, ids(tbl.Render(rows)))
}

func TestSortByDateKeepsUnparsableLast(t *testing.T) {
	tbl := New(nil)
	tbl.SetSort(ColJoinDate, false)
	assert.Equal(t, []string{"E2", "E3", "E1"}, ids(tbl.Render(rows)))

	tbl.SetSort(ColJoinDate, true)
	assert.Equal(t, []string{"E3", "E2", "E1"}, ids(tbl.Render(rows)))
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	tbl := New(nil)
	tbl.SetSort(ColID, false)
	tbl.Render(rows)
	assert.Equal(t, []string{"E3", "E1", "E2"}, ids(rows))
}

func TestParseColumn(t *testing.T) {
	c, err := ParseColumn(" Department ")
	require.NoError(t, err)
	assert.Equal(t, ColDepartment, c)

	_, err = ParseColumn("salary")
	assert.Error(t, err)
}

func TestEnumeratedColumnsMatchWholeValue(t *testing.T) {
	tbl := New(nil)
	tbl.SetFilter(ColDepartment, "IT Support")
	assert.Equal(t, []string{"E2"}, ids(tbl.Render(rows)))

	tbl.SetFilter(ColDepartment, "sup")
	assert.Empty(t, tbl.Render(rows))

	// free-text columns still match substrings
	tbl.ClearFilters()
	tbl.SetFilter(ColName, "N")
	assert.Equal(t, []string{"E3", "E1", "E2"}, ids(tbl.Render(rows)))
}
