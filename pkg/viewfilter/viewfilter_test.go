package viewfilter

import (
	"testing"
	"time"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/dates"
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

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var roster = []api.Employee{
	{EmployeeID: "E001", EmployeeName: "Nguyen Van An", EmployeeStatus: "Active", EmployeeDepartment: "Finance", EmployeeJoinDate: "2024-01-15"},
	{EmployeeID: "E002", EmployeeName: "Tran Thi Binh", EmployeeStatus: "Resigned", EmployeeDepartment: "HR", EmployeeJoinDate: "10/03/2023", EmployeeLeftDate: "2024-06-30"},
	{EmployeeID: "E003", EmployeeName: "Le Van Cuong", EmployeeStatus: "Active", EmployeeDepartment: "IT", EmployeeJoinDate: "2024-01-31"},
	{EmployeeID: "E004", EmployeeName: "Pham Thi Dung", EmployeeStatus: "", EmployeeDepartment: "Production", EmployeeJoinDate: "invalid date"},
	{EmployeeID: "E005", EmployeeName: "Hoang Van Em", EmployeeStatus: "Resign", EmployeeDepartment: "Finance", EmployeeJoinDate: "2024/02/01", EmployeeLeftDate: "15-07-2024"},
}

func TestStatusFilter(t *testing.T) {
	assert.Equal(t, []string{"E001", "E003"}, ids(Filter(roster, Predicates{Status: StatusActive})))
	assert.Equal(t, []string{"E002", "E004", "E005"}, ids(Filter(roster, Predicates{Status: StatusResigned})))
	assert.Len(t, Filter(roster, Predicates{}), 5)
	assert.Len(t, Filter(roster, Predicates{Status: StatusAll}), 5)
}

func TestQueryMatchesNameIDOrDepartment(t *testing.T) {
	assert.Equal(t, []string{"E001", "E005"}, ids(Filter(roster, Predicates{Query: "finance"})))
	assert.Equal(t, []string{"E003"}, ids(Filter(roster, Predicates{Query: "e003"})))
	assert.Equal(t, []string{"E002"}, ids(Filter(roster, Predicates{Query: "  BINH "})))
	assert.Empty(t, Filter(roster, Predicates{Query: "nobody"}))
}

func TestJoinDateRangeEdges(t *testing.T) {
	p := Predicates{Joined: dates.Range{From: day(2024, 1, 1), To: day(2024, 1, 31)}}

	// inclusive on both ends, unparsable excluded
	assert.Equal(t, []string{"E001", "E003"}, ids(Filter(roster, p)))

	p.Joined = dates.Range{From: day(2024, 2, 1)}
	assert.Equal(t, []string{"E005"}, ids(Filter(roster, p)))

	p.Joined = dates.Range{To: day(2023, 12, 31)}
	assert.Equal(t, []string{"E002"}, ids(Filter(roster, p)))
}

func TestLeftDateRangeIndependent(t *testing.T) {
	p := Predicates{Left: dates.Range{From: day(2024, 7, 1)}}
	assert.Equal(t, []string{"E005"}, ids(Filter(roster, p)))

	p.Status = StatusActive
	assert.Empty(t, Filter(roster, p))
}

func TestFilterIsDeterministic(t *testing.T) {
	p := Predicates{Status: StatusResigned, Query: "van"}
	first := Filter(roster, p)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Filter(roster, p))
	}
}

func TestEngineReturnsSameSliceForUnchangedInputs(t *testing.T) {
	var e Engine
	p := Predicates{Status: StatusActive}

	a := e.Apply(roster, p)
	b := e.Apply(roster, Predicates{Status: StatusActive})
	require.NotEmpty(t, a)
	assert.Same(t, &a[0], &b[0])
	assert.Equal(t, 1, e.Computations())

	// new roster slice with equal contents recomputes
	copied := append([]api.Employee(nil), roster...)
	c := e.Apply(copied, p)
	assert.NotSame(t, &a[0], &c[0])
	assert.Equal(t, 2, e.Computations())

	e.Apply(copied, Predicates{Status: StatusResigned})
	assert.Equal(t, 3, e.Computations())
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusActive, ParseStatus("ACTIVE"))
	assert.Equal(t, StatusResigned, ParseStatus("resigned"))
	assert.Equal(t, StatusAll, ParseStatus(""))
	assert.Equal(t, StatusAll, ParseStatus("whatever"))
}
