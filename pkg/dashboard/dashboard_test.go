package dashboard

import (
	"testing"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	emps := []api.Employee{
		{EmployeeStatus: "Active", EmployeeType: "Staff", EmployeeDepartment: "IT"},
		{EmployeeStatus: "Active", EmployeeType: "Worker", EmployeeDepartment: "Production", MaternityType: "Pregnancy Register"},
		{EmployeeStatus: "Active", EmployeeType: "worker", EmployeeDepartment: "Production", MaternityType: "Has Baby"},
		{EmployeeStatus: "Active", EmployeeType: "Intern"},
		{EmployeeStatus: "Resigned", EmployeeType: "Staff", MaternityType: "Has Baby"},
		{EmployeeStatus: ""},
		{EmployeeStatus: "active"},
	}

	s := Compute(emps, "online")

	assert.Equal(t, "online", s.Source)
	assert.Equal(t, 7, s.Total)
	assert.Equal(t, 4, s.Active)
	assert.Equal(t, 3, s.Resigned)
	assert.Equal(t, 1, s.Pregnancy)
	assert.Equal(t, 1, s.HasBaby)
	assert.Equal(t, 1, s.Staff)
	assert.Equal(t, 2, s.Worker)
	assert.Equal(t, 1, s.OtherType)
	assert.Equal(t, map[string]int{"IT": 1, "Production": 2, "Unassigned": 1}, s.ByDept)
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil, "error")
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, "error", s.Source)
}
