package assets

import (
	"github.com/itops/staffdesk/pkg/api"
)

// Drift describes an assignment snapshot that no longer matches the roster.
// Snapshots are never rewritten automatically.
type Drift struct {
	AssetCode    string `json:"asset_code"`
	EmployeeID   string `json:"employee_id"`
	SnapshotName string `json:"snapshot_name"`
	LiveName     string `json:"live_name,omitempty"`
	SnapshotDept string `json:"snapshot_department"`
	LiveDept     string `json:"live_department,omitempty"`
	// Missing is set when the employee is no longer in the roster.
	Missing  bool `json:"missing"`
	Resigned bool `json:"resigned"`
}

// DriftReport lists internally assigned assets whose snapshot differs from
// the live roster, in input order.
func DriftReport(list []api.Asset, roster Roster) []Drift {
	var out []Drift
	for _, a := range list {
		as := a.AssignedTo
		if as == nil || as.EmployeeID == "" {
			continue
		}
		d := Drift{
			AssetCode:    a.AssetCode,
			EmployeeID:   as.EmployeeID,
			SnapshotName: as.EmployeeName,
			SnapshotDept: as.EmployeeDepartment,
		}
		emp, ok := roster.Lookup(as.EmployeeID)
		if !ok {
			d.Missing = true
			out = append(out, d)
			continue
		}
		d.LiveName, d.LiveDept = emp.EmployeeName, emp.EmployeeDepartment
		d.Resigned = !emp.IsActive()
		if d.LiveName != d.SnapshotName || d.LiveDept != d.SnapshotDept || d.Resigned {
			out = append(out, d)
		}
	}
	return out
}
