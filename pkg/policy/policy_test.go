package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilityTable(t *testing.T) {
	tests := []struct {
		cap   Capability
		allow []Role
	}{
		{CapViewAssets, []Role{RoleAdmin, RoleManager, RoleHR, RoleIT, RoleStaff}},
		{CapManageAssets, []Role{RoleAdmin}},
		{CapManageCategories, []Role{RoleAdmin}},
		{CapManageHRData, []Role{RoleAdmin, RoleManager, RoleHR}},
		{CapManageTickets, []Role{RoleAdmin, RoleManager}},
		{CapSystemAdmin, []Role{RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(string(tt.cap), func(t *testing.T) {
			allowed := map[Role]bool{}
			for _, r := range tt.allow {
				allowed[r] = true
			}
			for _, r := range Roles {
				assert.Equal(t, allowed[r], Can(string(r), tt.cap), "role %s", r)
			}
		})
	}
}

func TestUnknownRoleDeniesEverything(t *testing.T) {
	for _, role := range []string{"", "   ", "root", "superuser", "admin2"} {
		for _, c := range Capabilities {
			assert.False(t, Can(role, c), "role %q cap %s", role, c)
		}
		assert.Empty(t, Grants(role))
	}
}

func TestUnknownCapabilityDenied(t *testing.T) {
	assert.False(t, Can("Admin", Capability("payroll.run")))
}

func TestParseRoleIsExact(t *testing.T) {
	assert.Equal(t, RoleHR, ParseRole("HR"))
	assert.Equal(t, RoleAdmin, ParseRole("Admin"))
	assert.Equal(t, RoleNone, ParseRole("hr"))
	assert.Equal(t, RoleNone, ParseRole("admin"))
	assert.Equal(t, RoleNone, ParseRole(" Admin "))
	assert.Equal(t, RoleNone, ParseRole("Administrator"))

	assert.False(t, Can("admin", CapSystemAdmin))
	assert.Empty(t, Grants("staff"))
}

func TestRoleChangeIsReflectedImmediately(t *testing.T) {
	role := "Admin"
	assert.True(t, Can(role, CapManageAssets))
	role = "Staff"
	assert.False(t, Can(role, CapManageAssets))
}

func TestGrantsOrder(t *testing.T) {
	assert.Equal(t, []Capability{CapViewDashboard, CapViewAssets, CapCreateTickets}, Grants("Staff"))
}

func TestCanDeleteUser(t *testing.T) {
	admin := Account{ID: "u1", Username: "alice"}

	assert.True(t, CanDeleteUser("Admin", admin, Account{ID: "u2", Username: "bob"}, "root"))

	// root is protected for everyone, including admins
	assert.False(t, CanDeleteUser("Admin", admin, Account{ID: "u0", Username: "root"}, "root"))
	assert.False(t, CanDeleteUser("Admin", admin, Account{ID: "u0", Username: "ROOT"}, "root"))

	// nobody deletes themselves
	assert.False(t, CanDeleteUser("Admin", admin, Account{ID: "u1", Username: "alice"}, "root"))
	assert.False(t, CanDeleteUser("Admin", admin, Account{Username: "Alice"}, "root"))

	// only system admins manage users
	for _, r := range []string{"Manager", "HR", "IT", "Staff", ""} {
		assert.False(t, CanDeleteUser(r, admin, Account{ID: "u2", Username: "bob"}, "root"), r)
	}
}

func TestCanDeleteUserBlankRootFallsBack(t *testing.T) {
	admin := Account{ID: "u1", Username: "alice"}
	assert.False(t, CanDeleteUser("Admin", admin, Account{ID: "u0", Username: "root"}, ""))
	assert.False(t, CanDeleteUser("Admin", admin, Account{ID: "u0", Username: "root"}, "  "))
	assert.True(t, CanDeleteUser("Admin", admin, Account{ID: "u2", Username: "bob"}, ""))
}
