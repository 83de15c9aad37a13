// Package policy maps session roles to the actions the console allows.
package policy

import "strings"

// Role is one of the roles the backend issues
type Role string

const (
	RoleNone    Role = ""
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleHR      Role = "HR"
	RoleIT      Role = "IT"
	RoleStaff   Role = "Staff"
)

// Roles lists every recognised role
var Roles = []Role{RoleAdmin, RoleManager, RoleHR, RoleIT, RoleStaff}

// ParseRole recognises a role string exactly as the backend issues it.
// Anything else, including a differently cased name, is RoleNone.
func ParseRole(s string) Role {
	for _, r := range Roles {
		if s == string(r) {
			return r
		}
	}
	return RoleNone
}

// DefaultRootUsername is the reserved account used when none is configured.
const DefaultRootUsername = "root"

// Capability is a gated action
type Capability string

const (
	CapViewDashboard    Capability = "dashboard.view"
	CapViewEmployees    Capability = "employees.view"
	CapViewAssets       Capability = "assets.view"
	CapManageAssets     Capability = "assets.manage"
	CapManageCategories Capability = "categories.manage"
	CapManageHRData     Capability = "hr.manage"
	CapCreateTickets    Capability = "tickets.create"
	CapManageTickets    Capability = "tickets.manage"
	CapSystemAdmin      Capability = "system.admin"
)

var everyone = []Role{RoleAdmin, RoleManager, RoleHR, RoleIT, RoleStaff}

// table is the single source of truth for who may do what.
var table = map[Capability][]Role{
	CapViewDashboard:    everyone,
	CapViewEmployees:    {RoleAdmin, RoleManager, RoleHR, RoleIT},
	CapViewAssets:       everyone,
	CapManageAssets:     {RoleAdmin},
	CapManageCategories: {RoleAdmin},
	CapManageHRData:     {RoleAdmin, RoleManager, RoleHR},
	CapCreateTickets:    everyone,
	CapManageTickets:    {RoleAdmin, RoleManager},
	CapSystemAdmin:      {RoleAdmin},
}

// Capabilities lists every gated capability in display order
var Capabilities = []Capability{
	CapViewDashboard,
	CapViewEmployees,
	CapViewAssets,
	CapManageAssets,
	CapManageCategories,
	CapManageHRData,
	CapCreateTickets,
	CapManageTickets,
	CapSystemAdmin,
}

// Can reports whether role may perform c. Unknown roles and unknown
// capabilities are denied.
func Can(role string, c Capability) bool {
	r := ParseRole(role)
	if r == RoleNone {
		return false
	}
	for _, allowed := range table[c] {
		if allowed == r {
			return true
		}
	}
	return false
}

// Grants lists the capabilities role holds, in display order.
func Grants(role string) []Capability {
	var out []Capability
	for _, c := range Capabilities {
		if Can(role, c) {
			out = append(out, c)
		}
	}
	return out
}

// Account is the subset of a user record the delete guard needs.
type Account struct {
	ID       string
	Username string
}

// CanDeleteUser reports whether actor may delete target. The reserved root
// account and the actor's own account are never deletable. A blank
// rootUsername means DefaultRootUsername.
func CanDeleteUser(actorRole string, actor, target Account, rootUsername string) bool {
	if !Can(actorRole, CapSystemAdmin) {
		return false
	}
	if strings.TrimSpace(rootUsername) == "" {
		rootUsername = DefaultRootUsername
	}
	if strings.EqualFold(target.Username, rootUsername) {
		return false
	}
	if target.ID != "" && target.ID == actor.ID {
		return false
	}
	if target.Username != "" && strings.EqualFold(target.Username, actor.Username) {
		return false
	}
	return true
}
