// Package menu builds the console navigation tree for a role.
package menu

import (
	"strings"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/policy"
)

// Node is a menu group or leaf. Leaves carry a Key; groups carry Children.
type Node struct {
	Key      string `json:"key,omitempty"`
	Label    string `json:"label"`
	Children []Node `json:"children,omitempty"`
}

// IsLeaf reports whether n has no children.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

type leaf struct {
	key   string
	label string
	cap   policy.Capability
}

func (l leaf) allowed(role string) bool {
	return policy.Can(role, l.cap)
}

// Compose returns the menu for role. Inventory gets one leaf per category
// code in caller order, or a single catch-all leaf when there are none.
// Groups with no permitted leaf are dropped.
func Compose(role string, categories []api.Category) []Node {
	var out []Node
	add := func(label string, children []Node) {
		if len(children) > 0 {
			out = append(out, Node{Label: label, Children: children})
		}
	}

	add("Dashboard", leaves(role,
		leaf{"dashboard", "Overview", policy.CapViewDashboard},
	))

	add("HR", leaves(role,
		leaf{"hr.directory", "Employee Directory", policy.CapViewEmployees},
		leaf{"hr.upload-photos", "Upload Photos", policy.CapManageHRData},
		leaf{"hr.print-cards", "Print ID Cards", policy.CapManageHRData},
	))

	var assets []Node
	assets = append(assets, leaves(role, leaf{"assets.overview", "Overview", policy.CapViewAssets})...)
	if policy.Can(role, policy.CapViewAssets) {
		assets = append(assets, Node{Label: "Inventory", Children: inventory(categories)})
	}
	add("IT Assets", assets)

	add("Support", leaves(role,
		leaf{"support.my-tickets", "My Tickets", policy.CapCreateTickets},
		leaf{"support.manage", "Manage Tickets", policy.CapManageTickets},
		leaf{"support.settings", "Ticket Settings", policy.CapManageTickets},
	))

	add("System Admin", leaves(role,
		leaf{"admin.users", "User Management", policy.CapSystemAdmin},
		leaf{"admin.category-settings", "Category Settings", policy.CapSystemAdmin},
	))

	return out
}

func leaves(role string, ls ...leaf) []Node {
	var out []Node
	for _, l := range ls {
		if l.allowed(role) {
			out = append(out, Node{Key: l.key, Label: l.label})
		}
	}
	return out
}

func inventory(categories []api.Category) []Node {
	seen := make(map[string]bool, len(categories))
	var out []Node
	for _, c := range categories {
		code := strings.TrimSpace(c.Code)
		if code == "" || seen[strings.ToLower(code)] {
			continue
		}
		seen[strings.ToLower(code)] = true
		label := strings.TrimSpace(c.Name)
		if label == "" {
			label = code
		}
		out = append(out, Node{Key: "assets.inventory." + code, Label: label})
	}
	if len(out) == 0 {
		out = []Node{{Key: "assets.inventory.all", Label: "All Assets"}}
	}
	return out
}

// Keys flattens the leaf keys of nodes in display order.
func Keys(nodes []Node) []string {
	var out []string
	for _, n := range nodes {
		if n.IsLeaf() {
			if n.Key != "" {
				out = append(out, n.Key)
			}
			continue
		}
		out = append(out, Keys(n.Children)...)
	}
	return out
}
