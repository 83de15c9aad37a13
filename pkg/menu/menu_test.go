package menu

import (
	"testing"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cats = []api.Category{
	{Code: "PC", Name: "Desktops"},
	{Code: "LAPTOP", Name: "Laptops"},
	{Code: "pc", Name: "dup"},
	{Code: "  ", Name: "blank"},
	{Code: "PRINTER"},
}

func labels(nodes []Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Label)
	}
	return out
}

func TestAdminSeesEverything(t *testing.T) {
	nodes := Compose("Admin", cats)

	assert.Equal(t, []string{"Dashboard", "HR", "IT Assets", "Support", "System Admin"}, labels(nodes))
	assert.Equal(t, []string{
		"dashboard",
		"hr.directory", "hr.upload-photos", "hr.print-cards",
		"assets.overview", "assets.inventory.PC", "assets.inventory.LAPTOP", "assets.inventory.PRINTER",
		"support.my-tickets", "support.manage", "support.settings",
		"admin.users", "admin.category-settings",
	}, Keys(nodes))
}

func TestStaffMenu(t *testing.T) {
	nodes := Compose("Staff", cats)

	assert.Equal(t, []string{"Dashboard", "IT Assets", "Support"}, labels(nodes))
	assert.NotContains(t, Keys(nodes), "support.manage")
	assert.NotContains(t, Keys(nodes), "hr.directory")
}

func TestITMenu(t *testing.T) {
	keys := Keys(Compose("IT", nil))

	assert.Contains(t, keys, "hr.directory")
	assert.NotContains(t, keys, "hr.upload-photos")
	assert.Contains(t, keys, "assets.inventory.all")
}

func TestManagerMenu(t *testing.T) {
	keys := Keys(Compose("Manager", nil))

	assert.Contains(t, keys, "support.manage")
	assert.Contains(t, keys, "hr.print-cards")
	assert.NotContains(t, keys, "admin.users")
}

func TestUnknownRoleGetsNothing(t *testing.T) {
	assert.Empty(t, Compose("Intern", cats))
	assert.Empty(t, Compose("", cats))
	assert.Empty(t, Compose("admin", cats))
}

func TestInventoryFallback(t *testing.T) {
	nodes := Compose("HR", []api.Category{{Code: ""}})
	require.NotEmpty(t, nodes)
	assert.Contains(t, Keys(nodes), "assets.inventory.all")
}

func TestComposeIsIdempotent(t *testing.T) {
	assert.Equal(t, Compose("Manager", cats), Compose("Manager", cats))
}
