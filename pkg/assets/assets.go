// Package assets manages the IT asset inventory. Assets are fetched on
// demand and never cached; assignment snapshots are checked against the
// shared employee roster.
package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/itops/staffdesk/pkg/api"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/policy"
)

// Usage and health values accepted by the backend.
var (
	UsageStatuses  = []string{"In Use", "Spare", "Broken"}
	HealthStatuses = []string{"Good", "Warning", "Critical"}
)

// Backend is the asset and category part of the API.
type Backend interface {
	ListAssets(ctx context.Context, category string) ([]api.Asset, error)
	CreateAsset(ctx context.Context, a api.Asset) (*api.Asset, error)
	UpdateAsset(ctx context.Context, id string, a api.Asset) (*api.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]api.Category, error)
	CreateCategory(ctx context.Context, c api.Category) (*api.Category, error)
	UpdateCategory(ctx context.Context, id string, c api.Category) (*api.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// Roster resolves employee ids against the shared employee cache.
type Roster interface {
	Lookup(id string) (api.Employee, bool)
}

// Target is who an asset is being assigned to. Exactly one of EmployeeID
// and ExternalName may be set; both empty unassigns.
type Target struct {
	EmployeeID   string
	ExternalName string
	ExternalNote string
}

// Snapshot validates t and builds the assignment stored on the asset.
func Snapshot(t Target, roster Roster) (*api.Assignment, error) {
	id := strings.TrimSpace(t.EmployeeID)
	ext := strings.TrimSpace(t.ExternalName)

	switch {
	case id != "" && ext != "":
		return nil, apperrors.BusinessError("An asset is assigned to an employee or an external owner, not both", "")
	case id == "" && ext == "":
		return nil, nil
	case ext != "":
		return &api.Assignment{ExternalName: ext, ExternalNote: strings.TrimSpace(t.ExternalNote)}, nil
	}

	emp, ok := roster.Lookup(id)
	if !ok {
		return nil, apperrors.BusinessError(fmt.Sprintf("Employee %s is not in the roster", id), "Refresh the employee list and try again")
	}
	return &api.Assignment{
		EmployeeID:         emp.EmployeeID,
		EmployeeName:       emp.EmployeeName,
		EmployeeDepartment: emp.EmployeeDepartment,
	}, nil
}

// Validate checks the enumerated fields and the assignment shape.
func Validate(a api.Asset) error {
	if strings.TrimSpace(a.AssetCode) == "" {
		return apperrors.BusinessError("Asset code is required", "")
	}
	if a.UsageStatus != "" && !contains(UsageStatuses, a.UsageStatus) {
		return apperrors.BusinessError(fmt.Sprintf("Unknown usage status %q", a.UsageStatus), "Use one of: "+strings.Join(UsageStatuses, ", "))
	}
	if a.HealthStatus != "" && !contains(HealthStatuses, a.HealthStatus) {
		return apperrors.BusinessError(fmt.Sprintf("Unknown health status %q", a.HealthStatus), "Use one of: "+strings.Join(HealthStatuses, ", "))
	}
	if as := a.AssignedTo; as != nil && as.EmployeeID != "" && as.ExternalName != "" {
		return apperrors.BusinessError("An asset is assigned to an employee or an external owner, not both", "")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Manager gates every inventory mutation on the actor's role before calling
// the backend.
type Manager struct {
	backend Backend
	roster  Roster
	role    string
}

// NewManager creates a manager acting as role
func NewManager(b Backend, roster Roster, role string) *Manager {
	return &Manager{backend: b, roster: roster, role: role}
}

func (m *Manager) require(c policy.Capability, action string) error {
	if !policy.Can(m.role, c) {
		logger.Warn("Action denied", "action", action, "role", m.role)
		return apperrors.ForbiddenError(fmt.Sprintf("Your role cannot %s", action))
	}
	return nil
}

// List fetches assets, optionally for one category.
func (m *Manager) List(ctx context.Context, category string) ([]api.Asset, error) {
	if err := m.require(policy.CapViewAssets, "view assets"); err != nil {
		return nil, err
	}
	return m.backend.ListAssets(ctx, category)
}

// Create adds an asset.
func (m *Manager) Create(ctx context.Context, a api.Asset) (*api.Asset, error) {
	if err := m.require(policy.CapManageAssets, "create assets"); err != nil {
		return nil, err
	}
	if err := Validate(a); err != nil {
		return nil, err
	}
	return m.backend.CreateAsset(ctx, a)
}

// Update replaces an asset.
func (m *Manager) Update(ctx context.Context, a api.Asset) (*api.Asset, error) {
	if err := m.require(policy.CapManageAssets, "edit assets"); err != nil {
		return nil, err
	}
	if err := Validate(a); err != nil {
		return nil, err
	}
	return m.backend.UpdateAsset(ctx, a.ID.String(), a)
}

// Assign points an asset at a new owner and saves it.
func (m *Manager) Assign(ctx context.Context, a api.Asset, t Target) (*api.Asset, error) {
	if err := m.require(policy.CapManageAssets, "assign assets"); err != nil {
		return nil, err
	}
	snap, err := Snapshot(t, m.roster)
	if err != nil {
		return nil, err
	}
	a.AssignedTo = snap
	if snap != nil && a.UsageStatus == "Spare" {
		a.UsageStatus = "In Use"
	}
	logger.Info("Assigning asset", "asset_code", a.AssetCode, "employee_id", t.EmployeeID, "external", t.ExternalName)
	return m.backend.UpdateAsset(ctx, a.ID.String(), a)
}

// Delete removes an asset.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.require(policy.CapManageAssets, "delete assets"); err != nil {
		return err
	}
	return m.backend.DeleteAsset(ctx, id)
}

// Categories lists asset categories.
func (m *Manager) Categories(ctx context.Context) ([]api.Category, error) {
	return m.backend.ListCategories(ctx)
}

// SaveCategory creates a category, or updates it when c.ID is set.
func (m *Manager) SaveCategory(ctx context.Context, c api.Category) (*api.Category, error) {
	if err := m.require(policy.CapManageCategories, "manage categories"); err != nil {
		return nil, err
	}
	c.Code = strings.TrimSpace(c.Code)
	if c.Code == "" {
		return nil, apperrors.BusinessError("Category code is required", "")
	}
	if c.ID == "" {
		return m.backend.CreateCategory(ctx, c)
	}
	return m.backend.UpdateCategory(ctx, c.ID.String(), c)
}

// DeleteCategory removes a category.
func (m *Manager) DeleteCategory(ctx context.Context, id string) error {
	if err := m.require(policy.CapManageCategories, "manage categories"); err != nil {
		return err
	}
	return m.backend.DeleteCategory(ctx, id)
}
