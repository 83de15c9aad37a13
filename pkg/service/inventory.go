package service

import (
	"context"
	"fmt"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/assets"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/formatter"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/itops/staffdesk/pkg/policy"
	"github.com/itops/staffdesk/pkg/prompter"
)

// InventoryService is the IT asset inventory
type InventoryService struct {
	app *App
}

// NewInventoryService creates an inventory service
func NewInventoryService(app *App) *InventoryService {
	return &InventoryService{app: app}
}

func (s *InventoryService) manager() *assets.Manager {
	return assets.NewManager(s.app.API, s.app.Employees, s.app.Role())
}

// List prints assets, optionally of one category
func (s *InventoryService) List(ctx context.Context, category string) error {
	list, err := s.manager().List(ctx, category)
	if err != nil {
		return err
	}
	return output.PrintRows(formatter.AssetHeaders, formatter.AssetRows(list), list)
}

func (s *InventoryService) find(ctx context.Context, id string) (api.Asset, error) {
	list, err := s.manager().List(ctx, "")
	if err != nil {
		return api.Asset{}, err
	}
	for _, a := range list {
		if a.ID.String() == id || a.AssetCode == id {
			return a, nil
		}
	}
	return api.Asset{}, apperrors.NotFoundError(fmt.Sprintf("asset %s", id))
}

// Assign changes an asset's owner. The employee is resolved against the
// roster and its name and department are stored as a snapshot.
func (s *InventoryService) Assign(ctx context.Context, id string, t assets.Target) error {
	m := s.manager()
	if err := s.app.Require(policy.CapManageAssets); err != nil {
		return err
	}
	if t.EmployeeID != "" {
		if _, _, err := roster(s.app.Context(ctx), false); err != nil {
			return err
		}
	}
	a, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	updated, err := m.Assign(ctx, a, t)
	if err != nil {
		return err
	}
	output.PrintSuccess("%s assigned to %s", updated.AssetCode, formatter.Assignee(updated.AssignedTo))
	return nil
}

// Delete removes an asset after confirmation
func (s *InventoryService) Delete(ctx context.Context, id string, force bool) error {
	if !force {
		ok, err := prompter.PromptConfirm(fmt.Sprintf("Delete asset %s?", id))
		if err != nil {
			return err
		}
		if !ok {
			output.PrintInfo("Cancelled")
			return nil
		}
	}
	if err := s.manager().Delete(ctx, id); err != nil {
		return err
	}
	output.PrintSuccess("Deleted asset %s", id)
	return nil
}

// Drift lists assignment snapshots that differ from the live roster.
func (s *InventoryService) Drift(ctx context.Context) ([]assets.Drift, error) {
	list, err := s.manager().List(ctx, "")
	if err != nil {
		return nil, err
	}
	if _, _, err := roster(s.app.Context(ctx), false); err != nil {
		return nil, err
	}
	return assets.DriftReport(list, s.app.Employees), nil
}

// PrintDrift prints the drift report
func (s *InventoryService) PrintDrift(ctx context.Context) error {
	drift, err := s.Drift(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(drift))
	for _, d := range drift {
		note := "changed"
		switch {
		case d.Missing:
			note = "not in roster"
		case d.Resigned:
			note = "resigned"
		}
		rows = append(rows, []string{d.AssetCode, d.EmployeeID, d.SnapshotName, d.LiveName, d.SnapshotDept, d.LiveDept, note})
	}
	return output.PrintRows([]string{"ASSET", "EMPLOYEE", "SNAPSHOT NAME", "LIVE NAME", "SNAPSHOT DEPT", "LIVE DEPT", "NOTE"}, rows, drift)
}

// Categories prints asset categories
func (s *InventoryService) Categories(ctx context.Context) error {
	list, err := s.manager().Categories(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{c.ID.String(), c.Code, c.Name})
	}
	return output.PrintRows([]string{"ID", "CODE", "NAME"}, rows, list)
}

// SaveCategory creates or renames a category
func (s *InventoryService) SaveCategory(ctx context.Context, c api.Category) error {
	saved, err := s.manager().SaveCategory(ctx, c)
	if err != nil {
		return err
	}
	output.PrintSuccess("Saved category %s", saved.Code)
	return nil
}

// DeleteCategory removes a category
func (s *InventoryService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.manager().DeleteCategory(ctx, id); err != nil {
		return err
	}
	output.PrintSuccess("Deleted category %s", id)
	return nil
}
