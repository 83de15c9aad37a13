package service

import (
	"context"

	"github.com/itops/staffdesk/pkg/api"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/formatter"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/menu"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/itops/staffdesk/pkg/policy"
)

// UserService holds the user administration checks
type UserService struct {
	app *App
}

// NewUserService creates a user service
func NewUserService(app *App) *UserService {
	return &UserService{app: app}
}

// CanDelete reports whether the signed-in user may delete target.
func (s *UserService) CanDelete(target policy.Account) (bool, error) {
	sess := s.app.Session.Current()
	if sess == nil {
		return false, apperrors.SessionExpiredError()
	}
	actor := policy.Account{ID: sess.UserID, Username: sess.Username}
	return policy.CanDeleteUser(sess.Role, actor, target, s.app.rootUsername), nil
}

// PrintCanDelete prints the delete guard's answer
func (s *UserService) PrintCanDelete(target policy.Account) error {
	ok, err := s.CanDelete(target)
	if err != nil {
		return err
	}
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", map[string]interface{}{"username": target.Username, "deletable": ok})
	}
	if ok {
		output.PrintSuccess("%s can be deleted", target.Username)
	} else {
		output.PrintWarning("%s cannot be deleted by you", target.Username)
	}
	return nil
}

// MenuService composes navigation for the current role
type MenuService struct {
	app *App
}

// NewMenuService creates a menu service
func NewMenuService(app *App) *MenuService {
	return &MenuService{app: app}
}

// Compose builds the menu. Categories are loaded for the inventory
// submenu; when they cannot be loaded the catch-all leaf is used.
func (s *MenuService) Compose(ctx context.Context) ([]menu.Node, error) {
	if s.app.Session.Token() == "" {
		return nil, apperrors.SessionExpiredError()
	}
	role := s.app.Role()
	var cats []api.Category
	if policy.Can(role, policy.CapViewAssets) {
		list, err := s.app.API.ListCategories(ctx)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindAuth {
				return nil, err
			}
			logger.Warn("Categories unavailable for menu", "kind", apperrors.KindOf(err))
		}
		cats = list
	}
	return menu.Compose(role, cats), nil
}

// Show prints the menu
func (s *MenuService) Show(ctx context.Context) error {
	nodes, err := s.Compose(ctx)
	if err != nil {
		return err
	}
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", nodes)
	}
	formatter.PrintMenu(nodes)
	return nil
}
