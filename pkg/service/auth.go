package service

import (
	"context"
	"fmt"

	"github.com/itops/staffdesk/pkg/credentials"
	"github.com/itops/staffdesk/pkg/formatter"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/itops/staffdesk/pkg/policy"
	"github.com/itops/staffdesk/pkg/prompter"
)

type AuthService struct {
	app *App
}

// NewAuthService creates a new auth service
func NewAuthService(app *App) *AuthService {
	return &AuthService{app: app}
}

// Login signs in, prompting for whatever was not passed.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	if sess := s.app.Session.Current(); sess.IsValid() && username == "" {
		formatter.Warning.Fprintf(output.Out, "Already logged in as %s\n", sess.Username)
		confirm, err := prompter.PromptConfirm("Continue with new login?")
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	var err error
	if username == "" {
		if username, err = prompter.PromptString("Username: "); err != nil {
			return err
		}
	}
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if password == "" {
		if password, err = prompter.PromptPassword("Password: "); err != nil {
			return err
		}
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	output.PrintInfo("Authenticating...")
	resp, err := s.app.API.Login(ctx, username, password)
	if err != nil {
		return err
	}

	sess := &credentials.Session{
		AccessToken: resp.AccessToken,
		UserID:      resp.User.ID.String(),
		Username:    resp.User.Username,
		FullName:    resp.User.FullName,
		Role:        resp.User.Role,
	}
	if err := s.app.Session.Save(sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.app.Employees.Reset()
	s.app.Notifier.Reset()
	logger.Info("Logged in", "username", sess.Username, "role", sess.Role)

	if policy.ParseRole(sess.Role) == policy.RoleNone {
		output.PrintWarning("Role %q is not recognised; every action will be denied", sess.Role)
	}
	output.PrintSuccess("Logged in as %s (%s)", formatter.Bold.Sprint(sess.Username), sess.Role)
	return nil
}

// Logout forgets the stored session
func (s *AuthService) Logout() error {
	if s.app.Session.Current() == nil {
		output.PrintWarning("Not logged in")
		return nil
	}
	if err := s.app.Session.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.app.Employees.Reset()
	output.PrintSuccess("Logged out")
	return nil
}

// WhoAmI prints the current session and its capabilities
func (s *AuthService) WhoAmI() error {
	sess := s.app.Session.Current()
	if !sess.IsValid() {
		output.PrintWarning("Not logged in")
		return nil
	}

	caps := policy.Grants(sess.Role)
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	record := map[string]interface{}{
		"Username":     sess.Username,
		"Name":         sess.FullName,
		"Role":         sess.Role,
		"Capabilities": names,
	}
	if !sess.ExpiresAt.IsZero() {
		record["Expires"] = sess.ExpiresAt.Local().Format("2006-01-02 15:04")
	}
	return output.PrintRecord("Session", record)
}
