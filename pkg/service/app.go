// Package service wires the client packages together and implements the
// console's use cases on top of them.
package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/itops/staffdesk/pkg/alerts"
	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/client"
	"github.com/itops/staffdesk/pkg/config"
	"github.com/itops/staffdesk/pkg/credentials"
	"github.com/itops/staffdesk/pkg/employees"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/export"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/metrics"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/itops/staffdesk/pkg/policy"
)

// Options builds an App without reading configuration.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	SessionPath  string
	Cooldown     time.Duration
	MaxPhotoRows int
	RootUsername string
	AlertSink    alerts.Sink
}

// OptionsFromConfig reads Options from the loaded configuration.
func OptionsFromConfig() Options {
	return Options{
		BaseURL:      config.GetString("api.base_url"),
		Timeout:      config.GetSeconds("api.timeout"),
		SessionPath:  config.GetSessionPath(),
		Cooldown:     config.GetSeconds("alerts.cooldown"),
		MaxPhotoRows: config.GetInt("export.max_photo_rows"),
		RootUsername: config.GetString("session.root_username"),
		AlertSink:    output.PrintAlert,
	}
}

// App owns one instance of every shared collaborator. All features reach
// the employee roster through App.Employees.
type App struct {
	Session   *credentials.Store
	Metrics   *metrics.Metrics
	Notifier  *alerts.Notifier
	Client    *client.Client
	API       *api.API
	Employees *employees.Cache
	Visible   *export.Reconciler

	sink         alerts.Sink
	maxPhotoRows int
	rootUsername string
	expired      atomic.Bool
}

// NewApp builds the container
func NewApp(opts Options) *App {
	a := &App{
		Session:      credentials.NewStore(opts.SessionPath),
		Metrics:      metrics.New(),
		Notifier:     alerts.NewNotifier(opts.AlertSink, opts.Cooldown),
		Visible:      export.NewReconciler(),
		sink:         opts.AlertSink,
		maxPhotoRows: opts.MaxPhotoRows,
		rootUsername: opts.RootUsername,
	}
	if _, err := a.Session.Load(); err != nil {
		logger.Warn("Stored session unreadable", "err", err)
	}

	a.Client = client.New(client.Options{
		BaseURL:        opts.BaseURL,
		Timeout:        opts.Timeout,
		Tokens:         a.Session,
		Notifier:       a.Notifier,
		Metrics:        a.Metrics,
		OnUnauthorized: a.onUnauthorized,
	})
	a.API = api.New(a.Client)
	a.Employees = employees.New(a.API, a.Notifier, a.Metrics)
	return a
}

func (a *App) onUnauthorized() {
	a.expired.Store(true)
	a.Employees.Reset()
	logger.Info("Session ended, login required")
}

// SessionExpired reports whether the server ended the session during this run.
func (a *App) SessionExpired() bool {
	return a.expired.Load()
}

// Context attaches the employee cache to ctx.
func (a *App) Context(ctx context.Context) context.Context {
	return employees.NewContext(ctx, a.Employees)
}

// Role is the signed-in role, or "" without a session.
func (a *App) Role() string {
	return a.Session.Role()
}

// Username of the signed-in user
func (a *App) Username() string {
	if s := a.Session.Current(); s != nil {
		return s.Username
	}
	return ""
}

// Require fails with a forbidden or session error unless the current role
// holds c. No request is made.
func (a *App) Require(c policy.Capability) error {
	if a.Session.Token() == "" {
		return apperrors.SessionExpiredError()
	}
	if !policy.Can(a.Role(), c) {
		return apperrors.ForbiddenError("Your role does not allow this action")
	}
	return nil
}

// Exporter builds an exporter over the visible rows.
func (a *App) Exporter() *export.Exporter {
	return export.NewExporter(a.Visible, a.API, export.Options{
		MaxPhotoRows: a.maxPhotoRows,
		Notify:       a.sink,
		Metrics:      a.Metrics,
	})
}
