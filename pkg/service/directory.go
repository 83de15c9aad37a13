package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/cards"
	"github.com/itops/staffdesk/pkg/config"
	"github.com/itops/staffdesk/pkg/dashboard"
	"github.com/itops/staffdesk/pkg/dates"
	"github.com/itops/staffdesk/pkg/employees"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/export"
	"github.com/itops/staffdesk/pkg/formatter"
	"github.com/itops/staffdesk/pkg/grid"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/itops/staffdesk/pkg/policy"
	"github.com/itops/staffdesk/pkg/viewfilter"
	"golang.org/x/sync/errgroup"
)

// Query is what the operator asked the directory to show.
type Query struct {
	Status   string
	Search   string
	JoinFrom string
	JoinTo   string
	LeftFrom string
	LeftTo   string
	// Columns are per-column filters applied by the table.
	Columns map[string]string
	SortBy  string
	Desc    bool
	Refresh bool
}

// Predicates converts q into view filter predicates.
func (q Query) Predicates() (viewfilter.Predicates, error) {
	joined, ok := dates.ParseRange(q.JoinFrom, q.JoinTo)
	if !ok {
		return viewfilter.Predicates{}, apperrors.ValidationError(0, "Invalid join date range")
	}
	left, ok := dates.ParseRange(q.LeftFrom, q.LeftTo)
	if !ok {
		return viewfilter.Predicates{}, apperrors.ValidationError(0, "Invalid left date range")
	}
	return viewfilter.Predicates{
		Status: viewfilter.ParseStatus(q.Status),
		Query:  q.Search,
		Joined: joined,
		Left:   left,
	}, nil
}

// DirectoryService is the employee directory
type DirectoryService struct {
	app    *App
	engine viewfilter.Engine
	table  *grid.Table
}

// NewDirectoryService creates a directory publishing into app.Visible
func NewDirectoryService(app *App) *DirectoryService {
	return &DirectoryService{app: app, table: grid.New(app.Visible)}
}

func roster(ctx context.Context, refresh bool) ([]api.Employee, *employees.Cache, error) {
	cache, ok := employees.FromContext(ctx)
	if !ok {
		return nil, nil, fmt.Errorf("employee cache not available")
	}
	res := cache.Fetch(ctx, refresh)
	if res.Err != nil {
		return nil, cache, res.Err
	}
	return res.Employees, cache, nil
}

// View loads the roster and applies q. The result is also what bulk actions
// will act on.
func (s *DirectoryService) View(ctx context.Context, q Query) ([]api.Employee, error) {
	if err := s.app.Require(policy.CapViewEmployees); err != nil {
		return nil, err
	}
	preds, err := q.Predicates()
	if err != nil {
		return nil, err
	}
	all, _, err := roster(s.app.Context(ctx), q.Refresh)
	if err != nil {
		return nil, err
	}

	filtered := s.engine.Apply(all, preds)
	s.app.Visible.Seed(filtered)

	s.table.ClearFilters()
	for col, v := range q.Columns {
		c, err := grid.ParseColumn(col)
		if err != nil {
			return nil, apperrors.ValidationError(0, err.Error())
		}
		s.table.SetFilter(c, v)
	}
	s.table.SetSort("", false)
	if q.SortBy != "" {
		c, err := grid.ParseColumn(q.SortBy)
		if err != nil {
			return nil, apperrors.ValidationError(0, err.Error())
		}
		s.table.SetSort(c, q.Desc)
	}
	return s.table.Render(filtered), nil
}

// List prints the directory
func (s *DirectoryService) List(ctx context.Context, q Query) error {
	rows, err := s.View(ctx, q)
	if err != nil {
		return err
	}
	if err := output.PrintRows(formatter.EmployeeHeaders, formatter.EmployeeRows(rows), rows); err != nil {
		return err
	}
	if output.GetOutputFormat() != output.FormatJSON {
		output.PrintInfo("%d employee%s shown (source: %s)", len(rows), pluralize(len(rows)), s.app.Employees.Source())
	}
	return nil
}

func (s *DirectoryService) requireHR(ctx context.Context, q Query) error {
	if err := s.app.Require(policy.CapManageHRData); err != nil {
		return err
	}
	_, err := s.View(ctx, q)
	return err
}

// Export writes the visible rows to an xlsx file and returns its path.
func (s *DirectoryService) Export(ctx context.Context, q Query, path string) (string, error) {
	view, unbind := bindView(ctx)
	defer unbind()
	if err := s.requireHR(ctx, q); err != nil {
		return "", err
	}
	if path == "" {
		path = defaultPath("employees", "xlsx")
	}

	var buf bytes.Buffer
	n, err := s.app.Exporter().WriteSpreadsheet(&buf)
	if err != nil {
		return "", err
	}
	err = commit(ctx, view, path, buf.Bytes(), func() {
		output.PrintSuccess("Exported %d employee%s to %s", n, pluralize(n), path)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// DownloadPhotos saves a ZIP of the visible employees' photos.
func (s *DirectoryService) DownloadPhotos(ctx context.Context, q Query, path string) (string, error) {
	view, unbind := bindView(ctx)
	defer unbind()
	if err := s.requireHR(ctx, q); err != nil {
		return "", err
	}
	if path == "" {
		path = defaultPath("photos", "zip")
	}

	data, n, err := s.app.Exporter().DownloadPhotos(ctx)
	if err != nil {
		return "", err
	}
	err = commit(ctx, view, path, data, func() {
		output.PrintSuccess("Downloaded photos of %d employee%s to %s", n, pluralize(n), path)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// CardOptions controls ID card printing
type CardOptions struct {
	IDs         []string
	Orientation string
	Company     string
	Path        string
	NoPhotos    bool
}

// PrintCards renders ID cards for the selected visible employees and
// records the print run.
func (s *DirectoryService) PrintCards(ctx context.Context, q Query, opts CardOptions) (string, error) {
	view, unbind := bindView(ctx)
	defer unbind()
	if err := s.requireHR(ctx, q); err != nil {
		return "", err
	}
	orientation, err := cards.ParseOrientation(opts.Orientation)
	if err != nil {
		return "", apperrors.ValidationError(0, err.Error())
	}

	x := s.app.Exporter()
	selected := x.PrintSelection(opts.IDs)
	if len(selected) == 0 {
		return "", apperrors.BusinessError("No employees selected for printing", "Check the ids and filters")
	}

	photos := map[string][]byte{}
	if !opts.NoPhotos {
		if photos, err = s.fetchPhotos(ctx, selected); err != nil {
			return "", err
		}
	}

	path := opts.Path
	if path == "" {
		path = defaultPath("id-cards", "pdf")
	}
	var buf bytes.Buffer
	err = cards.Render(&buf, selected, cards.Options{
		Orientation: orientation,
		Company:     opts.Company,
		Photos:      func(id string) []byte { return photos[id] },
	})
	if err != nil {
		return "", err
	}
	err = commit(ctx, view, path, buf.Bytes(), func() {
		x.RecordPrint(ctx, selected, s.app.Username(), string(orientation))
		output.PrintSuccess("Rendered %d card%s to %s", len(selected), pluralize(len(selected)), path)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// bindView returns a guard for one command run. It unmounts once ctx is
// done, so results arriving after a cancel are dropped.
func bindView(ctx context.Context) (*export.Guard, func() bool) {
	g := export.NewGuard()
	if ctx.Err() != nil {
		g.Unmount()
	}
	return g, context.AfterFunc(ctx, g.Unmount)
}

// commit writes data to path and runs done, unless the view is gone.
func commit(ctx context.Context, view *export.Guard, path string, data []byte, done func()) error {
	if ctx.Err() != nil {
		view.Unmount()
	}
	var err error
	applied := view.Apply(func() {
		if err = writeFile(path, data); err == nil {
			done()
		}
	})
	if !applied {
		return ctx.Err()
	}
	return err
}

const photoWorkers = 4

// fetchPhotos downloads photos concurrently; missing photos are skipped.
// A cancelled ctx is returned as an error.
func (s *DirectoryService) fetchPhotos(ctx context.Context, emps []api.Employee) (map[string][]byte, error) {
	results := make([][]byte, len(emps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(photoWorkers)
	for i, e := range emps {
		g.Go(func() error {
			data, err := s.app.API.DownloadPhoto(gctx, e.EmployeeID)
			if err != nil {
				logger.Debug("No photo for card", "employee_id", e.EmployeeID, "kind", apperrors.KindOf(err))
				return nil
			}
			results[i] = data
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(emps))
	for i, e := range emps {
		if results[i] != nil {
			out[e.EmployeeID] = results[i]
		}
	}
	return out, nil
}

// PrintStats prints print history counters
func (s *DirectoryService) PrintStats(ctx context.Context) error {
	if err := s.app.Require(policy.CapManageHRData); err != nil {
		return err
	}
	stats, err := s.app.API.PrintStats(ctx)
	if err != nil {
		return err
	}
	return output.PrintRecord("Print history", map[string]interface{}{
		"Total":        stats.Total,
		"Today":        stats.Today,
		"Last printed": stats.LastPrintedAt,
	})
}

// DashboardService shows roster figures
type DashboardService struct {
	app *App
}

// NewDashboardService creates a dashboard service
func NewDashboardService(app *App) *DashboardService {
	return &DashboardService{app: app}
}

// Stats loads the roster and computes the dashboard figures. On a failed
// fetch the figures are zero and the source is "error".
func (s *DashboardService) Stats(ctx context.Context, refresh bool) (dashboard.Stats, error) {
	if err := s.app.Require(policy.CapViewDashboard); err != nil {
		return dashboard.Stats{}, err
	}
	all, cache, err := roster(s.app.Context(ctx), refresh)
	if cache == nil {
		return dashboard.Stats{}, err
	}
	stats := dashboard.Compute(all, cache.Source())
	stats.FetchedAt = cache.FetchedAt()
	return stats, err
}

// Show prints the dashboard
func (s *DashboardService) Show(ctx context.Context, refresh bool) error {
	stats, err := s.Stats(ctx, refresh)
	if apperrors.KindOf(err) == apperrors.KindAuth || apperrors.KindOf(err) == apperrors.KindForbidden {
		return err
	}
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", stats)
	}
	if perr := output.PrintRecord("Dashboard", formatter.StatsRecord(stats)); perr != nil {
		return perr
	}
	return err
}

func defaultPath(prefix, ext string) string {
	dir := config.GetString("output.download_dir")
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.%s", prefix, time.Now().Format("20060102-150405"), ext))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Debug("Wrote file", "path", path, "bytes", len(data))
	return nil
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
