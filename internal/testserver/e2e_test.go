package testserver_test

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/itops/staffdesk/internal/testserver"
	"github.com/itops/staffdesk/pkg/alerts"
	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/assets"
	"github.com/itops/staffdesk/pkg/employees"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/itops/staffdesk/pkg/policy"
	"github.com/itops/staffdesk/pkg/service"
	"github.com/itops/staffdesk/pkg/tickets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type harness struct {
	srv    *testserver.Server
	app    *service.App
	out    *bytes.Buffer
	mu     sync.Mutex
	alerts []alerts.Alert
}

func (h *harness) sink(a alerts.Alert) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alerts = append(h.alerts, a)
}

func (h *harness) alertKeys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]string, len(h.alerts))
	for i, a := range h.alerts {
		keys[i] = a.Key
	}
	return keys
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{srv: testserver.New(42).Start(), out: &bytes.Buffer{}}
	t.Cleanup(h.srv.Close)

	prevOut, prevErr := output.Out, output.Err
	output.Out, output.Err = h.out, h.out
	t.Cleanup(func() { output.Out, output.Err = prevOut, prevErr })

	h.app = service.NewApp(service.Options{
		BaseURL:      h.srv.URL(),
		Timeout:      5 * time.Second,
		SessionPath:  filepath.Join(t.TempDir(), "session.json"),
		Cooldown:     time.Minute,
		MaxPhotoRows: 100,
		RootUsername: "root",
		AlertSink:    h.sink,
	})
	return h
}

func (h *harness) login(t *testing.T, user string) {
	t.Helper()
	require.NoError(t, service.NewAuthService(h.app).Login(context.Background(), user, user+"-pass"))
	require.Equal(t, user, h.app.Username())
}

func TestLoginThenDashboardFetchesRosterOnce(t *testing.T) {
	h := newHarness(t)
	h.login(t, "hr")

	dash := service.NewDashboardService(h.app)
	stats, err := dash.Stats(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "online", stats.Source)
	assert.Equal(t, testserver.ActiveEmployees, stats.Active)
	assert.Equal(t, testserver.ResignedEmployees, stats.Resigned)
	assert.Equal(t, testserver.ActiveEmployees+testserver.ResignedEmployees, stats.Total)

	// the directory reuses the cached roster
	rows, err := service.NewDirectoryService(h.app).View(context.Background(), service.Query{Status: "resigned"})
	require.NoError(t, err)
	assert.Len(t, rows, testserver.ResignedEmployees)

	assert.Equal(t, 1, h.srv.Hits("GET /employees"))
	assert.Empty(t, h.alertKeys())
}

func TestConcurrentConsumersShareOneFetch(t *testing.T) {
	h := newHarness(t)
	h.login(t, "manager")
	h.srv.SetEmployeesDelay(100 * time.Millisecond)

	dash := service.NewDashboardService(h.app)
	dir := service.NewDirectoryService(h.app)

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 3; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := dash.Stats(context.Background(), false)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := dir.View(context.Background(), service.Query{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, h.srv.Hits("GET /employees"))
}

func TestRosterOutageRaisesOneAlertAndRecovers(t *testing.T) {
	h := newHarness(t)
	h.login(t, "hr")
	h.srv.SetEmployeesFailure(http.StatusServiceUnavailable)

	dash := service.NewDashboardService(h.app)
	stats, err := dash.Stats(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, "error", stats.Source)
	assert.Zero(t, stats.Total)

	_, err = dash.Stats(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, 2, h.srv.Hits("GET /employees"), "a failed fetch is retried by the next consumer")
	assert.Equal(t, []string{"employees:upstream"}, h.alertKeys())

	h.srv.SetEmployeesFailure(0)
	stats, err = dash.Stats(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "online", stats.Source)
	assert.False(t, h.app.Notifier.Active(employees.AlertUpstream))
}

func TestExportWritesFilteredRows(t *testing.T) {
	h := newHarness(t)
	h.login(t, "hr")

	path := filepath.Join(t.TempDir(), "active.xlsx")
	_, err := service.NewDirectoryService(h.app).Export(context.Background(), service.Query{Status: "active"}, path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Employees")
	require.NoError(t, err)
	assert.Len(t, rows, testserver.ActiveEmployees+1)
}

func TestColumnFilterDrivesBulkActions(t *testing.T) {
	h := newHarness(t)
	h.login(t, "hr")
	dir := service.NewDirectoryService(h.app)
	q := service.Query{Columns: map[string]string{"department": "it"}}

	var want []string
	for _, e := range h.srv.Employees() {
		if e.EmployeeDepartment == "IT" {
			want = append(want, e.EmployeeID)
		}
	}
	require.NotEmpty(t, want)

	path := filepath.Join(t.TempDir(), "it.xlsx")
	_, err := dir.Export(context.Background(), q, path)
	require.NoError(t, err)
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Employees")
	require.NoError(t, err)
	assert.Len(t, rows, len(want)+1)

	_, err = dir.DownloadPhotos(context.Background(), q, filepath.Join(t.TempDir(), "it.zip"))
	require.NoError(t, err)
	assert.ElementsMatch(t, want, h.srv.ZipRequest())
	assert.ElementsMatch(t, want, ids(h.app.Visible.Visible()))
}

func ids(emps []api.Employee) []string {
	out := make([]string, len(emps))
	for i, e := range emps {
		out[i] = e.EmployeeID
	}
	return out
}

func TestPhotosZipAndCards(t *testing.T) {
	h := newHarness(t)
	h.login(t, "hr")
	dir := service.NewDirectoryService(h.app)
	tmp := t.TempDir()

	zipPath, err := dir.DownloadPhotos(context.Background(), service.Query{Search: "E001"}, filepath.Join(tmp, "p.zip"))
	require.NoError(t, err)
	data, err := os.ReadFile(zipPath)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data[:2]))

	pdfPath, err := dir.PrintCards(context.Background(), service.Query{Status: "active"}, service.CardOptions{
		IDs:  []string{"E001", "E002"},
		Path: filepath.Join(tmp, "cards.pdf"),
	})
	require.NoError(t, err)
	data, err = os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))

	logs := h.srv.PrintLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, []string{"E001", "E002"}, logs[0].EmployeeIDs)
	assert.Equal(t, "hr", logs[0].PrintedBy)
}

func TestCancelledRunWritesNothing(t *testing.T) {
	h := newHarness(t)
	h.login(t, "hr")
	dir := service.NewDirectoryService(h.app)
	tmp := t.TempDir()

	_, err := dir.View(context.Background(), service.Query{})
	require.NoError(t, err)
	h.out.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cardsPath := filepath.Join(tmp, "cards.pdf")
	_, err = dir.PrintCards(ctx, service.Query{}, service.CardOptions{IDs: []string{"E001"}, Path: cardsPath})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, cardsPath)

	_, err = dir.PrintCards(ctx, service.Query{}, service.CardOptions{IDs: []string{"E001"}, Path: cardsPath, NoPhotos: true})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, cardsPath)

	xlsxPath := filepath.Join(tmp, "all.xlsx")
	_, err = dir.Export(ctx, service.Query{}, xlsxPath)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, xlsxPath)

	assert.Empty(t, h.srv.PrintLogs())
	assert.NotContains(t, h.out.String(), "Rendered")
	assert.NotContains(t, h.out.String(), "Exported")
	assert.Equal(t, 1, h.srv.Hits("GET /employees"))
}

func TestPhotosRejectEmptySelectionWithoutRequest(t *testing.T) {
	h := newHarness(t)
	h.login(t, "hr")

	_, err := service.NewDirectoryService(h.app).DownloadPhotos(context.Background(), service.Query{Search: "nobody-matches"}, filepath.Join(t.TempDir(), "p.zip"))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBusiness, apperrors.KindOf(err))
	assert.Zero(t, h.srv.Hits("POST /download-zip"))
}

func TestUploadSkipsUnmatchedFiles(t *testing.T) {
	h := newHarness(t)
	h.login(t, "hr")

	tmp := t.TempDir()
	var paths []string
	for _, name := range []string{"E002.jpg", "X999.png", "notes.txt"} {
		p := filepath.Join(tmp, name)
		require.NoError(t, os.WriteFile(p, []byte("img"), 0644))
		paths = append(paths, p)
	}

	res, err := service.NewPhotoService(h.app).Upload(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, []string{"E002.jpg"}, res.Uploaded)
	assert.Contains(t, h.out.String(), "X999.png")
	assert.Contains(t, h.out.String(), "notes.txt")
}

func TestRoleGatesBeforeNetwork(t *testing.T) {
	h := newHarness(t)
	h.login(t, "staff")

	_, err := service.NewDirectoryService(h.app).View(context.Background(), service.Query{})
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	err = service.NewInventoryService(h.app).Delete(context.Background(), "1", true)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	assert.Zero(t, h.srv.Hits("GET /employees"))
	assert.Zero(t, h.srv.Hits("DELETE /assets/:id"))
}

func TestTicketLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login(t, "manager")
	svc := service.NewTicketService(h.app)
	ctx := context.Background()

	err := svc.Update(ctx, "1", tickets.Change{To: tickets.StatusInProgress, Claim: true})
	require.NoError(t, err)

	err = svc.Update(ctx, "1", tickets.Change{To: tickets.StatusResolved})
	assert.Equal(t, apperrors.KindBusiness, apperrors.KindOf(err), "resolving needs a note")

	require.NoError(t, svc.Update(ctx, "1", tickets.Change{To: tickets.StatusResolved, Note: "replaced cable"}))
	require.NoError(t, svc.Comment(ctx, "1", "closed out"))

	got := h.srv.Tickets()[0]
	assert.Equal(t, "Resolved", got.Status)
	require.NotNil(t, got.Assignee)
	assert.Equal(t, "manager", *got.Assignee)
	assert.Equal(t, "replaced cable", got.ResolutionNote)
	require.Len(t, got.Comments, 1)
}

func TestTicketChangedOnServerIsReread(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")
	svc := service.NewTicketService(h.app)

	h.srv.SetTicketStatus("2", "Cancelled")
	err := svc.Update(context.Background(), "2", tickets.Change{To: tickets.StatusResolved, Note: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBusiness, apperrors.KindOf(err), "the server copy is terminal")
	assert.Zero(t, h.srv.Hits("PUT /tickets/:id"))
}

func TestStaffSeesOwnTicketsAndMayCancel(t *testing.T) {
	h := newHarness(t)
	h.login(t, "staff")
	svc := service.NewTicketService(h.app)
	ctx := context.Background()

	page, err := svc.Page(ctx, service.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Zero(t, h.srv.Hits("GET /tickets/manage"))

	err = svc.Update(ctx, "1", tickets.Change{To: tickets.StatusInProgress})
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	require.NoError(t, svc.Update(ctx, "1", tickets.Change{To: tickets.StatusCancelled}))
	assert.Equal(t, "Cancelled", h.srv.Tickets()[0].Status)

	created, err := svc.Create(ctx, "Printer jammed", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Medium", created.Priority)
}

func TestAssignAndDrift(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")
	inv := service.NewInventoryService(h.app)
	ctx := context.Background()

	drift, err := inv.Drift(ctx)
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, "PC-001", drift[0].AssetCode)
	assert.Equal(t, "Former Name", drift[0].SnapshotName)

	require.NoError(t, inv.Assign(ctx, "LT-001", testAssign("E003")))
	list := h.srv.Employees()
	var assigned bool
	for _, a := range mustAssets(t, h) {
		if a.AssetCode == "LT-001" {
			assigned = true
			require.NotNil(t, a.AssignedTo)
			assert.Equal(t, list[2].EmployeeName, a.AssignedTo.EmployeeName)
			assert.Equal(t, "In Use", a.UsageStatus)
		}
	}
	assert.True(t, assigned)
}

func TestMenuAndDeleteGuard(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	nodes, err := service.NewMenuService(h.app).Compose(context.Background())
	require.NoError(t, err)
	labels := make([]string, len(nodes))
	for i, n := range nodes {
		labels[i] = n.Label
	}
	assert.Contains(t, labels, "System Admin")

	users := service.NewUserService(h.app)
	ok, err := users.CanDelete(policy.Account{Username: "root"})
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = users.CanDelete(policy.Account{Username: "admin"})
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = users.CanDelete(policy.Account{Username: "staff"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExpiredSessionResetsCache(t *testing.T) {
	h := newHarness(t)
	h.login(t, "hr")
	dash := service.NewDashboardService(h.app)

	_, err := dash.Stats(context.Background(), false)
	require.NoError(t, err)
	require.True(t, h.app.Employees.Loaded())

	h.srv.Expire()
	_, err = dash.Stats(context.Background(), true)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
	assert.True(t, h.app.SessionExpired())
	assert.False(t, h.app.Employees.Loaded())
	assert.Empty(t, h.app.Session.Token())
}

func testAssign(employeeID string) assets.Target {
	return assets.Target{EmployeeID: employeeID}
}

func mustAssets(t *testing.T, h *harness) []api.Asset {
	t.Helper()
	list, err := h.app.API.ListAssets(context.Background(), "")
	require.NoError(t, err)
	return list
}
