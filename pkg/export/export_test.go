package export

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/itops/staffdesk/pkg/alerts"
	"github.com/itops/staffdesk/pkg/api"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeBackend struct {
	zipCalls atomic.Int32
	lastIDs  []string
	logged   []api.PrintLog
	logErr   error
}

func (f *fakeBackend) DownloadZip(ctx context.Context, ids []string) ([]byte, error) {
	f.zipCalls.Add(1)
	f.lastIDs = ids
	return []byte("PK"), nil
}

func (f *fakeBackend) LogPrint(ctx context.Context, entry api.PrintLog) error {
	f.logged = append(f.logged, entry)
	return f.logErr
}

func employees(n int) []api.Employee {
	out := make([]api.Employee, n)
	for i := range out {
		out[i] = api.Employee{
			EmployeeID:       fmt.Sprintf("E%03d", i+1),
			EmployeeName:     fmt.Sprintf("Employee %d", i+1),
			EmployeeStatus:   "Active",
			EmployeeJoinDate: "15/01/2024",
		}
	}
	return out
}

type notices struct {
	mu  sync.Mutex
	got []alerts.Alert
}

func (n *notices) sink(a alerts.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, a)
}

func TestPhotoDownloadCap(t *testing.T) {
	rec := NewReconciler()
	backend := &fakeBackend{}
	n := &notices{}
	m := metrics.New()
	x := NewExporter(rec, backend, Options{Notify: n.sink, Metrics: m})

	rec.Publish(employees(101))
	_, _, err := x.DownloadPhotos(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindBusiness, apperrors.KindOf(err))
	assert.Equal(t, int32(0), backend.zipCalls.Load())
	require.Len(t, n.got, 1)
	assert.Contains(t, n.got[0].Message, "101")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportRejectedTotal.WithLabelValues(ActionPhotos, "limit")))

	rec.Publish(employees(100))
	data, count, err := x.DownloadPhotos(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), data)
	assert.Equal(t, 100, count)
	assert.Equal(t, int32(1), backend.zipCalls.Load())
	assert.Len(t, backend.lastIDs, 100)
}

func TestPhotoDownloadEmptyRejected(t *testing.T) {
	backend := &fakeBackend{}
	x := NewExporter(NewReconciler(), backend, Options{})

	_, _, err := x.DownloadPhotos(context.Background())
	assert.Equal(t, apperrors.KindBusiness, apperrors.KindOf(err))
	assert.Equal(t, int32(0), backend.zipCalls.Load())
}

func TestCustomCap(t *testing.T) {
	rec := NewReconciler()
	x := NewExporter(rec, &fakeBackend{}, Options{MaxPhotoRows: 5})
	assert.Equal(t, 5, x.MaxPhotoRows())

	rec.Publish(employees(6))
	_, _, err := x.DownloadPhotos(context.Background())
	assert.Error(t, err)
}

func TestSpreadsheetExportsOnlyVisibleRows(t *testing.T) {
	all := employees(50)
	all[3].EmployeeLeftDate = "not a date"

	rec := NewReconciler()
	rec.Seed(all)
	rec.Publish(all[:12])

	x := NewExporter(rec, &fakeBackend{}, Options{})
	var buf bytes.Buffer
	n, err := x.WriteSpreadsheet(&buf)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheetRows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, sheetRows, 13)
	assert.Equal(t, Headers(), sheetRows[0])
	assert.Equal(t, "E001", sheetRows[1][0])
	assert.Equal(t, "E012", sheetRows[12][0])
	// join date normalized, unparsable left date blank
	assert.Equal(t, "2024-01-15", sheetRows[1][7])
	if len(sheetRows[4]) > 8 {
		assert.Empty(t, sheetRows[4][8])
	}
}

func TestSnapshotTakenAtTrigger(t *testing.T) {
	rec := NewReconciler()
	rec.Publish(employees(3))
	snap := rec.Visible()

	rec.Publish(employees(1))

	assert.Len(t, snap, 3)
	assert.Len(t, rec.Visible(), 1)
}

func TestPublishCopiesInput(t *testing.T) {
	rec := NewReconciler()
	rows := employees(2)
	rec.Publish(rows)
	rows[0].EmployeeID = "changed"

	assert.Equal(t, "E001", rec.Visible()[0].EmployeeID)
}

func TestSubscribe(t *testing.T) {
	rec := NewReconciler()
	var seen []int
	unsubscribe := rec.Subscribe(func(rows []api.Employee) { seen = append(seen, len(rows)) })

	rec.Publish(employees(2))
	rec.Publish(employees(4))
	unsubscribe()
	unsubscribe()
	rec.Publish(employees(6))

	assert.Equal(t, []int{2, 4}, seen)
}

func TestPrintSelectionKeepsVisibleOrder(t *testing.T) {
	rec := NewReconciler()
	rec.Publish(employees(5))
	x := NewExporter(rec, &fakeBackend{}, Options{})

	got := x.PrintSelection([]string{"E004", "E002", "E999"})
	require.Len(t, got, 2)
	assert.Equal(t, "E002", got[0].EmployeeID)
	assert.Equal(t, "E004", got[1].EmployeeID)

	assert.Len(t, x.PrintSelection(nil), 5)
}

func TestRecordPrintSwallowsFailure(t *testing.T) {
	backend := &fakeBackend{logErr: apperrors.ServerError(500, "")}
	x := NewExporter(NewReconciler(), backend, Options{})

	x.RecordPrint(context.Background(), employees(2), "alice", "vertical")

	require.Len(t, backend.logged, 1)
	assert.Equal(t, []string{"E001", "E002"}, backend.logged[0].EmployeeIDs)
	assert.Equal(t, "alice", backend.logged[0].PrintedBy)
}

func TestGuard(t *testing.T) {
	g := NewGuard()
	applied := 0

	assert.True(t, g.Apply(func() { applied++ }))
	g.Unmount()
	assert.False(t, g.Mounted())
	assert.False(t, g.Apply(func() { applied++ }))
	assert.Equal(t, 1, applied)
}
