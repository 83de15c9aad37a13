package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/itops/staffdesk/pkg/alerts"
	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/dates"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/metrics"
)

// DefaultMaxPhotoRows caps a single photo ZIP request.
const DefaultMaxPhotoRows = 100

// Action names used in metrics.
const (
	ActionPhotos = "photos"
	ActionSheet  = "spreadsheet"
	ActionPrint  = "print"
)

// Backend is the part of the API the export actions call.
type Backend interface {
	DownloadZip(ctx context.Context, employeeIDs []string) ([]byte, error)
	LogPrint(ctx context.Context, entry api.PrintLog) error
}

// Options configures an Exporter
type Options struct {
	MaxPhotoRows int
	// Notify shows refusals to the operator.
	Notify  alerts.Sink
	Metrics *metrics.Metrics
}

// Exporter runs bulk actions over the reconciler's visible rows.
type Exporter struct {
	rec     *Reconciler
	backend Backend
	limit   int
	notify  alerts.Sink
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewExporter creates an exporter
func NewExporter(rec *Reconciler, backend Backend, opts Options) *Exporter {
	limit := opts.MaxPhotoRows
	if limit <= 0 {
		limit = DefaultMaxPhotoRows
	}
	notify := opts.Notify
	if notify == nil {
		notify = func(alerts.Alert) {}
	}
	return &Exporter{
		rec:     rec,
		backend: backend,
		limit:   limit,
		notify:  notify,
		metrics: opts.Metrics,
		now:     time.Now,
	}
}

// MaxPhotoRows is the effective photo download cap.
func (x *Exporter) MaxPhotoRows() int {
	return x.limit
}

func (x *Exporter) reject(action, reason, msg, hint string) error {
	x.metrics.ObserveRejected(action, reason)
	x.notify(alerts.Alert{
		Key:       "export:" + action,
		Level:     alerts.LevelWarning,
		Message:   msg,
		Hint:      hint,
		Timestamp: x.now(),
	})
	logger.Warn("Bulk action refused", "action", action, "reason", reason)
	return apperrors.BusinessError(msg, hint)
}

// DownloadPhotos requests a ZIP of the visible employees' photos. Above the
// cap the request is refused before anything is sent.
func (x *Exporter) DownloadPhotos(ctx context.Context) ([]byte, int, error) {
	rows := x.rec.Visible()
	if len(rows) == 0 {
		return nil, 0, x.reject(ActionPhotos, "empty", "No employees to download", "Adjust the filters so at least one employee is visible")
	}
	if len(rows) > x.limit {
		return nil, 0, x.reject(ActionPhotos, "limit",
			fmt.Sprintf("Too many employees selected (%d). Photo download is limited to %d at a time", len(rows), x.limit),
			"Narrow the filters and download in batches")
	}

	ids := make([]string, 0, len(rows))
	for _, e := range rows {
		ids = append(ids, e.EmployeeID)
	}
	data, err := x.backend.DownloadZip(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	x.metrics.ObserveExport(ActionPhotos, len(ids))
	logger.Info("Photo archive downloaded", "count", len(ids), "bytes", len(data))
	return data, len(ids), nil
}

// WriteSpreadsheet writes the visible rows as an xlsx workbook.
func (x *Exporter) WriteSpreadsheet(w io.Writer) (int, error) {
	rows := x.rec.Visible()
	if len(rows) == 0 {
		return 0, x.reject(ActionSheet, "empty", "No employees to export", "Adjust the filters so at least one employee is visible")
	}
	if err := WriteWorkbook(w, rows); err != nil {
		return 0, err
	}
	x.metrics.ObserveExport(ActionSheet, len(rows))
	return len(rows), nil
}

// PrintSelection picks the visible employees with the given ids, in visible
// order. An empty ids selects every visible row.
func (x *Exporter) PrintSelection(ids []string) []api.Employee {
	rows := x.rec.Visible()
	if len(ids) == 0 {
		out := make([]api.Employee, len(rows))
		copy(out, rows)
		return out
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]api.Employee, 0, len(ids))
	for _, e := range rows {
		if want[e.EmployeeID] {
			out = append(out, e)
		}
	}
	return out
}

// RecordPrint logs a finished print run. Failures are logged only.
func (x *Exporter) RecordPrint(ctx context.Context, printed []api.Employee, by, layout string) {
	ids := make([]string, 0, len(printed))
	for _, e := range printed {
		ids = append(ids, e.EmployeeID)
	}
	x.metrics.ObserveExport(ActionPrint, len(ids))
	if err := x.backend.LogPrint(ctx, api.PrintLog{EmployeeIDs: ids, PrintedBy: by, Layout: layout}); err != nil {
		logger.Warn("Print history not recorded", "count", len(ids), "err", err)
	}
}

// column is one exported spreadsheet column.
type column struct {
	title string
	value func(api.Employee) string
}

var columns = []column{
	{"Employee ID", func(e api.Employee) string { return e.EmployeeID }},
	{"Name", func(e api.Employee) string { return e.EmployeeName }},
	{"Status", func(e api.Employee) string { return e.EmployeeStatus }},
	{"Department", func(e api.Employee) string { return e.EmployeeDepartment }},
	{"Position", func(e api.Employee) string { return e.EmployeePosition }},
	{"Type", func(e api.Employee) string { return e.EmployeeType }},
	{"Gender", func(e api.Employee) string { return e.EmployeeGender }},
	{"Join Date", func(e api.Employee) string { return dates.Format(e.EmployeeJoinDate) }},
	{"Left Date", func(e api.Employee) string { return dates.Format(e.EmployeeLeftDate) }},
	{"Maternity", func(e api.Employee) string { return e.MaternityType }},
	{"Maternity Begin", func(e api.Employee) string { return dates.Format(e.MaternityBegin) }},
	{"Maternity End", func(e api.Employee) string { return dates.Format(e.MaternityEnd) }},
	{"Contract Type", func(e api.Employee) string { return e.ContractType }},
	{"Contract Start", func(e api.Employee) string { return dates.Format(e.ContractStart) }},
	{"Contract End", func(e api.Employee) string { return dates.Format(e.ContractEnd) }},
}

// Headers lists the exported column titles in order.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.title
	}
	return out
}
