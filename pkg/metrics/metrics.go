package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the console's Prometheus collectors. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	EmployeeFetchesTotal *prometheus.CounterVec
	AlertsTotal          *prometheus.CounterVec
	PollTicksTotal       *prometheus.CounterVec
	ExportRowsTotal      *prometheus.CounterVec
	ExportRejectedTotal  *prometheus.CounterVec
	OpenTickets          prometheus.Gauge
	RosterSize           prometheus.Gauge
}

// New creates collectors on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffdesk_http_requests_total",
				Help: "Outbound API requests by outcome class",
			},
			[]string{"method", "outcome"},
		),
		EmployeeFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffdesk_employee_fetches_total",
				Help: "Employee roster network fetches by resulting source",
			},
			[]string{"source"},
		),
		AlertsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffdesk_alerts_total",
				Help: "User-facing alerts shown, by key",
			},
			[]string{"key"},
		),
		PollTicksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffdesk_poll_ticks_total",
				Help: "Ticket notification poll ticks by result",
			},
			[]string{"result"},
		),
		ExportRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffdesk_export_rows_total",
				Help: "Rows handed to bulk actions",
			},
			[]string{"action"},
		),
		ExportRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffdesk_export_rejected_total",
				Help: "Bulk actions refused before any request was sent",
			},
			[]string{"action", "reason"},
		),
		OpenTickets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "staffdesk_open_tickets",
			Help: "Open ticket count seen by the last successful poll",
		}),
		RosterSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "staffdesk_roster_size",
			Help: "Employees held by the roster cache",
		}),
	}
}

// Handler exposes the registry over HTTP
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, outcome string) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) ObserveEmployeeFetch(source string, size int) {
	if m == nil {
		return
	}
	m.EmployeeFetchesTotal.WithLabelValues(source).Inc()
	m.RosterSize.Set(float64(size))
}

func (m *Metrics) ObserveAlert(key string) {
	if m == nil {
		return
	}
	m.AlertsTotal.WithLabelValues(key).Inc()
}

func (m *Metrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.PollTicksTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SetOpenTickets(n int) {
	if m == nil {
		return
	}
	m.OpenTickets.Set(float64(n))
}

func (m *Metrics) ObserveExport(action string, rows int) {
	if m == nil {
		return
	}
	m.ExportRowsTotal.WithLabelValues(action).Add(float64(rows))
}

func (m *Metrics) ObserveRejected(action, reason string) {
	if m == nil {
		return
	}
	m.ExportRejectedTotal.WithLabelValues(action, reason).Inc()
}
