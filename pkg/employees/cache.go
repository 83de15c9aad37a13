// Package employees holds the process-wide employee roster cache. Every
// feature that needs the roster (dashboard, directory, photo upload
// validation, asset assignment) reads the same snapshot from one Cache.
package employees

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itops/staffdesk/pkg/alerts"
	"github.com/itops/staffdesk/pkg/api"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Source describes where the current snapshot came from.
const (
	SourceNone   = ""
	SourceOnline = "online"
	SourceError  = "error"
)

// Alert keys raised by the cache, one per failure class.
const (
	AlertUpstream     = "employees:upstream"
	AlertConnectivity = "employees:connectivity"
	AlertServer       = "employees:server"
)

var alertKeys = []string{AlertUpstream, AlertConnectivity, AlertServer}

const flightKey = "employees"

// Fetcher loads the full roster. *api.API satisfies it.
type Fetcher interface {
	ListEmployees(ctx context.Context) ([]api.Employee, error)
}

// Result is what a Fetch hands back to its caller.
type Result struct {
	Employees []api.Employee
	Source    string
	Err       error
}

type snapshot struct {
	employees []api.Employee
	byID      map[string]int
	source    string
	loaded    bool
	err       error
	fetchedAt time.Time
}

func (s *snapshot) result() Result {
	return Result{Employees: s.employees, Source: s.source, Err: s.err}
}

var empty = &snapshot{}

// Cache is a lazily populated, single-flight roster cache. The collection is
// replaced as a whole; readers never observe a partial roster.
type Cache struct {
	fetcher  Fetcher
	notifier *alerts.Notifier
	metrics  *metrics.Metrics

	group   singleflight.Group
	snap    atomic.Pointer[snapshot]
	loading atomic.Int32
	fetches atomic.Int64
	now     func() time.Time

	// mu orders Reset against stores; gen is bumped by Reset and a fetch
	// started under an older gen never lands.
	mu  sync.Mutex
	gen uint64
}

// New creates an empty cache. notifier and m may be nil.
func New(fetcher Fetcher, notifier *alerts.Notifier, m *metrics.Metrics) *Cache {
	if notifier == nil {
		notifier = alerts.NewNotifier(nil, 0)
	}
	c := &Cache{
		fetcher:  fetcher,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
	c.snap.Store(empty)
	return c
}

// Init warms the cache in the background. It is a no-op once loaded.
func (c *Cache) Init(ctx context.Context) {
	if c.Loaded() {
		return
	}
	go c.Fetch(ctx, false)
}

// Reset drops the snapshot. A fetch already in flight still completes for
// its waiters but its result is discarded.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.gen++
	c.snap.Store(empty)
	c.group.Forget(flightKey)
	c.mu.Unlock()
	logger.Debug("Employee cache reset")
}

func (c *Cache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// store publishes s unless a Reset happened since the fetch began.
func (c *Cache) store(gen uint64, s *snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		logger.Debug("Discarded roster from before reset")
		return false
	}
	c.snap.Store(s)
	return true
}

// Fetch returns the roster, loading it on first use. force bypasses the
// loaded short-circuit; a forced call arriving while a fetch is in flight
// joins that fetch instead of starting another.
func (c *Cache) Fetch(ctx context.Context, force bool) Result {
	if !force {
		if s := c.snap.Load(); s.loaded {
			return s.result()
		}
	}

	ch := c.group.DoChan(flightKey, func() (interface{}, error) {
		// a waiter may have queued behind a fetch that already finished
		if !force {
			if s := c.snap.Load(); s.loaded {
				return s, nil
			}
		}
		return c.load(context.WithoutCancel(ctx), c.generation()), nil
	})

	select {
	case res := <-ch:
		return res.Val.(*snapshot).result()
	case <-ctx.Done():
		s := c.snap.Load()
		return Result{Employees: s.employees, Source: s.source, Err: ctx.Err()}
	}
}

func (c *Cache) load(ctx context.Context, gen uint64) *snapshot {
	c.loading.Add(1)
	defer c.loading.Add(-1)
	c.fetches.Add(1)

	logger.Debug("Fetching employee roster")
	emps, err := c.fetcher.ListEmployees(ctx)
	if err != nil {
		s := &snapshot{source: SourceError, err: err, fetchedAt: c.now()}
		if !c.store(gen, s) {
			return s
		}
		c.metrics.ObserveEmployeeFetch(SourceError, 0)
		logger.Error("Employee fetch failed", "err", err)
		c.raise(err)
		return s
	}

	if emps == nil {
		emps = []api.Employee{}
	}
	s := &snapshot{
		employees: emps,
		byID:      index(emps),
		source:    SourceOnline,
		loaded:    true,
		fetchedAt: c.now(),
	}
	if !c.store(gen, s) {
		return s
	}
	c.notifier.Resolve(alertKeys...)
	c.metrics.ObserveEmployeeFetch(SourceOnline, len(emps))
	logger.Info("Employee roster loaded", "count", len(emps))
	return s
}

// raise shows one alert per failure class per episode. Auth failures are
// left to the session handling in the HTTP client.
func (c *Cache) raise(err error) {
	var key, msg, hint string
	switch kind := apperrors.KindOf(err); {
	case kind == apperrors.KindAuth:
		return
	case apperrors.StatusOf(err) == http.StatusServiceUnavailable:
		key, msg, hint = AlertUpstream, "Upstream HR system unreachable", "The HR database is offline; employee data is unavailable until it returns"
	case kind == apperrors.KindNetwork || kind == apperrors.KindTimeout:
		key, msg, hint = AlertConnectivity, "No connectivity to the backend", "Check your network connection and try again"
	default:
		key, msg, hint = AlertServer, "Server error while loading employees", "Try refreshing in a moment"
	}
	if c.notifier.Raise(key, alerts.LevelCritical, msg, hint) {
		c.metrics.ObserveAlert(key)
	}
}

func index(emps []api.Employee) map[string]int {
	m := make(map[string]int, len(emps))
	for i, e := range emps {
		if e.EmployeeID != "" {
			m[e.EmployeeID] = i
		}
	}
	return m
}

// Snapshot returns the current state without fetching.
func (c *Cache) Snapshot() Result {
	return c.snap.Load().result()
}

// Lookup finds an employee in the current snapshot by id.
func (c *Cache) Lookup(id string) (api.Employee, bool) {
	s := c.snap.Load()
	i, ok := s.byID[id]
	if !ok {
		return api.Employee{}, false
	}
	return s.employees[i], true
}

// Loading reports whether a fetch is in flight.
func (c *Cache) Loading() bool { return c.loading.Load() > 0 }

// Loaded reports whether the last fetch succeeded.
func (c *Cache) Loaded() bool { return c.snap.Load().loaded }

// Source is SourceOnline, SourceError or SourceNone before the first fetch.
func (c *Cache) Source() string { return c.snap.Load().source }

// FetchedAt is when the current snapshot was stored.
func (c *Cache) FetchedAt() time.Time { return c.snap.Load().fetchedAt }

// Fetches counts network fetches issued since creation.
func (c *Cache) Fetches() int64 { return c.fetches.Load() }

type ctxKey struct{}

// NewContext returns a context carrying c.
func NewContext(ctx context.Context, c *Cache) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the cache stored by NewContext.
func FromContext(ctx context.Context) (*Cache, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Cache)
	return c, ok && c != nil
}
