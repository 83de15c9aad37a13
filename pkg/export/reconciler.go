// Package export acts on exactly the rows the operator sees: the table layer
// publishes its visible rows into a Reconciler and every bulk action reads
// the snapshot current at trigger time.
package export

import (
	"sync"
	"sync/atomic"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/logger"
)

// Reconciler holds the visible row set. Publishers replace it whole;
// readers get an immutable snapshot.
type Reconciler struct {
	rows atomic.Pointer[[]api.Employee]

	mu     sync.Mutex
	subs   map[int]func([]api.Employee)
	nextID int
}

// NewReconciler creates a reconciler with an empty visible set.
func NewReconciler() *Reconciler {
	r := &Reconciler{subs: make(map[int]func([]api.Employee))}
	empty := []api.Employee{}
	r.rows.Store(&empty)
	return r
}

// Seed initializes the visible set from the filter output before the table
// has published anything.
func (r *Reconciler) Seed(rows []api.Employee) {
	r.Publish(rows)
}

// Publish replaces the visible set and notifies subscribers.
func (r *Reconciler) Publish(rows []api.Employee) {
	cp := make([]api.Employee, len(rows))
	copy(cp, rows)
	r.rows.Store(&cp)

	r.mu.Lock()
	handlers := make([]func([]api.Employee), 0, len(r.subs))
	for _, h := range r.subs {
		handlers = append(handlers, h)
	}
	r.mu.Unlock()

	logger.Debug("Visible rows published", "count", len(cp))
	for _, h := range handlers {
		h(cp)
	}
}

// Visible returns the current snapshot. Callers must not modify it.
func (r *Reconciler) Visible() []api.Employee {
	return *r.rows.Load()
}

// Subscribe registers fn for every publication and returns a function that
// removes it.
func (r *Reconciler) Subscribe(fn func([]api.Employee)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

// Guard drops late updates aimed at a view that is gone.
type Guard struct {
	mounted atomic.Bool
}

// NewGuard returns a mounted guard.
func NewGuard() *Guard {
	g := &Guard{}
	g.mounted.Store(true)
	return g
}

// Unmount marks the view gone; later Apply calls are no-ops.
func (g *Guard) Unmount() {
	g.mounted.Store(false)
}

// Mounted reports whether the view is still live.
func (g *Guard) Mounted() bool {
	return g.mounted.Load()
}

// Apply runs fn only while mounted and reports whether it ran.
func (g *Guard) Apply(fn func()) bool {
	if !g.mounted.Load() {
		logger.Debug("Dropped update for unmounted view")
		return false
	}
	fn()
	return true
}
