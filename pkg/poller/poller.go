// Package poller periodically reads the open ticket count for roles that
// manage tickets. It runs on its own schedule, independent of the employee
// cache, and never shows failures to the operator.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/metrics"
	"github.com/itops/staffdesk/pkg/policy"
	"github.com/robfig/cron/v3"
)

// DefaultInterval between polls
const DefaultInterval = 30 * time.Second

// Counter reads the open ticket total. *api.API satisfies it.
type Counter interface {
	CountOpenTickets(ctx context.Context) (int, error)
}

// Options configures a Poller
type Options struct {
	Interval time.Duration
	// Timeout bounds one tick; zero means Interval.
	Timeout time.Duration
	Metrics *metrics.Metrics
	// OnCount receives every successful reading.
	OnCount func(open int)
}

// Poller polls the open ticket count on a cron schedule.
type Poller struct {
	counter  Counter
	role     string
	interval time.Duration
	timeout  time.Duration
	metrics  *metrics.Metrics
	onCount  func(int)

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	last    int
	lastErr error
	ticks   int
}

// New creates a poller for role
func New(counter Counter, role string, opts Options) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = interval
	}
	return &Poller{
		counter:  counter,
		role:     role,
		interval: interval,
		timeout:  timeout,
		metrics:  opts.Metrics,
		onCount:  opts.OnCount,
	}
}

// Enabled reports whether role gets ticket notifications at all.
func Enabled(role string) bool {
	return policy.Can(role, policy.CapManageTickets)
}

// Start polls once immediately and then every interval. It returns false
// when the role does not poll.
func (p *Poller) Start(ctx context.Context) (bool, error) {
	if !Enabled(p.role) {
		logger.Debug("Ticket poller disabled for role", "role", p.role)
		return false, nil
	}

	p.mu.Lock()
	if p.cron != nil {
		p.mu.Unlock()
		return true, nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", p.interval), func() { p.Tick(runCtx) }); err != nil {
		cancel()
		p.mu.Unlock()
		return false, fmt.Errorf("failed to schedule ticket poll: %w", err)
	}
	p.cron, p.cancel = c, cancel
	p.mu.Unlock()

	logger.Info("Starting ticket poller", "interval", p.interval)
	go p.Tick(runCtx)
	c.Start()
	return true, nil
}

// Stop halts polling and waits for a running tick to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	c, cancel := p.cron, p.cancel
	p.cron = nil
	p.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	logger.Info("Stopped ticket poller")
}

// Tick performs one poll.
func (p *Poller) Tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	n, err := p.counter.CountOpenTickets(ctx)

	p.mu.Lock()
	p.ticks++
	p.lastErr = err
	if err == nil {
		p.last = n
	}
	p.mu.Unlock()

	switch {
	case err == nil:
		p.metrics.ObservePoll("ok")
		p.metrics.SetOpenTickets(n)
		logger.Debug("Ticket poll", "open", n)
		if p.onCount != nil {
			p.onCount(n)
		}
	case apperrors.IsTransient(err):
		p.metrics.ObservePoll("skipped")
		logger.Debug("Ticket poll skipped", "kind", apperrors.KindOf(err))
	default:
		p.metrics.ObservePoll("error")
		logger.Error("Ticket poll failed", "kind", apperrors.KindOf(err), "err", err)
	}
}

// Last returns the most recent successful count and the last tick's error.
func (p *Poller) Last() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.lastErr
}

// Ticks counts completed polls.
func (p *Poller) Ticks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticks
}
