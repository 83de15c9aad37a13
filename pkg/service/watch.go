package service

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/itops/staffdesk/pkg/policy"
	"github.com/itops/staffdesk/pkg/poller"
)

// WatchOptions configures the unattended watch loop
type WatchOptions struct {
	Interval time.Duration
	// MetricsAddr serves /metrics and /health when set.
	MetricsAddr string
}

// WatchService keeps the open ticket count and roster warm in the
// background until cancelled.
type WatchService struct {
	app *App
}

// NewWatchService creates a watch service
func NewWatchService(app *App) *WatchService {
	return &WatchService{app: app}
}

// Router exposes the metrics registry and a health probe.
func (s *WatchService) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(s.app.Metrics.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"roster_source":   s.app.Employees.Source(),
			"session_expired": s.app.SessionExpired(),
		})
	})
	return r
}

// Run blocks until ctx is done or the session ends.
func (s *WatchService) Run(ctx context.Context, opts WatchOptions) error {
	if err := s.app.Require(policy.CapViewDashboard); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var srv *http.Server
	if opts.MetricsAddr != "" {
		srv = &http.Server{Addr: opts.MetricsAddr, Handler: s.Router()}
		go func() {
			logger.Info("Serving metrics", "addr", opts.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "err", err)
				cancel()
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Metrics server shutdown", "err", err)
			}
		}()
	}

	s.app.Employees.Init(s.app.Context(ctx))

	var last atomic.Int64
	last.Store(-1)
	p := poller.New(s.app.API, s.app.Role(), poller.Options{
		Interval: opts.Interval,
		Metrics:  s.app.Metrics,
		OnCount: func(open int) {
			if last.Swap(int64(open)) != int64(open) {
				output.PrintInfo("%d open ticket%s", open, pluralize(open))
			}
		},
	})
	started, err := p.Start(ctx)
	if err != nil {
		return err
	}
	if started {
		defer p.Stop()
	} else {
		output.PrintInfo("Ticket notifications are not available for role %s", s.app.Role())
	}

	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if s.app.SessionExpired() {
				output.PrintWarning("Session expired, please log in again")
				return nil
			}
		}
	}
}
