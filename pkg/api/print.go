package api

import (
	"context"
	"net/http"

	"github.com/itops/staffdesk/pkg/client"
	"github.com/itops/staffdesk/pkg/logger"
)

// LogPrint records an ID-card print run. Best effort: a failure is logged
// and never shown, printing already happened.
func (a *API) LogPrint(ctx context.Context, entry PrintLog) error {
	logger.Debug("Logging print run", "count", len(entry.EmployeeIDs))

	_, err := a.c.Do(ctx, client.Call{
		Method:   http.MethodPost,
		Path:     "/print/log",
		Body:     entry,
		Severity: client.Silent,
	})
	return err
}

// LogToolPrint records a print made from one of the print tools
func (a *API) LogToolPrint(ctx context.Context, entry ToolPrintLog) error {
	_, err := a.c.Do(ctx, client.Call{
		Method:   http.MethodPost,
		Path:     "/print/log-tool",
		Body:     entry,
		Severity: client.Silent,
	})
	return err
}

// PrintStats fetches print history counters
func (a *API) PrintStats(ctx context.Context) (*PrintStats, error) {
	var stats PrintStats
	if _, err := a.c.Do(ctx, client.Call{
		Method: http.MethodGet,
		Path:   "/print/stats",
		Result: &stats,
	}); err != nil {
		return nil, err
	}
	return &stats, nil
}
