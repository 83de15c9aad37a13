package api

import (
	"context"
	"net/http"

	"github.com/itops/staffdesk/pkg/client"
	"github.com/itops/staffdesk/pkg/logger"
)

// ListEmployees fetches the whole roster. The roster cache raises its own
// alert for this call, so the global one is suppressed.
func (a *API) ListEmployees(ctx context.Context) ([]Employee, error) {
	logger.Debug("Fetching employees")

	var list EmployeeList
	_, err := a.c.Do(ctx, client.Call{
		Method:  http.MethodGet,
		Path:    "/employees",
		Result:  &list,
		NoAlert: true,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Employees fetched", "count", len(list.Data))
	return list.Data, nil
}
