// Package api holds typed wrappers for every backend endpoint the console
// consumes. Each call goes through client.Client, which owns the token,
// failure classification and alerting.
package api

import (
	"github.com/itops/staffdesk/pkg/client"
)

// API exposes the backend endpoints
type API struct {
	c *client.Client
}

// New wraps c
func New(c *client.Client) *API {
	return &API{c: c}
}

// Client returns the underlying HTTP client
func (a *API) Client() *client.Client {
	return a.c
}
