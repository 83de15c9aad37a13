package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/itops/staffdesk/pkg/client"
	"github.com/itops/staffdesk/pkg/logger"
)

func (q TicketQuery) params() map[string]string {
	page, size := q.Page, q.Size
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	params := map[string]string{
		"page": fmt.Sprintf("%d", page),
		"size": fmt.Sprintf("%d", size),
	}
	if q.Status != "" {
		params["status"] = q.Status
	}
	return params
}

// ManageTickets lists every ticket (manager view)
func (a *API) ManageTickets(ctx context.Context, q TicketQuery) (*TicketPage, error) {
	logger.Debug("Fetching managed tickets", "page", q.Page, "status", q.Status)
	return a.ticketPage(ctx, "/tickets/manage", q, client.Loud)
}

// MyTickets lists tickets raised by the current user
func (a *API) MyTickets(ctx context.Context, q TicketQuery) (*TicketPage, error) {
	logger.Debug("Fetching my tickets", "page", q.Page)
	return a.ticketPage(ctx, "/tickets/my-tickets", q, client.Loud)
}

// CountOpenTickets reads the open ticket total. Used by the unattended
// poller, so failures are never shown to the operator.
func (a *API) CountOpenTickets(ctx context.Context) (int, error) {
	page, err := a.ticketPage(ctx, "/tickets/manage", TicketQuery{Status: "Open", Page: 1, Size: 1}, client.Silent)
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

func (a *API) ticketPage(ctx context.Context, path string, q TicketQuery, sev client.Severity) (*TicketPage, error) {
	var page TicketPage
	if _, err := a.c.Do(ctx, client.Call{
		Method:   http.MethodGet,
		Path:     path,
		Query:    q.params(),
		Result:   &page,
		Severity: sev,
	}); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateTicket changes status, priority, assignee or resolution note
func (a *API) UpdateTicket(ctx context.Context, id string, upd TicketUpdate) (*Ticket, error) {
	logger.Debug("Updating ticket", "id", id, "status", upd.Status)

	var ticket Ticket
	if _, err := a.c.Do(ctx, client.Call{
		Method: http.MethodPut,
		Path:   "/tickets/" + url.PathEscape(id),
		Body:   upd,
		Result: &ticket,
	}); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// AddComment appends a comment to a ticket
func (a *API) AddComment(ctx context.Context, id, content string) (*Comment, error) {
	var comment Comment
	if _, err := a.c.Do(ctx, client.Call{
		Method: http.MethodPost,
		Path:   "/tickets/" + url.PathEscape(id) + "/comments",
		Body:   map[string]string{"content": content},
		Result: &comment,
	}); err != nil {
		return nil, err
	}
	return &comment, nil
}

// CreateTicket raises a new ticket
func (a *API) CreateTicket(ctx context.Context, t NewTicket) (*Ticket, error) {
	var ticket Ticket
	if _, err := a.c.Do(ctx, client.Call{
		Method: http.MethodPost,
		Path:   "/tickets",
		Body:   t,
		Result: &ticket,
	}); err != nil {
		return nil, err
	}
	return &ticket, nil
}
