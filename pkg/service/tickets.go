package service

import (
	"context"
	"fmt"

	"github.com/itops/staffdesk/pkg/api"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/formatter"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/itops/staffdesk/pkg/policy"
	"github.com/itops/staffdesk/pkg/tickets"
)

// TicketService is the support desk
type TicketService struct {
	app      *App
	workflow *tickets.Workflow
}

// NewTicketService creates a ticket service
func NewTicketService(app *App) *TicketService {
	return &TicketService{app: app, workflow: tickets.NewWorkflow(app.API)}
}

func (s *TicketService) actor() tickets.Actor {
	return tickets.Actor{Username: s.app.Username(), Role: s.app.Role()}
}

// ListOptions selects a page of tickets
type ListOptions struct {
	Status string
	Page   int
	Size   int
	// Mine lists the caller's own tickets even for managers.
	Mine bool
}

// Page fetches tickets. Managers see every ticket; other roles see only
// their own.
func (s *TicketService) Page(ctx context.Context, opts ListOptions) (*api.TicketPage, error) {
	if err := s.app.Require(policy.CapCreateTickets); err != nil {
		return nil, err
	}
	q := api.TicketQuery{Page: opts.Page, Size: opts.Size}
	if opts.Status != "" {
		st, ok := tickets.ParseStatus(opts.Status)
		if !ok {
			return nil, apperrors.ValidationError(0, fmt.Sprintf("Unknown ticket status %q", opts.Status))
		}
		q.Status = string(st)
	}
	if opts.Mine || !policy.Can(s.app.Role(), policy.CapManageTickets) {
		return s.app.API.MyTickets(ctx, q)
	}
	return s.app.API.ManageTickets(ctx, q)
}

// List prints a page of tickets
func (s *TicketService) List(ctx context.Context, opts ListOptions) error {
	page, err := s.Page(ctx, opts)
	if err != nil {
		return err
	}
	if err := output.PrintRows(formatter.TicketHeaders, formatter.TicketRows(page.Items), page); err != nil {
		return err
	}
	if output.GetOutputFormat() != output.FormatJSON && page.Total > len(page.Items) {
		output.PrintInfo("Page %d, %d of %d ticket%s", page.Page, len(page.Items), page.Total, pluralize(page.Total))
	}
	return nil
}

// Get finds one ticket the caller can see
func (s *TicketService) Get(ctx context.Context, id string) (*api.Ticket, error) {
	if err := s.app.Require(policy.CapCreateTickets); err != nil {
		return nil, err
	}
	if policy.Can(s.app.Role(), policy.CapManageTickets) {
		t, err := s.workflow.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return t, nil
		}
		return nil, apperrors.NotFoundError(fmt.Sprintf("ticket %s", id))
	}

	for page := 1; ; page++ {
		p, err := s.app.API.MyTickets(ctx, api.TicketQuery{Page: page, Size: 100})
		if err != nil {
			return nil, err
		}
		for i := range p.Items {
			if p.Items[i].ID.String() == id {
				return &p.Items[i], nil
			}
		}
		if len(p.Items) == 0 || page*100 >= p.Total {
			return nil, apperrors.NotFoundError(fmt.Sprintf("ticket %s", id))
		}
	}
}

// Show prints one ticket with its comments
func (s *TicketService) Show(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", t)
	}
	record := map[string]interface{}{
		"Title":     t.Title,
		"Status":    t.Status,
		"Priority":  t.Priority,
		"Requester": t.Requester,
		"Comments":  len(t.Comments),
	}
	if t.Assignee != nil {
		record["Assignee"] = *t.Assignee
	}
	if t.ResolutionNote != "" {
		record["Resolution"] = t.ResolutionNote
	}
	if err := output.PrintRecord("Ticket "+t.ID.String(), record); err != nil {
		return err
	}
	for _, c := range t.Comments {
		fmt.Fprintf(output.Out, "  %s %s: %s\n", formatter.Info.Sprint(c.CreatedAt), formatter.Bold.Sprint(c.Author), c.Content)
	}
	return nil
}

// Update moves a ticket along its workflow. If the server rejects the
// change the current server copy is printed so the operator sees the real
// state.
func (s *TicketService) Update(ctx context.Context, id string, c tickets.Change) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	updated, err := s.workflow.Transition(ctx, s.actor(), *t, c)
	if err != nil {
		if updated != nil {
			output.PrintWarning("Ticket %s is now %s on the server", updated.ID, updated.Status)
		}
		return err
	}
	output.PrintSuccess("Ticket %s is now %s", updated.ID, updated.Status)
	return nil
}

// Comment appends a comment
func (s *TicketService) Comment(ctx context.Context, id, content string) error {
	if err := s.app.Require(policy.CapCreateTickets); err != nil {
		return err
	}
	if _, err := s.workflow.Comment(ctx, id, content); err != nil {
		return err
	}
	output.PrintSuccess("Comment added to ticket %s", id)
	return nil
}

// Create raises a ticket
func (s *TicketService) Create(ctx context.Context, title, description, priority string) (*api.Ticket, error) {
	if err := s.app.Require(policy.CapCreateTickets); err != nil {
		return nil, err
	}
	t, err := s.workflow.Create(ctx, title, description, priority)
	if err != nil {
		return nil, err
	}
	output.PrintSuccess("Created ticket %s (%s)", t.ID, t.Priority)
	return t, nil
}
