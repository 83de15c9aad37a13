package tickets

import (
	"context"
	"fmt"
	"strings"

	"github.com/itops/staffdesk/pkg/api"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/policy"
)

// Backend is the part of the API the workflow needs
type Backend interface {
	ManageTickets(ctx context.Context, q api.TicketQuery) (*api.TicketPage, error)
	UpdateTicket(ctx context.Context, id string, upd api.TicketUpdate) (*api.Ticket, error)
	AddComment(ctx context.Context, id, content string) (*api.Comment, error)
	CreateTicket(ctx context.Context, t api.NewTicket) (*api.Ticket, error)
}

// Actor is the signed-in user
type Actor struct {
	Username string
	Role     string
}

// Change is a requested transition
type Change struct {
	To   Status
	Note string
	// Claim assigns the actor when moving Open → In Progress.
	Claim bool
}

// Plan validates c against t and builds the update to send. Every check
// happens here, before any network call.
func Plan(actor Actor, t api.Ticket, c Change) (api.TicketUpdate, error) {
	from, ok := ParseStatus(t.Status)
	if !ok {
		return api.TicketUpdate{}, apperrors.BusinessError(fmt.Sprintf("Ticket has unknown status %q", t.Status), "Refresh the ticket list")
	}

	if !allowed(actor, t, from, c.To) {
		return api.TicketUpdate{}, apperrors.ForbiddenError("You are not allowed to change this ticket")
	}

	if IsTerminal(from) {
		return api.TicketUpdate{}, apperrors.BusinessError(fmt.Sprintf("Ticket is %s and can no longer change", from), "")
	}
	if !CanTransition(from, c.To) {
		return api.TicketUpdate{}, apperrors.BusinessError(
			fmt.Sprintf("Cannot move a ticket from %s to %s", from, c.To),
			fmt.Sprintf("Allowed next states: %s", joinStatuses(Next(from))))
	}

	upd := api.TicketUpdate{Status: string(c.To)}
	if c.To == StatusResolved {
		note := strings.TrimSpace(c.Note)
		if note == "" {
			return api.TicketUpdate{}, apperrors.BusinessError("A resolution note is required to resolve a ticket", "Pass --note describing the fix")
		}
		upd.ResolutionNote = note
	}
	if c.Claim && from == StatusOpen && c.To == StatusInProgress && actor.Username != "" {
		name := actor.Username
		upd.Assignee = &name
	}
	return upd, nil
}

// allowed: managers drive the workflow; a requester may only cancel their
// own open ticket.
func allowed(actor Actor, t api.Ticket, from, to Status) bool {
	if policy.Can(actor.Role, policy.CapManageTickets) {
		return true
	}
	return to == StatusCancelled && from == StatusOpen &&
		actor.Username != "" && strings.EqualFold(actor.Username, t.Requester)
}

func joinStatuses(ss []Status) string {
	if len(ss) == 0 {
		return "none"
	}
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// Workflow applies planned changes and resyncs after a rejection.
type Workflow struct {
	backend Backend
}

// NewWorkflow creates a workflow
func NewWorkflow(b Backend) *Workflow {
	return &Workflow{backend: b}
}

// Transition validates and sends c. When the server rejects the change the
// returned ticket is the server's current copy (nil if it cannot be found)
// along with the server's error.
func (w *Workflow) Transition(ctx context.Context, actor Actor, t api.Ticket, c Change) (*api.Ticket, error) {
	upd, err := Plan(actor, t, c)
	if err != nil {
		return nil, err
	}

	updated, err := w.backend.UpdateTicket(ctx, t.ID.String(), upd)
	if err == nil {
		logger.Info("Ticket updated", "id", t.ID, "status", upd.Status)
		return updated, nil
	}

	logger.Warn("Ticket update rejected", "id", t.ID, "err", err)
	fresh, ferr := w.Find(ctx, t.ID.String())
	if ferr != nil {
		logger.Warn("Ticket resync failed", "id", t.ID, "err", ferr)
		return nil, err
	}
	return fresh, err
}

const resyncPageSize = 100

// Find pages through the managed ticket list looking for id.
func (w *Workflow) Find(ctx context.Context, id string) (*api.Ticket, error) {
	for page := 1; ; page++ {
		p, err := w.backend.ManageTickets(ctx, api.TicketQuery{Page: page, Size: resyncPageSize})
		if err != nil {
			return nil, err
		}
		for i := range p.Items {
			if p.Items[i].ID.String() == id {
				return &p.Items[i], nil
			}
		}
		if len(p.Items) == 0 || page*resyncPageSize >= p.Total {
			return nil, nil
		}
	}
}

// Comment appends a non-blank comment.
func (w *Workflow) Comment(ctx context.Context, id, content string) (*api.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.BusinessError("Comment cannot be empty", "")
	}
	return w.backend.AddComment(ctx, id, content)
}

// Create validates and raises a new ticket.
func (w *Workflow) Create(ctx context.Context, title, description, priority string) (*api.Ticket, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.BusinessError("Ticket title is required", "")
	}
	p, ok := ParsePriority(priority)
	if !ok {
		return nil, apperrors.BusinessError(fmt.Sprintf("Unknown priority %q", priority), "Use Low, Medium, High or Critical")
	}
	return w.backend.CreateTicket(ctx, api.NewTicket{
		Title:       title,
		Description: strings.TrimSpace(description),
		Priority:    string(p),
	})
}
