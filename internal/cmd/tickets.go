package cmd

import (
	"fmt"

	"github.com/itops/staffdesk/pkg/prompter"
	"github.com/itops/staffdesk/pkg/service"
	"github.com/itops/staffdesk/pkg/tickets"
	"github.com/spf13/cobra"
)

var (
	ticketList     service.ListOptions
	ticketNote     string
	ticketClaim    bool
	ticketPriority string
	ticketDesc     string
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Support tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list [status]",
	Short: "List tickets",
	Long:  "List tickets. Managers see every ticket; other roles see their own. Status: open, in-progress, resolved, cancelled.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := ticketList
		if len(args) > 0 {
			opts.Status = args[0]
		}
		return service.NewTicketService(app).List(cmd.Context(), opts)
	},
}

var ticketsViewCmd = &cobra.Command{
	Use:   "view <ticket-id>",
	Short: "View a ticket and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewTicketService(app).Show(cmd.Context(), args[0])
	},
}

var ticketsUpdateCmd = &cobra.Command{
	Use:   "update <ticket-id> <status>",
	Short: "Move a ticket to a new status",
	Long:  "Move a ticket along Open → In Progress → Resolved, or cancel it. Resolving requires --note.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, ok := tickets.ParseStatus(args[1])
		if !ok {
			return fmt.Errorf("unknown status %q", args[1])
		}
		return service.NewTicketService(app).Update(cmd.Context(), args[0], tickets.Change{
			To:    to,
			Note:  ticketNote,
			Claim: ticketClaim,
		})
	},
}

var ticketsCommentCmd = &cobra.Command{
	Use:   "comment <ticket-id> [text]",
	Short: "Comment on a ticket",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if len(args) == 2 {
			text = args[1]
		} else {
			var err error
			if text, err = prompter.PromptMultilineString("Comment", 20); err != nil {
				return err
			}
		}
		return service.NewTicketService(app).Comment(cmd.Context(), args[0], text)
	},
}

var ticketsCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Raise a new ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service.NewTicketService(app).Create(cmd.Context(), args[0], ticketDesc, ticketPriority)
		return err
	},
}

func init() {
	ticketsListCmd.Flags().IntVar(&ticketList.Page, "page", 1, "Page number")
	ticketsListCmd.Flags().IntVar(&ticketList.Size, "page-size", 20, "Results per page")
	ticketsListCmd.Flags().BoolVar(&ticketList.Mine, "mine", false, "Only tickets I raised")

	ticketsUpdateCmd.Flags().StringVar(&ticketNote, "note", "", "Resolution note")
	ticketsUpdateCmd.Flags().BoolVar(&ticketClaim, "claim", false, "Assign the ticket to me when starting work")

	ticketsCreateCmd.Flags().StringVar(&ticketPriority, "priority", "Medium", "Priority: Low, Medium, High, Critical")
	ticketsCreateCmd.Flags().StringVarP(&ticketDesc, "description", "d", "", "Description")

	ticketsCmd.AddCommand(ticketsListCmd)
	ticketsCmd.AddCommand(ticketsViewCmd)
	ticketsCmd.AddCommand(ticketsUpdateCmd)
	ticketsCmd.AddCommand(ticketsCommentCmd)
	ticketsCmd.AddCommand(ticketsCreateCmd)
}
