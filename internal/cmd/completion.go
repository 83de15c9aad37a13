package cmd

import (
	"io"
	"strings"

	"github.com/itops/staffdesk/pkg/grid"
	"github.com/itops/staffdesk/pkg/tickets"
	"github.com/spf13/cobra"
)

var shells = map[string]func(*cobra.Command, io.Writer) error{
	"bash":       func(c *cobra.Command, w io.Writer) error { return c.GenBashCompletionV2(w, true) },
	"zsh":        (*cobra.Command).GenZshCompletion,
	"fish":       func(c *cobra.Command, w io.Writer) error { return c.GenFishCompletion(w, true) },
	"powershell": (*cobra.Command).GenPowerShellCompletionWithDesc,
}

var completionCmd = &cobra.Command{
	Use:   "completion <bash|zsh|fish|powershell>",
	Short: "Print a shell completion script",
	Long: `Print a completion script for your shell. Besides commands and flags it
completes directory columns, employee statuses, card layouts and ticket
statuses.

  source <(staffdesk completion bash)
  staffdesk completion fish > ~/.config/fish/completions/staffdesk.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return shells[args[0]](rootCmd, cmd.OutOrStdout())
	},
}

func fixed(values ...string) cobra.CompletionFunc {
	return cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp)
}

func columnNames() []string {
	out := make([]string, len(grid.Columns))
	for i, c := range grid.Columns {
		out[i] = string(c)
	}
	return out
}

// completeWhere offers "column=" prefixes until a column has been typed.
func completeWhere(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if strings.Contains(toComplete, "=") {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, c := range columnNames() {
		out = append(out, c+"=")
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// ticketStatusArgs are the status spellings accepted on the command line.
func ticketStatusArgs() []string {
	out := make([]string, len(tickets.Statuses))
	for i, s := range tickets.Statuses {
		out[i] = strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
	}
	return out
}

func registerCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("output", fixed("text", "json", "table"))

	for _, c := range []*cobra.Command{employeesListCmd, employeesExportCmd, employeesPhotosCmd, employeesCardsCmd} {
		_ = c.RegisterFlagCompletionFunc("status", fixed("all", "active", "resigned"))
		_ = c.RegisterFlagCompletionFunc("sort", fixed(columnNames()...))
		_ = c.RegisterFlagCompletionFunc("where", completeWhere)
	}
	_ = employeesCardsCmd.RegisterFlagCompletionFunc("layout", fixed("vertical", "horizontal"))

	ticketsListCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return ticketStatusArgs(), cobra.ShellCompDirectiveNoFileComp
	}
	ticketsUpdateCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 1 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return ticketStatusArgs(), cobra.ShellCompDirectiveNoFileComp
	}
	_ = ticketsCreateCmd.RegisterFlagCompletionFunc("priority", fixed("Low", "Medium", "High", "Critical"))
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
