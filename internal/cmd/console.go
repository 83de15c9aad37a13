package cmd

import (
	"time"

	"github.com/itops/staffdesk/pkg/config"
	"github.com/itops/staffdesk/pkg/policy"
	"github.com/itops/staffdesk/pkg/service"
	"github.com/spf13/cobra"
)

var (
	dashRefresh   bool
	watchInterval int
	watchAddr     string
	targetID      string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show headcount figures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewDashboardService(app).Show(cmd.Context(), dashRefresh)
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Show the navigation menu available to your role",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewMenuService(app).Show(cmd.Context())
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "User administration",
}

var usersCanDeleteCmd = &cobra.Command{
	Use:   "can-delete <username>",
	Short: "Check whether you may delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewUserService(app).PrintCanDelete(policy.Account{ID: targetID, Username: args[0]})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll open tickets and keep the roster warm until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval := config.GetSeconds("poll.interval")
		if cmd.Flags().Changed("interval") {
			interval = time.Duration(watchInterval) * time.Second
		}
		addr := config.GetString("metrics.addr")
		if cmd.Flags().Changed("metrics-addr") {
			addr = watchAddr
		}
		return service.NewWatchService(app).Run(cmd.Context(), service.WatchOptions{
			Interval:    interval,
			MetricsAddr: addr,
		})
	},
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashRefresh, "refresh", false, "Reload the roster from the server")

	usersCanDeleteCmd.Flags().StringVar(&targetID, "id", "", "User id of the target")
	usersCmd.AddCommand(usersCanDeleteCmd)

	watchCmd.Flags().IntVar(&watchInterval, "interval", 30, "Seconds between ticket polls")
	watchCmd.Flags().StringVar(&watchAddr, "metrics-addr", "", "Serve /metrics on this address (e.g. :9090)")
}
