package cmd

import (
	"github.com/itops/staffdesk/pkg/service"
	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Sign in to the operations backend and inspect the current session",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the backend",
	Long:  "Authenticate with username and password. Missing values are prompted for.",
	RunE: func(cmd *cobra.Command, args []string) error {
		authSvc := service.NewAuthService(app)
		return authSvc.Login(cmd.Context(), loginUsername, loginPassword)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		authSvc := service.NewAuthService(app)
		return authSvc.Logout()
	},
}

var meCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Display the current session and its permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		authSvc := service.NewAuthService(app)
		return authSvc.WhoAmI()
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(meCmd)
}
