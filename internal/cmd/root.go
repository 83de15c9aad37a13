package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/itops/staffdesk/pkg/config"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/itops/staffdesk/pkg/service"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	baseURL    string
)

// app is built once per invocation, after configuration is loaded.
var app *service.App

var rootCmd = &cobra.Command{
	Use:   "staffdesk",
	Short: "Staffdesk - internal HR and IT operations console",
	Long: `Staffdesk is a command-line console for the internal HR and IT
operations backend. Browse the employee directory, export and print ID
cards, manage IT assets and work the support ticket queue.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}

		logger.Init(verbose)

		if !output.ValidateOutputFormat(outputFmt) {
			return fmt.Errorf("invalid output format %q (text, json, table)", outputFmt)
		}
		config.Set("output.format", outputFmt)
		if baseURL != "" {
			config.Set("api.base_url", baseURL)
		}

		app = service.NewApp(service.OptionsFromConfig())
		return nil
	},
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	registerCompletions()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprint(output.Err, apperrors.FormatError(err))
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindAuth:
		return 3
	case apperrors.KindForbidden:
		return 4
	case apperrors.KindValidation, apperrors.KindBusiness:
		return 2
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/staffdesk/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&baseURL, "api", "", "Backend base URL (overrides api.base_url)")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(employeesCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}
