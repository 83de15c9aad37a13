package cmd

import (
	"fmt"

	"github.com/itops/staffdesk/pkg/output"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(output.Out, "Staffdesk v%s\n", Version)
	},
}
