package cmd

import (
	"github.com/itops/staffdesk/pkg/config"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/spf13/cobra"
)

// settingKeys are the keys shown by "settings show", in display order.
var settingKeys = []string{
	"api.base_url",
	"api.timeout",
	"output.format",
	"output.download_dir",
	"log.level",
	"log.file",
	"alerts.cooldown",
	"poll.interval",
	"export.max_photo_rows",
	"session.root_username",
	"metrics.addr",
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage CLI settings",
	Long:  "Show and change values stored in the configuration file",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		record := make(map[string]interface{}, len(settingKeys)+1)
		for _, k := range settingKeys {
			record[k] = config.GetString(k)
		}
		record["config_dir"] = config.GetConfigDir()
		return output.PrintRecord("Settings", record)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetString(args[0], args[1]); err != nil {
			return err
		}
		output.PrintSuccess("%s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
