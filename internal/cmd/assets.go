package cmd

import (
	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/assets"
	"github.com/itops/staffdesk/pkg/service"
	"github.com/spf13/cobra"
)

var (
	assetCategory string
	assignTarget  assets.Target
	assetForce    bool
	categoryName  string
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "IT asset inventory",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewInventoryService(app).List(cmd.Context(), assetCategory)
	},
}

var assetsAssignCmd = &cobra.Command{
	Use:   "assign <asset-id|code>",
	Short: "Assign an asset to an employee or an external owner",
	Long:  "Assign an asset with --employee or --external. Pass neither to unassign.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewInventoryService(app).Assign(cmd.Context(), args[0], assignTarget)
	},
}

var assetsDeleteCmd = &cobra.Command{
	Use:   "delete <asset-id>",
	Short: "Delete an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewInventoryService(app).Delete(cmd.Context(), args[0], assetForce)
	},
}

var assetsDriftCmd = &cobra.Command{
	Use:   "drift",
	Short: "List assignments whose owner changed in the roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewInventoryService(app).PrintDrift(cmd.Context())
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Asset categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewInventoryService(app).Categories(cmd.Context())
	},
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add <code>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewInventoryService(app).SaveCategory(cmd.Context(), api.Category{Code: args[0], Name: categoryName})
	},
}

var categoriesEditCmd = &cobra.Command{
	Use:   "edit <id> <code>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewInventoryService(app).SaveCategory(cmd.Context(), api.Category{ID: api.ID(args[0]), Code: args[1], Name: categoryName})
	},
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewInventoryService(app).DeleteCategory(cmd.Context(), args[0])
	},
}

func init() {
	assetsListCmd.Flags().StringVar(&assetCategory, "category", "", "Only assets of this category code")
	assetsAssignCmd.Flags().StringVar(&assignTarget.EmployeeID, "employee", "", "Employee id")
	assetsAssignCmd.Flags().StringVar(&assignTarget.ExternalName, "external", "", "External owner name")
	assetsAssignCmd.Flags().StringVar(&assignTarget.ExternalNote, "note", "", "Note for an external owner")
	assetsDeleteCmd.Flags().BoolVar(&assetForce, "yes", false, "Do not ask for confirmation")
	categoriesAddCmd.Flags().StringVar(&categoryName, "name", "", "Display name")
	categoriesEditCmd.Flags().StringVar(&categoryName, "name", "", "Display name")

	categoriesCmd.AddCommand(categoriesAddCmd)
	categoriesCmd.AddCommand(categoriesEditCmd)
	categoriesCmd.AddCommand(categoriesDeleteCmd)

	assetsCmd.AddCommand(assetsListCmd)
	assetsCmd.AddCommand(assetsAssignCmd)
	assetsCmd.AddCommand(assetsDeleteCmd)
	assetsCmd.AddCommand(assetsDriftCmd)
	assetsCmd.AddCommand(categoriesCmd)
}
