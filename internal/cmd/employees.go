package cmd

import (
	"fmt"
	"strings"

	"github.com/itops/staffdesk/pkg/service"
	"github.com/spf13/cobra"
)

var (
	empQuery    service.Query
	empColumns  []string
	empOutPath  string
	cardIDs     []string
	cardLayout  string
	cardCompany string
	cardNoPhoto bool
)

var employeesCmd = &cobra.Command{
	Use:     "employees",
	Aliases: []string{"emp"},
	Short:   "Employee directory",
	Long: `Browse the employee directory and run bulk actions on the rows
currently shown. Every bulk action applies the same filters as "list".`,
}

func addViewFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&empQuery.Status, "status", "all", "Status: all, active, resigned")
	f.StringVarP(&empQuery.Search, "search", "s", "", "Match id, name, department or position")
	f.StringVar(&empQuery.JoinFrom, "joined-from", "", "Joined on or after (YYYY-MM-DD)")
	f.StringVar(&empQuery.JoinTo, "joined-to", "", "Joined on or before (YYYY-MM-DD)")
	f.StringVar(&empQuery.LeftFrom, "left-from", "", "Left on or after (YYYY-MM-DD)")
	f.StringVar(&empQuery.LeftTo, "left-to", "", "Left on or before (YYYY-MM-DD)")
	f.StringArrayVar(&empColumns, "where", nil, "Column filter column=text (repeatable)")
	f.StringVar(&empQuery.SortBy, "sort", "", "Sort column")
	f.BoolVar(&empQuery.Desc, "desc", false, "Sort descending")
	f.BoolVar(&empQuery.Refresh, "refresh", false, "Reload the roster from the server")
}

// viewQuery folds the repeatable --where flags into the query.
func viewQuery() (service.Query, error) {
	q := empQuery
	q.Columns = make(map[string]string, len(empColumns))
	for _, w := range empColumns {
		col, val, ok := strings.Cut(w, "=")
		if !ok {
			return q, fmt.Errorf("invalid --where %q, expected column=text", w)
		}
		q.Columns[strings.TrimSpace(col)] = val
	}
	return q, nil
}

var employeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := viewQuery()
		if err != nil {
			return err
		}
		return service.NewDirectoryService(app).List(cmd.Context(), q)
	},
}

var employeesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the listed employees to a spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := viewQuery()
		if err != nil {
			return err
		}
		_, err = service.NewDirectoryService(app).Export(cmd.Context(), q, empOutPath)
		return err
	},
}

var employeesPhotosCmd = &cobra.Command{
	Use:   "photos",
	Short: "Download photos of the listed employees as a ZIP",
	Long:  "Download photos of the listed employees. The list must not be empty or larger than export.max_photo_rows.",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := viewQuery()
		if err != nil {
			return err
		}
		_, err = service.NewDirectoryService(app).DownloadPhotos(cmd.Context(), q, empOutPath)
		return err
	},
}

var employeesCardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Print ID cards for the listed employees",
	Long:  "Render ID cards to PDF. Use --id to pick rows from the list; without it every listed row is printed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := viewQuery()
		if err != nil {
			return err
		}
		_, err = service.NewDirectoryService(app).PrintCards(cmd.Context(), q, service.CardOptions{
			IDs:         cardIDs,
			Orientation: cardLayout,
			Company:     cardCompany,
			Path:        empOutPath,
			NoPhotos:    cardNoPhoto,
		})
		return err
	},
}

var employeesPrintStatsCmd = &cobra.Command{
	Use:   "print-stats",
	Short: "Show ID card print history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewDirectoryService(app).PrintStats(cmd.Context())
	},
}

var employeesUploadCmd = &cobra.Command{
	Use:   "upload <photo>...",
	Short: "Upload employee photos",
	Long:  "Upload jpg or png photos named after employee ids (e.g. E001.jpg). Files that match no employee are skipped.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service.NewPhotoService(app).Upload(cmd.Context(), args)
		return err
	},
}

var employeesSyncCmd = &cobra.Command{
	Use:   "sync-photos",
	Short: "Import photos from the legacy photo store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPhotoService(app).Sync(cmd.Context())
	},
}

func init() {
	for _, c := range []*cobra.Command{employeesListCmd, employeesExportCmd, employeesPhotosCmd, employeesCardsCmd} {
		addViewFlags(c)
		employeesCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{employeesExportCmd, employeesPhotosCmd, employeesCardsCmd} {
		c.Flags().StringVarP(&empOutPath, "out", "f", "", "Output file (default: download dir)")
	}

	employeesCardsCmd.Flags().StringSliceVar(&cardIDs, "id", nil, "Employee ids to print (default: all listed)")
	employeesCardsCmd.Flags().StringVar(&cardLayout, "layout", "vertical", "Card layout: vertical, horizontal")
	employeesCardsCmd.Flags().StringVar(&cardCompany, "company", "", "Company name printed on the card header")
	employeesCardsCmd.Flags().BoolVar(&cardNoPhoto, "no-photos", false, "Skip photo download")

	employeesCmd.AddCommand(employeesPrintStatsCmd)
	employeesCmd.AddCommand(employeesUploadCmd)
	employeesCmd.AddCommand(employeesSyncCmd)
}
