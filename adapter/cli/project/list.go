package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/queries"
)

var (
	listStatus  string
	listService string
	listLimit   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long: `List projects, most recently created first.

Examples:
  patentdesk project list
  patentdesk project list --status search_in_progress
  patentdesk project list --service ip_valuation`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.ListProjectsHandler.Handle(cmd.Context(), queries.ListProjectsQuery{
			Actor:       app.Actor,
			Status:      listStatus,
			ServiceType: listService,
			Limit:       listLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result) == 0 {
			fmt.Fprintln(out, "No projects found.")
			return nil
		}

		fmt.Fprintf(out, "Projects (%d):\n\n", len(result))
		for _, p := range result {
			printSummary(out, p)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by stage id")
	listCmd.Flags().StringVar(&listService, "service", "", "filter by service type")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of projects")
}
