package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/queries"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Summarize open work and upcoming deadlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		dash, err := app.DashboardHandler.Handle(cmd.Context(), queries.DashboardQuery{Actor: app.Actor})
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Projects: %d total, %d open, %d completed\n", dash.Total, dash.Open, dash.Completed)
		fmt.Fprintf(out, "Open: %s %d overdue  %s %d urgent  %s %d on track  %d unscheduled\n",
			urgencyIcon("overdue"), dash.Overdue,
			urgencyIcon("urgent"), dash.Urgent,
			urgencyIcon("normal"), dash.Normal,
			dash.Unscheduled,
		)

		if len(dash.Deadlines) == 0 {
			return nil
		}
		fmt.Fprintln(out, "\nDeadlines:")
		for _, p := range dash.Deadlines {
			printSummary(out, p)
		}
		return nil
	},
}
