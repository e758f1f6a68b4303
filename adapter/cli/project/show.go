package project

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show project details",
	Long: `Show a project with its workflow timeline, milestones and status history.

Examples:
  patentdesk project show 550e8400-e29b-41d4-a716-446655440000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		projectID, err := parseID("project", args[0])
		if err != nil {
			return err
		}

		project, err := app.GetProjectHandler.Handle(cmd.Context(), queries.GetProjectQuery{
			Actor:     app.Actor,
			ProjectID: projectID,
		})
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Project: %s\n", project.Title)
		fmt.Fprintf(out, "ID: %s\n", project.ID)
		fmt.Fprintf(out, "Client: %s\n", project.ClientID)
		fmt.Fprintf(out, "Service: %s\n", project.ServiceLabel)
		fmt.Fprintf(out, "Status: %s (%d%%)\n", project.StatusLabel, project.ProgressPercent)
		if project.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", project.Description)
		}
		if len(project.Jurisdictions) > 0 {
			fmt.Fprintf(out, "Jurisdictions: %s\n", strings.Join(project.Jurisdictions, ", "))
		}
		fmt.Fprintf(out, "Start Date: %s\n", project.StartDate)
		if project.TimelineDays != nil {
			fmt.Fprintf(out, "Timeline: %d days\n", *project.TimelineDays)
		}
		fmt.Fprintf(out, "Delivery: %s\n", deliveryLine(*project))
		if project.PricePaid != nil {
			fmt.Fprintf(out, "Paid: %s %s\n", *project.PricePaid, strings.ToUpper(project.Currency))
		}

		fmt.Fprintln(out, "\nWorkflow:")
		for _, step := range project.Timeline {
			fmt.Fprintf(out, "  %s %s\n", stepIcon(step.State), step.Label)
		}

		if len(project.Milestones) > 0 {
			fmt.Fprintf(out, "\nMilestones (%d):\n", len(project.Milestones))
			for _, m := range project.Milestones {
				mark := "[ ]"
				if m.CompletedDate != nil {
					mark = "[x]"
				}
				target := ""
				if m.TargetDate != nil {
					target = " - target " + *m.TargetDate
				}
				visibility := ""
				if !m.ClientVisible {
					visibility = " (internal)"
				}
				fmt.Fprintf(out, "  %s %s%s%s\n", mark, m.Title, target, visibility)
				fmt.Fprintf(out, "      ID: %s\n", m.ID)
			}
		}

		if len(project.Updates) > 0 {
			fmt.Fprintf(out, "\nHistory (%d):\n", len(project.Updates))
			for _, u := range project.Updates {
				fmt.Fprintf(out, "  %s  %s\n", u.CreatedAt.In(app.Location).Format("2006-01-02 15:04"), u.StatusLabel)
				if u.Note != "" {
					fmt.Fprintf(out, "      note: %s\n", u.Note)
				}
				if u.InternalNote != "" {
					fmt.Fprintf(out, "      internal: %s\n", u.InternalNote)
				}
			}
		}

		return nil
	},
}
