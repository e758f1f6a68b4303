package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
)

var (
	advanceNote         string
	advanceInternalNote string
	advanceQuiet        bool
)

var advanceCmd = &cobra.Command{
	Use:   "advance [project-id]",
	Short: "Move a project to its next stage",
	Long: `Move a project to the next stage of its service workflow. The client
is emailed unless --quiet is given. Reaching the final stage records the
actual delivery date.

Examples:
  patentdesk project advance 550e8400-e29b-41d4-a716-446655440000 -n "Search underway"
  patentdesk project advance 550e8400-e29b-41d4-a716-446655440000 --internal "waiting on examiner" --quiet`,
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

		notify := !advanceQuiet
		ctx := cmd.Context()
		project, err := app.AdvanceProjectHandler.Handle(ctx, commands.AdvanceProjectCommand{
			Actor:        app.Actor,
			ProjectID:    projectID,
			Note:         advanceNote,
			InternalNote: advanceInternalNote,
			NotifyClient: &notify,
		})
		if err != nil {
			return fmt.Errorf("failed to advance project: %w", err)
		}
		app.Flush(ctx)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Advanced %s to %s (%d%%)\n",
			project.Title(),
			app.Catalog.StageLabel(project.Status()),
			app.Workflow.ProgressPercent(project.ServiceType(), project.Status()),
		)
		if d := project.ActualDelivery(); d != nil {
			fmt.Fprintf(out, "  Delivered: %s\n", domain.FormatDate(*d))
		}
		return nil
	},
}

func init() {
	advanceCmd.Flags().StringVarP(&advanceNote, "note", "n", "", "note shown to the client")
	advanceCmd.Flags().StringVar(&advanceInternalNote, "internal", "", "note visible only to the practice")
	advanceCmd.Flags().BoolVarP(&advanceQuiet, "quiet", "q", false, "do not email the client")
}
