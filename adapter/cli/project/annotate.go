package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
)

var (
	annotateNote         string
	annotateInternalNote string
	annotateNotify       bool
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [project-id]",
	Short: "Add a note without changing the stage",
	Long: `Record a note against the project's current stage.

Examples:
  patentdesk project annotate 550e8400-e29b-41d4-a716-446655440000 -n "Examiner interview booked" --notify`,
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

		ctx := cmd.Context()
		update, err := app.AnnotateProjectHandler.Handle(ctx, commands.AnnotateProjectCommand{
			Actor:        app.Actor,
			ProjectID:    projectID,
			Note:         annotateNote,
			InternalNote: annotateInternalNote,
			NotifyClient: annotateNotify,
		})
		if err != nil {
			return fmt.Errorf("failed to annotate project: %w", err)
		}
		app.Flush(ctx)

		fmt.Fprintf(cmd.OutOrStdout(), "Noted on %s\n", app.Catalog.StageLabel(update.StatusTo))
		return nil
	},
}

func init() {
	annotateCmd.Flags().StringVarP(&annotateNote, "note", "n", "", "note shown to the client")
	annotateCmd.Flags().StringVar(&annotateInternalNote, "internal", "", "note visible only to the practice")
	annotateCmd.Flags().BoolVar(&annotateNotify, "notify", false, "email the client the note")
}
