package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
)

var milestoneCmd = &cobra.Command{
	Use:   "milestone",
	Short: "Manage project milestones",
	Long:  `Add, complete, and delete milestones within a project. Milestones never change the project's stage.`,
}

var (
	milestoneTarget   string
	milestoneInternal bool
)

var addMilestoneCmd = &cobra.Command{
	Use:   "add [project-id] [title]",
	Short: "Add a milestone to a project",
	Long: `Add a new milestone to a project.

Examples:
  patentdesk project milestone add 550e8400-e29b-41d4-a716-446655440000 "Draft claims" --target 2026-04-15
  patentdesk project milestone add 550e8400-e29b-41d4-a716-446655440000 "Docket check" --internal`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		projectID, err := parseID("project", args[0])
		if err != nil {
			return err
		}

		command := commands.AddMilestoneCommand{
			Actor:         app.Actor,
			ProjectID:     projectID,
			Title:         args[1],
			ClientVisible: !milestoneInternal,
		}
		if milestoneTarget != "" {
			target, err := domain.ParseDate(milestoneTarget)
			if err != nil {
				return fmt.Errorf("invalid target date (use YYYY-MM-DD): %w", err)
			}
			command.TargetDate = &target
		}

		milestone, err := app.AddMilestoneHandler.Handle(cmd.Context(), command)
		if err != nil {
			return fmt.Errorf("failed to add milestone: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added milestone: %s\n", milestone.Title())
		fmt.Fprintf(out, "  ID: %s\n", milestone.ID())
		if d := milestone.TargetDate(); d != nil {
			fmt.Fprintf(out, "  Target: %s\n", domain.FormatDate(*d))
		}
		return nil
	},
}

var completeMilestoneCmd = &cobra.Command{
	Use:   "complete [milestone-id]",
	Short: "Mark a milestone complete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMilestoneCompletion(cmd, args[0], true)
	},
}

var reopenMilestoneCmd = &cobra.Command{
	Use:   "reopen [milestone-id]",
	Short: "Clear a milestone's completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMilestoneCompletion(cmd, args[0], false)
	},
}

func setMilestoneCompletion(cmd *cobra.Command, rawID string, completed bool) error {
	app, err := cli.RequireApp()
	if err != nil {
		return err
	}

	milestoneID, err := parseID("milestone", rawID)
	if err != nil {
		return err
	}

	milestone, err := app.SetMilestoneCompletionHandler.Handle(cmd.Context(), commands.SetMilestoneCompletionCommand{
		Actor:       app.Actor,
		MilestoneID: milestoneID,
		Completed:   completed,
	})
	if err != nil {
		return fmt.Errorf("failed to update milestone: %w", err)
	}

	out := cmd.OutOrStdout()
	if d := milestone.CompletedDate(); d != nil {
		fmt.Fprintf(out, "Completed milestone %s on %s\n", milestone.Title(), domain.FormatDate(*d))
	} else {
		fmt.Fprintf(out, "Reopened milestone %s\n", milestone.Title())
	}
	return nil
}

var deleteMilestoneCmd = &cobra.Command{
	Use:   "delete [milestone-id]",
	Short: "Delete a milestone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		milestoneID, err := parseID("milestone", args[0])
		if err != nil {
			return err
		}

		err = app.DeleteMilestoneHandler.Handle(cmd.Context(), commands.DeleteMilestoneCommand{
			Actor:       app.Actor,
			MilestoneID: milestoneID,
		})
		if err != nil {
			return fmt.Errorf("failed to delete milestone: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted milestone %s\n", milestoneID)
		return nil
	},
}

func init() {
	addMilestoneCmd.Flags().StringVar(&milestoneTarget, "target", "", "target date (YYYY-MM-DD)")
	addMilestoneCmd.Flags().BoolVar(&milestoneInternal, "internal", false, "hide the milestone from the client")

	milestoneCmd.AddCommand(addMilestoneCmd)
	milestoneCmd.AddCommand(completeMilestoneCmd)
	milestoneCmd.AddCommand(reopenMilestoneCmd)
	milestoneCmd.AddCommand(deleteMilestoneCmd)
}
