package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
)

var (
	scheduleDays         string
	scheduleDate         string
	scheduleNote         string
	scheduleInternalNote string
	scheduleNotify       bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [project-id]",
	Short: "Set the delivery timeline or date",
	Long: `Set a project's delivery estimate, either as a timeline in days from
its start date or as a fixed date. A fixed date takes precedence over any
timeline until a timeline is set again. An empty --days clears the timeline.

Examples:
  patentdesk project schedule 550e8400-e29b-41d4-a716-446655440000 --days 30
  patentdesk project schedule 550e8400-e29b-41d4-a716-446655440000 --date 2026-05-15 -n "Moved after examiner call" --notify`,
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

		daysSet, dateSet := cmd.Flags().Changed("days"), cmd.Flags().Changed("date")
		if daysSet == dateSet {
			return fmt.Errorf("exactly one of --days or --date is required")
		}

		mode, value := string(domain.ScheduleByDays), scheduleDays
		if dateSet {
			mode, value = string(domain.ScheduleByDate), scheduleDate
		}
		schedule, err := domain.ParseDeliverySchedule(mode, value)
		if err != nil {
			return err
		}
		if dateSet && (scheduleNote != "" || scheduleInternalNote != "") {
			schedule.Annotation = &domain.Annotation{
				Note:         scheduleNote,
				InternalNote: scheduleInternalNote,
				NotifyClient: scheduleNotify,
			}
		}

		ctx := cmd.Context()
		project, err := app.SetDeliveryScheduleHandler.Handle(ctx, commands.SetDeliveryScheduleCommand{
			Actor:     app.Actor,
			ProjectID: projectID,
			Schedule:  schedule,
		})
		if err != nil {
			return fmt.Errorf("failed to set schedule: %w", err)
		}
		app.Flush(ctx)

		out := cmd.OutOrStdout()
		if est := project.EstimatedDelivery(); est != nil {
			fmt.Fprintf(out, "Estimated delivery for %s: %s\n", project.Title(), domain.FormatDate(*est))
		} else {
			fmt.Fprintf(out, "Cleared the estimate for %s\n", project.Title())
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleDays, "days", "", "timeline in days from the start date")
	scheduleCmd.Flags().StringVar(&scheduleDate, "date", "", "fixed delivery date (YYYY-MM-DD)")
	scheduleCmd.Flags().StringVarP(&scheduleNote, "note", "n", "", "note recorded with a date change")
	scheduleCmd.Flags().StringVar(&scheduleInternalNote, "internal", "", "internal note recorded with a date change")
	scheduleCmd.Flags().BoolVar(&scheduleNotify, "notify", false, "email the client about a date change")
}
