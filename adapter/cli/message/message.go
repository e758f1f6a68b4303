package message

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	messagesApp "github.com/felixgeelhaar/patentdesk/internal/messages/application"
)

// Cmd is the message command group.
var Cmd = &cobra.Command{
	Use:   "message",
	Short: "Read and post project messages",
}

var postCmd = &cobra.Command{
	Use:   "post [project-id] [text...]",
	Short: "Post a message to the client",
	Long: `Post a message on a project's thread. The client is emailed.

Examples:
  patentdesk message post 550e8400-e29b-41d4-a716-446655440000 "The draft is ready for your review."`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		ctx := cmd.Context()
		msg, err := app.PostMessageHandler.Handle(ctx, messagesApp.PostMessageCommand{
			Actor:     app.Actor,
			ProjectID: projectID,
			Body:      strings.Join(args[1:], " "),
		})
		if err != nil {
			return fmt.Errorf("failed to post message: %w", err)
		}
		app.Flush(ctx)

		fmt.Fprintf(cmd.OutOrStdout(), "Posted as %s\n", msg.AuthorName)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [project-id]",
	Short: "Show a project's thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		thread, err := app.ListMessagesHandler.Handle(cmd.Context(), app.Actor, projectID)
		if err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(thread) == 0 {
			fmt.Fprintln(out, "No messages yet.")
			return nil
		}
		for _, m := range thread {
			fmt.Fprintf(out, "[%s] %s (%s):\n", m.CreatedAt.In(app.Location).Format("2006-01-02 15:04"), m.AuthorName, m.AuthorRole)
			fmt.Fprintf(out, "  %s\n", m.Body)
		}
		return nil
	},
}

func init() {
	Cmd.AddCommand(postCmd)
	Cmd.AddCommand(listCmd)
}
