package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common practice workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	// Deadline review prompt
	srv.Prompt("deadline_review").
		Description("Walk through open projects by urgency and decide what to advance, reschedule, or message about.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Deadline Review",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Review my open client work. Please:

1. Read the patentdesk://dashboard resource
2. For every overdue or urgent project, fetch it with project.get

For each of those projects, suggest one of:
- Advancing it (project.advance) if the current stage is actually done
- Moving the delivery date (project.schedule with mode "date") with a short client-facing note
- Posting a status message to the client (message.post)

Do not change anything until I confirm each suggestion.`,
						},
					},
				},
			}, nil
		})

	// Client update prompt
	srv.Prompt("client_update").
		Description("Draft a plain-language progress update for one project's client.").
		Argument("project_id", "ID of the project to summarize", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			projectID := args["project_id"]
			if projectID == "" {
				projectID = "[project id]"
			}

			return &mcp.PromptResult{
				Description: "Client Update Draft",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Draft a short progress update for the client on project %s.

Use project.get for the current stage, the workflow timeline and the
estimated delivery date, and message.list for what was already said.
Leave out internal notes and internal milestones. Keep it under 120 words
and avoid legal advice.

Show me the draft; post it with message.post only after I approve.`, projectID),
						},
					},
				},
			}, nil
		})

	return nil
}
