package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/queries"
	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
)

type milestoneAddInput struct {
	ProjectID  string `json:"project_id" jsonschema:"required"`
	Title      string `json:"title" jsonschema:"required"`
	TargetDate string `json:"target_date,omitempty"`
	Internal   bool   `json:"internal,omitempty"`
}

type milestoneIDInput struct {
	MilestoneID string `json:"milestone_id" jsonschema:"required"`
}

func registerMilestoneTools(srv *mcp.Server, ts toolset) {
	srv.Tool("milestone.add").
		Description("Add a milestone to a project; internal milestones are hidden from the client").
		Handler(ts.addMilestone)

	srv.Tool("milestone.complete").
		Description("Mark a milestone complete as of today").
		Handler(func(ctx context.Context, input milestoneIDInput) (*queries.MilestoneDTO, error) {
			return ts.setMilestoneCompletion(ctx, input, true)
		})

	srv.Tool("milestone.reopen").
		Description("Clear a milestone's completion date").
		Handler(func(ctx context.Context, input milestoneIDInput) (*queries.MilestoneDTO, error) {
			return ts.setMilestoneCompletion(ctx, input, false)
		})

	srv.Tool("milestone.delete").
		Description("Delete a milestone").
		Handler(ts.deleteMilestone)
}

func milestoneDTO(m *domain.Milestone) *queries.MilestoneDTO {
	dto := queries.ToMilestoneDTO(m)
	return &dto
}

func (ts toolset) addMilestone(ctx context.Context, input milestoneAddInput) (*queries.MilestoneDTO, error) {
	projectID, err := parseUUID(input.ProjectID)
	if err != nil {
		return nil, err
	}
	target, err := parseOptionalDate("target_date", input.TargetDate)
	if err != nil {
		return nil, err
	}
	m, err := ts.app.AddMilestoneHandler.Handle(ctx, commands.AddMilestoneCommand{
		Actor:         ts.app.Actor,
		ProjectID:     projectID,
		Title:         input.Title,
		TargetDate:    target,
		ClientVisible: !input.Internal,
	})
	if err != nil {
		return nil, err
	}
	return milestoneDTO(m), nil
}

func (ts toolset) setMilestoneCompletion(ctx context.Context, input milestoneIDInput, completed bool) (*queries.MilestoneDTO, error) {
	id, err := parseUUID(input.MilestoneID)
	if err != nil {
		return nil, err
	}
	m, err := ts.app.SetMilestoneCompletionHandler.Handle(ctx, commands.SetMilestoneCompletionCommand{
		Actor:       ts.app.Actor,
		MilestoneID: id,
		Completed:   completed,
	})
	if err != nil {
		return nil, err
	}
	return milestoneDTO(m), nil
}

func (ts toolset) deleteMilestone(ctx context.Context, input milestoneIDInput) (map[string]any, error) {
	id, err := parseUUID(input.MilestoneID)
	if err != nil {
		return nil, err
	}
	if err := ts.app.DeleteMilestoneHandler.Handle(ctx, commands.DeleteMilestoneCommand{
		Actor:       ts.app.Actor,
		MilestoneID: id,
	}); err != nil {
		return nil, err
	}
	return map[string]any{"milestone_id": id, "deleted": true}, nil
}
