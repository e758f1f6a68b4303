package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/shopspring/decimal"

	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/queries"
	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
)

type projectListInput struct {
	Status      string `json:"status,omitempty"`
	ServiceType string `json:"service_type,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

type projectIDInput struct {
	ProjectID string `json:"project_id" jsonschema:"required"`
}

type projectCreateInput struct {
	ClientEmail   string   `json:"client_email" jsonschema:"required"`
	ClientName    string   `json:"client_name,omitempty"`
	ServiceType   string   `json:"service_type" jsonschema:"required"`
	Title         string   `json:"title" jsonschema:"required"`
	Description   string   `json:"description,omitempty"`
	Jurisdictions []string `json:"jurisdictions,omitempty"`
	StartDate     string   `json:"start_date,omitempty"`
	TimelineDays  *int     `json:"timeline_days,omitempty"`
	Note          string   `json:"note,omitempty"`
	PricePaid     string   `json:"price_paid,omitempty"`
	Currency      string   `json:"currency,omitempty"`
}

type projectAdvanceInput struct {
	ProjectID    string `json:"project_id" jsonschema:"required"`
	Note         string `json:"note,omitempty"`
	InternalNote string `json:"internal_note,omitempty"`
	NotifyClient *bool  `json:"notify_client,omitempty"`
}

type projectAnnotateInput struct {
	ProjectID    string `json:"project_id" jsonschema:"required"`
	Note         string `json:"note,omitempty"`
	InternalNote string `json:"internal_note,omitempty"`
	NotifyClient bool   `json:"notify_client,omitempty"`
}

type projectScheduleInput struct {
	ProjectID    string `json:"project_id" jsonschema:"required"`
	Mode         string `json:"mode" jsonschema:"required"`
	Value        string `json:"value,omitempty"`
	Note         string `json:"note,omitempty"`
	InternalNote string `json:"internal_note,omitempty"`
	NotifyClient bool   `json:"notify_client,omitempty"`
}

type serviceDTO struct {
	ServiceType         string   `json:"service_type"`
	Label               string   `json:"label"`
	DefaultTimelineDays *int     `json:"default_timeline_days,omitempty"`
	Stages              []string `json:"stages"`
}

func registerProjectTools(srv *mcp.Server, ts toolset) {
	srv.Tool("catalog.list").
		Description("List service types with their ordered workflow stages").
		Handler(ts.listCatalog)

	srv.Tool("project.list").
		Description("List projects, optionally filtered by stage or service type").
		Handler(ts.listProjects)

	srv.Tool("project.get").
		Description("Get a project with its timeline, milestones and status history").
		Handler(ts.getProject)

	srv.Tool("project.create").
		Description("Create a project for a client, found or created by email").
		Handler(ts.createProject)

	srv.Tool("project.advance").
		Description("Move a project to the next stage of its workflow and notify the client").
		Handler(ts.advanceProject)

	srv.Tool("project.annotate").
		Description("Record a note on a project's current stage").
		Handler(ts.annotateProject)

	srv.Tool("project.schedule").
		Description(`Set the delivery estimate: mode "days" with a day count (empty clears) or mode "date" with YYYY-MM-DD`).
		Handler(ts.scheduleProject)

	srv.Tool("project.updates").
		Description("List a project's status history, oldest first").
		Handler(ts.listUpdates)

	srv.Tool("dashboard.get").
		Description("Summarize open work by urgency with upcoming deadlines").
		Handler(ts.dashboard)
}

func (ts toolset) listCatalog(ctx context.Context, _ struct{}) ([]serviceDTO, error) {
	catalog := ts.app.Catalog
	services := make([]serviceDTO, 0, len(catalog.ServiceTypes()))
	for _, st := range catalog.ServiceTypes() {
		stages := catalog.Stages(st)
		labels := make([]string, 0, stages.Len())
		for _, stage := range stages {
			labels = append(labels, catalog.StageLabel(stage))
		}
		services = append(services, serviceDTO{
			ServiceType:         string(st),
			Label:               catalog.ServiceLabel(st),
			DefaultTimelineDays: catalog.DefaultTimelineDays(st),
			Stages:              labels,
		})
	}
	return services, nil
}

func (ts toolset) listProjects(ctx context.Context, input projectListInput) ([]queries.ProjectDTO, error) {
	return ts.app.ListProjectsHandler.Handle(ctx, queries.ListProjectsQuery{
		Actor:       ts.app.Actor,
		Status:      input.Status,
		ServiceType: input.ServiceType,
		Limit:       input.Limit,
	})
}

func (ts toolset) getProject(ctx context.Context, input projectIDInput) (*queries.ProjectDTO, error) {
	return ts.project(ctx, input.ProjectID)
}

func (ts toolset) project(ctx context.Context, rawID string) (*queries.ProjectDTO, error) {
	id, err := parseUUID(rawID)
	if err != nil {
		return nil, err
	}
	return ts.app.GetProjectHandler.Handle(ctx, queries.GetProjectQuery{Actor: ts.app.Actor, ProjectID: id})
}

func (ts toolset) createProject(ctx context.Context, input projectCreateInput) (*queries.ProjectDTO, error) {
	cmd := commands.CreateProjectCommand{
		Actor:                ts.app.Actor,
		ClientEmail:          input.ClientEmail,
		ClientName:           input.ClientName,
		ServiceType:          input.ServiceType,
		Title:                input.Title,
		Description:          input.Description,
		Jurisdictions:        input.Jurisdictions,
		TimelineDaysOverride: input.TimelineDays,
		InitialNote:          input.Note,
		Currency:             strings.ToUpper(input.Currency),
		Origin:               commands.OriginAdmin,
	}
	start, err := parseOptionalDate("start_date", input.StartDate)
	if err != nil {
		return nil, err
	}
	if start != nil {
		cmd.StartDate = *start
	}
	if input.PricePaid != "" {
		price, err := decimal.NewFromString(input.PricePaid)
		if err != nil {
			return nil, fmt.Errorf("invalid price_paid: %w", err)
		}
		cmd.PricePaid = &price
	}

	p, err := ts.app.CreateProjectHandler.Handle(ctx, cmd)
	if err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return ts.project(ctx, p.ID().String())
}

func (ts toolset) advanceProject(ctx context.Context, input projectAdvanceInput) (*queries.ProjectDTO, error) {
	id, err := parseUUID(input.ProjectID)
	if err != nil {
		return nil, err
	}
	if _, err := ts.app.AdvanceProjectHandler.Handle(ctx, commands.AdvanceProjectCommand{
		Actor:        ts.app.Actor,
		ProjectID:    id,
		Note:         input.Note,
		InternalNote: input.InternalNote,
		NotifyClient: input.NotifyClient,
	}); err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return ts.project(ctx, input.ProjectID)
}

func (ts toolset) annotateProject(ctx context.Context, input projectAnnotateInput) (*queries.ProjectDTO, error) {
	id, err := parseUUID(input.ProjectID)
	if err != nil {
		return nil, err
	}
	if _, err := ts.app.AnnotateProjectHandler.Handle(ctx, commands.AnnotateProjectCommand{
		Actor:        ts.app.Actor,
		ProjectID:    id,
		Note:         input.Note,
		InternalNote: input.InternalNote,
		NotifyClient: input.NotifyClient,
	}); err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return ts.project(ctx, input.ProjectID)
}

func (ts toolset) scheduleProject(ctx context.Context, input projectScheduleInput) (*queries.ProjectDTO, error) {
	id, err := parseUUID(input.ProjectID)
	if err != nil {
		return nil, err
	}
	schedule, err := domain.ParseDeliverySchedule(input.Mode, input.Value)
	if err != nil {
		return nil, err
	}
	if schedule.Mode == domain.ScheduleByDate && (input.Note != "" || input.InternalNote != "") {
		schedule.Annotation = &domain.Annotation{
			Note:         input.Note,
			InternalNote: input.InternalNote,
			NotifyClient: input.NotifyClient,
		}
	}
	if _, err := ts.app.SetDeliveryScheduleHandler.Handle(ctx, commands.SetDeliveryScheduleCommand{
		Actor:     ts.app.Actor,
		ProjectID: id,
		Schedule:  schedule,
	}); err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return ts.project(ctx, input.ProjectID)
}

func (ts toolset) listUpdates(ctx context.Context, input projectIDInput) ([]queries.UpdateDTO, error) {
	id, err := parseUUID(input.ProjectID)
	if err != nil {
		return nil, err
	}
	return ts.app.ListUpdatesHandler.Handle(ctx, queries.ListUpdatesQuery{Actor: ts.app.Actor, ProjectID: id})
}

func (ts toolset) dashboard(ctx context.Context, _ struct{}) (*queries.DashboardDTO, error) {
	return ts.app.DashboardHandler.Handle(ctx, queries.DashboardQuery{Actor: ts.app.Actor})
}
