package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/queries"
	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
)

type createProjectRequest struct {
	ClientID      *uuid.UUID `json:"client_id"`
	ClientEmail   string     `json:"client_email"`
	ClientName    string     `json:"client_name"`
	ServiceType   string     `json:"service_type"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Jurisdictions []string   `json:"jurisdictions"`
	StartDate     string     `json:"start_date"`
	TimelineDays  *int       `json:"timeline_days"`
	InitialNote   string     `json:"initial_note"`
	PricePaid     string     `json:"price_paid"`
	Currency      string     `json:"currency"`
}

type advanceProjectRequest struct {
	Note         string `json:"note"`
	InternalNote string `json:"internal_note"`
	NotifyClient *bool  `json:"notify_client"`
}

type annotateProjectRequest struct {
	Note         string `json:"note"`
	InternalNote string `json:"internal_note"`
	NotifyClient bool   `json:"notify_client"`
}

// setScheduleRequest is the tagged schedule form: mode "days" with a day
// count (empty clears) or mode "date" with a YYYY-MM-DD value.
type setScheduleRequest struct {
	Mode         string `json:"mode"`
	Value        string `json:"value"`
	Note         string `json:"note"`
	InternalNote string `json:"internal_note"`
	NotifyClient bool   `json:"notify_client"`
}

type addMilestoneRequest struct {
	Title         string `json:"title"`
	TargetDate    string `json:"target_date"`
	ClientVisible bool   `json:"is_client_visible"`
}

type milestoneResponse struct {
	ID            uuid.UUID `json:"id"`
	ProjectID     uuid.UUID `json:"project_id"`
	Title         string    `json:"title"`
	TargetDate    *string   `json:"target_date,omitempty"`
	CompletedDate *string   `json:"completed_date,omitempty"`
	ClientVisible bool      `json:"is_client_visible"`
}

type serviceResponse struct {
	ServiceType         string          `json:"service_type"`
	Label               string          `json:"label"`
	DefaultTimelineDays *int            `json:"default_timeline_days,omitempty"`
	Stages              []stageResponse `json:"stages"`
}

type stageResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, projects.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

func optionalDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := projects.ParseDate(value)
	if err != nil {
		return nil, projects.NewValidationError(field, "must be a YYYY-MM-DD date")
	}
	return &d, nil
}

func newMilestoneResponse(m *projects.Milestone) milestoneResponse {
	resp := milestoneResponse{
		ID:            m.ID(),
		ProjectID:     m.ProjectID(),
		Title:         m.Title(),
		ClientVisible: m.IsClientVisible(),
	}
	if d := m.TargetDate(); d != nil {
		s := projects.FormatDate(*d)
		resp.TargetDate = &s
	}
	if d := m.CompletedDate(); d != nil {
		s := projects.FormatDate(*d)
		resp.CompletedDate = &s
	}
	return resp
}

// handleCatalog handles GET /api/v1/catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := s.app.Catalog
	services := make([]serviceResponse, 0, len(catalog.ServiceTypes()))
	for _, st := range catalog.ServiceTypes() {
		seq := catalog.Stages(st)
		stages := make([]stageResponse, 0, seq.Len())
		for _, stage := range seq {
			stages = append(stages, stageResponse{ID: string(stage), Label: catalog.StageLabel(stage)})
		}
		services = append(services, serviceResponse{
			ServiceType:         string(st),
			Label:               catalog.ServiceLabel(st),
			DefaultTimelineDays: catalog.DefaultTimelineDays(st),
			Stages:              stages,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

// handleListProjects handles GET /api/v1/projects
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := s.app.ListProjectsHandler.Handle(r.Context(), queries.ListProjectsQuery{
		Actor:       actorFrom(r.Context()),
		Status:      q.Get("status"),
		ServiceType: q.Get("service_type"),
		Limit:       limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": result})
}

// handleCreateProject handles POST /api/v1/projects
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	cmd := commands.CreateProjectCommand{
		Actor:                actorFrom(r.Context()),
		ClientEmail:          req.ClientEmail,
		ClientName:           req.ClientName,
		ServiceType:          req.ServiceType,
		Title:                req.Title,
		Description:          req.Description,
		Jurisdictions:        req.Jurisdictions,
		TimelineDaysOverride: req.TimelineDays,
		InitialNote:          req.InitialNote,
		Currency:             req.Currency,
		Origin:               commands.OriginAdmin,
	}
	if req.ClientID != nil {
		cmd.ClientID = *req.ClientID
	}
	start, err := optionalDate("start_date", req.StartDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if start != nil {
		cmd.StartDate = *start
	}
	if req.PricePaid != "" {
		price, err := decimal.NewFromString(req.PricePaid)
		if err != nil {
			s.writeError(w, r, projects.NewValidationError("price_paid", "must be a decimal amount"))
			return
		}
		cmd.PricePaid = &price
	}

	project, err := s.app.CreateProjectHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeProject(w, r, http.StatusCreated, project.ID())
}

// handleGetProject handles GET /api/v1/projects/{projectID}
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeProject(w, r, http.StatusOK, id)
}

// handleAdvanceProject handles POST /api/v1/projects/{projectID}/advance
func (s *Server) handleAdvanceProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req advanceProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	_, err = s.app.AdvanceProjectHandler.Handle(r.Context(), commands.AdvanceProjectCommand{
		Actor:        actorFrom(r.Context()),
		ProjectID:    id,
		Note:         req.Note,
		InternalNote: req.InternalNote,
		NotifyClient: req.NotifyClient,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeProject(w, r, http.StatusOK, id)
}

// handleAnnotateProject handles POST /api/v1/projects/{projectID}/annotations
func (s *Server) handleAnnotateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req annotateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	_, err = s.app.AnnotateProjectHandler.Handle(r.Context(), commands.AnnotateProjectCommand{
		Actor:        actorFrom(r.Context()),
		ProjectID:    id,
		Note:         req.Note,
		InternalNote: req.InternalNote,
		NotifyClient: req.NotifyClient,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeProject(w, r, http.StatusCreated, id)
}

// handleSetSchedule handles PUT /api/v1/projects/{projectID}/schedule
func (s *Server) handleSetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req setScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	schedule, err := projects.ParseDeliverySchedule(req.Mode, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if schedule.Mode == projects.ScheduleByDate && (req.Note != "" || req.InternalNote != "") {
		schedule.Annotation = &projects.Annotation{
			Note:         req.Note,
			InternalNote: req.InternalNote,
			NotifyClient: req.NotifyClient,
		}
	}

	_, err = s.app.SetDeliveryScheduleHandler.Handle(r.Context(), commands.SetDeliveryScheduleCommand{
		Actor:     actorFrom(r.Context()),
		ProjectID: id,
		Schedule:  schedule,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeProject(w, r, http.StatusOK, id)
}

// handleListUpdates handles GET /api/v1/projects/{projectID}/updates
func (s *Server) handleListUpdates(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updates, err := s.app.ListUpdatesHandler.Handle(r.Context(), queries.ListUpdatesQuery{
		Actor:     actorFrom(r.Context()),
		ProjectID: id,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updates": updates})
}

// handleDashboard handles GET /api/v1/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.app.DashboardHandler.Handle(r.Context(), queries.DashboardQuery{Actor: actorFrom(r.Context())})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// handleAddMilestone handles POST /api/v1/projects/{projectID}/milestones
func (s *Server) handleAddMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req addMilestoneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	target, err := optionalDate("target_date", req.TargetDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	milestone, err := s.app.AddMilestoneHandler.Handle(r.Context(), commands.AddMilestoneCommand{
		Actor:         actorFrom(r.Context()),
		ProjectID:     id,
		Title:         req.Title,
		TargetDate:    target,
		ClientVisible: req.ClientVisible,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMilestoneResponse(milestone))
}

// handleMilestoneCompletion handles POST and DELETE /api/v1/milestones/{milestoneID}/complete
func (s *Server) handleMilestoneCompletion(completed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "milestoneID")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		milestone, err := s.app.SetMilestoneCompletionHandler.Handle(r.Context(), commands.SetMilestoneCompletionCommand{
			Actor:       actorFrom(r.Context()),
			MilestoneID: id,
			Completed:   completed,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newMilestoneResponse(milestone))
	}
}

// handleDeleteMilestone handles DELETE /api/v1/milestones/{milestoneID}
func (s *Server) handleDeleteMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "milestoneID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	err = s.app.DeleteMilestoneHandler.Handle(r.Context(), commands.DeleteMilestoneCommand{
		Actor:       actorFrom(r.Context()),
		MilestoneID: id,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeProject answers with the caller's view of a project.
func (s *Server) writeProject(w http.ResponseWriter, r *http.Request, status int, id uuid.UUID) {
	dto, err := s.app.GetProjectHandler.Handle(r.Context(), queries.GetProjectQuery{
		Actor:     actorFrom(r.Context()),
		ProjectID: id,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, dto)
}
