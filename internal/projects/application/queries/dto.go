package queries

import (
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	"github.com/google/uuid"
)

// ProjectDTO is the portal's view of a project with every derived field
// already computed.
type ProjectDTO struct {
	ID                 uuid.UUID             `json:"id"`
	ClientID           uuid.UUID             `json:"client_id"`
	ServiceType        string                `json:"service_type"`
	ServiceLabel       string                `json:"service_label"`
	Title              string                `json:"title"`
	Description        string                `json:"description,omitempty"`
	Status             string                `json:"status"`
	StatusLabel        string                `json:"status_label"`
	ColorClass         string                `json:"color_class"`
	ProgressPercent    int                   `json:"progress_percent"`
	IsComplete         bool                  `json:"is_complete"`
	Jurisdictions      []string              `json:"jurisdictions"`
	StartDate          string                `json:"start_date"`
	TimelineDays       *int                  `json:"timeline_days,omitempty"`
	EstimatedDelivery  *string               `json:"estimated_delivery_date,omitempty"`
	DeliveryOverridden bool                  `json:"delivery_date_overridden"`
	DaysRemaining      *int                  `json:"days_remaining,omitempty"`
	Urgency            string                `json:"urgency,omitempty"`
	ActualDelivery     *string               `json:"actual_delivery_date,omitempty"`
	PricePaid          *string               `json:"price_paid,omitempty"`
	Currency           string                `json:"currency"`
	Timeline           []domain.TimelineStep `json:"timeline,omitempty"`
	Milestones         []MilestoneDTO        `json:"milestones,omitempty"`
	Updates            []UpdateDTO           `json:"updates,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// MilestoneDTO is a data transfer object for milestones.
type MilestoneDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	TargetDate    *string   `json:"target_date,omitempty"`
	CompletedDate *string   `json:"completed_date,omitempty"`
	ClientVisible bool      `json:"is_client_visible"`
}

// UpdateDTO is one audit record as shown in the portal.
type UpdateDTO struct {
	ID           uuid.UUID `json:"id"`
	StatusFrom   *string   `json:"status_from,omitempty"`
	StatusTo     string    `json:"status_to"`
	StatusLabel  string    `json:"status_label"`
	Note         string    `json:"note,omitempty"`
	InternalNote string    `json:"internal_note,omitempty"`
	NotifyClient bool      `json:"notify_client"`
	CreatedAt    time.Time `json:"created_at"`
}

// presenter turns domain objects into DTOs.
type presenter struct {
	workflow  *domain.Workflow
	scheduler *domain.DeliveryScheduler
}

func (pr presenter) project(p *domain.Project) ProjectDTO {
	catalog := pr.workflow.Catalog()
	dto := ProjectDTO{
		ID:                 p.ID(),
		ClientID:           p.ClientID(),
		ServiceType:        string(p.ServiceType()),
		ServiceLabel:       catalog.ServiceLabel(p.ServiceType()),
		Title:              p.Title(),
		Description:        p.Description(),
		Status:             string(p.Status()),
		StatusLabel:        catalog.StageLabel(p.Status()),
		ColorClass:         string(domain.ColorClassFor(p.Status())),
		ProgressPercent:    pr.workflow.ProgressPercent(p.ServiceType(), p.Status()),
		IsComplete:         p.IsComplete(),
		Jurisdictions:      p.Jurisdictions(),
		StartDate:          domain.FormatDate(p.StartDate()),
		TimelineDays:       p.TimelineDays(),
		EstimatedDelivery:  datePtr(p.EstimatedDelivery()),
		DeliveryOverridden: p.DeliveryOverridden(),
		ActualDelivery:     datePtr(p.ActualDelivery()),
		Currency:           p.Currency(),
		CreatedAt:          p.CreatedAt(),
		UpdatedAt:          p.UpdatedAt(),
	}
	if dto.Jurisdictions == nil {
		dto.Jurisdictions = []string{}
	}
	if price := p.PricePaid(); price != nil {
		s := price.StringFixed(2)
		dto.PricePaid = &s
	}
	if est := p.EstimatedDelivery(); est != nil && !p.IsComplete() {
		days := pr.scheduler.DaysRemaining(*est)
		dto.DaysRemaining = &days
		dto.Urgency = string(domain.UrgencyForDays(days))
	}
	return dto
}

func (pr presenter) milestone(m *domain.Milestone) MilestoneDTO {
	return ToMilestoneDTO(m)
}

// ToMilestoneDTO converts a milestone for display.
func ToMilestoneDTO(m *domain.Milestone) MilestoneDTO {
	return MilestoneDTO{
		ID:            m.ID(),
		Title:         m.Title(),
		TargetDate:    datePtr(m.TargetDate()),
		CompletedDate: datePtr(m.CompletedDate()),
		ClientVisible: m.IsClientVisible(),
	}
}

func (pr presenter) update(u domain.ProjectUpdate) UpdateDTO {
	dto := UpdateDTO{
		ID:           u.ID,
		StatusTo:     string(u.StatusTo),
		StatusLabel:  pr.workflow.Catalog().StageLabel(u.StatusTo),
		Note:         u.Note,
		InternalNote: u.InternalNote,
		NotifyClient: u.NotifyClient,
		CreatedAt:    u.CreatedAt,
	}
	if u.StatusFrom != nil {
		from := string(*u.StatusFrom)
		dto.StatusFrom = &from
	}
	return dto
}

func datePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := domain.FormatDate(*t)
	return &s
}
