package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/patentdesk/internal/shared/domain"
	"github.com/google/uuid"
)

// Routing keys for project events.
const (
	RoutingKeyProjectCreated   = "projects.project.created"
	RoutingKeyStatusAdvanced   = "projects.project.status_advanced"
	RoutingKeyProjectAnnotated = "projects.project.annotated"
)

// ProjectCreated is raised once when a project is stored for the first time.
type ProjectCreated struct {
	sharedDomain.BaseEvent
	ClientID          uuid.UUID   `json:"client_id"`
	ServiceType       ServiceType `json:"service_type"`
	Title             string      `json:"title"`
	Status            Stage       `json:"status"`
	EstimatedDelivery *string     `json:"estimated_delivery,omitempty"`
}

// NewProjectCreated captures p as created.
func NewProjectCreated(p *Project, now time.Time) *ProjectCreated {
	e := &ProjectCreated{
		BaseEvent:   sharedDomain.NewBaseEvent(p.ID(), AggregateType, RoutingKeyProjectCreated, now),
		ClientID:    p.clientID,
		ServiceType: p.serviceType,
		Title:       p.title,
		Status:      p.status,
	}
	if p.estimatedDelivery != nil {
		d := FormatDate(*p.estimatedDelivery)
		e.EstimatedDelivery = &d
	}
	return e
}

// StatusAdvanced is raised on every forward transition. Consumers only
// contact the client when NotifyClient is set.
type StatusAdvanced struct {
	sharedDomain.BaseEvent
	ClientID     uuid.UUID   `json:"client_id"`
	ServiceType  ServiceType `json:"service_type"`
	Title        string      `json:"title"`
	StatusFrom   Stage       `json:"status_from"`
	StatusTo     Stage       `json:"status_to"`
	Note         string      `json:"note,omitempty"`
	NotifyClient bool        `json:"notify_client"`
	UpdateID     uuid.UUID   `json:"update_id"`
}

// NewStatusAdvanced describes the transition recorded by u.
func NewStatusAdvanced(p *Project, u *ProjectUpdate, now time.Time) *StatusAdvanced {
	e := &StatusAdvanced{
		BaseEvent:    sharedDomain.NewBaseEvent(p.ID(), AggregateType, RoutingKeyStatusAdvanced, now),
		ClientID:     p.clientID,
		ServiceType:  p.serviceType,
		Title:        p.title,
		StatusTo:     u.StatusTo,
		Note:         u.Note,
		NotifyClient: u.NotifyClient,
		UpdateID:     u.ID,
	}
	if u.StatusFrom != nil {
		e.StatusFrom = *u.StatusFrom
	}
	return e
}

// ProjectAnnotated is raised for a note without a transition.
type ProjectAnnotated struct {
	sharedDomain.BaseEvent
	ClientID     uuid.UUID   `json:"client_id"`
	ServiceType  ServiceType `json:"service_type"`
	Title        string      `json:"title"`
	Status       Stage       `json:"status"`
	Note         string      `json:"note,omitempty"`
	NotifyClient bool        `json:"notify_client"`
	UpdateID     uuid.UUID   `json:"update_id"`
}

// NewProjectAnnotated describes the annotation recorded by u.
func NewProjectAnnotated(p *Project, u *ProjectUpdate, now time.Time) *ProjectAnnotated {
	return &ProjectAnnotated{
		BaseEvent:    sharedDomain.NewBaseEvent(p.ID(), AggregateType, RoutingKeyProjectAnnotated, now),
		ClientID:     p.clientID,
		ServiceType:  p.serviceType,
		Title:        p.title,
		Status:       u.StatusTo,
		Note:         u.Note,
		NotifyClient: u.NotifyClient,
		UpdateID:     u.ID,
	}
}
