package domain

import (
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/patentdesk/internal/shared/domain"
	"github.com/google/uuid"
)

// Milestone is a sub-checkpoint tracked beside the stage sequence. It never
// affects project status or the delivery estimate.
type Milestone struct {
	sharedDomain.BaseEntity
	projectID     uuid.UUID
	title         string
	targetDate    *time.Time
	completedDate *time.Time
	clientVisible bool
}

// NewMilestone creates an incomplete milestone.
func NewMilestone(projectID uuid.UUID, title string, targetDate *time.Time, clientVisible bool, now time.Time) (*Milestone, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "is required")
	}
	m := &Milestone{
		BaseEntity:    sharedDomain.NewBaseEntity(now),
		projectID:     projectID,
		title:         title,
		clientVisible: clientVisible,
	}
	if targetDate != nil {
		d := TruncateDate(*targetDate)
		m.targetDate = &d
	}
	return m, nil
}

// Complete stamps today. Completing an already complete milestone keeps
// the original date.
func (m *Milestone) Complete(today, now time.Time) {
	if m.completedDate != nil {
		return
	}
	d := TruncateDate(today)
	m.completedDate = &d
	m.Touch(now)
}

// Uncomplete clears the completed date.
func (m *Milestone) Uncomplete(now time.Time) {
	if m.completedDate == nil {
		return
	}
	m.completedDate = nil
	m.Touch(now)
}

func (m *Milestone) ProjectID() uuid.UUID      { return m.projectID }
func (m *Milestone) Title() string             { return m.title }
func (m *Milestone) TargetDate() *time.Time    { return copyTime(m.targetDate) }
func (m *Milestone) CompletedDate() *time.Time { return copyTime(m.completedDate) }
func (m *Milestone) IsCompleted() bool         { return m.completedDate != nil }
func (m *Milestone) IsClientVisible() bool     { return m.clientVisible }

// RehydrateMilestone rebuilds a milestone from storage.
func RehydrateMilestone(id, projectID uuid.UUID, title string, targetDate, completedDate *time.Time, clientVisible bool, createdAt, updatedAt time.Time) *Milestone {
	return &Milestone{
		BaseEntity:    sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		projectID:     projectID,
		title:         title,
		targetDate:    copyTime(targetDate),
		completedDate: copyTime(completedDate),
		clientVisible: clientVisible,
	}
}
