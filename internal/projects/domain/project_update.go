package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/patentdesk/internal/shared/domain"
	"github.com/google/uuid"
)

// ProjectUpdate is one append-only audit record: a transition, the
// creation record or a standalone annotation (StatusFrom == StatusTo).
type ProjectUpdate struct {
	ID           uuid.UUID
	ProjectID    uuid.UUID
	StatusFrom   *Stage
	StatusTo     Stage
	Note         string
	InternalNote string
	NotifyClient bool
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
}

// NewProjectUpdate creates an audit record.
func NewProjectUpdate(projectID uuid.UUID, from *Stage, to Stage, a Annotation, now time.Time) *ProjectUpdate {
	a = a.normalized()
	u := &ProjectUpdate{
		ID:           sharedDomain.NewID(),
		ProjectID:    projectID,
		StatusTo:     to,
		Note:         a.Note,
		InternalNote: a.InternalNote,
		NotifyClient: a.NotifyClient,
		CreatedBy:    a.By,
		CreatedAt:    now.UTC(),
	}
	if from != nil {
		f := *from
		u.StatusFrom = &f
	}
	return u
}

// IsTransition reports whether the record moved the project.
func (u ProjectUpdate) IsTransition() bool {
	return u.StatusFrom != nil && *u.StatusFrom != u.StatusTo
}

// ForClient strips what the owning client must not see.
func (u ProjectUpdate) ForClient() ProjectUpdate {
	u.InternalNote = ""
	return u
}
