package domain

import (
	"context"

	"github.com/google/uuid"
)

// ProjectFilter narrows a project listing. Zero values match everything.
type ProjectFilter struct {
	ClientID    uuid.UUID
	Status      Stage
	ServiceType ServiceType
	Limit       int
}

// ProjectRepository persists projects. Update compares the stored version
// and fails with ErrConcurrentModification when it moved.
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	Update(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindByPaymentReference(ctx context.Context, reference string) (*Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*Project, error)
}

// UpdateRepository is the append-only audit log.
type UpdateRepository interface {
	Append(ctx context.Context, update *ProjectUpdate) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]ProjectUpdate, error)
}

// MilestoneRepository persists milestones.
type MilestoneRepository interface {
	Save(ctx context.Context, milestone *Milestone) error
	FindByID(ctx context.Context, id uuid.UUID) (*Milestone, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Milestone, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClientRepository persists clients.
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByEmail(ctx context.Context, email string) (*Client, error)
	// EnsureByEmail returns the client with client's email, inserting
	// client when none exists yet.
	EnsureByEmail(ctx context.Context, client *Client) (*Client, error)
}
