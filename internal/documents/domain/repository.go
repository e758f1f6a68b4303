package domain

import (
	"context"

	"github.com/google/uuid"
)

// DocumentRepository stores document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Document, error)
}
