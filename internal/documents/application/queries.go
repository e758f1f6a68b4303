package application

import (
	"context"
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/documents/domain"
	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/google/uuid"
)

// DefaultURLTTL is used when no lifetime is configured.
const DefaultURLTTL = time.Hour

// DocumentDTO is the read model of a document.
type DocumentDTO struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"project_id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	UploaderRole string    `json:"uploader_role"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToDTO converts a document.
func ToDTO(d *domain.Document) DocumentDTO {
	return DocumentDTO{
		ID:           d.ID(),
		ProjectID:    d.ProjectID(),
		Filename:     d.Filename(),
		ContentType:  d.ContentType(),
		SizeBytes:    d.Size(),
		UploaderRole: string(d.UploaderRole()),
		CreatedAt:    d.CreatedAt(),
	}
}

// ListDocumentsHandler lists a project's documents for its owner or the admin.
type ListDocumentsHandler struct {
	projects  projects.ProjectRepository
	documents domain.DocumentRepository
}

// NewListDocumentsHandler creates a new ListDocumentsHandler.
func NewListDocumentsHandler(projectRepo projects.ProjectRepository, documents domain.DocumentRepository) *ListDocumentsHandler {
	return &ListDocumentsHandler{projects: projectRepo, documents: documents}
}

// Handle returns the documents of projectID, newest first.
func (h *ListDocumentsHandler) Handle(ctx context.Context, actor sharedApplication.Actor, projectID uuid.UUID) ([]DocumentDTO, error) {
	p, err := h.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessClient(p.ClientID()) {
		return nil, sharedApplication.ErrForbidden
	}
	docs, err := h.documents.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentDTO, 0, len(docs))
	for _, d := range docs {
		out = append(out, ToDTO(d))
	}
	return out, nil
}

// DownloadURL is a time-limited link to a document.
type DownloadURL struct {
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DocumentDownloadURLHandler signs download links after an ownership check.
type DocumentDownloadURLHandler struct {
	projects  projects.ProjectRepository
	documents domain.DocumentRepository
	store     ObjectStore
	clock     projects.Clock
	ttl       time.Duration
}

// NewDocumentDownloadURLHandler creates a new DocumentDownloadURLHandler.
func NewDocumentDownloadURLHandler(
	projectRepo projects.ProjectRepository,
	documents domain.DocumentRepository,
	store ObjectStore,
	clock projects.Clock,
	ttl time.Duration,
) *DocumentDownloadURLHandler {
	if clock == nil {
		clock = projects.SystemClock
	}
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &DocumentDownloadURLHandler{projects: projectRepo, documents: documents, store: store, clock: clock, ttl: ttl}
}

// Handle signs a URL for documentID.
func (h *DocumentDownloadURLHandler) Handle(ctx context.Context, actor sharedApplication.Actor, documentID uuid.UUID) (*DownloadURL, error) {
	if h.store == nil {
		return nil, ErrStorageNotConfigured
	}
	doc, err := h.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	p, err := h.projects.FindByID(ctx, doc.ProjectID())
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessClient(p.ClientID()) {
		return nil, sharedApplication.ErrForbidden
	}
	signed, err := h.store.PresignedURL(ctx, doc.StoragePath(), doc.Filename(), h.ttl)
	if err != nil {
		return nil, err
	}
	return &DownloadURL{URL: signed, Filename: doc.Filename(), ExpiresAt: h.clock.Now().Add(h.ttl)}, nil
}
