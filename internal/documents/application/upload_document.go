// Package application holds the document commands and queries.
package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/documents/domain"
	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ErrStorageNotConfigured is returned when no object store is wired.
var ErrStorageNotConfigured = errors.New("document storage is not configured")

// ObjectStore holds document blobs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
}

// UploadDocumentCommand attaches a file to a project.
type UploadDocumentCommand struct {
	Actor       sharedApplication.Actor
	ProjectID   uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadDocumentHandler handles the UploadDocumentCommand.
type UploadDocumentHandler struct {
	projects   projects.ProjectRepository
	documents  domain.DocumentRepository
	outboxRepo outbox.Repository
	store      ObjectStore
	clock      projects.Clock
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
}

// NewUploadDocumentHandler creates a new UploadDocumentHandler. store may
// be nil, in which case every upload fails with ErrStorageNotConfigured.
func NewUploadDocumentHandler(
	projectRepo projects.ProjectRepository,
	documents domain.DocumentRepository,
	outboxRepo outbox.Repository,
	store ObjectStore,
	clock projects.Clock,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *UploadDocumentHandler {
	if clock == nil {
		clock = projects.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadDocumentHandler{
		projects:   projectRepo,
		documents:  documents,
		outboxRepo: outboxRepo,
		store:      store,
		clock:      clock,
		uow:        uow,
		logger:     logger,
	}
}

// Handle stores the blob, then records the document and its event in one
// transaction. The blob is removed again if the transaction fails.
func (h *UploadDocumentHandler) Handle(ctx context.Context, cmd UploadDocumentCommand) (*domain.Document, error) {
	if h.store == nil {
		return nil, ErrStorageNotConfigured
	}
	p, err := h.projects.FindByID(ctx, cmd.ProjectID)
	if err != nil {
		return nil, err
	}
	if !cmd.Actor.CanAccessClient(p.ClientID()) {
		return nil, sharedApplication.ErrForbidden
	}
	if cmd.Content == nil {
		return nil, domain.ErrEmptyDocument
	}

	now := h.clock.Now()
	doc, err := domain.NewDocument(p.ID(), cmd.Actor, cmd.Filename, cmd.ContentType, cmd.Size, now)
	if err != nil {
		return nil, err
	}

	if err := h.store.Put(ctx, doc.StoragePath(), cmd.Content, doc.Size(), doc.ContentType()); err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.documents.Create(txCtx, doc); err != nil {
			return err
		}
		doc.RecordUpload(p.ClientID(), p.Title(), now)
		events := doc.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(txCtx, cmd.Actor.UserID))
		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		if rmErr := h.store.Remove(ctx, doc.StoragePath()); rmErr != nil {
			h.logger.WarnContext(ctx, "failed to remove orphaned document blob",
				"storage_path", doc.StoragePath(),
				"error", rmErr,
			)
		}
		return nil, err
	}
	doc.ClearDomainEvents()

	h.logger.InfoContext(ctx, "document uploaded",
		"project_id", p.ID(),
		"document_id", doc.ID(),
		"size_bytes", doc.Size(),
	)
	return doc, nil
}
