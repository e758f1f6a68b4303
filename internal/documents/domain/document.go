// Package domain models files attached to a project.
package domain

import (
	"fmt"
	"path"
	"strings"
	"time"

	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/patentdesk/internal/shared/domain"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/security"
	"github.com/google/uuid"
)

const (
	AggregateType            = "Document"
	RoutingKeyDocumentUpload = "projects.document.uploaded"
	DefaultContentType       = "application/octet-stream"
)

// MaxDocumentSize is the largest accepted upload in bytes.
const MaxDocumentSize int64 = 50 << 20

var (
	ErrDocumentNotFound = fmt.Errorf("document %w", projects.ErrNotFound)
	ErrEmptyDocument    = fmt.Errorf("%w: document is empty", projects.ErrValidation)
	ErrDocumentTooLarge = fmt.Errorf("%w: document exceeds %d bytes", projects.ErrValidation, MaxDocumentSize)
)

// Document is a stored file belonging to a project.
type Document struct {
	sharedDomain.BaseAggregateRoot
	projectID    uuid.UUID
	uploadedBy   uuid.UUID
	uploaderRole sharedApplication.Role
	filename     string
	storagePath  string
	contentType  string
	size         int64
}

// NewDocument validates the upload metadata and derives the object path
// projects/<project>/<document>-<filename>.
func NewDocument(projectID uuid.UUID, uploader sharedApplication.Actor, filename, contentType string, size int64, now time.Time) (*Document, error) {
	name, err := security.SanitizeFilename(filename)
	if err != nil {
		return nil, projects.NewValidationError("filename", "is not a usable file name")
	}
	if size <= 0 {
		return nil, ErrEmptyDocument
	}
	if size > MaxDocumentSize {
		return nil, ErrDocumentTooLarge
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = DefaultContentType
	}

	d := &Document{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(sharedDomain.NewBaseEntity(now)),
		projectID:         projectID,
		uploadedBy:        uploader.UserID,
		uploaderRole:      uploader.Role,
		filename:          name,
		contentType:       contentType,
		size:              size,
	}
	d.storagePath = path.Join("projects", projectID.String(), d.ID().String()+"-"+name)
	return d, nil
}

func (d *Document) ProjectID() uuid.UUID                 { return d.projectID }
func (d *Document) UploadedBy() uuid.UUID                { return d.uploadedBy }
func (d *Document) UploaderRole() sharedApplication.Role { return d.uploaderRole }
func (d *Document) Filename() string                     { return d.filename }
func (d *Document) StoragePath() string                  { return d.storagePath }
func (d *Document) ContentType() string                  { return d.contentType }
func (d *Document) Size() int64                          { return d.size }

// RecordUpload raises DocumentUploaded once the blob is stored.
func (d *Document) RecordUpload(clientID uuid.UUID, projectTitle string, now time.Time) {
	d.AddDomainEvent(&DocumentUploaded{
		BaseEvent:    sharedDomain.NewBaseEvent(d.ID(), AggregateType, RoutingKeyDocumentUpload, now),
		ProjectID:    d.projectID,
		ClientID:     clientID,
		ProjectTitle: projectTitle,
		Filename:     d.filename,
		UploaderRole: string(d.uploaderRole),
	})
}

// RehydrateDocument rebuilds a document from storage.
func RehydrateDocument(id, projectID, uploadedBy uuid.UUID, role sharedApplication.Role, filename, storagePath, contentType string, size int64, createdAt time.Time) *Document {
	return &Document{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt, createdAt), 1),
		projectID:         projectID,
		uploadedBy:        uploadedBy,
		uploaderRole:      role,
		filename:          filename,
		storagePath:       storagePath,
		contentType:       contentType,
		size:              size,
	}
}

// DocumentUploaded is raised after a document is stored.
type DocumentUploaded struct {
	sharedDomain.BaseEvent
	ProjectID    uuid.UUID `json:"project_id"`
	ClientID     uuid.UUID `json:"client_id"`
	ProjectTitle string    `json:"project_title"`
	Filename     string    `json:"filename"`
	UploaderRole string    `json:"uploader_role"`
}
