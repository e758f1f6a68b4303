// Package persistence stores document metadata in SQL.
package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/patentdesk/internal/documents/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// DocumentRepository implements domain.DocumentRepository.
type DocumentRepository struct {
	conn database.Connection
}

// NewDocumentRepository creates a document repository.
func NewDocumentRepository(conn database.Connection) *DocumentRepository {
	return &DocumentRepository{conn: conn}
}

const documentColumns = `id, project_id, uploaded_by, uploader_role, filename, storage_path, content_type, size_bytes, created_at`

// Create inserts a document row.
func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `INSERT INTO project_documents (`+documentColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID().String(),
		d.ProjectID().String(),
		d.UploadedBy().String(),
		string(d.UploaderRole()),
		d.Filename(),
		d.StoragePath(),
		d.ContentType(),
		d.Size(),
		database.FormatTime(d.CreatedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	d.MarkPersisted()
	return nil
}

// FindByID loads one document.
func (r *DocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `SELECT `+documentColumns+` FROM project_documents WHERE id = ?`, id.String())
	d, err := scanDocument(row)
	if database.IsNoRows(err) {
		return nil, domain.ErrDocumentNotFound
	}
	return d, err
}

// ListByProject returns a project's documents, newest first.
func (r *DocumentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Document, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `SELECT `+documentColumns+` FROM project_documents
WHERE project_id = ? ORDER BY created_at DESC, id`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func scanDocument(row database.Row) (*domain.Document, error) {
	var (
		id, pid, by, role, name, storagePath, contentType, createdAt string
		size                                                         int64
	)
	if err := row.Scan(&id, &pid, &by, &role, &name, &storagePath, &contentType, &size, &createdAt); err != nil {
		return nil, err
	}
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	projectID, err := uuid.Parse(pid)
	if err != nil {
		return nil, err
	}
	uploadedBy, err := uuid.Parse(by)
	if err != nil {
		return nil, err
	}
	created, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateDocument(docID, projectID, uploadedBy, sharedApplication.Role(role), name, storagePath, contentType, size, created), nil
}
