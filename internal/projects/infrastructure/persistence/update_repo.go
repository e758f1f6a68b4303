package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// UpdateRepository stores the append-only project audit log.
type UpdateRepository struct {
	conn database.Connection
}

// NewUpdateRepository creates an audit log repository.
func NewUpdateRepository(conn database.Connection) *UpdateRepository {
	return &UpdateRepository{conn: conn}
}

// Append inserts one audit record.
func (r *UpdateRepository) Append(ctx context.Context, u *domain.ProjectUpdate) error {
	var from sql.NullString
	if u.StatusFrom != nil {
		from = sql.NullString{String: string(*u.StatusFrom), Valid: true}
	}
	var createdBy sql.NullString
	if u.CreatedBy != uuid.Nil {
		createdBy = sql.NullString{String: u.CreatedBy.String(), Valid: true}
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `INSERT INTO project_updates
    (id, project_id, status_from, status_to, note, internal_note, notify_client, created_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(),
		u.ProjectID.String(),
		from,
		string(u.StatusTo),
		nullString(u.Note),
		nullString(u.InternalNote),
		u.NotifyClient,
		createdBy,
		database.FormatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append project update: %w", err)
	}
	return nil
}

// ListByProject returns a project's audit log oldest first.
func (r *UpdateRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectUpdate, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `SELECT id, project_id, status_from, status_to, note, internal_note,
    notify_client, created_by, created_at
FROM project_updates WHERE project_id = ? ORDER BY created_at, id`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list project updates: %w", err)
	}
	defer rows.Close()

	var updates []domain.ProjectUpdate
	for rows.Next() {
		var (
			id, pid, to, createdAt          string
			from, note, internal, createdBy sql.NullString
			u                               domain.ProjectUpdate
		)
		if err := rows.Scan(&id, &pid, &from, &to, &note, &internal, &u.NotifyClient, &createdBy, &createdAt); err != nil {
			return nil, err
		}
		if u.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if u.ProjectID, err = uuid.Parse(pid); err != nil {
			return nil, err
		}
		if createdBy.Valid {
			if u.CreatedBy, err = uuid.Parse(createdBy.String); err != nil {
				return nil, err
			}
		}
		if u.CreatedAt, err = database.ParseTime(createdAt); err != nil {
			return nil, err
		}
		if from.Valid {
			st := domain.Stage(from.String)
			u.StatusFrom = &st
		}
		u.StatusTo = domain.Stage(to)
		u.Note = note.String
		u.InternalNote = internal.String
		updates = append(updates, u)
	}
	return updates, rows.Err()
}
