// Package persistence stores project messages in SQL.
package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/patentdesk/internal/messages/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// MessageRepository implements domain.MessageRepository.
type MessageRepository struct {
	conn database.Connection
}

// NewMessageRepository creates a message repository.
func NewMessageRepository(conn database.Connection) *MessageRepository {
	return &MessageRepository{conn: conn}
}

// Create inserts a message.
func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `INSERT INTO project_messages
    (id, project_id, author_id, author_role, author_name, body, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID().String(),
		m.ProjectID().String(),
		m.AuthorID().String(),
		string(m.AuthorRole()),
		m.AuthorName(),
		m.Body(),
		database.FormatTime(m.CreatedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	m.MarkPersisted()
	return nil
}

// ListByProject returns a thread oldest first.
func (r *MessageRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Message, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `SELECT id, project_id, author_id, author_role, author_name, body, created_at
FROM project_messages WHERE project_id = ? ORDER BY created_at, id`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		var id, pid, author, role, name, body, createdAt string
		if err := rows.Scan(&id, &pid, &author, &role, &name, &body, &createdAt); err != nil {
			return nil, err
		}
		msgID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		pID, err := uuid.Parse(pid)
		if err != nil {
			return nil, err
		}
		authorID, err := uuid.Parse(author)
		if err != nil {
			return nil, err
		}
		created, err := database.ParseTime(createdAt)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, domain.RehydrateMessage(msgID, pID, authorID, sharedApplication.Role(role), name, body, created))
	}
	return msgs, rows.Err()
}
