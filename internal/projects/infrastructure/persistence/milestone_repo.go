package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// MilestoneRepository implements domain.MilestoneRepository.
type MilestoneRepository struct {
	conn database.Connection
}

// NewMilestoneRepository creates a milestone repository.
func NewMilestoneRepository(conn database.Connection) *MilestoneRepository {
	return &MilestoneRepository{conn: conn}
}

const milestoneColumns = `id, project_id, title, target_date, completed_date, is_client_visible, created_at, updated_at`

// Save inserts or updates a milestone.
func (r *MilestoneRepository) Save(ctx context.Context, m *domain.Milestone) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `INSERT INTO project_milestones (`+milestoneColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    title = excluded.title,
    target_date = excluded.target_date,
    completed_date = excluded.completed_date,
    is_client_visible = excluded.is_client_visible,
    updated_at = excluded.updated_at`,
		m.ID().String(),
		m.ProjectID().String(),
		m.Title(),
		database.NullDate(m.TargetDate()),
		database.NullDate(m.CompletedDate()),
		m.IsClientVisible(),
		database.FormatTime(m.CreatedAt()),
		database.FormatTime(m.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to save milestone: %w", err)
	}
	return nil
}

// FindByID loads a milestone.
func (r *MilestoneRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Milestone, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `SELECT `+milestoneColumns+` FROM project_milestones WHERE id = ?`, id.String())
	m, err := scanMilestone(row)
	if database.IsNoRows(err) {
		return nil, domain.ErrMilestoneNotFound
	}
	return m, err
}

// ListByProject returns a project's milestones ordered by target date,
// undated ones last.
func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Milestone, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `SELECT `+milestoneColumns+` FROM project_milestones
WHERE project_id = ?
ORDER BY CASE WHEN target_date IS NULL THEN 1 ELSE 0 END, target_date, created_at, id`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*domain.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// Delete removes a milestone.
func (r *MilestoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	res, err := exec.Exec(ctx, `DELETE FROM project_milestones WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete milestone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMilestoneNotFound
	}
	return nil
}

func scanMilestone(row database.Row) (*domain.Milestone, error) {
	var (
		id, projectID, title, createdAt, updatedAt string
		target, completed                          sql.NullString
		visible                                    bool
	)
	if err := row.Scan(&id, &projectID, &title, &target, &completed, &visible, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	mid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, err
	}
	targetDate, err := database.DatePtr(target)
	if err != nil {
		return nil, err
	}
	completedDate, err := database.DatePtr(completed)
	if err != nil {
		return nil, err
	}
	created, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := database.ParseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateMilestone(mid, pid, title, targetDate, completedDate, visible, created, updated), nil
}
