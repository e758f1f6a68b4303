package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectRepository implements domain.ProjectRepository on either backend.
type ProjectRepository struct {
	conn database.Connection
}

// NewProjectRepository creates a project repository.
func NewProjectRepository(conn database.Connection) *ProjectRepository {
	return &ProjectRepository{conn: conn}
}

const projectColumns = `id, client_id, service_type, title, description, status, jurisdictions,
    start_date, timeline_days, estimated_delivery_date, delivery_date_overridden, actual_delivery_date,
    price_paid, currency, payment_reference, version, created_at, updated_at`

// Create inserts a new project at version 1.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	s := p.Snapshot()
	jurisdictions, err := json.Marshal(nonNil(s.Jurisdictions))
	if err != nil {
		return fmt.Errorf("failed to marshal jurisdictions: %w", err)
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err = exec.Exec(ctx, `INSERT INTO projects (`+projectColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		s.ID.String(),
		s.ClientID.String(),
		string(s.ServiceType),
		s.Title,
		s.Description,
		string(s.Status),
		string(jurisdictions),
		database.FormatDate(s.StartDate),
		nullInt(s.TimelineDays),
		database.NullDate(s.EstimatedDelivery),
		s.DeliveryOverridden,
		database.NullDate(s.ActualDelivery),
		nullDecimal(s.PricePaid),
		s.Currency,
		nullString(s.PaymentReference),
		database.FormatTime(s.CreatedAt),
		database.FormatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	p.MarkPersisted()
	return nil
}

// Update writes the mutable columns if the stored version still matches
// the one the project was loaded at.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	s := p.Snapshot()
	exec := database.ExecutorFromContext(ctx, r.conn)
	res, err := exec.Exec(ctx, `UPDATE projects SET
    title = ?, description = ?, status = ?, timeline_days = ?, estimated_delivery_date = ?,
    delivery_date_overridden = ?, actual_delivery_date = ?, version = version + 1, updated_at = ?
WHERE id = ? AND version = ?`,
		s.Title,
		s.Description,
		string(s.Status),
		nullInt(s.TimelineDays),
		database.NullDate(s.EstimatedDelivery),
		s.DeliveryOverridden,
		database.NullDate(s.ActualDelivery),
		database.FormatTime(s.UpdatedAt),
		s.ID.String(),
		s.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n == 0 {
		return domain.ErrConcurrentModification
	}
	p.MarkPersisted()
	return nil
}

// FindByID loads a project.
func (r *ProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id.String())
	p, err := scanProject(row)
	if database.IsNoRows(err) {
		return nil, domain.ErrProjectNotFound
	}
	return p, err
}

// FindByPaymentReference loads the project created for a payment.
func (r *ProjectRepository) FindByPaymentReference(ctx context.Context, reference string) (*domain.Project, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE payment_reference = ?`, reference)
	p, err := scanProject(row)
	if database.IsNoRows(err) {
		return nil, domain.ErrProjectNotFound
	}
	return p, err
}

// List returns matching projects, newest first.
func (r *ProjectRepository) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	var (
		where []string
		args  []any
	)
	if filter.ClientID != uuid.Nil {
		where = append(where, "client_id = ?")
		args = append(args, filter.ClientID.String())
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.ServiceType != "" {
		where = append(where, "service_type = ?")
		args = append(args, string(filter.ServiceType))
	}

	query := `SELECT ` + projectColumns + ` FROM projects`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func scanProject(row database.Row) (*domain.Project, error) {
	var (
		id, clientID, serviceType, status   string
		jurisdictions, startDate, currency  string
		createdAt, updatedAt                string
		timelineDays                        sql.NullInt64
		estimated, actual, paymentReference sql.NullString
		price                               decimal.NullDecimal
		s                                   domain.ProjectSnapshot
	)
	err := row.Scan(
		&id, &clientID, &serviceType, &s.Title, &s.Description, &status, &jurisdictions,
		&startDate, &timelineDays, &estimated, &s.DeliveryOverridden, &actual,
		&price, &currency, &paymentReference, &s.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid project id %q: %w", id, err)
	}
	if s.ClientID, err = uuid.Parse(clientID); err != nil {
		return nil, fmt.Errorf("invalid client id %q: %w", clientID, err)
	}
	if err := json.Unmarshal([]byte(jurisdictions), &s.Jurisdictions); err != nil {
		return nil, fmt.Errorf("invalid jurisdictions for project %s: %w", id, err)
	}
	if s.StartDate, err = database.ParseDate(startDate); err != nil {
		return nil, err
	}
	if s.EstimatedDelivery, err = database.DatePtr(estimated); err != nil {
		return nil, err
	}
	if s.ActualDelivery, err = database.DatePtr(actual); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}

	s.ServiceType = domain.ServiceType(serviceType)
	s.Status = domain.Stage(status)
	s.Currency = currency
	s.PaymentReference = paymentReference.String
	if timelineDays.Valid {
		n := int(timelineDays.Int64)
		s.TimelineDays = &n
	}
	if price.Valid {
		v := price.Decimal
		s.PricePaid = &v
	}
	return domain.RehydrateProject(s), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullDecimal stores prices as their exact decimal text.
func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
