package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// ClientRepository implements domain.ClientRepository.
type ClientRepository struct {
	conn database.Connection
}

// NewClientRepository creates a client repository.
func NewClientRepository(conn database.Connection) *ClientRepository {
	return &ClientRepository{conn: conn}
}

const clientColumns = `id, email, name, created_at, updated_at`

// FindByID loads a client.
func (r *ClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	c, err := scanClient(exec.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id.String()))
	if database.IsNoRows(err) {
		return nil, domain.ErrClientNotFound
	}
	return c, err
}

// FindByEmail loads a client by email, case-insensitively.
func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	c, err := scanClient(exec.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))))
	if database.IsNoRows(err) {
		return nil, domain.ErrClientNotFound
	}
	return c, err
}

// EnsureByEmail inserts c unless a client with the same email exists and
// returns the stored row either way.
func (r *ClientRepository) EnsureByEmail(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `INSERT INTO clients (`+clientColumns+`) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (email) DO NOTHING`,
		c.ID().String(),
		c.Email(),
		c.Name(),
		database.FormatTime(c.CreatedAt()),
		database.FormatTime(c.UpdatedAt()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert client: %w", err)
	}
	return r.FindByEmail(ctx, c.Email())
}

func scanClient(row database.Row) (*domain.Client, error) {
	var id, email, name, createdAt, updatedAt string
	if err := row.Scan(&id, &email, &name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	cid, err := uuid.Parse(id)
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
	return domain.RehydrateClient(cid, email, name, created, updated), nil
}
