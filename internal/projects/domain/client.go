package domain

import (
	"net/mail"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/patentdesk/internal/shared/domain"
	"github.com/google/uuid"
)

// Client owns projects and signs in to the portal with their email.
type Client struct {
	sharedDomain.BaseEntity
	email string
	name  string
}

// NewClient creates a client keyed by a normalized email address.
func NewClient(email, name string, now time.Time) (*Client, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseEntity: sharedDomain.NewBaseEntity(now),
		email:      email,
		name:       strings.TrimSpace(name),
	}, nil
}

// NormalizeEmail lowercases and validates an email address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", NewValidationError("email", "is not a valid email address")
	}
	return email, nil
}

// RehydrateClient rebuilds a client from storage.
func RehydrateClient(id uuid.UUID, email, name string, createdAt, updatedAt time.Time) *Client {
	return &Client{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		email:      email,
		name:       name,
	}
}

func (c *Client) Email() string { return c.email }
func (c *Client) Name() string  { return c.name }

// DisplayName falls back to the email when no name is known.
func (c *Client) DisplayName() string {
	if c.name != "" {
		return c.name
	}
	return c.email
}
