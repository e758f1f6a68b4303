// Package domain models the message thread of a project.
package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/patentdesk/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType         = "Message"
	RoutingKeyMessagePost = "projects.message.posted"
	PreviewLength         = 140
	MaxBodyLength         = 10000
)

// ErrMessageTooLong rejects bodies over MaxBodyLength runes.
var ErrMessageTooLong = fmt.Errorf("%w: message exceeds %d characters", projects.ErrValidation, MaxBodyLength)

// Message is one entry in a project's thread.
type Message struct {
	sharedDomain.BaseAggregateRoot
	projectID  uuid.UUID
	authorID   uuid.UUID
	authorRole sharedApplication.Role
	authorName string
	body       string
}

// NewMessage creates a message by author.
func NewMessage(projectID uuid.UUID, author sharedApplication.Actor, authorName, body string, now time.Time) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, projects.NewValidationError("body", "is required")
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return nil, ErrMessageTooLong
	}
	return &Message{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(sharedDomain.NewBaseEntity(now)),
		projectID:         projectID,
		authorID:          author.UserID,
		authorRole:        author.Role,
		authorName:        strings.TrimSpace(authorName),
		body:              body,
	}, nil
}

func (m *Message) ProjectID() uuid.UUID               { return m.projectID }
func (m *Message) AuthorID() uuid.UUID                { return m.authorID }
func (m *Message) AuthorRole() sharedApplication.Role { return m.authorRole }
func (m *Message) AuthorName() string                 { return m.authorName }
func (m *Message) Body() string                       { return m.body }

// Preview is the body cut to PreviewLength runes.
func (m *Message) Preview() string {
	return Preview(m.body)
}

// Preview cuts body to PreviewLength runes, marking the cut with an ellipsis.
func Preview(body string) string {
	if utf8.RuneCountInString(body) <= PreviewLength {
		return body
	}
	runes := []rune(body)
	return strings.TrimSpace(string(runes[:PreviewLength-1])) + "…"
}

// RecordPosted raises MessagePosted.
func (m *Message) RecordPosted(clientID uuid.UUID, projectTitle string, now time.Time) {
	m.AddDomainEvent(&MessagePosted{
		BaseEvent:    sharedDomain.NewBaseEvent(m.ID(), AggregateType, RoutingKeyMessagePost, now),
		ProjectID:    m.projectID,
		ClientID:     clientID,
		ProjectTitle: projectTitle,
		SenderName:   m.authorName,
		SenderRole:   string(m.authorRole),
		Preview:      m.Preview(),
	})
}

// RehydrateMessage rebuilds a message from storage.
func RehydrateMessage(id, projectID, authorID uuid.UUID, role sharedApplication.Role, authorName, body string, createdAt time.Time) *Message {
	return &Message{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt, createdAt), 1),
		projectID:         projectID,
		authorID:          authorID,
		authorRole:        role,
		authorName:        authorName,
		body:              body,
	}
}

// MessagePosted is raised when a message is added to a thread.
type MessagePosted struct {
	sharedDomain.BaseEvent
	ProjectID    uuid.UUID `json:"project_id"`
	ClientID     uuid.UUID `json:"client_id"`
	ProjectTitle string    `json:"project_title"`
	SenderName   string    `json:"sender_name"`
	SenderRole   string    `json:"sender_role"`
	Preview      string    `json:"message_preview"`
}

// MessageRepository stores messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Message, error)
}
