// Package application holds the message commands and queries.
package application

import (
	"context"
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/messages/domain"
	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// PracticeName signs messages written by the admin.
const PracticeName = "Patent Desk"

// PostMessageCommand adds a message to a project thread.
type PostMessageCommand struct {
	Actor     sharedApplication.Actor
	ProjectID uuid.UUID
	Body      string
}

// PostMessageHandler handles the PostMessageCommand.
type PostMessageHandler struct {
	projects   projects.ProjectRepository
	clients    projects.ClientRepository
	messages   domain.MessageRepository
	outboxRepo outbox.Repository
	clock      projects.Clock
	uow        sharedApplication.UnitOfWork
}

// NewPostMessageHandler creates a new PostMessageHandler.
func NewPostMessageHandler(
	projectRepo projects.ProjectRepository,
	clients projects.ClientRepository,
	messages domain.MessageRepository,
	outboxRepo outbox.Repository,
	clock projects.Clock,
	uow sharedApplication.UnitOfWork,
) *PostMessageHandler {
	if clock == nil {
		clock = projects.SystemClock
	}
	return &PostMessageHandler{
		projects:   projectRepo,
		clients:    clients,
		messages:   messages,
		outboxRepo: outboxRepo,
		clock:      clock,
		uow:        uow,
	}
}

// Handle executes the PostMessageCommand. The project owner and the admin
// may post.
func (h *PostMessageHandler) Handle(ctx context.Context, cmd PostMessageCommand) (*MessageDTO, error) {
	var posted *domain.Message
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		p, err := h.projects.FindByID(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}
		if !cmd.Actor.CanAccessClient(p.ClientID()) {
			return sharedApplication.ErrForbidden
		}
		name, err := h.senderName(txCtx, cmd.Actor, p.ClientID())
		if err != nil {
			return err
		}

		now := h.clock.Now()
		m, err := domain.NewMessage(p.ID(), cmd.Actor, name, cmd.Body, now)
		if err != nil {
			return err
		}
		if err := h.messages.Create(txCtx, m); err != nil {
			return err
		}
		m.RecordPosted(p.ClientID(), p.Title(), now)
		events := m.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(txCtx, cmd.Actor.UserID))
		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		if err := h.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
			return err
		}
		m.ClearDomainEvents()
		posted = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := toDTO(posted)
	return &dto, nil
}

func (h *PostMessageHandler) senderName(ctx context.Context, actor sharedApplication.Actor, clientID uuid.UUID) (string, error) {
	if actor.IsAdmin() {
		return PracticeName, nil
	}
	c, err := h.clients.FindByID(ctx, clientID)
	if err != nil {
		return "", err
	}
	return c.DisplayName(), nil
}

// MessageDTO is the read model of a message.
type MessageDTO struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"project_id"`
	AuthorRole string    `json:"author_role"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

func toDTO(m *domain.Message) MessageDTO {
	return MessageDTO{
		ID:         m.ID(),
		ProjectID:  m.ProjectID(),
		AuthorRole: string(m.AuthorRole()),
		AuthorName: m.AuthorName(),
		Body:       m.Body(),
		CreatedAt:  m.CreatedAt(),
	}
}

// ListMessagesHandler returns a project's thread to its owner or the admin.
type ListMessagesHandler struct {
	projects projects.ProjectRepository
	messages domain.MessageRepository
}

// NewListMessagesHandler creates a new ListMessagesHandler.
func NewListMessagesHandler(projectRepo projects.ProjectRepository, messages domain.MessageRepository) *ListMessagesHandler {
	return &ListMessagesHandler{projects: projectRepo, messages: messages}
}

// Handle lists messages oldest first.
func (h *ListMessagesHandler) Handle(ctx context.Context, actor sharedApplication.Actor, projectID uuid.UUID) ([]MessageDTO, error) {
	p, err := h.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessClient(p.ClientID()) {
		return nil, sharedApplication.ErrForbidden
	}
	list, err := h.messages.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]MessageDTO, 0, len(list))
	for _, m := range list {
		out = append(out, toDTO(m))
	}
	return out, nil
}
