// Package application turns domain events into notifications.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	documents "github.com/felixgeelhaar/patentdesk/internal/documents/domain"
	messages "github.com/felixgeelhaar/patentdesk/internal/messages/domain"
	"github.com/felixgeelhaar/patentdesk/internal/notifications/domain"
	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/patentdesk/pkg/observability"
	"github.com/google/uuid"
)

// DispatcherConfig holds the addresses used to build notifications.
type DispatcherConfig struct {
	PortalBaseURL string
	// AdminEmail receives client uploads and messages. Empty disables them.
	AdminEmail string
}

// Dispatcher consumes project events and sends the matching notification.
// A send failure is returned so the outbox retries the event.
type Dispatcher struct {
	clients projects.ClientRepository
	catalog *projects.Catalog
	sender  domain.Sender
	config  DispatcherConfig
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	clients projects.ClientRepository,
	catalog *projects.Catalog,
	sender domain.Sender,
	config DispatcherConfig,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	config.PortalBaseURL = strings.TrimRight(config.PortalBaseURL, "/")
	return &Dispatcher{
		clients: clients,
		catalog: catalog,
		sender:  sender,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes implements eventbus.EventConsumer.
func (d *Dispatcher) EventTypes() []string {
	return []string{
		projects.RoutingKeyProjectCreated,
		projects.RoutingKeyStatusAdvanced,
		projects.RoutingKeyProjectAnnotated,
		documents.RoutingKeyDocumentUpload,
		messages.RoutingKeyMessagePost,
	}
}

// Handle implements eventbus.EventConsumer.
func (d *Dispatcher) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	switch event.RoutingKey {
	case projects.RoutingKeyProjectCreated:
		return d.projectCreated(ctx, event)
	case projects.RoutingKeyStatusAdvanced:
		return d.statusAdvanced(ctx, event)
	case projects.RoutingKeyProjectAnnotated:
		return d.projectAnnotated(ctx, event)
	case documents.RoutingKeyDocumentUpload:
		return d.documentUploaded(ctx, event)
	case messages.RoutingKeyMessagePost:
		return d.messagePosted(ctx, event)
	}
	return nil
}

func (d *Dispatcher) projectCreated(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload projects.ProjectCreated
	if err := event.DecodePayload(&payload); err != nil {
		return err
	}
	data := domain.ProjectCreatedData{
		Title:       payload.Title,
		ServiceType: d.catalog.ServiceLabel(payload.ServiceType),
		PortalURL:   d.clientURL(event.AggregateID),
	}
	if payload.EstimatedDelivery != nil {
		data.EstimatedDelivery = *payload.EstimatedDelivery
	}
	return d.notifyClient(ctx, event, payload.ClientID, domain.KindProjectCreated, data)
}

func (d *Dispatcher) statusAdvanced(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload projects.StatusAdvanced
	if err := event.DecodePayload(&payload); err != nil {
		return err
	}
	if !payload.NotifyClient {
		return nil
	}
	return d.notifyClient(ctx, event, payload.ClientID, domain.KindStatusUpdate, domain.StatusUpdateData{
		Title:       payload.Title,
		ServiceType: d.catalog.ServiceLabel(payload.ServiceType),
		NewStatus:   string(payload.StatusTo),
		StatusLabel: d.catalog.StageLabel(payload.StatusTo),
		Note:        payload.Note,
		PortalURL:   d.clientURL(event.AggregateID),
	})
}

func (d *Dispatcher) projectAnnotated(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload projects.ProjectAnnotated
	if err := event.DecodePayload(&payload); err != nil {
		return err
	}
	if !payload.NotifyClient || payload.Note == "" {
		return nil
	}
	return d.notifyClient(ctx, event, payload.ClientID, domain.KindStatusUpdate, domain.StatusUpdateData{
		Title:       payload.Title,
		ServiceType: d.catalog.ServiceLabel(payload.ServiceType),
		NewStatus:   string(payload.Status),
		StatusLabel: d.catalog.StageLabel(payload.Status),
		Note:        payload.Note,
		PortalURL:   d.clientURL(event.AggregateID),
	})
}

func (d *Dispatcher) documentUploaded(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload documents.DocumentUploaded
	if err := event.DecodePayload(&payload); err != nil {
		return err
	}
	if payload.UploaderRole == string(sharedApplication.RoleClient) {
		return d.notifyAdmin(ctx, event, domain.KindDocumentUploaded, domain.DocumentUploadedData{
			Title:     payload.ProjectTitle,
			Filename:  payload.Filename,
			PortalURL: d.adminURL(payload.ProjectID),
		})
	}
	return d.notifyClient(ctx, event, payload.ClientID, domain.KindDocumentUploaded, domain.DocumentUploadedData{
		Title:     payload.ProjectTitle,
		Filename:  payload.Filename,
		PortalURL: d.clientURL(payload.ProjectID),
	})
}

func (d *Dispatcher) messagePosted(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload messages.MessagePosted
	if err := event.DecodePayload(&payload); err != nil {
		return err
	}
	data := domain.NewMessageData{
		ProjectTitle:   payload.ProjectTitle,
		SenderName:     payload.SenderName,
		MessagePreview: payload.Preview,
	}
	if payload.SenderRole == string(sharedApplication.RoleClient) {
		data.PortalURL = d.adminURL(payload.ProjectID)
		return d.notifyAdmin(ctx, event, domain.KindNewMessage, data)
	}
	data.PortalURL = d.clientURL(payload.ProjectID)
	return d.notifyClient(ctx, event, payload.ClientID, domain.KindNewMessage, data)
}

func (d *Dispatcher) notifyClient(ctx context.Context, event *eventbus.ConsumedEvent, clientID uuid.UUID, kind domain.Kind, data any) error {
	client, err := d.clients.FindByID(ctx, clientID)
	if errors.Is(err, projects.ErrClientNotFound) {
		d.logger.WarnContext(ctx, "dropping notification for unknown client",
			"kind", kind,
			"client_id", clientID,
			"event_id", event.EventID,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve client: %w", err)
	}
	return d.send(ctx, domain.Notification{ID: event.EventID, Kind: kind, To: client.Email(), Data: data})
}

func (d *Dispatcher) notifyAdmin(ctx context.Context, event *eventbus.ConsumedEvent, kind domain.Kind, data any) error {
	if d.config.AdminEmail == "" {
		return nil
	}
	return d.send(ctx, domain.Notification{ID: event.EventID, Kind: kind, To: d.config.AdminEmail, Data: data})
}

func (d *Dispatcher) send(ctx context.Context, n domain.Notification) error {
	err := d.sender.Send(ctx, n)
	d.metrics.RecordNotification(string(n.Kind), err)
	if err != nil {
		nerr := &domain.NotificationError{Kind: n.Kind, Recipient: n.To, Err: err}
		d.logger.ErrorContext(ctx, "notification failed",
			"kind", n.Kind,
			"notification_id", n.ID,
			"error", err,
		)
		return nerr
	}
	d.logger.InfoContext(ctx, "notification sent", "kind", n.Kind, "notification_id", n.ID)
	return nil
}

func (d *Dispatcher) clientURL(projectID uuid.UUID) string {
	return d.config.PortalBaseURL + "/portal/projects/" + projectID.String()
}

func (d *Dispatcher) adminURL(projectID uuid.UUID) string {
	return d.config.PortalBaseURL + "/admin/projects/" + projectID.String()
}
