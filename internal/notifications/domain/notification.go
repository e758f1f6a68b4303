// Package domain defines client and practitioner notifications.
package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Kind selects the template of a notification.
type Kind string

const (
	KindProjectCreated   Kind = "project_created"
	KindStatusUpdate     Kind = "status_update"
	KindDocumentUploaded Kind = "document_uploaded"
	KindNewMessage       Kind = "new_message"
)

// ProjectCreatedData is the payload of a project_created notification.
type ProjectCreatedData struct {
	Title             string `json:"title"`
	ServiceType       string `json:"serviceType"`
	EstimatedDelivery string `json:"estimatedDelivery,omitempty"`
	PortalURL         string `json:"portalUrl"`
}

// StatusUpdateData is the payload of a status_update notification.
type StatusUpdateData struct {
	Title       string `json:"title"`
	ServiceType string `json:"serviceType"`
	NewStatus   string `json:"newStatus"`
	StatusLabel string `json:"statusLabel"`
	Note        string `json:"note,omitempty"`
	PortalURL   string `json:"portalUrl"`
}

// DocumentUploadedData is the payload of a document_uploaded notification.
type DocumentUploadedData struct {
	Title     string `json:"title"`
	Filename  string `json:"filename"`
	PortalURL string `json:"portalUrl"`
}

// NewMessageData is the payload of a new_message notification.
type NewMessageData struct {
	ProjectTitle   string `json:"projectTitle"`
	SenderName     string `json:"senderName"`
	MessagePreview string `json:"messagePreview"`
	PortalURL      string `json:"portalUrl"`
}

// Notification is one message to one recipient. ID is stable across
// redeliveries of the same event so senders can deduplicate.
type Notification struct {
	ID   uuid.UUID
	Kind Kind
	To   string
	Data any
}

// Sender delivers notifications.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationError is a failed delivery. It never fails the operation
// that raised the underlying event.
type NotificationError struct {
	Kind      Kind
	Recipient string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification %s to %s failed: %v", e.Kind, e.Recipient, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
