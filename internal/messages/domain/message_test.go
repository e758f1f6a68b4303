package domain

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow = time.Date(2026, 5, 4, 16, 0, 0, 0, time.UTC)
	author  = sharedApplication.Actor{UserID: uuid.New(), Role: sharedApplication.RoleClient}
)

func TestNewMessage(t *testing.T) {
	projectID := uuid.New()
	m, err := NewMessage(projectID, author, " Ada ", "  Any news on the search?  ", testNow)
	require.NoError(t, err)

	assert.Equal(t, projectID, m.ProjectID())
	assert.Equal(t, author.UserID, m.AuthorID())
	assert.Equal(t, sharedApplication.RoleClient, m.AuthorRole())
	assert.Equal(t, "Ada", m.AuthorName())
	assert.Equal(t, "Any news on the search?", m.Body())
}

func TestNewMessage_Rejects(t *testing.T) {
	_, err := NewMessage(uuid.New(), author, "Ada", "   ", testNow)
	assert.True(t, projects.IsValidation(err))

	_, err = NewMessage(uuid.New(), author, "Ada", strings.Repeat("a", MaxBodyLength+1), testNow)
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestPreview(t *testing.T) {
	short := "Short message"
	assert.Equal(t, short, Preview(short))

	exact := strings.Repeat("ü", PreviewLength)
	assert.Equal(t, exact, Preview(exact))

	long := strings.Repeat("ü", PreviewLength+10)
	got := Preview(long)
	assert.Equal(t, PreviewLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestRecordPosted(t *testing.T) {
	m, err := NewMessage(uuid.New(), author, "Ada", "Uploaded the sketches", testNow)
	require.NoError(t, err)
	clientID := uuid.New()

	m.RecordPosted(clientID, "Widget drafting", testNow)

	events := m.DomainEvents()
	require.Len(t, events, 1)
	e := events[0].(*MessagePosted)
	assert.Equal(t, RoutingKeyMessagePost, e.RoutingKey())
	assert.Equal(t, clientID, e.ClientID)
	assert.Equal(t, "Ada", e.SenderName)
	assert.Equal(t, "client", e.SenderRole)
	assert.Equal(t, "Uploaded the sketches", e.Preview)
}
