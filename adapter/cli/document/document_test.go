package document

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	"github.com/felixgeelhaar/patentdesk/adapter/cli/clitest"
	documentsApp "github.com/felixgeelhaar/patentdesk/internal/documents/application"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
)

func newProject(t *testing.T, app *cli.App) uuid.UUID {
	t.Helper()
	price := decimal.NewFromInt(900)
	p, err := app.CreateProjectHandler.Handle(context.Background(), commands.CreateProjectCommand{
		Actor:       app.Actor,
		ClientEmail: "ada@example.com",
		ServiceType: "fto",
		Title:       "Widget FTO",
		PricePaid:   &price,
		Origin:      commands.OriginAdmin,
	})
	require.NoError(t, err)
	return p.ID()
}

func TestUploadCmd_RequiresStorage(t *testing.T) {
	app, _ := clitest.NewLocalApp(t)
	projectID := newProject(t, app)

	path := filepath.Join(t.TempDir(), "opinion.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o600))

	uploadContentType = ""
	uploadCmd.SetContext(context.Background())
	err := uploadCmd.RunE(uploadCmd, []string{projectID.String(), path})
	assert.ErrorIs(t, err, documentsApp.ErrStorageNotConfigured)
}

func TestUploadCmd_MissingFile(t *testing.T) {
	app, _ := clitest.NewLocalApp(t)
	projectID := newProject(t, app)

	uploadCmd.SetContext(context.Background())
	err := uploadCmd.RunE(uploadCmd, []string{projectID.String(), filepath.Join(t.TempDir(), "missing.pdf")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListCmd_Empty(t *testing.T) {
	app, _ := clitest.NewLocalApp(t)
	projectID := newProject(t, app)

	var output strings.Builder
	listCmd.SetContext(context.Background())
	listCmd.SetOut(&output)

	require.NoError(t, listCmd.RunE(listCmd, []string{projectID.String()}))
	assert.Contains(t, output.String(), "No documents found.")
}

func TestLinkCmd_InvalidID(t *testing.T) {
	_, _ = clitest.NewLocalApp(t)

	err := linkCmd.RunE(linkCmd, []string{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document ID")
}
