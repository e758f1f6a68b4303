package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	documentsApp "github.com/felixgeelhaar/patentdesk/internal/documents/application"
	messagesApp "github.com/felixgeelhaar/patentdesk/internal/messages/application"
)

type documentIDInput struct {
	DocumentID string `json:"document_id" jsonschema:"required"`
}

type messagePostInput struct {
	ProjectID string `json:"project_id" jsonschema:"required"`
	Body      string `json:"body" jsonschema:"required"`
}

func registerContentTools(srv *mcp.Server, ts toolset) {
	srv.Tool("document.list").
		Description("List the files shared on a project").
		Handler(ts.listDocuments)

	srv.Tool("document.link").
		Description("Create a temporary download link for a document").
		Handler(ts.documentLink)

	srv.Tool("message.list").
		Description("Show a project's message thread, oldest first").
		Handler(ts.listMessages)

	srv.Tool("message.post").
		Description("Post a message to the client on a project's thread").
		Handler(ts.postMessage)
}

func (ts toolset) listDocuments(ctx context.Context, input projectIDInput) ([]documentsApp.DocumentDTO, error) {
	id, err := parseUUID(input.ProjectID)
	if err != nil {
		return nil, err
	}
	return ts.app.ListDocumentsHandler.Handle(ctx, ts.app.Actor, id)
}

func (ts toolset) documentLink(ctx context.Context, input documentIDInput) (*documentsApp.DownloadURL, error) {
	id, err := parseUUID(input.DocumentID)
	if err != nil {
		return nil, err
	}
	return ts.app.DocumentDownloadURLHandler.Handle(ctx, ts.app.Actor, id)
}

func (ts toolset) listMessages(ctx context.Context, input projectIDInput) ([]messagesApp.MessageDTO, error) {
	id, err := parseUUID(input.ProjectID)
	if err != nil {
		return nil, err
	}
	return ts.app.ListMessagesHandler.Handle(ctx, ts.app.Actor, id)
}

func (ts toolset) postMessage(ctx context.Context, input messagePostInput) (*messagesApp.MessageDTO, error) {
	id, err := parseUUID(input.ProjectID)
	if err != nil {
		return nil, err
	}
	msg, err := ts.app.PostMessageHandler.Handle(ctx, messagesApp.PostMessageCommand{
		Actor:     ts.app.Actor,
		ProjectID: id,
		Body:      input.Body,
	})
	if err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return msg, nil
}
