package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose portal data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	if deps.App == nil {
		return fmt.Errorf("app is required")
	}
	ts := toolset{app: deps.App}

	srv.Resource("patentdesk://catalog").
		Name("Service Catalog").
		Description("Service types with their ordered workflow stages").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			services, err := ts.listCatalog(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, services)
		})

	srv.Resource("patentdesk://dashboard").
		Name("Dashboard").
		Description("Open work by urgency with upcoming deadlines").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			dash, err := ts.dashboard(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, dash)
		})

	srv.Resource("patentdesk://projects").
		Name("Projects").
		Description("All projects, most recently created first").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			projects, err := ts.listProjects(ctx, projectListInput{Limit: 200})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, projects)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
