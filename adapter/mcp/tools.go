package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// toolset implements every tool against the practitioner's App.
type toolset struct {
	app *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	ts := toolset{app: deps.App}
	registerProjectTools(srv, ts)
	registerMilestoneTools(srv, ts)
	registerContentTools(srv, ts)
	return nil
}
