package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	cliBilling "github.com/felixgeelhaar/patentdesk/adapter/cli/billing"
	"github.com/felixgeelhaar/patentdesk/adapter/cli/document"
	"github.com/felixgeelhaar/patentdesk/adapter/cli/mcp"
	"github.com/felixgeelhaar/patentdesk/adapter/cli/message"
	"github.com/felixgeelhaar/patentdesk/adapter/cli/project"
	"github.com/felixgeelhaar/patentdesk/internal/app"
	"github.com/felixgeelhaar/patentdesk/pkg/config"
	"github.com/felixgeelhaar/patentdesk/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The container is built after flag parsing so --config and --verbose apply.
	cli.SetInitializer(func(ctx context.Context, opts cli.Options) (*cli.App, error) {
		cfg, err := config.LoadFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}

		level := cfg.LogLevel
		if opts.Verbose {
			level = "debug"
		}
		logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, level, "patentdesk", cli.Version))
		cli.SetLogger(logger)

		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		cliApp, err := cli.NewApp(container)
		if err != nil {
			container.Close()
			return nil, err
		}
		return cliApp, nil
	})

	// Register commands
	cli.AddCommand(project.Cmd)
	cli.AddCommand(cliBilling.Cmd)
	cli.AddCommand(document.Cmd)
	cli.AddCommand(message.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}
