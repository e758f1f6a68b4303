package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/api"
	documentsDomain "github.com/felixgeelhaar/patentdesk/internal/documents/domain"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal API",
	Long: `Run the portal HTTP API until interrupted.

When RABBITMQ_URL is unset the outbox processor runs in this process and
delivers notifications directly; otherwise run the worker alongside.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		cfg := api.DefaultServerConfig()
		cfg.Addr = app.Config.HTTPAddr
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		cfg.MaxUploadBytes = documentsDomain.MaxDocumentSize

		if app.DeliversInProcess() && app.Config.OutboxProcessorEnabled {
			if err := app.OutboxProcessor.Start(ctx); err != nil {
				return err
			}
			defer app.OutboxProcessor.Stop()
		}

		server := api.NewServer(cfg, app.Container, app.Logger)
		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
