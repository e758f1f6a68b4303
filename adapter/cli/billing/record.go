package billing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	billingDomain "github.com/felixgeelhaar/patentdesk/internal/billing/domain"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/security"
)

var recordEventPath string

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Create a project from a payment event",
	Long: `Record a successful checkout payment from a JSON file holding the
same body the payment webhook receives. Recording the same payment
reference twice returns the existing project.

Examples:
  patentdesk billing record --event ./payment.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if recordEventPath == "" {
			return errors.New("event path is required")
		}

		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		f, err := security.SafeOpen(recordEventPath)
		if err != nil {
			return err
		}
		defer f.Close()

		var event billingDomain.PaymentSucceeded
		dec := json.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&event); err != nil {
			return fmt.Errorf("invalid payment event: %w", err)
		}

		ctx := cmd.Context()
		result, err := app.RecordPaymentHandler.Handle(ctx, event)
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		app.Flush(ctx)

		out := cmd.OutOrStdout()
		if result.Duplicate {
			fmt.Fprintf(out, "Payment %s already recorded as project %s\n", event.PaymentReferenceID, result.Project.ID())
			return nil
		}
		fmt.Fprintf(out, "Recorded payment %s\n", event.PaymentReferenceID)
		fmt.Fprintf(out, "  Project: %s (%s)\n", result.Project.Title(), result.Project.ID())
		fmt.Fprintf(out, "  Status: %s\n", app.Catalog.StageLabel(result.Project.Status()))
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVar(&recordEventPath, "event", "", "path to payment event JSON")
}
