package project

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
)

var (
	createClientEmail   string
	createClientName    string
	createClientID      string
	createService       string
	createDescription   string
	createJurisdictions []string
	createStartDate     string
	createTimelineDays  int
	createNote          string
	createPrice         string
	createCurrency      string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a project for a client",
	Long: `Create a project. The client is found or created by email and
the project starts at the first stage of its service workflow.

Examples:
  patentdesk project create "Widget FTO" --client-email ada@example.com --service fto
  patentdesk project create "Sensor search" --client-email ada@example.com --service patent_search --timeline-days 21 --price 1500.00`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		command := commands.CreateProjectCommand{
			Actor:         app.Actor,
			ClientEmail:   createClientEmail,
			ClientName:    createClientName,
			ServiceType:   createService,
			Title:         args[0],
			Description:   createDescription,
			Jurisdictions: createJurisdictions,
			InitialNote:   createNote,
			Currency:      strings.ToUpper(createCurrency),
			Origin:        commands.OriginAdmin,
		}

		if createClientID != "" {
			id, err := uuid.Parse(createClientID)
			if err != nil {
				return fmt.Errorf("invalid client ID: %w", err)
			}
			command.ClientID = id
		}

		if createStartDate != "" {
			start, err := domain.ParseDate(createStartDate)
			if err != nil {
				return fmt.Errorf("invalid start date (use YYYY-MM-DD): %w", err)
			}
			command.StartDate = start
		}

		if cmd.Flags().Changed("timeline-days") {
			days := createTimelineDays
			command.TimelineDaysOverride = &days
		}

		if createPrice != "" {
			price, err := decimal.NewFromString(createPrice)
			if err != nil {
				return fmt.Errorf("invalid price: %w", err)
			}
			command.PricePaid = &price
		}

		ctx := cmd.Context()
		project, err := app.CreateProjectHandler.Handle(ctx, command)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		app.Flush(ctx)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created project: %s\n", project.Title())
		fmt.Fprintf(out, "  ID: %s\n", project.ID())
		fmt.Fprintf(out, "  Status: %s\n", app.Catalog.StageLabel(project.Status()))
		if est := project.EstimatedDelivery(); est != nil {
			fmt.Fprintf(out, "  Estimated delivery: %s\n", domain.FormatDate(*est))
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createClientEmail, "client-email", "", "client email; the client is created if new")
	createCmd.Flags().StringVar(&createClientName, "client-name", "", "client full name for a new client")
	createCmd.Flags().StringVar(&createClientID, "client-id", "", "existing client ID instead of an email")
	createCmd.Flags().StringVarP(&createService, "service", "s", "", "service type (see 'patentdesk catalog')")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "project description")
	createCmd.Flags().StringSliceVarP(&createJurisdictions, "jurisdiction", "j", nil, "jurisdiction code (repeatable)")
	createCmd.Flags().StringVar(&createStartDate, "start", "", "start date (YYYY-MM-DD, default today)")
	createCmd.Flags().IntVar(&createTimelineDays, "timeline-days", 0, "timeline in days instead of the service default")
	createCmd.Flags().StringVarP(&createNote, "note", "n", "", "note on the initial status record")
	createCmd.Flags().StringVar(&createPrice, "price", "", "price paid, e.g. 1500.00")
	createCmd.Flags().StringVar(&createCurrency, "currency", "usd", "currency of the price")
	_ = createCmd.MarkFlagRequired("service")
}
