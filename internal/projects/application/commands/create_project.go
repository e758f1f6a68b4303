package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/patentdesk/pkg/observability"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Creation origins, used as a metrics label.
const (
	OriginAdmin   = "admin"
	OriginPayment = "payment"
)

// CreateProjectCommand contains the data needed to create a project. The
// owner is ClientID, or the client with ClientEmail (created on demand).
// A zero StartDate means today.
type CreateProjectCommand struct {
	Actor                sharedApplication.Actor
	ClientID             uuid.UUID
	ClientEmail          string
	ClientName           string
	ServiceType          string
	Title                string
	Description          string
	Jurisdictions        []string
	StartDate            time.Time
	TimelineDaysOverride *int
	InitialNote          string
	PricePaid            *decimal.Decimal
	Currency             string
	PaymentReference     string
	Origin               string
}

// CreateProjectHandler handles the CreateProjectCommand.
type CreateProjectHandler struct {
	store     projectStore
	clients   domain.ClientRepository
	catalog   *domain.Catalog
	scheduler *domain.DeliveryScheduler
	uow       sharedApplication.UnitOfWork
	metrics   *observability.Metrics
}

// NewCreateProjectHandler creates a new CreateProjectHandler.
func NewCreateProjectHandler(
	projects domain.ProjectRepository,
	updates domain.UpdateRepository,
	clients domain.ClientRepository,
	outboxRepo outbox.Repository,
	catalog *domain.Catalog,
	scheduler *domain.DeliveryScheduler,
	uow sharedApplication.UnitOfWork,
	metrics *observability.Metrics,
) *CreateProjectHandler {
	return &CreateProjectHandler{
		store:     projectStore{projects: projects, updates: updates, outboxRepo: outboxRepo},
		clients:   clients,
		catalog:   catalog,
		scheduler: scheduler,
		uow:       uow,
		metrics:   metrics,
	}
}

// Handle executes the CreateProjectCommand.
func (h *CreateProjectHandler) Handle(ctx context.Context, cmd CreateProjectCommand) (*domain.Project, error) {
	if err := cmd.Actor.RequireAdmin(); err != nil {
		return nil, err
	}
	serviceType, err := h.catalog.ParseServiceType(cmd.ServiceType)
	if err != nil {
		return nil, err
	}
	if cmd.ClientID == uuid.Nil && cmd.ClientEmail == "" {
		return nil, domain.NewValidationError("client", "client id or email is required")
	}

	startDate := cmd.StartDate
	if startDate.IsZero() {
		startDate = h.scheduler.Today()
	}

	var project *domain.Project
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		clientID, err := h.resolveClient(txCtx, cmd)
		if err != nil {
			return err
		}

		p, update, err := domain.NewProject(domain.NewProjectParams{
			ClientID:             clientID,
			ServiceType:          serviceType,
			Title:                cmd.Title,
			Description:          cmd.Description,
			Jurisdictions:        cmd.Jurisdictions,
			StartDate:            startDate,
			TimelineDaysOverride: cmd.TimelineDaysOverride,
			InitialNote:          cmd.InitialNote,
			PricePaid:            cmd.PricePaid,
			Currency:             cmd.Currency,
			PaymentReference:     cmd.PaymentReference,
			CreatedBy:            cmd.Actor.UserID,
		}, h.catalog, h.scheduler.Now())
		if err != nil {
			return err
		}

		if err := h.store.save(txCtx, cmd.Actor, p, update); err != nil {
			return err
		}
		project = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	origin := cmd.Origin
	if origin == "" {
		origin = OriginAdmin
	}
	h.metrics.RecordProjectCreated(string(serviceType), origin)
	return project, nil
}

func (h *CreateProjectHandler) resolveClient(ctx context.Context, cmd CreateProjectCommand) (uuid.UUID, error) {
	if cmd.ClientID != uuid.Nil {
		c, err := h.clients.FindByID(ctx, cmd.ClientID)
		if err != nil {
			return uuid.Nil, err
		}
		return c.ID(), nil
	}

	candidate, err := domain.NewClient(cmd.ClientEmail, cmd.ClientName, h.scheduler.Now())
	if err != nil {
		return uuid.Nil, err
	}
	c, err := h.clients.EnsureByEmail(ctx, candidate)
	if err != nil {
		return uuid.Nil, err
	}
	return c.ID(), nil
}
