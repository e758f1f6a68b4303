package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	billingApp "github.com/felixgeelhaar/patentdesk/internal/billing/application"
	billingInfra "github.com/felixgeelhaar/patentdesk/internal/billing/infrastructure"
	documentsApp "github.com/felixgeelhaar/patentdesk/internal/documents/application"
	documentsDomain "github.com/felixgeelhaar/patentdesk/internal/documents/domain"
	documentsPersistence "github.com/felixgeelhaar/patentdesk/internal/documents/infrastructure/persistence"
	documentsStorage "github.com/felixgeelhaar/patentdesk/internal/documents/infrastructure/storage"
	identityApp "github.com/felixgeelhaar/patentdesk/internal/identity/application"
	messagesApp "github.com/felixgeelhaar/patentdesk/internal/messages/application"
	messagesDomain "github.com/felixgeelhaar/patentdesk/internal/messages/domain"
	messagesPersistence "github.com/felixgeelhaar/patentdesk/internal/messages/infrastructure/persistence"
	notificationsApp "github.com/felixgeelhaar/patentdesk/internal/notifications/application"
	notificationsDomain "github.com/felixgeelhaar/patentdesk/internal/notifications/domain"
	notificationsInfra "github.com/felixgeelhaar/patentdesk/internal/notifications/infrastructure"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/queries"
	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	projectsPersistence "github.com/felixgeelhaar/patentdesk/internal/projects/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database/postgres" // Register Postgres driver
	_ "github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/patentdesk/pkg/config"
	"github.com/felixgeelhaar/patentdesk/pkg/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DB       database.Connection
	DBDriver database.Driver

	// Redis, nil when REDIS_URL is unset.
	RedisClient *redis.Client

	// Repositories
	ProjectRepo   projects.ProjectRepository
	UpdateRepo    projects.UpdateRepository
	MilestoneRepo projects.MilestoneRepository
	ClientRepo    projects.ClientRepository
	DocumentRepo  documentsDomain.DocumentRepository
	MessageRepo   messagesDomain.MessageRepository
	OutboxRepo    outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Workflow
	Clock     projects.Clock
	Location  *time.Location
	Catalog   *projects.Catalog
	Workflow  *projects.Workflow
	Scheduler *projects.DeliveryScheduler

	// Observability
	Metrics *observability.Metrics
	Health  *observability.HealthRegistry

	// Auth
	Authenticator *identityApp.Authenticator

	// Project Command Handlers
	CreateProjectHandler       *commands.CreateProjectHandler
	AdvanceProjectHandler      *commands.AdvanceProjectHandler
	AnnotateProjectHandler     *commands.AnnotateProjectHandler
	SetDeliveryScheduleHandler *commands.SetDeliveryScheduleHandler

	// Milestone Command Handlers
	AddMilestoneHandler           *commands.AddMilestoneHandler
	SetMilestoneCompletionHandler *commands.SetMilestoneCompletionHandler
	DeleteMilestoneHandler        *commands.DeleteMilestoneHandler

	// Project Query Handlers
	GetProjectHandler   *queries.GetProjectHandler
	ListProjectsHandler *queries.ListProjectsHandler
	ListUpdatesHandler  *queries.ListUpdatesHandler
	DashboardHandler    *queries.DashboardHandler

	// Payments
	RecordPaymentHandler *billingApp.RecordPaymentHandler

	// Documents. DocumentStore is nil when STORAGE_ENDPOINT is unset.
	DocumentStore              *documentsStorage.MinioStore
	UploadDocumentHandler      *documentsApp.UploadDocumentHandler
	ListDocumentsHandler       *documentsApp.ListDocumentsHandler
	DocumentDownloadURLHandler *documentsApp.DocumentDownloadURLHandler

	// Messages
	PostMessageHandler  *messagesApp.PostMessageHandler
	ListMessagesHandler *messagesApp.ListMessagesHandler

	// Notifications
	Sender     notificationsDomain.Sender
	Dispatcher *notificationsApp.Dispatcher

	// Events
	EventPublisher    eventbus.Publisher
	InProcessEventBus *eventbus.InProcessEventBus
	OutboxProcessor   *outbox.Processor
}

// Option adjusts container construction.
type Option func(*Container)

// WithClock replaces the system clock, for tests.
func WithClock(clock projects.Clock) Option {
	return func(c *Container) { c.Clock = clock }
}

// WithSender replaces the configured notification sender.
func WithSender(sender notificationsDomain.Sender) Option {
	return func(c *Container) { c.Sender = sender }
}

// NewContainer wires the application for cfg. With DATABASE_URL unset it
// opens the local SQLite database; with RABBITMQ_URL unset events are
// delivered in process.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
		Clock:  projects.SystemClock,
	}
	for _, opt := range opts {
		opt(c)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	c.Location = loc

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}

	// Any failure past this point must release the database.
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	if err := c.initRedis(ctx); err != nil {
		return nil, err
	}

	c.Metrics = observability.NewMetrics()
	c.Health = observability.NewHealthRegistry(2 * time.Second)
	c.Health.Register("database", c.DB.Ping)

	c.initRepositories()

	if c.Catalog, err = projects.NewDefaultCatalog(); err != nil {
		return nil, fmt.Errorf("service catalog: %w", err)
	}
	c.Workflow = projects.NewWorkflow(c.Catalog)
	c.Scheduler = projects.NewDeliveryScheduler(c.Clock, loc)

	c.Authenticator = identityApp.NewAuthenticator(cfg.SupabaseJWTSecret, c.ClientRepo, logger)

	c.initProjectHandlers()
	c.initPaymentHandler()

	if err := c.initDocuments(ctx); err != nil {
		return nil, err
	}

	c.PostMessageHandler = messagesApp.NewPostMessageHandler(c.ProjectRepo, c.ClientRepo, c.MessageRepo, c.OutboxRepo, c.Clock, c.UnitOfWork)
	c.ListMessagesHandler = messagesApp.NewListMessagesHandler(c.ProjectRepo, c.MessageRepo)

	c.initNotifications()

	if err := c.initEvents(); err != nil {
		return nil, err
	}

	ok = true
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	driver, err := database.ParseDriver(c.Config.DatabaseDriver)
	if err != nil {
		return err
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     driver,
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
		MaxConns:   c.Config.DatabaseMaxConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DB = conn
	c.DBDriver = conn.Driver()
	c.Logger.Info("connected to database", "driver", c.DBDriver)
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}

	client, err := billingInfra.NewRedisClient(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return err
		}
		c.Logger.Warn("invalid Redis URL, payment guard disabled", "error", err)
		return nil
	}
	if err := client.Ping(ctx).Err(); err != nil {
		// The guard fails open, so an unreachable Redis is not fatal.
		c.Logger.Warn("Redis not available, payment guard will fail open", "error", err)
	}
	c.RedisClient = client
	return nil
}

func (c *Container) initRepositories() {
	c.ProjectRepo = projectsPersistence.NewProjectRepository(c.DB)
	c.UpdateRepo = projectsPersistence.NewUpdateRepository(c.DB)
	c.MilestoneRepo = projectsPersistence.NewMilestoneRepository(c.DB)
	c.ClientRepo = projectsPersistence.NewClientRepository(c.DB)
	c.DocumentRepo = documentsPersistence.NewDocumentRepository(c.DB)
	c.MessageRepo = messagesPersistence.NewMessageRepository(c.DB)
	c.OutboxRepo = outbox.NewSQLRepository(c.DB)
	c.UnitOfWork = database.NewUnitOfWork(c.DB)
}

func (c *Container) initProjectHandlers() {
	c.CreateProjectHandler = commands.NewCreateProjectHandler(
		c.ProjectRepo, c.UpdateRepo, c.ClientRepo, c.OutboxRepo, c.Catalog, c.Scheduler, c.UnitOfWork, c.Metrics,
	)
	c.AdvanceProjectHandler = commands.NewAdvanceProjectHandler(
		c.ProjectRepo, c.UpdateRepo, c.OutboxRepo, c.Workflow, c.Scheduler, c.UnitOfWork, c.Metrics,
	)
	c.AnnotateProjectHandler = commands.NewAnnotateProjectHandler(c.ProjectRepo, c.UpdateRepo, c.OutboxRepo, c.Scheduler, c.UnitOfWork)
	c.SetDeliveryScheduleHandler = commands.NewSetDeliveryScheduleHandler(c.ProjectRepo, c.UpdateRepo, c.OutboxRepo, c.Scheduler, c.UnitOfWork)

	c.AddMilestoneHandler = commands.NewAddMilestoneHandler(c.ProjectRepo, c.MilestoneRepo, c.Scheduler, c.UnitOfWork)
	c.SetMilestoneCompletionHandler = commands.NewSetMilestoneCompletionHandler(c.MilestoneRepo, c.Scheduler, c.UnitOfWork)
	c.DeleteMilestoneHandler = commands.NewDeleteMilestoneHandler(c.MilestoneRepo, c.UnitOfWork)

	c.GetProjectHandler = queries.NewGetProjectHandler(c.ProjectRepo, c.UpdateRepo, c.MilestoneRepo, c.Workflow, c.Scheduler)
	c.ListProjectsHandler = queries.NewListProjectsHandler(c.ProjectRepo, c.Workflow, c.Scheduler)
	c.ListUpdatesHandler = queries.NewListUpdatesHandler(c.ProjectRepo, c.UpdateRepo, c.Workflow)
	c.DashboardHandler = queries.NewDashboardHandler(c.ProjectRepo, c.Workflow, c.Scheduler)
}

func (c *Container) initPaymentHandler() {
	// A nil *RedisGuard must not become a non-nil Guard interface.
	var guard billingApp.Guard
	if c.RedisClient != nil {
		redisGuard := billingInfra.NewRedisGuard(c.RedisClient, billingInfra.DefaultGuardTTL, c.Logger)
		guard = redisGuard
		c.Health.Register("redis", redisGuard.Ping)
	}
	c.RecordPaymentHandler = billingApp.NewRecordPaymentHandler(c.CreateProjectHandler, c.ProjectRepo, guard, c.Logger)
}

func (c *Container) initDocuments(ctx context.Context) error {
	var store documentsApp.ObjectStore
	if c.Config.StorageEndpoint != "" {
		minioStore, err := documentsStorage.NewMinioStore(documentsStorage.Config{
			Endpoint:  c.Config.StorageEndpoint,
			AccessKey: c.Config.StorageAccessKey,
			SecretKey: c.Config.StorageSecretKey,
			Bucket:    c.Config.StorageBucket,
			Region:    c.Config.StorageRegion,
			UseTLS:    c.Config.StorageUseTLS,
		})
		if err != nil {
			return fmt.Errorf("failed to configure document storage: %w", err)
		}
		if err := minioStore.EnsureBucket(ctx); err != nil {
			if !c.Config.IsDevelopment() {
				return err
			}
			c.Logger.Warn("document bucket not reachable", "bucket", c.Config.StorageBucket, "error", err)
		}
		c.DocumentStore = minioStore
		c.Health.Register("storage", minioStore.Ping)
		store = minioStore
	} else {
		c.Logger.Info("document storage not configured, uploads disabled")
	}

	c.UploadDocumentHandler = documentsApp.NewUploadDocumentHandler(
		c.ProjectRepo, c.DocumentRepo, c.OutboxRepo, store, c.Clock, c.UnitOfWork, c.Logger,
	)
	c.ListDocumentsHandler = documentsApp.NewListDocumentsHandler(c.ProjectRepo, c.DocumentRepo)
	c.DocumentDownloadURLHandler = documentsApp.NewDocumentDownloadURLHandler(
		c.ProjectRepo, c.DocumentRepo, store, c.Clock, c.Config.StorageURLTTL,
	)
	return nil
}

func (c *Container) initNotifications() {
	if c.Sender == nil {
		if c.Config.ResendAPIKey != "" {
			c.Sender = notificationsInfra.NewResendSender(notificationsInfra.ResendConfig{
				APIKey: c.Config.ResendAPIKey,
				From:   c.Config.ResendFrom,
			}, c.Logger)
		} else {
			c.Logger.Info("RESEND_API_KEY not set, notifications are logged only")
			c.Sender = notificationsInfra.NewLogSender(c.Logger)
		}
	}

	c.Dispatcher = notificationsApp.NewDispatcher(c.ClientRepo, c.Catalog, c.Sender, notificationsApp.DispatcherConfig{
		PortalBaseURL: c.Config.PortalBaseURL,
		AdminEmail:    c.Config.AdminEmail,
	}, c.Metrics, c.Logger)
}

// initEvents picks the outbox publisher. Hosted deployments publish to
// RabbitMQ and the worker consumes; otherwise the dispatcher runs in
// process behind the outbox processor.
func (c *Container) initEvents() error {
	if c.Config.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
		if err == nil {
			c.EventPublisher = publisher
		} else if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		} else {
			c.Logger.Warn("RabbitMQ not available, delivering events in process", "error", err)
		}
	}

	if c.EventPublisher == nil {
		c.InProcessEventBus = eventbus.NewInProcessEventBus(c.Logger)
		c.InProcessEventBus.RegisterConsumer(c.Dispatcher)
		c.EventPublisher = c.InProcessEventBus
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     c.Config.OutboxPollInterval,
		BatchSize:        c.Config.OutboxBatchSize,
		MaxRetries:       c.Config.OutboxMaxRetries,
		RetryBackoffBase: c.Config.OutboxRetryBackoffBase,
		RetryBackoffMax:  c.Config.OutboxRetryBackoffMax,
	}, c.Logger, c.Metrics)
	return nil
}

// DeliversInProcess reports whether events are dispatched by this
// process rather than by the worker.
func (c *Container) DeliversInProcess() bool {
	return c.InProcessEventBus != nil
}

// DrainOutbox publishes everything currently pending. One-shot CLI
// commands call it so local mode notifies without a running processor.
func (c *Container) DrainOutbox(ctx context.Context) error {
	if c.OutboxProcessor == nil || !c.DeliversInProcess() {
		return nil
	}
	return c.OutboxProcessor.ProcessOnce(ctx)
}

// AdminActor is the practitioner as configured by ADMIN_USER_ID, used by
// the CLI and the MCP server.
func (c *Container) AdminActor() (sharedApplication.Actor, error) {
	id, err := uuid.Parse(c.Config.AdminUserID)
	if err != nil {
		return sharedApplication.Actor{}, fmt.Errorf("invalid ADMIN_USER_ID: %w", err)
	}
	return sharedApplication.Actor{UserID: id, Role: sharedApplication.RoleAdmin, Email: c.Config.AdminEmail}, nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database", "error", err)
		} else {
			c.Logger.Debug("database connection closed", "driver", c.DBDriver)
		}
	}
}
