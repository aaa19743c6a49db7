package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/studyload/internal/identity/application/auth"
	identityCommands "github.com/felixgeelhaar/studyload/internal/identity/application/commands"
	identityQueries "github.com/felixgeelhaar/studyload/internal/identity/application/queries"
	identityDomain "github.com/felixgeelhaar/studyload/internal/identity/domain"
	identityPersistence "github.com/felixgeelhaar/studyload/internal/identity/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/studyload/internal/shared/application"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/crypto"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database/postgres" // Register Postgres driver
	_ "github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/outbox"
	workloadCommands "github.com/felixgeelhaar/studyload/internal/workload/application/commands"
	workloadQueries "github.com/felixgeelhaar/studyload/internal/workload/application/queries"
	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/internal/workload/infrastructure/calendar"
	"github.com/felixgeelhaar/studyload/internal/workload/infrastructure/narrative"
	"github.com/felixgeelhaar/studyload/internal/workload/infrastructure/persistence"
	"github.com/felixgeelhaar/studyload/pkg/config"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Infrastructure
	DB          database.Connection
	Cache       cache.Cache
	redis       *cache.RedisCache
	Invalidator *cache.Invalidator
	UnitOfWork  sharedApplication.UnitOfWork
	OutboxRepo  outbox.Repository

	// Repositories
	DeadlineRepo deadline.Repository
	UserRepo     identityDomain.UserRepository

	// Scoring
	Aggregator   *services.WorkloadAggregator
	StressEngine *services.StressEngine
	Priorities   *services.PriorityEngine
	Contribution *services.ContributionAnalyzer
	Narrator     *services.Narrator
	Loader       *workloadQueries.WorkloadLoader

	// Deadline command handlers
	CreateDeadlineHandler *workloadCommands.CreateDeadlineHandler
	UpdateDeadlineHandler *workloadCommands.UpdateDeadlineHandler
	DeleteDeadlineHandler *workloadCommands.DeleteDeadlineHandler

	// Workload query handlers
	ListDeadlinesHandler      *workloadQueries.ListDeadlinesHandler
	GetDeadlineHandler        *workloadQueries.GetDeadlineHandler
	GetDashboardHandler       *workloadQueries.GetDashboardHandler
	PredictStressHandler      *workloadQueries.PredictStressHandler
	RankPrioritiesHandler     *workloadQueries.RankPrioritiesHandler
	StressContributorsHandler *workloadQueries.StressContributorsHandler
	ExportCalendarHandler     *workloadQueries.ExportCalendarHandler

	// Identity
	AuthService           *auth.Service
	RegisterUserHandler   *identityCommands.RegisterUserHandler
	UpdateProfileHandler  *identityCommands.UpdateProfileHandler
	GetUserHandler        *identityQueries.GetUserHandler
	GetUserByEmailHandler *identityQueries.GetUserByEmailHandler

	publisher eventbus.Publisher
	processor *outbox.Processor
}

// NewContainer opens the database selected by cfg, migrates it and wires
// every handler on top.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	conn, err := database.Open(ctx, database.Config{
		URL:        cfg.DatabaseURL,
		SQLitePath: sqlitePath(cfg),
		MaxConns:   cfg.DatabaseMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	c.DB = conn
	logger.Info("connected to database", "driver", conn.Driver())

	if err := migrations.Up(ctx, conn, cfg.DatabaseURL, logger); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))

	if err := c.initCache(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.UnitOfWork = database.NewUnitOfWork(conn)
	c.OutboxRepo = outbox.NewRepository(conn)
	c.DeadlineRepo = persistence.NewDeadlineRepository(conn)
	c.UserRepo = identityPersistence.NewUserRepository(conn)

	if err := c.initIdentity(); err != nil {
		c.Close()
		return nil, err
	}
	c.initWorkload()

	return c, nil
}

func sqlitePath(cfg *config.Config) string {
	if cfg.DatabaseURL != "" {
		return ""
	}
	return cfg.SQLitePath
}

// initCache connects to Redis when configured. Outside production an
// unreachable Redis falls back to the in-process cache.
func (c *Container) initCache(ctx context.Context) error {
	cfg := c.Config
	if cfg.RedisURL != "" {
		rc, err := cache.DialRedis(ctx, cfg.RedisURL)
		switch {
		case err == nil:
			c.redis = rc
			c.Cache = rc
			c.Health.Register("redis", observability.RedisHealthChecker(rc.Ping))
			c.Logger.Info("connected to Redis")
		case cfg.IsProduction():
			return fmt.Errorf("failed to connect to Redis: %w", err)
		default:
			c.Logger.Warn("Redis not available, using in-memory cache", observability.ErrorKey, err)
		}
	}
	if c.Cache == nil {
		c.Cache = cache.NewMemoryCache()
	}
	c.Invalidator = cache.NewInvalidator(c.Cache, c.Logger, c.Metrics)
	return nil
}

func (c *Container) initIdentity() error {
	cfg := c.Config

	key := cfg.TokenKey
	if key == "" {
		generated, err := crypto.GenerateKey()
		if err != nil {
			return fmt.Errorf("failed to generate token key: %w", err)
		}
		key = generated
		c.Logger.Warn("STUDYLOAD_TOKEN_KEY not set, issued tokens will not survive a restart")
	}
	sealer, err := crypto.NewAESGCMFromBase64Key(key)
	if err != nil {
		return fmt.Errorf("invalid token key: %w", err)
	}

	hasher := auth.NewBcryptHasher(0)
	c.AuthService = auth.NewService(c.UserRepo, hasher, auth.NewTokenIssuer(sealer, cfg.TokenTTL), c.Logger)

	deps := identityCommands.Deps{
		Users:       c.UserRepo,
		Hasher:      hasher,
		Outbox:      c.OutboxRepo,
		UnitOfWork:  c.UnitOfWork,
		Invalidator: c.Invalidator,
		Logger:      c.Logger,
	}
	c.RegisterUserHandler = identityCommands.NewRegisterUserHandler(deps)
	c.UpdateProfileHandler = identityCommands.NewUpdateProfileHandler(deps)
	c.GetUserHandler = identityQueries.NewGetUserHandler(c.UserRepo)
	c.GetUserByEmailHandler = identityQueries.NewGetUserByEmailHandler(c.UserRepo, c.Cache, identityQueries.DefaultUserTTL, c.Logger)
	return nil
}

func (c *Container) initWorkload() {
	cfg := c.Config
	scoring := cfg.ScoringConfig()

	c.Aggregator = services.NewWorkloadAggregator(scoring.Aggregator)
	c.StressEngine = services.NewStressEngine(scoring.Stress)
	c.Priorities = services.NewPriorityEngine(scoring.Priority)
	c.Contribution = services.NewContributionAnalyzer(scoring.Contribution)
	c.Narrator = services.NewNarrator(c.narrativeGenerator(), c.Logger).WithMetrics(c.Metrics)

	c.Loader = workloadQueries.NewWorkloadLoader(workloadQueries.LoaderConfig{
		Deadlines:  c.DeadlineRepo,
		Aggregator: c.Aggregator,
		Cache:      c.Cache,
		TTL:        cfg.DashboardCacheTTL,
		Logger:     c.Logger,
		Metrics:    c.Metrics,
	})

	deps := workloadCommands.Deps{
		Deadlines:   c.DeadlineRepo,
		Outbox:      c.OutboxRepo,
		UnitOfWork:  c.UnitOfWork,
		Invalidator: c.Invalidator,
		Logger:      c.Logger,
		Metrics:     c.Metrics,
	}
	c.CreateDeadlineHandler = workloadCommands.NewCreateDeadlineHandler(deps)
	c.UpdateDeadlineHandler = workloadCommands.NewUpdateDeadlineHandler(deps)
	c.DeleteDeadlineHandler = workloadCommands.NewDeleteDeadlineHandler(deps)

	c.ListDeadlinesHandler = workloadQueries.NewListDeadlinesHandler(c.DeadlineRepo, c.Cache, cfg.DashboardCacheTTL, c.Logger)
	c.GetDeadlineHandler = workloadQueries.NewGetDeadlineHandler(c.DeadlineRepo)
	c.GetDashboardHandler = workloadQueries.NewGetDashboardHandler(c.Loader)
	c.PredictStressHandler = workloadQueries.NewPredictStressHandler(c.Loader, c.StressEngine, c.Narrator)
	c.RankPrioritiesHandler = workloadQueries.NewRankPrioritiesHandler(c.DeadlineRepo, c.Priorities, c.Narrator, nil)
	c.StressContributorsHandler = workloadQueries.NewStressContributorsHandler(c.DeadlineRepo, c.Contribution, nil)
	c.ExportCalendarHandler = workloadQueries.NewExportCalendarHandler(c.DeadlineRepo, calendar.NewEncoder())
}

func (c *Container) narrativeGenerator() services.NarrativeGenerator {
	cfg := c.Config
	if cfg.NarrativeProvider != config.NarrativeProviderOllama {
		c.Logger.Info("narrative generator", "provider", config.NarrativeProviderTemplate)
		return narrative.NewTemplateGenerator()
	}

	ollama := narrative.DefaultOllamaConfig()
	ollama.Endpoint = cfg.NarrativeEndpoint
	ollama.Model = cfg.NarrativeModel
	ollama.Timeout = cfg.NarrativeTimeout
	ollama.MaxRetries = cfg.NarrativeMaxRetries
	ollama.RateInterval = cfg.NarrativeRateInterval
	if cfg.NarrativeBreakerFailures > 0 {
		ollama.BreakerFailures = uint32(cfg.NarrativeBreakerFailures) // #nosec G115 - positive and bounded by config
	}
	ollama.BreakerOpenTimeout = cfg.NarrativeBreakerOpenAfter

	c.Logger.Info("narrative generator",
		"provider", config.NarrativeProviderOllama,
		"endpoint", ollama.Endpoint,
		"model", ollama.Model,
	)
	return narrative.NewOllamaGenerator(ollama, c.Logger, c.Metrics)
}

// ResolveUser maps an email to a user id. The CLI and the MCP server act
// on behalf of the user named in their configuration.
func (c *Container) ResolveUser(ctx context.Context, email string) (*identityQueries.UserDTO, error) {
	if email == "" {
		return nil, errors.New("no user selected: pass --user or set STUDYLOAD_USER_EMAIL")
	}
	user, err := c.GetUserByEmailHandler.Handle(ctx, identityQueries.GetUserByEmailQuery{Email: email})
	if err != nil {
		if errors.Is(err, identityDomain.ErrUserNotFound) {
			return nil, fmt.Errorf("no account for %s: run `studyload user register` first: %w", email, err)
		}
		return nil, err
	}
	return user, nil
}

// OutboxProcessor returns the processor that drains the outbox to the
// broker. RabbitMQ is required in production; elsewhere events are dropped
// when the broker is unreachable.
func (c *Container) OutboxProcessor() (*outbox.Processor, error) {
	if c.processor != nil {
		return c.processor, nil
	}
	cfg := c.Config

	var publisher eventbus.Publisher
	rabbit, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
	switch {
	case err == nil:
		publisher = rabbit
		c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(rabbit.Ping))
	case cfg.IsProduction():
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	default:
		c.Logger.Warn("RabbitMQ not available, using noop publisher", observability.ErrorKey, err)
		publisher = eventbus.NewNoopPublisher(c.Logger)
	}
	c.publisher = publisher

	processorConfig := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		processorConfig.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		processorConfig.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		processorConfig.MaxRetries = cfg.OutboxMaxRetries
	}
	c.processor = outbox.NewProcessor(c.OutboxRepo, publisher, processorConfig, c.Logger).WithMetrics(c.Metrics)
	return c.processor, nil
}

// Close releases every connection the container opened.
func (c *Container) Close() {
	if c.processor != nil {
		c.processor.Stop()
	}

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", observability.ErrorKey, err)
		}
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", observability.ErrorKey, err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database", observability.ErrorKey, err)
		} else {
			c.Logger.Debug("database connection closed", "driver", c.DB.Driver())
		}
	}
}

// ShutdownTimeout bounds graceful shutdown of the servers.
const ShutdownTimeout = 10 * time.Second
