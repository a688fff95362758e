package cmd

import (
	"context"
	"log/slog"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/central"
	"fulfillment/internal/adapters/out/memory/ordercache"
	"fulfillment/internal/adapters/out/memory/relayqueue"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/push"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/keylock"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CompositionRoot owns the process-wide state: the order cache, the relay queues, the push
// connections and the per-order locks. Handlers created from it share that state.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	cache       *ordercache.Cache
	locks       *keylock.Map
	push        *push.Manager
	decisions   *relayqueue.DecisionQueue
	menuChanges *relayqueue.MenuChangeQueue
	central     *central.Client
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	pushCfg := push.DefaultConfig()
	if cfg.MaxConnectionsPerUser > 0 {
		pushCfg.MaxPerUser = cfg.MaxConnectionsPerUser
	}
	if cfg.MaxConnectionsPerTenant > 0 {
		pushCfg.MaxPerTenant = cfg.MaxConnectionsPerTenant
	}
	if cfg.ConnectionStaleAfter > 0 {
		pushCfg.StaleAfter = cfg.ConnectionStaleAfter
	}

	return CompositionRoot{
		cfg:         cfg,
		logger:      logger,
		gormDB:      gormDB,
		uowFactory:  postgres.NewGormUnitOfWorkFactory(gormDB),
		cache:       ordercache.New(),
		locks:       keylock.New(),
		push:        push.NewManager(pushCfg, nil, logger),
		decisions:   relayqueue.NewDecisionQueue(cfg.MaxRelayRetries, nil),
		menuChanges: relayqueue.NewMenuChangeQueue(cfg.MaxRelayRetries, nil),
		central:     central.NewClient(cfg.CentralBaseURL, cfg.CentralAPIKey, cfg.CentralTimeout),
	}
}

func (c *CompositionRoot) CreateRegisterOrderCommandHandler() commands.RegisterOrderCommandHandler {
	return commands.NewRegisterOrderCommandHandler(c.cache, c.push, c.locks, nil, c.logger)
}

func (c *CompositionRoot) CreateRespondToOrderCommandHandler() commands.RespondToOrderCommandHandler {
	var f commands.LedgerUoWFactory = FuncLedgerUoWFactory(func() commands.LedgerUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRespondToOrderCommandHandler(commands.RespondToOrderDeps{
		UoWFactory: f,
		Cache:      c.cache,
		Calculator: services.NewRevenueCalculator(),
		Relay:      c.central,
		Queue:      c.decisions,
		Notifier:   c.push,
		Locks:      c.locks,
		Logger:     c.logger,
	})
}

func (c *CompositionRoot) CreateCompleteOrderCommandHandler() commands.CompleteOrderCommandHandler {
	return commands.NewCompleteOrderCommandHandler(c.cache, c.push, c.locks, nil, c.logger)
}

func (c *CompositionRoot) CreatePublishMenuChangeCommandHandler() commands.PublishMenuChangeCommandHandler {
	var f commands.PriceBookUoWFactory = FuncPriceBookUoWFactory(func() commands.PriceBookUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPublishMenuChangeCommandHandler(f, c.central, c.menuChanges, nil, c.logger)
}

func (c *CompositionRoot) CreateRetryDecisionRelaysCommandHandler() commands.RetryDecisionRelaysCommandHandler {
	return commands.NewRetryDecisionRelaysCommandHandler(c.central, c.decisions, c.logger)
}

func (c *CompositionRoot) CreateRetryMenuChangeRelaysCommandHandler() commands.RetryMenuChangeRelaysCommandHandler {
	return commands.NewRetryMenuChangeRelaysCommandHandler(c.central, c.menuChanges, c.logger)
}

func (c *CompositionRoot) CreateSweepStaleConnectionsCommandHandler() commands.SweepStaleConnectionsCommandHandler {
	return commands.NewSweepStaleConnectionsCommandHandler(c.push)
}

func (c *CompositionRoot) CreatePurgeFinishedOrdersCommandHandler() commands.PurgeFinishedOrdersCommandHandler {
	return commands.NewPurgeFinishedOrdersCommandHandler(c.cache, c.locks, nil)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.cache)
}

func (c *CompositionRoot) CreateListTenantOrdersQueryHandler() queries.ListTenantOrdersQueryHandler {
	return queries.NewListTenantOrdersQueryHandler(c.cache)
}

func (c *CompositionRoot) CreateGetLedgerEntriesQueryHandler() queries.GetLedgerEntriesQueryHandler {
	return queries.NewGetLedgerEntriesQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetDailyRevenueQueryHandler() queries.GetDailyRevenueQueryHandler {
	return queries.NewGetDailyRevenueQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListFailedRelaysQueryHandler() queries.ListFailedRelaysQueryHandler {
	return queries.NewListFailedRelaysQueryHandler(c.decisions, c.menuChanges)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewDecisionRelayJob(c.CreateRetryDecisionRelaysCommandHandler(), c.cfg.RelayRetrySchedule, c.logger),
		jobs.NewMenuChangeRelayJob(c.CreateRetryMenuChangeRelaysCommandHandler(), c.cfg.MenuRetrySchedule, c.logger),
		jobs.NewHousekeepingJob(
			c.CreateSweepStaleConnectionsCommandHandler(),
			c.CreatePurgeFinishedOrdersCommandHandler(),
			jobs.HousekeepingConfig{
				Schedule:          c.cfg.SweepSchedule,
				ConnectionMaxAge:  c.cfg.ConnectionMaxAge,
				FinishedRetention: c.cfg.OrderRetention,
			},
			c.logger,
		),
		c.logger,
	)
}

func (c *CompositionRoot) CreateRouter(ctx context.Context) (*echo.Echo, error) {
	server := httpin.NewServer(httpin.Handlers{
		RegisterOrder:     c.CreateRegisterOrderCommandHandler(),
		RespondToOrder:    c.CreateRespondToOrderCommandHandler(),
		CompleteOrder:     c.CreateCompleteOrderCommandHandler(),
		PublishMenuChange: c.CreatePublishMenuChangeCommandHandler(),
		GetOrder:          c.CreateGetOrderQueryHandler(),
		ListOrders:        c.CreateListTenantOrdersQueryHandler(),
		GetLedger:         c.CreateGetLedgerEntriesQueryHandler(),
		GetDailyRevenue:   c.CreateGetDailyRevenueQueryHandler(),
		ListFailedRelays:  c.CreateListFailedRelaysQueryHandler(),
	}, c.push)

	return httpin.NewRouter(ctx, server, httpin.RouterConfig{
		Credentials:   httpin.NewCredentials(c.cfg.TenantAPIKeys, c.cfg.ServiceAPIKey),
		RatePerSecond: c.cfg.RateLimitPerSecond,
		RateBurst:     c.cfg.RateLimitBurst,
	}, c.logger)
}

// CloseConnections ends every push stream so their requests return before shutdown.
func (c *CompositionRoot) CloseConnections() int {
	return c.push.CloseAll()
}

type FuncLedgerUoWFactory func() commands.LedgerUoW

func (f FuncLedgerUoWFactory) Create() commands.LedgerUoW {
	return f()
}

type FuncPriceBookUoWFactory func() commands.PriceBookUoW

func (f FuncPriceBookUoWFactory) Create() commands.PriceBookUoW {
	return f()
}
