package queries_test

import (
	"context"
	"testing"
	"time"

	fulfillmentpg "fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/ledger"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type LedgerQueriesTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	uowFactory *fulfillmentpg.GormUnitOfWorkFactory
}

func (suite *LedgerQueriesTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(fulfillmentpg.AutoMigrate(db))
	suite.uowFactory = fulfillmentpg.NewGormUnitOfWorkFactory(db)
}

func (suite *LedgerQueriesTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *LedgerQueriesTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE ledger_lines, ledger_entries CASCADE").Error
	suite.Require().NoError(err)
}

// record appends a decision on a one item order to the ledger.
func (suite *LedgerQueriesTestSuite) record(tenantID, orderNo string, revenue float64, rejected bool, at time.Time) {
	ctx := context.Background()
	key, err := kernel.NewOrderKey(tenantID, orderNo)
	suite.Require().NoError(err)

	q, _ := kernel.ParseQuantity("1kg")
	item, err := order.NewItem("A", "Ribeye", "ribeye", q, order.ItemDetails{})
	suite.Require().NoError(err)
	o, err := order.NewOrder(key, "Alice", []*order.Item{item}, at.Add(-time.Hour))
	suite.Require().NoError(err)

	response := order.ItemResponse{ItemID: "A", Fulfilled: q}
	if rejected {
		response = order.ItemResponse{ItemID: "A", RejectionReason: "out of stock"}
	}
	suite.Require().NoError(o.ApplyResponse([]order.ItemResponse{response}, at))
	suite.Require().NoError(o.AssignRevenue(revenue, map[string]float64{"A": revenue}))

	entry, err := ledger.NewEntry(o, at)
	suite.Require().NoError(err)

	uow := suite.uowFactory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.LedgerRepository().Append(ctx, entry))
	suite.Require().NoError(uow.Commit(ctx))
}

func (suite *LedgerQueriesTestSuite) TestGetLedgerEntries_ReturnsOneDayInOrder() {
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	suite.record("butcher-1", "1", 90, false, day)
	suite.record("butcher-1", "2", 0, true, day.Add(time.Minute))
	suite.record("butcher-1", "3", 45, false, day.Add(24*time.Hour))
	suite.record("butcher-2", "1", 12, false, day)

	query, err := queries.NewGetLedgerEntriesQuery("butcher-1", "2026-03-14")
	suite.Require().NoError(err)

	entries, err := queries.NewGetLedgerEntriesQueryHandler(suite.uowFactory).Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	suite.Equal("1", entries[0].Key().OrderNo())
	suite.Equal(90.0, entries[0].Revenue())
	suite.Equal(order.Rejected, entries[1].Status())
	suite.Equal("out of stock", entries[1].RejectionReason())
}

func (suite *LedgerQueriesTestSuite) TestGetLedgerEntries_EmptyDay() {
	query, err := queries.NewGetLedgerEntriesQuery("butcher-1", "2026-01-01")
	suite.Require().NoError(err)

	entries, err := queries.NewGetLedgerEntriesQueryHandler(suite.uowFactory).Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.NotNil(entries)
	suite.Empty(entries)
}

func (suite *LedgerQueriesTestSuite) TestGetDailyRevenue_CountsLatestDecisionPerOrder() {
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	suite.record("butcher-1", "1", 90, false, day)
	suite.record("butcher-1", "1", 120, false, day.Add(10*time.Minute))
	suite.record("butcher-1", "2", 0, true, day.Add(time.Minute))
	suite.record("butcher-1", "3", 45.5, false, day.Add(24*time.Hour))
	suite.record("butcher-2", "9", 1000, false, day)

	query, err := queries.NewGetDailyRevenueQuery("butcher-1", "2026-03-14", "2026-03-20")
	suite.Require().NoError(err)

	days, err := queries.NewGetDailyRevenueQueryHandler(suite.db).Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Equal([]queries.GetDailyRevenueQueryResponse{
		{Date: "2026-03-14", Orders: 2, Rejected: 1, Revenue: 120},
		{Date: "2026-03-15", Orders: 1, Rejected: 0, Revenue: 45.5},
	}, days)
}

func (suite *LedgerQueriesTestSuite) TestGetDailyRevenue_NoEntries() {
	query, err := queries.NewGetDailyRevenueQuery("butcher-1", "2026-03-01", "2026-03-02")
	suite.Require().NoError(err)

	days, err := queries.NewGetDailyRevenueQueryHandler(suite.db).Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.NotNil(days)
	suite.Empty(days)
}

func TestLedgerQueriesTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerQueriesTestSuite))
}
