package http

import (
	"net/http"
	"time"

	"fulfillment/internal/adapters/out/push"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const relayQueuedWarning = "Central is unreachable, the decision is queued for retry"

// Handlers are the use cases the HTTP surface exposes.
type Handlers struct {
	RegisterOrder     commands.RegisterOrderCommandHandler
	RespondToOrder    commands.RespondToOrderCommandHandler
	CompleteOrder     commands.CompleteOrderCommandHandler
	PublishMenuChange commands.PublishMenuChangeCommandHandler

	GetOrder         queries.GetOrderQueryHandler
	ListOrders       queries.ListTenantOrdersQueryHandler
	GetLedger        queries.GetLedgerEntriesQueryHandler
	GetDailyRevenue  queries.GetDailyRevenueQueryHandler
	ListFailedRelays queries.ListFailedRelaysQueryHandler
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	h        Handlers
	registry ports.ConnectionRegistry
}

func NewServer(h Handlers, registry ports.ConnectionRegistry) *Server {
	return &Server{h: h, registry: registry}
}

// RegisterOrder handles POST /api/v1/tenants/:tenantId/orders.
func (s *Server) RegisterOrder(c echo.Context) error {
	var req RegisterOrderRequest
	if err := c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}

	lines := make([]commands.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, commands.OrderLine{
			ItemID:     item.ItemID,
			Name:       item.Name,
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Size:       item.Size,
			Category:   item.Category,
			Cut:        item.Cut,
		})
	}

	cmd, err := commands.NewRegisterOrderCommand(
		c.Param("tenantId"), req.OrderNo, req.CustomerName, lines, derefTime(req.OrderedAt),
	)
	if err != nil {
		return err
	}

	o, err := s.h.RegisterOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, o)
}

// RespondToOrder handles POST /api/v1/tenants/:tenantId/orders/response. The decision is
// answered with 202 when its relay to Central was queued, carrying Central's Retry-After
// when it sent one.
func (s *Server) RespondToOrder(c echo.Context) error {
	var req OrderResponseRequest
	if err := c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}

	decisions := make([]commands.ItemDecision, 0, len(req.Items))
	for _, item := range req.Items {
		decisions = append(decisions, commands.ItemDecision{
			ItemID:            item.ItemID,
			FulfilledQuantity: item.FulfilledQuantity,
			RejectionReason:   item.RejectionReason,
		})
	}

	cmd, err := commands.NewRespondToOrderCommand(c.Param("tenantId"), req.OrderNo, decisions)
	if err != nil {
		return err
	}

	result, err := s.h.RespondToOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	if result.Relayed {
		return c.JSON(http.StatusOK, DecisionResponse{Order: result.Order, Relayed: true})
	}
	setRetryAfter(c, result.RetryAfter)
	return c.JSON(http.StatusAccepted, DecisionResponse{
		Order:   result.Order,
		Relayed: false,
		Warning: relayQueuedWarning,
	})
}

// CompleteOrder handles POST /api/v1/orders/complete. The tenant comes from the body, so the
// key is checked against it here rather than by TenantScope.
func (s *Server) CompleteOrder(c echo.Context) error {
	var req CompleteOrderRequest
	if err := c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	if err := authorizeTenant(c, req.TenantID); err != nil {
		return err
	}

	cmd, err := commands.NewCompleteOrderCommand(
		req.TenantID, req.Order.OrderNo, req.Order.Status, derefTime(req.Order.CompletedAt),
	)
	if err != nil {
		return err
	}

	o, err := s.h.CompleteOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

// GetOrders handles GET /api/v1/tenants/:tenantId/orders.
func (s *Server) GetOrders(c echo.Context) error {
	includeFinished := c.QueryParam("includeFinished") == "true"
	query, err := queries.NewListTenantOrdersQuery(c.Param("tenantId"), includeFinished)
	if err != nil {
		return err
	}

	orders, err := s.h.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/tenants/:tenantId/orders/:orderNo.
func (s *Server) GetOrder(c echo.Context) error {
	query, err := queries.NewGetOrderQuery(c.Param("tenantId"), c.Param("orderNo"))
	if err != nil {
		return err
	}

	o, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

// GetLedger handles GET /api/v1/tenants/:tenantId/ledger?date=YYYY-MM-DD.
func (s *Server) GetLedger(c echo.Context) error {
	query, err := queries.NewGetLedgerEntriesQuery(c.Param("tenantId"), c.QueryParam("date"))
	if err != nil {
		return err
	}

	entries, err := s.h.GetLedger.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, toLedgerEntryResponse(e))
	}
	return c.JSON(http.StatusOK, response)
}

// GetDailyRevenue handles GET /api/v1/tenants/:tenantId/revenue?from=&to=.
func (s *Server) GetDailyRevenue(c echo.Context) error {
	query, err := queries.NewGetDailyRevenueQuery(c.Param("tenantId"), c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return err
	}

	days, err := s.h.GetDailyRevenue.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, days)
}

// PublishMenuChange handles POST /api/v1/tenants/:tenantId/menu-changes.
func (s *Server) PublishMenuChange(c echo.Context) error {
	var req MenuChangeRequest
	if err := c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	cmd, err := commands.NewPublishMenuChangeCommand(
		c.Param("tenantId"), req.MenuItemID, req.Name, req.PurchasePrice, available, derefTime(req.ChangedAt),
	)
	if err != nil {
		return err
	}

	relayed, err := s.h.PublishMenuChange.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	if relayed {
		return c.JSON(http.StatusOK, MenuChangeResponse{MenuItemID: req.MenuItemID, Relayed: true})
	}
	return c.JSON(http.StatusAccepted, MenuChangeResponse{
		MenuItemID: req.MenuItemID,
		Warning:    "Central is unreachable, the menu change is queued for retry",
	})
}

// StreamEvents handles GET /api/v1/tenants/:tenantId/events. The request stays open until
// the client leaves or the connection is evicted.
func (s *Server) StreamEvents(c echo.Context) error {
	tenantID, userID := c.Param("tenantId"), c.QueryParam("userId")
	if userID == "" {
		return errs.NewValueIsRequiredError("userId")
	}

	transport, err := push.NewSSETransport(c.Response())
	if err != nil {
		return err
	}
	if !s.registry.AddConnection(tenantID, userID, transport) {
		return errs.NewQuotaExceededError("push connections of tenant "+tenantID, 0)
	}
	defer s.registry.RemoveConnection(tenantID, userID, transport)

	// the response is committed once Open writes, a failure means the client already left
	if err = transport.Open(); err != nil {
		return nil //nolint:nilerr
	}

	select {
	case <-c.Request().Context().Done():
	case <-transport.Done():
	}
	return nil
}

// GetFailedRelays handles GET /api/v1/relays/failed.
func (s *Server) GetFailedRelays(c echo.Context) error {
	relays, err := s.h.ListFailedRelays.Handle(c.Request().Context(), queries.NewListFailedRelaysQuery())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, relays)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
