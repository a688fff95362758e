package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/ledger"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/relay"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// RespondToOrderResult is the outcome of a tenant decision. Relayed is false when Central
// could not be reached and the decision waits in the relay queue.
type RespondToOrderResult struct {
	Order   *order.Order
	Relayed bool

	// RetryAfter is set when Central answered with a quota error.
	RetryAfter time.Duration
}

// RespondToOrderDeps bundles the collaborators of RespondToOrderCommandHandler.
type RespondToOrderDeps struct {
	UoWFactory LedgerUoWFactory
	Cache      ports.OrderCache
	Calculator services.RevenueCalculator
	Relay      ports.CentralRelay
	Queue      ports.DecisionQueue
	Notifier   ports.Notifier
	Locks      KeyLocker
	Now        func() time.Time
	Logger     *slog.Logger
}

// RespondToOrderCommandHandler merges a tenant decision onto a cached order, prices it,
// records it in the ledger and relays it to Central.
//
// The ledger write is the only fatal step. A failed relay is queued for the retry job
// and the terminals are notified either way.
type RespondToOrderCommandHandler struct {
	uowFactory LedgerUoWFactory
	cache      ports.OrderCache
	calculator services.RevenueCalculator
	relay      ports.CentralRelay
	queue      ports.DecisionQueue
	notifier   ports.Notifier
	locks      KeyLocker
	now        func() time.Time
	logger     *slog.Logger
}

func NewRespondToOrderCommandHandler(deps RespondToOrderDeps) RespondToOrderCommandHandler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return RespondToOrderCommandHandler{
		uowFactory: deps.UoWFactory,
		cache:      deps.Cache,
		calculator: deps.Calculator,
		relay:      deps.Relay,
		queue:      deps.Queue,
		notifier:   deps.Notifier,
		locks:      deps.Locks,
		now:        deps.Now,
		logger:     deps.Logger.With("component", "respond_to_order"),
	}
}

// Handle runs the whole decision under the order's key lock, so a concurrent response or
// completion of the same order waits instead of overwriting this one.
func (h *RespondToOrderCommandHandler) Handle(
	ctx context.Context,
	cmd RespondToOrderCommand,
) (RespondToOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return RespondToOrderResult{}, err
	}

	key := cmd.Key()
	unlock := h.locks.Lock(key.String())
	defer unlock()

	o, ok := h.cache.Get(key)
	if !ok {
		return RespondToOrderResult{}, errs.NewObjectNotFoundError("order", key.String())
	}

	now := h.now()
	if err := o.ApplyResponse(cmd.Responses(), now); err != nil {
		return RespondToOrderResult{}, err
	}

	if err := h.record(ctx, o, now); err != nil {
		return RespondToOrderResult{}, err
	}

	h.cache.Set(key, o)

	result := RespondToOrderResult{Order: o, Relayed: true}
	decision := relay.NewDecision(o, now)
	if err := h.relay.SubmitDecision(ctx, decision); err != nil {
		result.Relayed = false
		h.queue.Enqueue(decision)

		var quota *errs.QuotaExceededError
		if errors.As(err, &quota) {
			result.RetryAfter = quota.RetryAfter
		}
		h.logger.Warn("decision relay failed, queued for retry",
			"tenant_id", key.TenantID(),
			"order_no", key.OrderNo(),
			"error", err,
		)
	} else {
		h.queue.Remove(decision.Key())
	}

	// The decision is committed; the other terminals hear about it even if this caller left.
	h.notifier.Broadcast(context.WithoutCancel(ctx), key.TenantID(), order.NewEvent(order.EventStatusUpdate, o, now))

	return result, nil
}

// record prices o and appends it to the ledger in one transaction. Any failure here is
// reported as LedgerUnavailable.
func (h *RespondToOrderCommandHandler) record(ctx context.Context, o *order.Order, now time.Time) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return errs.NewLedgerUnavailableError("begin", err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	menuItemIDs := make([]string, 0)
	for _, item := range o.Items() {
		if item.IsAccepted() {
			menuItemIDs = append(menuItemIDs, item.MenuItemID())
		}
	}

	prices, err := uow.PriceBookRepository().GetPriceList(ctx, o.TenantID(), menuItemIDs)
	if err != nil {
		return asLedgerError("price list", err)
	}

	revenue := h.calculator.Calculate(o, prices)
	for _, failed := range revenue.FailedItems {
		h.logger.Warn("item could not be priced",
			"tenant_id", o.TenantID(),
			"order_no", o.OrderNo(),
			"item_id", failed.ItemID,
			"reason", failed.Reason,
		)
	}
	if err = o.AssignRevenue(revenue.TotalRevenue, revenue.ItemRevenues); err != nil {
		return err
	}

	entry, err := ledger.NewEntry(o, now)
	if err != nil {
		return err
	}
	if err = uow.LedgerRepository().Append(ctx, entry); err != nil {
		return asLedgerError("append", err)
	}

	if err = uow.Commit(ctx); err != nil {
		return errs.NewLedgerUnavailableError("commit", err)
	}
	return nil
}

func asLedgerError(op string, err error) error {
	if errors.Is(err, errs.ErrLedgerUnavailable) {
		return err
	}
	return errs.NewLedgerUnavailableError(op, err)
}
