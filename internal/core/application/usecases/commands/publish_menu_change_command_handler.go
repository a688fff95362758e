package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// PublishMenuChangeCommandHandler updates the price book and relays the change. The price
// book write is fatal; a failed relay is queued for the menu retry job.
type PublishMenuChangeCommandHandler struct {
	uowFactory PriceBookUoWFactory
	relay      ports.CentralRelay
	queue      ports.MenuChangeQueue
	now        func() time.Time
	logger     *slog.Logger
}

func NewPublishMenuChangeCommandHandler(
	uowFactory PriceBookUoWFactory,
	relay ports.CentralRelay,
	queue ports.MenuChangeQueue,
	now func() time.Time,
	logger *slog.Logger,
) PublishMenuChangeCommandHandler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return PublishMenuChangeCommandHandler{
		uowFactory: uowFactory,
		relay:      relay,
		queue:      queue,
		now:        now,
		logger:     logger.With("component", "publish_menu_change"),
	}
}

// Handle reports whether Central received the change synchronously.
func (h *PublishMenuChangeCommandHandler) Handle(ctx context.Context, cmd PublishMenuChangeCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	change := cmd.Change()
	if change.ChangedAt.IsZero() {
		change.ChangedAt = h.now()
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, errs.NewLedgerUnavailableError("begin", err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.PriceBookRepository().UpsertMenuItem(
		ctx,
		change.TenantID,
		change.MenuItemID,
		change.Name,
		change.PurchasePrice,
		change.Available,
	); err != nil {
		return false, asLedgerError("upsert menu item", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return false, errs.NewLedgerUnavailableError("commit", err)
	}

	if err := h.relay.SubmitMenuChange(ctx, change); err != nil {
		h.queue.Enqueue(change)
		h.logger.Warn("menu change relay failed, queued for retry",
			"tenant_id", change.TenantID,
			"menu_item_id", change.MenuItemID,
			"error", err,
		)
		return false, nil
	}

	h.queue.Remove(change.Key())
	return true, nil
}
