package commands

import (
	"context"
	"errors"
	"log/slog"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// RetryDecisionRelaysCommandHandler drains the decision queue. Delivered items are removed,
// failed ones count a retry. Both only apply while the queue still holds the version that
// was sent; a decision queued during the send waits for the next pass. A quota answer from
// Central ends the pass early.
type RetryDecisionRelaysCommandHandler struct {
	relay  ports.CentralRelay
	queue  ports.DecisionQueue
	logger *slog.Logger
}

func NewRetryDecisionRelaysCommandHandler(
	relay ports.CentralRelay,
	queue ports.DecisionQueue,
	logger *slog.Logger,
) RetryDecisionRelaysCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return RetryDecisionRelaysCommandHandler{
		relay:  relay,
		queue:  queue,
		logger: logger.With("component", "retry_decision_relays"),
	}
}

func (h *RetryDecisionRelaysCommandHandler) Handle(
	ctx context.Context,
	cmd RetryDecisionRelaysCommand,
) (RetryReport, error) {
	if err := cmd.Validate(); err != nil {
		return RetryReport{}, err
	}

	var report RetryReport
	items := h.queue.Items()
	maxRetries := h.queue.MaxRetries()

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if item.IsExhausted(maxRetries) {
			report.Skipped++
			continue
		}

		err := h.relay.SubmitDecision(ctx, item.Payload)
		if err == nil {
			h.queue.RemoveIf(item.Key, item.Version)
			report.Delivered++
			continue
		}

		report.Failed++
		if h.queue.IncrementRetry(item.Key, item.Version) && item.RetryCount+1 >= maxRetries {
			report.Exhausted++
			h.logger.Error("decision relay gave up, manual intervention required",
				"tenant_id", item.Payload.TenantID,
				"order_no", item.Payload.OrderNo,
				"retries", item.RetryCount+1,
				"error", err,
			)
		}

		if isQuota(err) {
			report.Skipped += len(items) - i - 1
			h.logger.Warn("central quota exceeded, stopping retry pass", "error", err)
			break
		}
	}

	return report, nil
}

// RetryMenuChangeRelaysCommandHandler drains the menu change queue, honouring each item's
// backoff window.
type RetryMenuChangeRelaysCommandHandler struct {
	relay  ports.CentralRelay
	queue  ports.MenuChangeQueue
	logger *slog.Logger
}

func NewRetryMenuChangeRelaysCommandHandler(
	relay ports.CentralRelay,
	queue ports.MenuChangeQueue,
	logger *slog.Logger,
) RetryMenuChangeRelaysCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return RetryMenuChangeRelaysCommandHandler{
		relay:  relay,
		queue:  queue,
		logger: logger.With("component", "retry_menu_change_relays"),
	}
}

func (h *RetryMenuChangeRelaysCommandHandler) Handle(
	ctx context.Context,
	cmd RetryMenuChangeRelaysCommand,
) (RetryReport, error) {
	if err := cmd.Validate(); err != nil {
		return RetryReport{}, err
	}

	var report RetryReport
	items := h.queue.Items()
	maxRetries := h.queue.MaxRetries()

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if item.IsExhausted(maxRetries) || !h.queue.IsReadyForRetry(item) {
			report.Skipped++
			continue
		}

		err := h.relay.SubmitMenuChange(ctx, item.Payload)
		if err == nil {
			h.queue.RemoveIf(item.Key, item.Version)
			report.Delivered++
			continue
		}

		report.Failed++
		if h.queue.IncrementRetry(item.Key, item.Version) && item.RetryCount+1 >= maxRetries {
			report.Exhausted++
			h.logger.Error("menu change relay gave up, manual intervention required",
				"tenant_id", item.Payload.TenantID,
				"menu_item_id", item.Payload.MenuItemID,
				"retries", item.RetryCount+1,
				"error", err,
			)
		}

		if isQuota(err) {
			report.Skipped += len(items) - i - 1
			h.logger.Warn("central quota exceeded, stopping retry pass", "error", err)
			break
		}
	}

	return report, nil
}

func isQuota(err error) bool {
	return errors.Is(err, errs.ErrQuotaExceeded)
}
