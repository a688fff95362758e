package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

type SweepStaleConnectionsCommandHandler struct {
	registry ports.ConnectionRegistry
}

func NewSweepStaleConnectionsCommandHandler(registry ports.ConnectionRegistry) SweepStaleConnectionsCommandHandler {
	return SweepStaleConnectionsCommandHandler{registry: registry}
}

// Handle returns how many connections were dropped.
func (h *SweepStaleConnectionsCommandHandler) Handle(_ context.Context, cmd SweepStaleConnectionsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	return h.registry.SweepStale(cmd.MaxAge()), nil
}
