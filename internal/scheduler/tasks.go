package scheduler

import (
	"context"

	"github.com/havenstays/booking-backend/internal/common/logger"
	"github.com/havenstays/booking-backend/internal/service/settlement"
)

// TaskHandler holds the services the periodic tasks run against.
type TaskHandler struct {
	distribution *settlement.DistributionService
}

// NewTaskHandler creates a task handler.
func NewTaskHandler(distribution *settlement.DistributionService) *TaskHandler {
	return &TaskHandler{
		distribution: distribution,
	}
}

// DistributeCommissions runs one commission settlement cycle. Safe to
// trigger while another cycle is in flight; settlement is exactly-once
// per booking regardless of overlapping runs.
func (h *TaskHandler) DistributeCommissions(ctx context.Context) error {
	result, err := h.distribution.RunCycle(ctx)
	if err != nil {
		return err
	}
	if result.Distributed > 0 || result.Skipped > 0 {
		logger.Info("commission distribution cycle",
			logger.Int("distributed", result.Distributed),
			logger.Int("skipped", result.Skipped),
		)
	}
	return nil
}
