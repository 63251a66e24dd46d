package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/FoxShop/internal/pkg/jobqueue"
)

// OutcomeSnapshotter reads the webhook outcome counters.
type OutcomeSnapshotter interface {
	Snapshot(ctx context.Context) (map[string]int64, error)
}

// QueueStats reads job queue sizes.
type QueueStats interface {
	GetJobStats(ctx context.Context) (map[jobqueue.JobStatus]int64, error)
	GetQueueSize(ctx context.Context) (int64, error)
	GetProcessingSize(ctx context.Context) (int64, error)
}

type StatsController struct {
	outcomes OutcomeSnapshotter
	queue    QueueStats
}

// NewStatsController creates the stats handler. queue may be nil.
func NewStatsController(outcomes OutcomeSnapshotter, queue QueueStats) *StatsController {
	return &StatsController{outcomes: outcomes, queue: queue}
}

// HandleWebhookStats returns the outcome counters and entitlement retry
// backlog as JSON.
func (sc *StatsController) HandleWebhookStats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	outcomes, err := sc.outcomes.Snapshot(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "counter_unavailable"})
	}

	resp := fiber.Map{"outcomes": outcomes}
	if sc.queue != nil {
		jobs := fiber.Map{}
		if stats, err := sc.queue.GetJobStats(ctx); err == nil {
			jobs["stats"] = stats
		}
		if n, err := sc.queue.GetQueueSize(ctx); err == nil {
			jobs["pending"] = n
		}
		if n, err := sc.queue.GetProcessingSize(ctx); err == nil {
			jobs["processing"] = n
		}
		resp["jobs"] = jobs
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// HandlePing is the liveness probe.
func HandlePing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "pong"})
}
