package entitlements

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/FoxShop/internal/pkg/jobqueue"
)

// ErrRetryScheduled wraps a failed grant that was handed to the job queue.
var ErrRetryScheduled = errors.New("grant retry scheduled")

// Scheduler defers a grant for out-of-band retry.
type Scheduler interface {
	ScheduleGrant(ctx context.Context, orderID uint, userID uuid.UUID, productID int64) error
}

// Enqueuer is the part of the job queue used to schedule grants.
type Enqueuer interface {
	EnqueueJob(ctx context.Context, jobType jobqueue.JobType, payload map[string]interface{}) (*jobqueue.Job, error)
}

// QueueScheduler schedules grants as grant_entitlement jobs.
type QueueScheduler struct {
	queue Enqueuer
}

func NewQueueScheduler(queue Enqueuer) *QueueScheduler {
	return &QueueScheduler{queue: queue}
}

func (s *QueueScheduler) ScheduleGrant(ctx context.Context, orderID uint, userID uuid.UUID, productID int64) error {
	payload := jobqueue.GrantEntitlementJobPayload{UserUUID: userID.String(), ProductID: productID, OrderID: orderID}
	_, err := s.queue.EnqueueJob(ctx, jobqueue.JobTypeGrantEntitlement, payload.ToMap())
	return err
}

// RetryingGranter grants synchronously and falls back to the scheduler when
// the grant fails. The error is still returned so callers can report it.
type RetryingGranter struct {
	granter   Granter
	scheduler Scheduler
}

// NewRetryingGranter creates a RetryingGranter. scheduler may be nil, in
// which case failures are only returned.
func NewRetryingGranter(granter Granter, scheduler Scheduler) *RetryingGranter {
	return &RetryingGranter{granter: granter, scheduler: scheduler}
}

// GrantForOrder grants productID to userID. orderID only labels the retry job.
func (g *RetryingGranter) GrantForOrder(ctx context.Context, orderID uint, userID uuid.UUID, productID int64) error {
	err := g.granter.Grant(ctx, userID, productID)
	if err == nil {
		return nil
	}
	if g.scheduler == nil {
		return err
	}
	if serr := g.scheduler.ScheduleGrant(ctx, orderID, userID, productID); serr != nil {
		log.Errorf("[Entitlements] Could not schedule retry for order %d product %d, user %s: %v", orderID, productID, userID, serr)
		return errors.Join(err, fmt.Errorf("schedule retry: %w", serr))
	}
	log.Warnf("[Entitlements] Grant of order %d product %d to %s failed, retry scheduled: %v", orderID, productID, userID, err)
	return fmt.Errorf("%w: %w", ErrRetryScheduled, err)
}

// Registrar is the part of the job queue that accepts handlers.
type Registrar interface {
	Handle(jobType jobqueue.JobType, fn jobqueue.HandlerFunc)
}

// RegisterJobs installs the grant_entitlement handler.
func RegisterJobs(r Registrar, granter Granter) {
	r.Handle(jobqueue.JobTypeGrantEntitlement, func(ctx context.Context, job *jobqueue.Job) error {
		payload, err := jobqueue.GrantEntitlementJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		userID, err := uuid.Parse(payload.UserUUID)
		if err != nil {
			return fmt.Errorf("invalid user uuid %q: %w", payload.UserUUID, err)
		}
		if payload.ProductID <= 0 {
			return fmt.Errorf("invalid product id %d", payload.ProductID)
		}
		if err := granter.Grant(ctx, userID, payload.ProductID); err != nil {
			return err
		}
		log.Infof("[Entitlements] Granted product %d of order %d to %s from job %s", payload.ProductID, payload.OrderID, userID, job.ID)
		return nil
	})
}
