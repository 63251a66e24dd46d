package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/FoxShop/internal/pkg/payment"
)

// Webhook outcomes as counted by the metrics counter.
const (
	WebhookOutcomeRejected          = "rejected_signature"
	WebhookOutcomeInvalid           = "invalid_event"
	WebhookOutcomeFulfilled         = "fulfilled"
	WebhookOutcomeAlreadyProcessed  = "already_processed"
	WebhookOutcomeFulfillmentFailed = "fulfillment_failed"
	WebhookOutcomeEntitlementFailed = "entitlement_failed"
	WebhookOutcomePaymentFailed     = "payment_failed"
	WebhookOutcomeIgnored           = "ignored"
)

const webhookTimeout = 15 * time.Second

// OutcomeRecorder counts webhook outcomes.
type OutcomeRecorder interface {
	Record(ctx context.Context, outcome string) error
}

// Fulfiller runs the order pipeline for a completed checkout.
type Fulfiller interface {
	Fulfill(ctx context.Context, checkout *payment.CompletedCheckout) (*payment.FulfillmentResult, error)
}

type PaymentController struct {
	verifier  *payment.Verifier
	fulfiller Fulfiller
	recorder  OutcomeRecorder
}

// NewPaymentController wires the webhook handler. recorder may be nil.
func NewPaymentController(verifier *payment.Verifier, fulfiller Fulfiller, recorder OutcomeRecorder) *PaymentController {
	return &PaymentController{verifier: verifier, fulfiller: fulfiller, recorder: recorder}
}

// HandleStripeWebhook answers 2xx only when the event needs no redelivery.
func (pc *PaymentController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	ev, err := pc.verifier.Verify(rawBody, c.Get(payment.SignatureHeader))
	if err != nil {
		log.Warnf("[Payment] Rejected webhook from %s: %v", c.IP(), err)
		pc.record(WebhookOutcomeRejected)
		return c.Status(fiber.StatusBadRequest).SendString("Webhook signature verification failed.")
	}

	switch ev.Type {
	case payment.EventTypeSessionCompleted:
		return pc.handleSessionCompleted(c, ev)
	case payment.EventTypePaymentFailed:
		// 200, not 400: the event is genuine and a redelivery changes nothing.
		log.Infof("[Payment] Payment failed for event %s", ev.ID)
		pc.record(WebhookOutcomePaymentFailed)
		return c.Status(fiber.StatusOK).SendString("Payment failure acknowledged.")
	default:
		log.Debugf("[Payment] Ignoring event %s of type %s", ev.ID, ev.ProviderType)
		pc.record(WebhookOutcomeIgnored)
		return c.Status(fiber.StatusOK).SendString("Event ignored.")
	}
}

func (pc *PaymentController) handleSessionCompleted(c *fiber.Ctx, ev *payment.Event) error {
	checkout, err := payment.NormalizeCheckoutSession(ev)
	if err != nil {
		log.Warnf("[Payment] Invalid checkout event %s: %v", ev.ID, err)
		pc.record(WebhookOutcomeInvalid)
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	result, err := pc.fulfiller.Fulfill(ctx, checkout)
	if err != nil && payment.IsInputError(err) {
		// redelivery cannot fix the payload
		log.Warnf("[Payment] Rejected checkout session %s: %v", checkout.SessionID, err)
		pc.record(WebhookOutcomeInvalid)
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}
	if err != nil {
		if errors.Is(err, payment.ErrInsufficientStock) {
			log.Errorf("[Payment] ALERT paid session %s cannot be fulfilled, manual refund needed: %v", checkout.SessionID, err)
		} else {
			log.Errorf("[Payment] Fulfillment of session %s failed: %v", checkout.SessionID, err)
		}
		pc.record(WebhookOutcomeFulfillmentFailed)
		return c.Status(fiber.StatusInternalServerError).SendString("Order fulfillment failed.")
	}

	if result.Outcome == payment.OutcomeAlreadyProcessed {
		log.Infof("[Payment] Session %s already processed as order %d", checkout.SessionID, result.OrderID)
		pc.record(WebhookOutcomeAlreadyProcessed)
		return c.Status(fiber.StatusOK).SendString(fmt.Sprintf("Order already processed: %d", result.OrderID))
	}

	if result.EntitlementErr != nil {
		log.Errorf("[Payment] Order %d created but entitlements incomplete: %v", result.OrderID, result.EntitlementErr)
		pc.record(WebhookOutcomeEntitlementFailed)
	}
	log.Infof("[Payment] Created order %d for session %s, granted %v", result.OrderID, checkout.SessionID, result.Granted)
	pc.record(WebhookOutcomeFulfilled)
	return c.Status(fiber.StatusOK).SendString(fmt.Sprintf("Order created with ID: %d", result.OrderID))
}

func (pc *PaymentController) record(outcome string) {
	if pc.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pc.recorder.Record(ctx, outcome); err != nil {
		log.Warnf("[Payment] Could not count outcome %s: %v", outcome, err)
	}
}
