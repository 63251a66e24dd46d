package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/FoxShop/app/models"
)

// EntitlementGranter grants a virtual product bought in orderID to a user.
// Granting twice must be a no-op.
type EntitlementGranter interface {
	GrantForOrder(ctx context.Context, orderID uint, userID uuid.UUID, productID int64) error
}

type Outcome string

const (
	OutcomeFulfilled        Outcome = "fulfilled"
	OutcomeAlreadyProcessed Outcome = "already_processed"
)

// FulfillmentResult describes a successfully handled checkout. EntitlementErr
// is set when the order committed but some grants did not; it wraps
// ErrEntitlementGrant and never undoes the order.
type FulfillmentResult struct {
	Outcome        Outcome
	OrderID        uint
	Granted        []int64
	EntitlementErr error
}

// Service runs the fulfillment pipeline for completed checkouts.
type Service struct {
	store   Store
	granter EntitlementGranter
}

// NewService creates a payment service. granter may be nil when no virtual
// products are sold.
func NewService(store Store, granter EntitlementGranter) *Service {
	return &Service{store: store, granter: granter}
}

// FindProcessed returns the order already created for sessionID, or nil.
func (s *Service) FindProcessed(ctx context.Context, sessionID string) (*models.Order, error) {
	order, err := s.store.FindOrderByTransaction(ctx, sessionID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Fulfill creates the order and takes stock exactly once per session, then
// grants virtual products. A returned error means nothing was committed.
func (s *Service) Fulfill(ctx context.Context, checkout *CompletedCheckout) (*FulfillmentResult, error) {
	existing, err := s.FindProcessed(ctx, checkout.SessionID)
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	if existing != nil {
		return &FulfillmentResult{Outcome: OutcomeAlreadyProcessed, OrderID: existing.ID}, nil
	}

	result, virtual, err := s.commit(ctx, checkout)
	if err != nil {
		return nil, err
	}
	if result.Outcome == OutcomeFulfilled && len(virtual) > 0 {
		result.Granted, result.EntitlementErr = s.grantEntitlements(ctx, result.OrderID, checkout, virtual)
	}
	return result, nil
}

// commit inserts the order and decrements stock in one transaction. It
// returns the distinct virtual product ids of the cart.
func (s *Service) commit(ctx context.Context, checkout *CompletedCheckout) (*FulfillmentResult, []int64, error) {
	if err := checkout.Cart.checkLimits(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}
	order := &models.Order{
		UserUUID:    checkout.UserID,
		Cart:        checkout.Cart.Units(),
		Destination: checkout.Destination,
		Phone:       checkout.Phone,
		Email:       checkout.Email,
		Status:      models.OrderStatusPending,
		Transaction: checkout.SessionID,
	}
	if err := order.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrIncompleteOrderData, err)
	}

	var virtual []int64
	err := s.store.Transaction(ctx, func(tx Store) error {
		virtual = virtual[:0]
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		quantities := checkout.Cart.Quantities()
		// ascending product id keeps row lock order stable across transactions
		for _, productID := range checkout.Cart.ProductIDs() {
			isVirtual, err := tx.IsVirtual(ctx, productID)
			if err != nil {
				return err
			}
			if isVirtual {
				virtual = append(virtual, productID)
				continue
			}
			if err := tx.DecrementStock(ctx, productID, quantities[productID]); err != nil {
				return err
			}
		}
		return nil
	})

	if errors.Is(err, ErrDuplicateTransaction) {
		// A concurrent delivery of the same session won the insert.
		var orderID uint
		if existing, ferr := s.FindProcessed(ctx, checkout.SessionID); ferr == nil && existing != nil {
			orderID = existing.ID
		}
		return &FulfillmentResult{Outcome: OutcomeAlreadyProcessed, OrderID: orderID}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &FulfillmentResult{Outcome: OutcomeFulfilled, OrderID: order.ID}, virtual, nil
}

func (s *Service) grantEntitlements(ctx context.Context, orderID uint, checkout *CompletedCheckout, virtual []int64) ([]int64, error) {
	if checkout.UserID == nil {
		return nil, fmt.Errorf("%w: session %s has virtual products %v but no user identity", ErrEntitlementGrant, checkout.SessionID, virtual)
	}
	if s.granter == nil {
		return nil, fmt.Errorf("%w: no entitlement granter configured", ErrEntitlementGrant)
	}

	granted := make([]int64, 0, len(virtual))
	var errs []error
	for _, productID := range virtual {
		if err := s.granter.GrantForOrder(ctx, orderID, *checkout.UserID, productID); err != nil {
			log.Errorf("[Payment] Granting product %d to %s failed: %v", productID, checkout.UserID, err)
			errs = append(errs, fmt.Errorf("product %d: %w", productID, err))
			continue
		}
		granted = append(granted, productID)
	}
	if len(errs) > 0 {
		return granted, fmt.Errorf("%w: %w", ErrEntitlementGrant, errors.Join(errs...))
	}
	return granted, nil
}
