package entitlements

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/FoxShop/app/models"
)

const (
	DefaultReconcileInterval = 15 * time.Minute
	DefaultReconcileLookback = 24 * time.Hour
	reconcileBatchSize       = 200
)

// ReconcileSummary counts what a reconciliation pass saw.
type ReconcileSummary struct {
	Orders  int
	Granted int
	Failed  int
}

// Reconciler re-grants virtual products of recent user orders. It repairs
// grants that were lost after the order committed.
type Reconciler struct {
	db       *gorm.DB
	granter  *WardrobeGranter
	interval time.Duration
	lookback time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
}

func NewReconciler(db *gorm.DB, granter *WardrobeGranter, interval, lookback time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	if lookback <= 0 {
		lookback = DefaultReconcileLookback
	}
	return &Reconciler{db: db, granter: granter, interval: interval, lookback: lookback}
}

// Start runs a pass every interval until Stop is called.
func (r *Reconciler) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		log.Infof("[Entitlements] Reconciler running (interval=%s, lookback=%s)", r.interval, r.lookback)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopCh:
				log.Info("[Entitlements] Reconciler stopping")
				return
			case <-ticker.C:
				summary, err := r.Run(context.Background(), time.Now().Add(-r.lookback))
				if err != nil {
					log.Errorf("[Entitlements] Reconcile pass failed: %v", err)
					continue
				}
				if summary.Granted > 0 || summary.Failed > 0 {
					log.Warnf("[Entitlements] Reconcile repaired %d grants, %d failed, %d orders checked", summary.Granted, summary.Failed, summary.Orders)
				}
			}
		}
	}()
}

func (r *Reconciler) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	close(r.stopCh)
	r.running = false
	r.mu.Unlock()
	r.wg.Wait()
}

// Run grants every missing virtual product for orders with a user created
// at or after since.
func (r *Reconciler) Run(ctx context.Context, since time.Time) (ReconcileSummary, error) {
	var summary ReconcileSummary
	virtual := map[int64]bool{}

	var batch []models.Order
	err := r.db.WithContext(ctx).
		Where("uuid IS NOT NULL AND created_at >= ?", since).
		FindInBatches(&batch, reconcileBatchSize, func(tx *gorm.DB, _ int) error {
			for _, order := range batch {
				summary.Orders++
				ids, err := r.virtualProducts(ctx, order.Cart, virtual)
				if err != nil {
					return err
				}
				for _, productID := range ids {
					r.regrant(ctx, *order.UserUUID, productID, &summary)
				}
			}
			return nil
		}).Error
	return summary, err
}

func (r *Reconciler) regrant(ctx context.Context, userID uuid.UUID, productID int64, summary *ReconcileSummary) {
	inserted, err := r.granter.GrantNew(ctx, userID, productID)
	if err != nil {
		summary.Failed++
		log.Errorf("[Entitlements] Reconcile grant failed: %v", err)
		return
	}
	if inserted {
		summary.Granted++
		log.Infof("[Entitlements] Reconcile granted product %d to %s", productID, userID)
	}
}

// virtualProducts returns the distinct virtual ids in cart. known caches the
// virtual flag across orders of one pass.
func (r *Reconciler) virtualProducts(ctx context.Context, cart []int64, known map[int64]bool) ([]int64, error) {
	var lookup []int64
	seen := map[int64]struct{}{}
	for _, id := range cart {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := known[id]; !ok {
			lookup = append(lookup, id)
			known[id] = false
		}
	}
	if len(lookup) > 0 {
		var ids []int64
		err := r.db.WithContext(ctx).
			Model(&models.Product{}).
			Where("id IN ?", lookup).
			Where(map[string]interface{}{"virtual": true}).
			Pluck("id", &ids).Error
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			known[id] = true
		}
	}

	var out []int64
	for _, id := range cart {
		if known[id] {
			if _, done := seen[id]; done {
				out = append(out, id)
				delete(seen, id)
			}
		}
	}
	return out, nil
}
