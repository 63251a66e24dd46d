package entitlements

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/FoxShop/app/models"
)

// Granter gives a user permanent access to a virtual product.
type Granter interface {
	Grant(ctx context.Context, userID uuid.UUID, productID int64) error
}

// WardrobeGranter records entitlements as wardrobe items.
type WardrobeGranter struct {
	db *gorm.DB
}

func NewWardrobeGranter(db *gorm.DB) *WardrobeGranter {
	return &WardrobeGranter{db: db}
}

// Grant is idempotent: granting an owned product is a no-op.
func (g *WardrobeGranter) Grant(ctx context.Context, userID uuid.UUID, productID int64) error {
	_, err := g.GrantNew(ctx, userID, productID)
	return err
}

// GrantNew reports whether a wardrobe row was inserted.
func (g *WardrobeGranter) GrantNew(ctx context.Context, userID uuid.UUID, productID int64) (bool, error) {
	item := models.WardrobeItem{PlayerID: userID, CosmeticID: productID}
	res := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item)
	if res.Error != nil {
		return false, fmt.Errorf("grant product %d to %s: %w", productID, userID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
