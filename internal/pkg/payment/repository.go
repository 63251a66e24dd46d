package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ManuelReschke/FoxShop/app/models"
)

// Store is the unit-of-work view of orders and stock used by the fulfillment
// pipeline. Calls made on the Store passed to Transaction's callback share one
// database transaction.
type Store interface {
	FindOrderByTransaction(ctx context.Context, transaction string) (*models.Order, error)
	InsertOrder(ctx context.Context, order *models.Order) error
	DecrementStock(ctx context.Context, productID int64, count int) error
	IsVirtual(ctx context.Context, productID int64) (bool, error)
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store backed by GORM. The DB must be opened with
// TranslateError so unique violations map to gorm.ErrDuplicatedKey.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindOrderByTransaction(ctx context.Context, transaction string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where(&models.Order{Transaction: transaction}).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *gormStore) InsertOrder(ctx context.Context, order *models.Order) error {
	err := s.db.WithContext(ctx).Create(order).Error
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateTransaction, order.Transaction)
	}
	return err
}

// DecrementStock removes count units in a single conditional UPDATE. The row
// lock taken by the UPDATE serializes concurrent buyers of the same product.
func (s *gormStore) DecrementStock(ctx context.Context, productID int64, count int) error {
	if count <= 0 {
		return fmt.Errorf("invalid decrement %d for product %d", count, productID)
	}
	tx := s.db.WithContext(ctx).
		Model(&models.Stock{}).
		Where("product_id = ? AND quantity >= ?", productID, count).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", count))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d, requested %d", ErrInsufficientStock, productID, count)
	}
	return nil
}

func (s *gormStore) IsVirtual(ctx context.Context, productID int64) (bool, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Select("id", "virtual").First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
	}
	if err != nil {
		return false, err
	}
	return product.Virtual, nil
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// isUniqueViolation also matches raw driver messages in case a dialector
// does not translate the error.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
