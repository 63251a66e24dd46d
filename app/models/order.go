package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusUnpaid    OrderStatus = "unpaid"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Order is a paid checkout. Transaction holds the provider checkout session id
// and is unique: an existing row is proof that the session was fulfilled.
type Order struct {
	ID          uint                       `gorm:"primaryKey" json:"id"`
	UserUUID    *uuid.UUID                 `gorm:"column:uuid;type:varchar(36);default:null;index" json:"uuid,omitempty"`
	Cart        datatypes.JSONSlice[int64] `gorm:"not null" json:"cart" validate:"required,min=1"`
	Destination string                     `gorm:"type:text;not null" json:"destination" validate:"required"`
	Phone       string                     `gorm:"type:varchar(50)" json:"phone"`
	Email       string                     `gorm:"type:varchar(200);not null" json:"email" validate:"required,max=200"`
	Status      OrderStatus                `gorm:"type:varchar(20);not null;default:'pending';index" json:"status" validate:"oneof=unpaid pending shipped delivered"`
	Transaction string                     `gorm:"column:transaction;type:varchar(191);not null;uniqueIndex:ux_orders_transaction" json:"transaction" validate:"required,max=191"`
	CreatedAt   time.Time                  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o *Order) Validate() error {
	v := validator.New()

	return v.Struct(o)
}

// IsGuest reports whether the order was placed without a user identity.
func (o *Order) IsGuest() bool {
	return o.UserUUID == nil
}
