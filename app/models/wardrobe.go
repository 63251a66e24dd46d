package models

import (
	"time"

	"github.com/google/uuid"
)

// WardrobeItem records that a player owns a cosmetic. A player owns a cosmetic
// at most once.
type WardrobeItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlayerID   uuid.UUID `gorm:"type:varchar(36);not null;index:ux_wardrobes_player_cosmetic,unique,priority:1" json:"player_id"`
	CosmeticID int64     `gorm:"not null;index:ux_wardrobes_player_cosmetic,unique,priority:2" json:"cosmetic_id"`
	Equipped   bool      `gorm:"not null;default:false" json:"equipped"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WardrobeItem) TableName() string {
	return "wardrobes"
}
