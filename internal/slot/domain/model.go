// Package domain contains persistence models for slot allocations.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SlotAllocation holds the allocated slot set for one (user, feature)
// pair. Slots maps slot identifier to caller metadata; map keys give the
// at-most-once invariant for free.
type SlotAllocation struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	UserID     string       `gorm:"column:user_id;type:text;not null;uniqueIndex:ux_slot_allocations_key,priority:1"`
	FeatureKey string       `gorm:"column:feature_key;type:text;not null;uniqueIndex:ux_slot_allocations_key,priority:2"`

	Slots datatypes.JSONMap `gorm:"column:slots;type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SlotAllocation) TableName() string { return "slot_allocations" }
