package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type QuotaType string

const (
	QuotaTypeConsumable QuotaType = "consumable"
	QuotaTypeSlotBased  QuotaType = "slot_based"
)

type ResetPeriod string

const (
	ResetPeriodDaily   ResetPeriod = "daily"
	ResetPeriodWeekly  ResetPeriod = "weekly"
	ResetPeriodMonthly ResetPeriod = "monthly"
)

// Feature defines a quota-tracked capability. Key and Type are immutable
// after registration; ResetPeriod is set iff Type is consumable.
type Feature struct {
	ID  snowflake.ID `gorm:"primaryKey"`
	Key string       `gorm:"column:feature_key;type:text;not null;uniqueIndex:ux_features_key"`

	Type        QuotaType    `gorm:"column:quota_type;type:text;not null"`
	Limit       int64        `gorm:"column:quota_limit;not null"`
	ResetPeriod *ResetPeriod `gorm:"column:reset_period;type:text"`
	Description *string      `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Feature) TableName() string { return "features" }
