// Package domain contains persistence models for windowed usage counters.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UsageCounter tracks consumption within the current reset window for one
// (user, feature) pair. Rows are created lazily on first check or record
// and reused across windows; a passive reset zeroes CurrentUsage and rolls
// the window forward in place.
type UsageCounter struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	UserID     string       `gorm:"column:user_id;type:text;not null;uniqueIndex:ux_usage_counters_key,priority:1"`
	FeatureKey string       `gorm:"column:feature_key;type:text;not null;uniqueIndex:ux_usage_counters_key,priority:2"`

	CurrentUsage int64     `gorm:"column:current_usage;not null"`
	WindowStart  time.Time `gorm:"column:window_start;not null"`
	ResetsAt     time.Time `gorm:"column:resets_at;not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (UsageCounter) TableName() string { return "usage_counters" }
