package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Component is the canonical inventory row for a raw part.
// current_stock is only ever mutated through the production engine
// (decrement) or the import/replenish paths (increment).
type Component struct {
	ID                     uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                   string           `gorm:"column:name;not null"`
	PartNumber             string           `gorm:"column:part_number;not null;default:'N/A'"`
	CurrentStock           int              `gorm:"column:current_stock;not null;default:0"`
	MinRequired            int              `gorm:"column:min_required;not null;default:100"`
	ReplenishmentThreshold *int             `gorm:"column:replenishment_threshold"`
	ScrapRate              decimal.Decimal  `gorm:"column:scrap_rate;type:numeric(6,2);not null;default:2.4"`
	UnitCost               *decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2)"`
	CreatedAt              time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
