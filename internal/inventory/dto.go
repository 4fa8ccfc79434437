package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pandoralabs/stockline-backend/pkg/criticality"
	"github.com/pandoralabs/stockline-backend/pkg/db/models"
)

// CreateComponentInput carries the fields accepted when registering a component.
type CreateComponentInput struct {
	Name                   string
	PartNumber             string
	CurrentStock           int
	MinRequired            int
	ReplenishmentThreshold *int
	ScrapRate              *decimal.Decimal
	UnitCost               *decimal.Decimal
}

// UpdateComponentInput carries optional field updates. Nil fields are untouched.
type UpdateComponentInput struct {
	Name                   *string
	PartNumber             *string
	MinRequired            *int
	ReplenishmentThreshold *int
	ScrapRate              *decimal.Decimal
	UnitCost               *decimal.Decimal
}

// ListFilter narrows component listings to a derived health tier.
type ListFilter struct {
	Tier *criticality.Tier
}

// ComponentView is the read model returned to controllers. Criticality
// and stock percent are derived, never stored.
type ComponentView struct {
	ID                     uuid.UUID         `json:"id"`
	Name                   string            `json:"name"`
	PartNumber             string            `json:"part_number"`
	CurrentStock           int               `json:"current_stock"`
	MinRequired            int               `json:"min_required"`
	ReplenishmentThreshold *int              `json:"replenishment_threshold,omitempty"`
	ScrapRate              decimal.Decimal   `json:"scrap_rate"`
	UnitCost               *decimal.Decimal  `json:"unit_cost,omitempty"`
	Criticality            criticality.Tier  `json:"criticality"`
	StockPercent           int               `json:"stock_percent"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

func toView(component *models.Component) *ComponentView {
	return &ComponentView{
		ID:                     component.ID,
		Name:                   component.Name,
		PartNumber:             component.PartNumber,
		CurrentStock:           component.CurrentStock,
		MinRequired:            component.MinRequired,
		ReplenishmentThreshold: component.ReplenishmentThreshold,
		ScrapRate:              component.ScrapRate,
		UnitCost:               component.UnitCost,
		Criticality:            criticality.Classify(component.CurrentStock, component.MinRequired),
		StockPercent:           criticality.StockPercent(component.CurrentStock, component.MinRequired),
		CreatedAt:              component.CreatedAt,
		UpdatedAt:              component.UpdatedAt,
	}
}
