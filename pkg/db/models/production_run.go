package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pandoralabs/stockline-backend/pkg/enums"
)

// ProductionRun is one immutable ledger entry. Rows are only ever
// inserted, never updated or deleted.
type ProductionRun struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipeID         string          `gorm:"column:recipe_id;not null;index:idx_production_runs_recipe_id"`
	QuantityProduced int             `gorm:"column:quantity_produced;not null"`
	Outcome          enums.RunOutcome `gorm:"column:outcome;not null"`
	FailureReason    *string         `gorm:"column:failure_reason"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
