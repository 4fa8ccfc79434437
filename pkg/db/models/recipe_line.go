package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeLine is one bill-of-materials row: a recipe consumes
// AmountPerUnit of the referenced component for every unit produced.
// A recipe with zero lines does not exist.
type RecipeLine struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipeID      string          `gorm:"column:recipe_id;not null;index:idx_recipe_lines_recipe_id"`
	ComponentID   uuid.UUID       `gorm:"column:component_id;type:uuid;not null"`
	AmountPerUnit decimal.Decimal `gorm:"column:amount_per_unit;type:numeric(12,4);not null"`
	Component     *Component      `gorm:"foreignKey:ComponentID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}
