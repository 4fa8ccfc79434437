package recipes

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pandoralabs/stockline-backend/pkg/db/models"
)

// BOMLineInput is one requested bill-of-materials row.
type BOMLineInput struct {
	ComponentID   uuid.UUID
	AmountPerUnit decimal.Decimal
}

// BOMLineView is the read model for one BOM row.
type BOMLineView struct {
	ComponentID   uuid.UUID       `json:"component_id"`
	ComponentName string          `json:"component_name"`
	AmountPerUnit decimal.Decimal `json:"amount_per_unit"`
}

// RecipeView is a recipe with its full BOM.
type RecipeView struct {
	RecipeID string        `json:"recipe_id"`
	Lines    []BOMLineView `json:"lines"`
}

// RecipeSummary is a recipe id with its line count, for listings.
type RecipeSummary struct {
	RecipeID  string `json:"recipe_id" gorm:"column:recipe_id"`
	LineCount int    `json:"line_count" gorm:"column:line_count"`
}

func toLineView(line *models.RecipeLine) BOMLineView {
	view := BOMLineView{
		ComponentID:   line.ComponentID,
		AmountPerUnit: line.AmountPerUnit,
	}
	if line.Component != nil {
		view.ComponentName = line.Component.Name
	}
	return view
}
