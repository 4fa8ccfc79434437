package recipes

import (
	"context"

	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/pkg/db/models"
)

// Repository defines persistence operations for recipe BOM lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateLines(ctx context.Context, lines []models.RecipeLine) error
	FindLinesByRecipe(ctx context.Context, recipeID string) ([]models.RecipeLine, error)
	ListRecipes(ctx context.Context) ([]RecipeSummary, error)
	DeleteByRecipe(ctx context.Context, recipeID string) (int64, error)
}
