package recipes

import (
	"context"

	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a recipes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateLines(ctx context.Context, lines []models.RecipeLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// FindLinesByRecipe returns the BOM in component id order so the
// production engine always locks components in a stable sequence.
func (r *repository) FindLinesByRecipe(ctx context.Context, recipeID string) ([]models.RecipeLine, error) {
	var lines []models.RecipeLine
	err := r.db.WithContext(ctx).
		Preload("Component").
		Where("recipe_id = ?", recipeID).
		Order("component_id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) ListRecipes(ctx context.Context) ([]RecipeSummary, error) {
	var summaries []RecipeSummary
	err := r.db.WithContext(ctx).
		Model(&models.RecipeLine{}).
		Select("recipe_id, COUNT(*) AS line_count").
		Group("recipe_id").
		Order("recipe_id ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *repository) DeleteByRecipe(ctx context.Context, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&models.RecipeLine{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
