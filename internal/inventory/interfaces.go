package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/pkg/db/models"
)

// Repository defines persistence operations for the components table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, component *models.Component) (*models.Component, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Component, error)
	FindByName(ctx context.Context, name string) (*models.Component, error)
	List(ctx context.Context) ([]models.Component, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AddStock(ctx context.Context, id uuid.UUID, qty int) error
	CountRecipeUsage(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
