package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, component *models.Component) (*models.Component, error) {
	if err := r.db.WithContext(ctx).Create(component).Error; err != nil {
		return nil, err
	}
	return component, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	var component models.Component
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&component).Error
	if err != nil {
		return nil, err
	}
	return &component, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Component, error) {
	var component models.Component
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&component).Error
	if err != nil {
		return nil, err
	}
	return &component, nil
}

func (r *repository) List(ctx context.Context) ([]models.Component, error) {
	var components []models.Component
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&components).Error
	if err != nil {
		return nil, err
	}
	return components, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Component{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddStock increments current_stock in place so concurrent replenishments
// and deductions never clobber each other.
func (r *repository) AddStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE components
		SET current_stock = current_stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountRecipeUsage(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RecipeLine{}).
		Where("component_id = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Component{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
