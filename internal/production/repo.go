package production

import (
	"context"

	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/pkg/db/models"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
	"github.com/pandoralabs/stockline-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a production run repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRun(ctx context.Context, run *models.ProductionRun) (*models.ProductionRun, error) {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *repository) ListRuns(ctx context.Context, params pagination.Params, filters RunFilters) (*RunList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	query := r.db.WithContext(ctx).Model(&models.ProductionRun{})
	if filters.RecipeID != "" {
		query = query.Where("recipe_id = ?", filters.RecipeID)
	}
	if filters.Outcome != nil {
		query = query.Where("outcome = ?", *filters.Outcome)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var runs []models.ProductionRun
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}

	list := &RunList{Runs: make([]RunView, 0, len(runs))}
	if len(runs) > normalized {
		next := runs[normalized]
		runs = runs[:normalized]
		list.HasMore = true
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	for i := range runs {
		list.Runs = append(list.Runs, toRunView(&runs[i]))
	}
	return list, nil
}
