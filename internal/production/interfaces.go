package production

import (
	"context"

	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/pkg/db/models"
	"github.com/pandoralabs/stockline-backend/pkg/pagination"
)

// Repository defines persistence operations for the production run ledger.
// Runs are insert-only; nothing here updates or deletes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRun(ctx context.Context, run *models.ProductionRun) (*models.ProductionRun, error)
	ListRuns(ctx context.Context, params pagination.Params, filters RunFilters) (*RunList, error)
}
