package production

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/pkg/criticality"
	"github.com/pandoralabs/stockline-backend/pkg/db/models"
	"github.com/pandoralabs/stockline-backend/pkg/enums"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
	"github.com/pandoralabs/stockline-backend/pkg/metrics"
	"github.com/pandoralabs/stockline-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bomReader interface {
	FindLinesByRecipe(ctx context.Context, recipeID string) ([]models.RecipeLine, error)
}

// StockDeductor removes stock inside the run transaction. The deduction
// is conditional: it only lands when enough stock is on hand, so two
// concurrent runs can never drive a component negative.
type StockDeductor interface {
	Deduct(ctx context.Context, tx *gorm.DB, componentID uuid.UUID, qty int) (remaining int, ok bool, err error)
}

// Service executes production runs against recipe BOMs and exposes the ledger.
type Service interface {
	ExecuteRun(ctx context.Context, input ExecuteInput) (*RunResult, error)
	ListRuns(ctx context.Context, params pagination.Params, filters RunFilters) (*RunList, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	bom      bomReader
	deductor StockDeductor
	logg     *logger.Logger
	metrics  *metrics.ProductionMetrics
}

// NewService builds a production service with the required dependencies.
func NewService(repo Repository, tx txRunner, bom bomReader, deductor StockDeductor, logg *logger.Logger, m *metrics.ProductionMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("production repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if bom == nil {
		return nil, fmt.Errorf("bom reader required")
	}
	if deductor == nil {
		return nil, fmt.Errorf("stock deductor required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		bom:      bom,
		deductor: deductor,
		logg:     logg,
		metrics:  m,
	}, nil
}

// ExecuteRun deducts stock for every BOM line of the recipe, all or
// nothing. A committed run appends a ledger row inside the same
// transaction; a run rejected for stock appends a rejected row after
// the rollback, best effort.
func (s *service) ExecuteRun(ctx context.Context, input ExecuteInput) (*RunResult, error) {
	recipeID := strings.TrimSpace(input.RecipeID)
	if recipeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	ctx = s.logg.WithRecipeID(ctx, recipeID)
	start := time.Now()
	defer func() {
		s.metrics.ObserveDuration(recipeID, time.Since(start))
	}()

	lines, err := s.bom.FindLinesByRecipe(ctx, recipeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe lines")
	}
	if len(lines) == 0 {
		s.metrics.IncRejected(recipeID, "recipe_not_found")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
	}

	result := &RunResult{
		RecipeID:   recipeID,
		Quantity:   input.Quantity,
		Deductions: make([]Deduction, 0, len(lines)),
	}

	var shortfallReason string
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for i := range lines {
			line := &lines[i]
			required := requiredUnits(line.AmountPerUnit, input.Quantity)
			name := componentName(line)

			remaining, ok, err := s.deductor.Deduct(ctx, tx, line.ComponentID, required)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "component not found").
						WithDetails(map[string]any{"component_id": line.ComponentID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deduct component stock")
			}
			if !ok {
				shortfallReason = fmt.Sprintf("insufficient stock of %s: required %d, available %d", name, required, remaining)
				return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
					WithDetails(map[string]any{
						"component_id":   line.ComponentID,
						"component_name": name,
						"required":       required,
						"available":      remaining,
					})
			}

			result.Deductions = append(result.Deductions, Deduction{
				ComponentID:   line.ComponentID,
				ComponentName: name,
				Deducted:      required,
				Remaining:     remaining,
				Criticality:   criticality.Classify(remaining, minRequired(line)),
			})
		}

		run := &models.ProductionRun{
			ID:               uuid.New(),
			RecipeID:         recipeID,
			QuantityProduced: input.Quantity,
			Outcome:          enums.RunOutcomeCommitted,
		}
		created, err := s.repo.WithTx(tx).CreateRun(ctx, run)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record production run")
		}
		result.RunID = created.ID
		result.CreatedAt = created.CreatedAt
		return nil
	})
	if err != nil {
		if shortfallReason != "" {
			s.recordRejection(ctx, recipeID, input.Quantity, shortfallReason)
			s.metrics.IncRejected(recipeID, "insufficient_stock")
		}
		return nil, err
	}

	s.metrics.IncCommitted(recipeID)
	s.alertLowStock(ctx, lines, result.Deductions)

	return result, nil
}

func (s *service) ListRuns(ctx context.Context, params pagination.Params, filters RunFilters) (*RunList, error) {
	list, err := s.repo.ListRuns(ctx, params, filters)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list production runs")
	}
	return list, nil
}

// recordRejection appends a rejected ledger row after the deduction
// transaction rolled back. The write is best effort: losing it never
// masks the rejection returned to the caller.
func (s *service) recordRejection(ctx context.Context, recipeID string, quantity int, reason string) {
	run := &models.ProductionRun{
		ID:               uuid.New(),
		RecipeID:         recipeID,
		QuantityProduced: quantity,
		Outcome:          enums.RunOutcomeRejected,
		FailureReason:    &reason,
	}
	if _, err := s.repo.CreateRun(ctx, run); err != nil {
		s.logg.Error(ctx, "recording rejected production run", err)
	}
}

func (s *service) alertLowStock(ctx context.Context, lines []models.RecipeLine, deductions []Deduction) {
	thresholds := make(map[uuid.UUID]*int, len(lines))
	for i := range lines {
		if lines[i].Component != nil {
			thresholds[lines[i].ComponentID] = lines[i].Component.ReplenishmentThreshold
		}
	}

	for _, deduction := range deductions {
		low := deduction.Criticality == criticality.TierCritical
		if threshold := thresholds[deduction.ComponentID]; threshold != nil && deduction.Remaining <= *threshold {
			low = true
		}
		if !low {
			continue
		}
		alertCtx := s.logg.WithComponentID(ctx, deduction.ComponentID.String())
		alertCtx = s.logg.WithFields(alertCtx, map[string]any{
			"component_name": deduction.ComponentName,
			"remaining":      deduction.Remaining,
		})
		s.logg.Warn(alertCtx, "component stock low after production run")
		s.metrics.IncLowStockAlert()
	}
}

// requiredUnits converts a fractional per-unit amount into whole stock
// units. Fractions round up: a run never consumes less than the BOM says.
func requiredUnits(amountPerUnit decimal.Decimal, quantity int) int {
	return int(amountPerUnit.Mul(decimal.NewFromInt(int64(quantity))).Ceil().IntPart())
}

func componentName(line *models.RecipeLine) string {
	if line.Component != nil {
		return line.Component.Name
	}
	return line.ComponentID.String()
}

func minRequired(line *models.RecipeLine) int {
	if line.Component != nil {
		return line.Component.MinRequired
	}
	return 0
}

type stockDeductorImpl struct{}

// NewStockDeductor exposes the default conditional deduction implementation.
func NewStockDeductor() StockDeductor {
	return stockDeductorImpl{}
}

func (stockDeductorImpl) Deduct(ctx context.Context, tx *gorm.DB, componentID uuid.UUID, qty int) (int, bool, error) {
	if qty <= 0 {
		return 0, false, pkgerrors.New(pkgerrors.CodeValidation, "deduction quantity must be positive")
	}
	if tx == nil {
		return 0, false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock deduction")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE components
		SET current_stock = current_stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND current_stock >= ?
	`, qty, componentID, qty)
	if res.Error != nil {
		return 0, false, res.Error
	}

	var remaining int
	row := tx.WithContext(ctx).Raw(`
		SELECT current_stock FROM components WHERE id = ?
	`, componentID).Scan(&remaining)
	if row.Error != nil {
		return 0, false, row.Error
	}
	if row.RowsAffected == 0 {
		return 0, false, gorm.ErrRecordNotFound
	}

	return remaining, res.RowsAffected > 0, nil
}
