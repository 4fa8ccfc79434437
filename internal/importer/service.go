package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/internal/recipes"
	"github.com/pandoralabs/stockline-backend/pkg/db/models"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
)

var recipeIDSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

var importDefaultScrapRate = decimal.RequireFromString("2.4")

type inventoryWriter interface {
	FindByName(ctx context.Context, name string) (*models.Component, error)
	Create(ctx context.Context, component *models.Component) (*models.Component, error)
	AddStock(ctx context.Context, id uuid.UUID, qty int) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type bomReplacer interface {
	ReplaceBOM(ctx context.Context, recipeID string, lines []recipes.BOMLineInput) (*recipes.RecipeView, error)
}

// ImportSummary reports what a component import did per row.
type ImportSummary struct {
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// Service maps uploaded spreadsheets into inventory and recipes.
type Service interface {
	ImportComponents(ctx context.Context, rows []map[string]string) (*ImportSummary, error)
	ImportBOM(ctx context.Context, filename string, rows []map[string]string) (*recipes.RecipeView, error)
}

type service struct {
	inventory inventoryWriter
	boms      bomReplacer
	logg      *logger.Logger
}

// NewService builds an importer service with the required dependencies.
func NewService(inventory inventoryWriter, boms bomReplacer, logg *logger.Logger) (Service, error) {
	if inventory == nil {
		return nil, fmt.Errorf("inventory writer required")
	}
	if boms == nil {
		return nil, fmt.Errorf("bom replacer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{inventory: inventory, boms: boms, logg: logg}, nil
}

// ImportComponents upserts one component per row. Existing components
// matched by name gain the imported stock on top of what they hold;
// new names are registered with catalog defaults.
func (s *service) ImportComponents(ctx context.Context, rows []map[string]string) (*ImportSummary, error) {
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no rows to import")
	}

	assignment := MapHeaders(headersOf(rows[0]))

	summary := &ImportSummary{}
	var rowErrs error
	for i, row := range rows {
		if RowIsEmpty(row) {
			summary.Skipped++
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("row %d: empty row", i+1))
			continue
		}
		mapped := MapRow(row, assignment)
		if err := s.upsertComponent(ctx, mapped, summary); err != nil {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("row %d (%s): %w", i+1, mapped.Name, err))
		}
	}

	for _, err := range multierr.Errors(rowErrs) {
		summary.Warnings = append(summary.Warnings, err.Error())
	}
	if rowErrs != nil && summary.Created == 0 && summary.Updated == 0 {
		return summary, pkgerrors.Wrap(pkgerrors.CodeDependency, rowErrs, "import failed for every row")
	}
	return summary, nil
}

func (s *service) upsertComponent(ctx context.Context, mapped MappedRow, summary *ImportSummary) error {
	existing, err := s.inventory.FindByName(ctx, mapped.Name)
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	if existing == nil {
		component := &models.Component{
			ID:           uuid.New(),
			Name:         mapped.Name,
			PartNumber:   mapped.PartNumber,
			CurrentStock: mapped.Stock,
			MinRequired:  100,
			ScrapRate:    importDefaultScrapRate,
			UnitCost:     mapped.UnitCost,
		}
		if component.PartNumber == "" {
			component.PartNumber = "N/A"
		}
		if mapped.MinRequired != nil && *mapped.MinRequired > 0 {
			component.MinRequired = *mapped.MinRequired
		}
		if mapped.ScrapRate != nil && !mapped.ScrapRate.IsNegative() {
			component.ScrapRate = *mapped.ScrapRate
		}
		if _, err := s.inventory.Create(ctx, component); err != nil {
			return err
		}
		summary.Created++
		return nil
	}

	if mapped.Stock > 0 {
		if err := s.inventory.AddStock(ctx, existing.ID, mapped.Stock); err != nil {
			return err
		}
	}

	updates := map[string]any{}
	if mapped.PartNumber != "" && mapped.PartNumber != existing.PartNumber {
		updates["part_number"] = mapped.PartNumber
	}
	if mapped.MinRequired != nil && *mapped.MinRequired > 0 {
		updates["min_required"] = *mapped.MinRequired
	}
	if mapped.ScrapRate != nil && !mapped.ScrapRate.IsNegative() {
		updates["scrap_rate"] = *mapped.ScrapRate
	}
	if mapped.UnitCost != nil {
		updates["unit_cost"] = *mapped.UnitCost
	}
	if len(updates) > 0 {
		if err := s.inventory.Update(ctx, existing.ID, updates); err != nil {
			return err
		}
	}
	summary.Updated++
	return nil
}

// ImportBOM replaces a recipe's bill of materials from a spreadsheet.
// The recipe id comes from the uploaded filename.
func (s *service) ImportBOM(ctx context.Context, filename string, rows []map[string]string) (*recipes.RecipeView, error) {
	recipeID, err := RecipeIDFromFilename(filename)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no rows to import")
	}

	assignment := MapHeaders(headersOf(rows[0]))
	if _, ok := assignment[FieldName]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no column maps to a component name")
	}

	lines := make([]recipes.BOMLineInput, 0, len(rows))
	for i, row := range rows {
		if RowIsEmpty(row) {
			continue
		}
		mapped := MapRow(row, assignment)

		amount := decimal.NewFromInt(1)
		if mapped.Amount != nil {
			amount = *mapped.Amount
		} else if mapped.Stock > 0 {
			// Without a dedicated per-unit column the quantity column
			// carries the amount, matching how BOM sheets are exported.
			amount = decimal.NewFromInt(int64(mapped.Stock))
		}

		component, err := s.resolveOrCreateComponent(ctx, mapped)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve component").
				WithDetails(map[string]any{"row": i + 1, "component_name": mapped.Name})
		}

		lines = append(lines, recipes.BOMLineInput{
			ComponentID:   component.ID,
			AmountPerUnit: amount,
		})
	}

	ctx = s.logg.WithRecipeID(ctx, recipeID)
	s.logg.Info(ctx, "importing recipe bill of materials")
	return s.boms.ReplaceBOM(ctx, recipeID, lines)
}

// resolveOrCreateComponent looks a BOM line's component up by name,
// registering it with catalog defaults and zero stock when the sheet
// references a part the inventory has never seen.
func (s *service) resolveOrCreateComponent(ctx context.Context, mapped MappedRow) (*models.Component, error) {
	component, err := s.inventory.FindByName(ctx, mapped.Name)
	if err == nil {
		return component, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	created := &models.Component{
		ID:          uuid.New(),
		Name:        mapped.Name,
		PartNumber:  mapped.PartNumber,
		MinRequired: 100,
		ScrapRate:   importDefaultScrapRate,
	}
	if created.PartNumber == "" {
		created.PartNumber = "N/A"
	}
	return s.inventory.Create(ctx, created)
}

// RecipeIDFromFilename derives a stable recipe id from an uploaded
// file name: base name without extension, lowercased, non-alphanumeric
// runs collapsed to underscores.
func RecipeIDFromFilename(filename string) (string, error) {
	base := filepath.Base(strings.TrimSpace(filename))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	id := strings.ToLower(base)
	id = recipeIDSanitizeRe.ReplaceAllString(id, "_")
	id = strings.Trim(id, "_")
	if id == "" || id == "." {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "filename does not yield a recipe id")
	}
	return id, nil
}

func headersOf(row map[string]string) []string {
	headers := make([]string, 0, len(row))
	for header := range row {
		headers = append(headers, header)
	}
	return headers
}
