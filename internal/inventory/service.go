package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/pkg/criticality"
	"github.com/pandoralabs/stockline-backend/pkg/db"
	"github.com/pandoralabs/stockline-backend/pkg/db/models"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
)

var defaultScrapRate = decimal.RequireFromString("2.4")

// Service defines component-level inventory operations.
type Service interface {
	CreateComponent(ctx context.Context, input CreateComponentInput) (*ComponentView, error)
	GetComponent(ctx context.Context, id uuid.UUID) (*ComponentView, error)
	ListComponents(ctx context.Context, filter ListFilter) ([]ComponentView, error)
	UpdateComponent(ctx context.Context, id uuid.UUID, input UpdateComponentInput) (*ComponentView, error)
	Replenish(ctx context.Context, id uuid.UUID, qty int) (*ComponentView, error)
	DeleteComponent(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds an inventory service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateComponent(ctx context.Context, input CreateComponentInput) (*ComponentView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component name required")
	}
	if input.CurrentStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "current stock cannot be negative")
	}
	if input.MinRequired < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min required cannot be negative")
	}

	component := &models.Component{
		ID:                     uuid.New(),
		Name:                   name,
		PartNumber:             strings.TrimSpace(input.PartNumber),
		CurrentStock:           input.CurrentStock,
		MinRequired:            input.MinRequired,
		ReplenishmentThreshold: input.ReplenishmentThreshold,
		ScrapRate:              defaultScrapRate,
	}
	if component.PartNumber == "" {
		component.PartNumber = "N/A"
	}
	if component.MinRequired == 0 {
		component.MinRequired = 100
	}
	if input.ScrapRate != nil {
		component.ScrapRate = *input.ScrapRate
	}
	if input.UnitCost != nil {
		cost := *input.UnitCost
		component.UnitCost = &cost
	}

	created, err := s.repo.Create(ctx, component)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_components_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "component name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create component")
	}
	return toView(created), nil
}

func (s *service) GetComponent(ctx context.Context, id uuid.UUID) (*ComponentView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component id required")
	}
	component, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "component not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load component")
	}
	return toView(component), nil
}

func (s *service) ListComponents(ctx context.Context, filter ListFilter) ([]ComponentView, error) {
	components, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list components")
	}

	views := make([]ComponentView, 0, len(components))
	for i := range components {
		view := toView(&components[i])
		if filter.Tier != nil && view.Criticality != *filter.Tier {
			continue
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *service) UpdateComponent(ctx context.Context, id uuid.UUID, input UpdateComponentInput) (*ComponentView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "component name cannot be empty")
		}
		updates["name"] = name
	}
	if input.PartNumber != nil {
		updates["part_number"] = strings.TrimSpace(*input.PartNumber)
	}
	if input.MinRequired != nil {
		if *input.MinRequired <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min required must be positive")
		}
		updates["min_required"] = *input.MinRequired
	}
	if input.ReplenishmentThreshold != nil {
		updates["replenishment_threshold"] = *input.ReplenishmentThreshold
	}
	if input.ScrapRate != nil {
		if input.ScrapRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "scrap rate cannot be negative")
		}
		updates["scrap_rate"] = *input.ScrapRate
	}
	if input.UnitCost != nil {
		updates["unit_cost"] = *input.UnitCost
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "component not found")
			}
			if db.IsUniqueViolation(err, "idx_components_name") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "component name already exists")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update component")
		}
	}
	return s.GetComponent(ctx, id)
}

func (s *service) Replenish(ctx context.Context, id uuid.UUID, qty int) (*ComponentView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component id required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "replenish quantity must be positive")
	}

	if err := s.repo.AddStock(ctx, id, qty); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "component not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replenish component")
	}
	return s.GetComponent(ctx, id)
}

func (s *service) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "component id required")
	}

	usage, err := s.repo.CountRecipeUsage(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check recipe usage")
	}
	if usage > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "component is referenced by a recipe").
			WithDetails(map[string]any{"recipe_lines": usage})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "component not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete component")
	}
	return nil
}

// CriticalTier is a convenience for list filters.
func CriticalTier() *criticality.Tier {
	tier := criticality.TierCritical
	return &tier
}
