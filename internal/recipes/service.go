package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/pkg/db/models"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type componentFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Component, error)
}

// Service defines recipe authoring operations.
type Service interface {
	ReplaceBOM(ctx context.Context, recipeID string, lines []BOMLineInput) (*RecipeView, error)
	GetRecipe(ctx context.Context, recipeID string) (*RecipeView, error)
	ListRecipes(ctx context.Context) ([]RecipeSummary, error)
	DeleteRecipe(ctx context.Context, recipeID string) error
}

type service struct {
	repo       Repository
	tx         txRunner
	components componentFinder
}

// NewService builds a recipes service with the required dependencies.
func NewService(repo Repository, tx txRunner, components componentFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("recipes repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if components == nil {
		return nil, fmt.Errorf("component finder required")
	}
	return &service{repo: repo, tx: tx, components: components}, nil
}

// ReplaceBOM swaps the full bill of materials for a recipe in one
// transaction. Partial edits are not supported: the caller always
// submits the complete line set.
func (s *service) ReplaceBOM(ctx context.Context, recipeID string, lines []BOMLineInput) (*RecipeView, error) {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe id required")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe needs at least one line")
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if line.ComponentID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "component id required on every line")
		}
		if !line.AmountPerUnit.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount per unit must be positive").
				WithDetails(map[string]any{"component_id": line.ComponentID})
		}
		if _, dup := seen[line.ComponentID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "component listed more than once").
				WithDetails(map[string]any{"component_id": line.ComponentID})
		}
		seen[line.ComponentID] = struct{}{}

		if _, err := s.components.FindByID(ctx, line.ComponentID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "component not found").
					WithDetails(map[string]any{"component_id": line.ComponentID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load component")
		}
	}

	rows := make([]models.RecipeLine, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.RecipeLine{
			ID:            uuid.New(),
			RecipeID:      recipeID,
			ComponentID:   line.ComponentID,
			AmountPerUnit: line.AmountPerUnit,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.DeleteByRecipe(ctx, recipeID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear recipe lines")
		}
		if err := repo.CreateLines(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create recipe lines")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipeID)
}

func (s *service) GetRecipe(ctx context.Context, recipeID string) (*RecipeView, error) {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe id required")
	}

	lines, err := s.repo.FindLinesByRecipe(ctx, recipeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe lines")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
	}

	view := &RecipeView{RecipeID: recipeID, Lines: make([]BOMLineView, 0, len(lines))}
	for i := range lines {
		view.Lines = append(view.Lines, toLineView(&lines[i]))
	}
	return view, nil
}

func (s *service) ListRecipes(ctx context.Context) ([]RecipeSummary, error) {
	summaries, err := s.repo.ListRecipes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recipes")
	}
	return summaries, nil
}

func (s *service) DeleteRecipe(ctx context.Context, recipeID string) error {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipe id required")
	}

	deleted, err := s.repo.DeleteByRecipe(ctx, recipeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete recipe")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
	}
	return nil
}
