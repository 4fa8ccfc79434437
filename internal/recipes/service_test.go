package recipes

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/pkg/db/models"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
)

type stubRecipesRepo struct {
	lines map[string][]models.RecipeLine
}

func newStubRecipesRepo() *stubRecipesRepo {
	return &stubRecipesRepo{lines: make(map[string][]models.RecipeLine)}
}

func (s *stubRecipesRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRecipesRepo) CreateLines(ctx context.Context, lines []models.RecipeLine) error {
	for _, line := range lines {
		s.lines[line.RecipeID] = append(s.lines[line.RecipeID], line)
	}
	return nil
}

func (s *stubRecipesRepo) FindLinesByRecipe(ctx context.Context, recipeID string) ([]models.RecipeLine, error) {
	lines := append([]models.RecipeLine(nil), s.lines[recipeID]...)
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ComponentID.String() < lines[j].ComponentID.String()
	})
	return lines, nil
}

func (s *stubRecipesRepo) ListRecipes(ctx context.Context) ([]RecipeSummary, error) {
	ids := make([]string, 0, len(s.lines))
	for id := range s.lines {
		if len(s.lines[id]) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	summaries := make([]RecipeSummary, 0, len(ids))
	for _, id := range ids {
		summaries = append(summaries, RecipeSummary{RecipeID: id, LineCount: len(s.lines[id])})
	}
	return summaries, nil
}

func (s *stubRecipesRepo) DeleteByRecipe(ctx context.Context, recipeID string) (int64, error) {
	deleted := int64(len(s.lines[recipeID]))
	delete(s.lines, recipeID)
	return deleted, nil
}

type stubComponentFinder struct {
	known map[uuid.UUID]*models.Component
}

func (s *stubComponentFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	component, ok := s.known[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return component, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func TestReplaceBOMCreatesLines(t *testing.T) {
	componentID := uuid.New()
	repo := newStubRecipesRepo()
	finder := &stubComponentFinder{known: map[uuid.UUID]*models.Component{
		componentID: {ID: componentID, Name: "Resistor-A"},
	}}
	svc, err := NewService(repo, stubTxRunner{}, finder)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	view, err := svc.ReplaceBOM(context.Background(), "widget_v1", []BOMLineInput{
		{ComponentID: componentID, AmountPerUnit: decimal.RequireFromString("2.5")},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.RecipeID != "widget_v1" {
		t.Fatalf("unexpected recipe id %q", view.RecipeID)
	}
	if len(view.Lines) != 1 || !view.Lines[0].AmountPerUnit.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected lines %+v", view.Lines)
	}
}

func TestReplaceBOMSwapsExistingLines(t *testing.T) {
	oldComponent := uuid.New()
	newComponent := uuid.New()
	repo := newStubRecipesRepo()
	finder := &stubComponentFinder{known: map[uuid.UUID]*models.Component{
		oldComponent: {ID: oldComponent, Name: "Old"},
		newComponent: {ID: newComponent, Name: "New"},
	}}
	svc, _ := NewService(repo, stubTxRunner{}, finder)

	ctx := context.Background()
	if _, err := svc.ReplaceBOM(ctx, "widget_v1", []BOMLineInput{
		{ComponentID: oldComponent, AmountPerUnit: decimal.NewFromInt(1)},
	}); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	view, err := svc.ReplaceBOM(ctx, "widget_v1", []BOMLineInput{
		{ComponentID: newComponent, AmountPerUnit: decimal.NewFromInt(3)},
	})
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].ComponentID != newComponent {
		t.Fatalf("expected old lines replaced, got %+v", view.Lines)
	}
}

func TestReplaceBOMRejectsUnknownComponent(t *testing.T) {
	repo := newStubRecipesRepo()
	finder := &stubComponentFinder{known: map[uuid.UUID]*models.Component{}}
	svc, _ := NewService(repo, stubTxRunner{}, finder)

	_, err := svc.ReplaceBOM(context.Background(), "widget_v1", []BOMLineInput{
		{ComponentID: uuid.New(), AmountPerUnit: decimal.NewFromInt(1)},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(repo.lines) != 0 {
		t.Fatal("no lines should be written on validation failure")
	}
}

func TestReplaceBOMRejectsDuplicateComponent(t *testing.T) {
	componentID := uuid.New()
	repo := newStubRecipesRepo()
	finder := &stubComponentFinder{known: map[uuid.UUID]*models.Component{
		componentID: {ID: componentID, Name: "Resistor-A"},
	}}
	svc, _ := NewService(repo, stubTxRunner{}, finder)

	_, err := svc.ReplaceBOM(context.Background(), "widget_v1", []BOMLineInput{
		{ComponentID: componentID, AmountPerUnit: decimal.NewFromInt(1)},
		{ComponentID: componentID, AmountPerUnit: decimal.NewFromInt(2)},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReplaceBOMRejectsNonPositiveAmount(t *testing.T) {
	componentID := uuid.New()
	repo := newStubRecipesRepo()
	finder := &stubComponentFinder{known: map[uuid.UUID]*models.Component{
		componentID: {ID: componentID, Name: "Resistor-A"},
	}}
	svc, _ := NewService(repo, stubTxRunner{}, finder)

	_, err := svc.ReplaceBOM(context.Background(), "widget_v1", []BOMLineInput{
		{ComponentID: componentID, AmountPerUnit: decimal.Zero},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetRecipeNotFound(t *testing.T) {
	repo := newStubRecipesRepo()
	finder := &stubComponentFinder{known: map[uuid.UUID]*models.Component{}}
	svc, _ := NewService(repo, stubTxRunner{}, finder)

	_, err := svc.GetRecipe(context.Background(), "missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteRecipe(t *testing.T) {
	componentID := uuid.New()
	repo := newStubRecipesRepo()
	finder := &stubComponentFinder{known: map[uuid.UUID]*models.Component{
		componentID: {ID: componentID, Name: "Resistor-A"},
	}}
	svc, _ := NewService(repo, stubTxRunner{}, finder)

	ctx := context.Background()
	if _, err := svc.ReplaceBOM(ctx, "widget_v1", []BOMLineInput{
		{ComponentID: componentID, AmountPerUnit: decimal.NewFromInt(1)},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if err := svc.DeleteRecipe(ctx, "widget_v1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err := svc.DeleteRecipe(ctx, "widget_v1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
