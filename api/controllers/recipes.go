package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pandoralabs/stockline-backend/api/responses"
	"github.com/pandoralabs/stockline-backend/api/validators"
	recipesvc "github.com/pandoralabs/stockline-backend/internal/recipes"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
)

type bomLineRequest struct {
	ComponentID   uuid.UUID       `json:"component_id" validate:"required"`
	AmountPerUnit decimal.Decimal `json:"amount_per_unit" validate:"required"`
}

type replaceBOMRequest struct {
	Lines []bomLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (req replaceBOMRequest) toInputs() []recipesvc.BOMLineInput {
	lines := make([]recipesvc.BOMLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, recipesvc.BOMLineInput{
			ComponentID:   line.ComponentID,
			AmountPerUnit: line.AmountPerUnit,
		})
	}
	return lines
}

// ReplaceRecipe swaps the full bill of materials for a recipe. Partial
// edits are not supported; the caller always sends the complete line set.
func ReplaceRecipe(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipes service unavailable"))
			return
		}

		recipeID := chi.URLParam(r, "recipeId")

		var req replaceBOMRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithRecipeID(r.Context(), recipeID)
		view, err := svc.ReplaceBOM(ctx, recipeID, req.toInputs())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func GetRecipe(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipes service unavailable"))
			return
		}

		view, err := svc.GetRecipe(r.Context(), chi.URLParam(r, "recipeId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ListRecipes(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipes service unavailable"))
			return
		}

		summaries, err := svc.ListRecipes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"recipes": summaries})
	}
}

func DeleteRecipe(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipes service unavailable"))
			return
		}

		recipeID := chi.URLParam(r, "recipeId")
		if err := svc.DeleteRecipe(r.Context(), recipeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted", "recipe_id": recipeID})
	}
}
