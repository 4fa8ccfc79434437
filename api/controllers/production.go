package controllers

import (
	"net/http"
	"strings"

	"github.com/pandoralabs/stockline-backend/api/responses"
	"github.com/pandoralabs/stockline-backend/api/validators"
	productionsvc "github.com/pandoralabs/stockline-backend/internal/production"
	"github.com/pandoralabs/stockline-backend/pkg/enums"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
	"github.com/pandoralabs/stockline-backend/pkg/pagination"
)

type executeRunRequest struct {
	RecipeID string `json:"recipe_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// ExecuteRun triggers a production run. Stock moves for every line of
// the recipe or not at all.
func ExecuteRun(svc productionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "production service unavailable"))
			return
		}

		var req executeRunRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithRecipeID(r.Context(), req.RecipeID)
		result, err := svc.ExecuteRun(ctx, productionsvc.ExecuteInput{
			RecipeID: req.RecipeID,
			Quantity: req.Quantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListRuns pages through the production history ledger, newest first.
func ListRuns(svc productionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "production service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := productionsvc.RunFilters{
			RecipeID: strings.TrimSpace(r.URL.Query().Get("recipe_id")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("outcome")); raw != "" {
			outcome, parseErr := enums.ParseRunOutcome(strings.ToLower(raw))
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown run outcome").
					WithDetails(map[string]any{"outcome": raw}))
				return
			}
			filters.Outcome = &outcome
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := svc.ListRuns(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
