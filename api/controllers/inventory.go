package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pandoralabs/stockline-backend/api/responses"
	"github.com/pandoralabs/stockline-backend/api/validators"
	inventorysvc "github.com/pandoralabs/stockline-backend/internal/inventory"
	"github.com/pandoralabs/stockline-backend/pkg/criticality"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
)

type createComponentRequest struct {
	Name                   string           `json:"name" validate:"required"`
	PartNumber             string           `json:"part_number"`
	CurrentStock           int              `json:"current_stock" validate:"min=0"`
	MinRequired            int              `json:"min_required" validate:"min=0"`
	ReplenishmentThreshold *int             `json:"replenishment_threshold"`
	ScrapRate              *decimal.Decimal `json:"scrap_rate"`
	UnitCost               *decimal.Decimal `json:"unit_cost"`
}

func (req createComponentRequest) toInput() inventorysvc.CreateComponentInput {
	return inventorysvc.CreateComponentInput{
		Name:                   req.Name,
		PartNumber:             req.PartNumber,
		CurrentStock:           req.CurrentStock,
		MinRequired:            req.MinRequired,
		ReplenishmentThreshold: req.ReplenishmentThreshold,
		ScrapRate:              req.ScrapRate,
		UnitCost:               req.UnitCost,
	}
}

type updateComponentRequest struct {
	Name                   *string          `json:"name"`
	PartNumber             *string          `json:"part_number"`
	MinRequired            *int             `json:"min_required"`
	ReplenishmentThreshold *int             `json:"replenishment_threshold"`
	ScrapRate              *decimal.Decimal `json:"scrap_rate"`
	UnitCost               *decimal.Decimal `json:"unit_cost"`
}

func (req updateComponentRequest) toInput() inventorysvc.UpdateComponentInput {
	return inventorysvc.UpdateComponentInput{
		Name:                   req.Name,
		PartNumber:             req.PartNumber,
		MinRequired:            req.MinRequired,
		ReplenishmentThreshold: req.ReplenishmentThreshold,
		ScrapRate:              req.ScrapRate,
		UnitCost:               req.UnitCost,
	}
}

type replenishRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func CreateComponent(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var req createComponentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.CreateComponent(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func GetComponent(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := componentIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetComponent(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ListComponents(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		filter, err := listFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.ListComponents(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"components": views})
	}
}

func UpdateComponent(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := componentIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateComponentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateComponent(r.Context(), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ReplenishComponent(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := componentIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req replenishRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithComponentID(r.Context(), id.String())
		view, err := svc.Replenish(ctx, id, req.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func DeleteComponent(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := componentIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteComponent(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func componentIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "componentId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid component id").
			WithDetails(map[string]any{"component_id": raw})
	}
	return id, nil
}

func listFilterFromQuery(r *http.Request) (inventorysvc.ListFilter, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("criticality"))
	if raw == "" {
		return inventorysvc.ListFilter{}, nil
	}
	switch strings.ToUpper(raw) {
	case string(criticality.TierCritical):
		return inventorysvc.ListFilter{Tier: inventorysvc.CriticalTier()}, nil
	case string(criticality.TierOptimal):
		tier := criticality.TierOptimal
		return inventorysvc.ListFilter{Tier: &tier}, nil
	}
	return inventorysvc.ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown criticality filter").
		WithDetails(map[string]any{"criticality": raw})
}
