package controllers

import (
	"net/http"

	"github.com/pandoralabs/stockline-backend/api/responses"
	inventorysvc "github.com/pandoralabs/stockline-backend/internal/inventory"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
	"github.com/pandoralabs/stockline-backend/pkg/forecast"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
)

// ComponentForecast fetches the advisory forecast for one component.
// A missing forecast client reports the dependency as unavailable.
func ComponentForecast(svc inventorysvc.Service, client *forecast.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "forecast service not configured"))
			return
		}

		id, err := componentIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		component, err := svc.GetComponent(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithComponentID(r.Context(), id.String())
		prediction, err := client.Predict(ctx, forecast.PredictRequest{
			ItemName:     component.Name,
			CurrentStock: component.CurrentStock,
			MinRequired:  component.MinRequired,
			ScrapRate:    component.ScrapRate,
			UnitCost:     component.UnitCost,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, prediction)
	}
}
