package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pandoralabs/stockline-backend/api/controllers"
	"github.com/pandoralabs/stockline-backend/api/middleware"
	importersvc "github.com/pandoralabs/stockline-backend/internal/importer"
	inventorysvc "github.com/pandoralabs/stockline-backend/internal/inventory"
	productionsvc "github.com/pandoralabs/stockline-backend/internal/production"
	recipesvc "github.com/pandoralabs/stockline-backend/internal/recipes"
	"github.com/pandoralabs/stockline-backend/pkg/config"
	"github.com/pandoralabs/stockline-backend/pkg/db"
	"github.com/pandoralabs/stockline-backend/pkg/forecast"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
	pkgredis "github.com/pandoralabs/stockline-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers. Redis, the
// idempotency store, and the forecast client are optional; nil disables
// the redis readiness check, idempotency replay, and the forecast
// endpoint respectively.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *pkgredis.Client
	Idempotency pkgredis.IdempotencyStore
	Forecast    *forecast.Client
	Gatherer    prometheus.Gatherer
	Inventory   inventorysvc.Service
	Recipes     recipesvc.Service
	Production  productionsvc.Service
	Importer    importersvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	var redisPinger pkgredis.Pinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisPinger))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Idempotency != nil {
			r.Use(middleware.Idempotency(deps.Idempotency, logg))
		}

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListComponents(deps.Inventory, logg))
			r.Post("/", controllers.CreateComponent(deps.Inventory, logg))
			r.Post("/import", controllers.ImportComponents(deps.Importer, logg))
			r.Route("/{componentId}", func(r chi.Router) {
				r.Get("/", controllers.GetComponent(deps.Inventory, logg))
				r.Patch("/", controllers.UpdateComponent(deps.Inventory, logg))
				r.Delete("/", controllers.DeleteComponent(deps.Inventory, logg))
				r.Post("/replenish", controllers.ReplenishComponent(deps.Inventory, logg))
				r.Get("/forecast", controllers.ComponentForecast(deps.Inventory, deps.Forecast, logg))
			})
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", controllers.ListRecipes(deps.Recipes, logg))
			r.Post("/import", controllers.ImportRecipe(deps.Importer, logg))
			r.Route("/{recipeId}", func(r chi.Router) {
				r.Put("/", controllers.ReplaceRecipe(deps.Recipes, logg))
				r.Get("/", controllers.GetRecipe(deps.Recipes, logg))
				r.Delete("/", controllers.DeleteRecipe(deps.Recipes, logg))
			})
		})

		r.Post("/production/runs", controllers.ExecuteRun(deps.Production, logg))
		r.Get("/production/runs", controllers.ListRuns(deps.Production, logg))
	})

	return r
}
