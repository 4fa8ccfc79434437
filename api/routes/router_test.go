package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	importersvc "github.com/pandoralabs/stockline-backend/internal/importer"
	inventorysvc "github.com/pandoralabs/stockline-backend/internal/inventory"
	productionsvc "github.com/pandoralabs/stockline-backend/internal/production"
	recipesvc "github.com/pandoralabs/stockline-backend/internal/recipes"
	"github.com/pandoralabs/stockline-backend/pkg/config"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
	"github.com/pandoralabs/stockline-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubInventoryService struct{}

func (stubInventoryService) CreateComponent(ctx context.Context, input inventorysvc.CreateComponentInput) (*inventorysvc.ComponentView, error) {
	return &inventorysvc.ComponentView{ID: uuid.New(), Name: input.Name}, nil
}

func (stubInventoryService) GetComponent(ctx context.Context, id uuid.UUID) (*inventorysvc.ComponentView, error) {
	return &inventorysvc.ComponentView{ID: id}, nil
}

func (stubInventoryService) ListComponents(ctx context.Context, filter inventorysvc.ListFilter) ([]inventorysvc.ComponentView, error) {
	return []inventorysvc.ComponentView{}, nil
}

func (stubInventoryService) UpdateComponent(ctx context.Context, id uuid.UUID, input inventorysvc.UpdateComponentInput) (*inventorysvc.ComponentView, error) {
	return &inventorysvc.ComponentView{ID: id}, nil
}

func (stubInventoryService) Replenish(ctx context.Context, id uuid.UUID, qty int) (*inventorysvc.ComponentView, error) {
	return &inventorysvc.ComponentView{ID: id, CurrentStock: qty}, nil
}

func (stubInventoryService) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubRecipesService struct{}

func (stubRecipesService) ReplaceBOM(ctx context.Context, recipeID string, lines []recipesvc.BOMLineInput) (*recipesvc.RecipeView, error) {
	return &recipesvc.RecipeView{RecipeID: recipeID}, nil
}

func (stubRecipesService) GetRecipe(ctx context.Context, recipeID string) (*recipesvc.RecipeView, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
}

func (stubRecipesService) ListRecipes(ctx context.Context) ([]recipesvc.RecipeSummary, error) {
	return []recipesvc.RecipeSummary{}, nil
}

func (stubRecipesService) DeleteRecipe(ctx context.Context, recipeID string) error {
	return nil
}

type stubProductionService struct{}

func (stubProductionService) ExecuteRun(ctx context.Context, input productionsvc.ExecuteInput) (*productionsvc.RunResult, error) {
	return &productionsvc.RunResult{RunID: uuid.New(), RecipeID: input.RecipeID, Quantity: input.Quantity}, nil
}

func (stubProductionService) ListRuns(ctx context.Context, params pagination.Params, filters productionsvc.RunFilters) (*productionsvc.RunList, error) {
	return &productionsvc.RunList{Runs: []productionsvc.RunView{}}, nil
}

type countingProductionService struct {
	stubProductionService
	calls int
}

func (c *countingProductionService) ExecuteRun(ctx context.Context, input productionsvc.ExecuteInput) (*productionsvc.RunResult, error) {
	c.calls++
	return c.stubProductionService.ExecuteRun(ctx, input)
}

type memoryReplayStore struct {
	data map[string]string
}

func newMemoryReplayStore() *memoryReplayStore {
	return &memoryReplayStore{data: make(map[string]string)}
}

func (s *memoryReplayStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (s *memoryReplayStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key], _ = value.(string)
	return true, nil
}

func (s *memoryReplayStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("test:%s:%s", scope, id)
}

type stubImporterService struct{}

func (stubImporterService) ImportComponents(ctx context.Context, rows []map[string]string) (*importersvc.ImportSummary, error) {
	return &importersvc.ImportSummary{}, nil
}

func (stubImporterService) ImportBOM(ctx context.Context, filename string, rows []map[string]string) (*recipesvc.RecipeView, error) {
	return &recipesvc.RecipeView{RecipeID: filename}, nil
}

func routerTestLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "router-test",
		Level:       zerolog.ErrorLevel,
		Output:      io.Discard,
	})
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(Deps{
		Config:     cfg,
		Logger:     routerTestLogger(),
		DB:         stubPinger{},
		Gatherer:   prometheus.NewRegistry(),
		Inventory:  stubInventoryService{},
		Recipes:    stubRecipesService{},
		Production: stubProductionService{},
		Importer:   stubImporterService{},
	})
}

func newReplayRouter(t *testing.T, production productionsvc.Service) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(Deps{
		Config:      cfg,
		Logger:      routerTestLogger(),
		DB:          stubPinger{},
		Idempotency: newMemoryReplayStore(),
		Gatherer:    prometheus.NewRegistry(),
		Inventory:   stubInventoryService{},
		Recipes:     stubRecipesService{},
		Production:  production,
		Importer:    stubImporterService{},
	})
}

func TestHealthLiveRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if env := w.Header().Get("X-Stockline-Env"); env != "test" {
		t.Fatalf("unexpected env header %q", env)
	}
}

func TestHealthReadyRouteWithoutRedis(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "redis") {
		t.Fatalf("redis check should be skipped when not configured: %s", w.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestProductionRunRoute(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"recipe_id":"widget_v1","quantity":5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/production/runs", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}

	var envelope struct {
		Data productionsvc.RunResult `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RecipeID != "widget_v1" || envelope.Data.Quantity != 5 {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestProductionRunRequiresIdempotencyKey(t *testing.T) {
	svc := &countingProductionService{}
	router := newReplayRouter(t, svc)

	body := strings.NewReader(`{"recipe_id":"widget_v1","quantity":5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/production/runs", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", w.Code, w.Body.String())
	}
	if svc.calls != 0 {
		t.Fatalf("service executed %d times without an idempotency key", svc.calls)
	}
}

func TestProductionRunReplaysStoredResponse(t *testing.T) {
	svc := &countingProductionService{}
	router := newReplayRouter(t, svc)

	send := func() *httptest.ResponseRecorder {
		body := strings.NewReader(`{"recipe_id":"widget_v1","quantity":5}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/production/runs", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "run-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := send()
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", first.Code, first.Body.String())
	}

	second := send()
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d: %s", second.Code, second.Body.String())
	}
	if svc.calls != 1 {
		t.Fatalf("service executed %d times, retry should replay the stored response", svc.calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replayed body differs:\nfirst:  %s\nsecond: %s", first.Body.String(), second.Body.String())
	}
}

func TestInventoryListRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
}

func TestInventoryListRejectsUnknownCriticality(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory?criticality=purple", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", w.Code, w.Body.String())
	}
}

func TestRecipeNotFoundRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d: %s", w.Code, w.Body.String())
	}
}

func TestForecastRouteWithoutClient(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/"+uuid.NewString()+"/forecast", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d: %s", w.Code, w.Body.String())
	}
}
