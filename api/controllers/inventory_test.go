package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	inventorysvc "github.com/pandoralabs/stockline-backend/internal/inventory"
	"github.com/pandoralabs/stockline-backend/pkg/criticality"
)

type stubInventoryService struct {
	lastCreate    inventorysvc.CreateComponentInput
	lastFilter    inventorysvc.ListFilter
	lastReplenish int
}

func (s *stubInventoryService) CreateComponent(ctx context.Context, input inventorysvc.CreateComponentInput) (*inventorysvc.ComponentView, error) {
	s.lastCreate = input
	return &inventorysvc.ComponentView{ID: uuid.New(), Name: input.Name}, nil
}

func (s *stubInventoryService) GetComponent(ctx context.Context, id uuid.UUID) (*inventorysvc.ComponentView, error) {
	return &inventorysvc.ComponentView{ID: id}, nil
}

func (s *stubInventoryService) ListComponents(ctx context.Context, filter inventorysvc.ListFilter) ([]inventorysvc.ComponentView, error) {
	s.lastFilter = filter
	return []inventorysvc.ComponentView{}, nil
}

func (s *stubInventoryService) UpdateComponent(ctx context.Context, id uuid.UUID, input inventorysvc.UpdateComponentInput) (*inventorysvc.ComponentView, error) {
	return &inventorysvc.ComponentView{ID: id}, nil
}

func (s *stubInventoryService) Replenish(ctx context.Context, id uuid.UUID, qty int) (*inventorysvc.ComponentView, error) {
	s.lastReplenish = qty
	return &inventorysvc.ComponentView{ID: id, CurrentStock: qty}, nil
}

func (s *stubInventoryService) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	return nil
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCreateComponentReturnsCreated(t *testing.T) {
	svc := &stubInventoryService{}
	handler := CreateComponent(svc, controllerTestLogger())

	body := strings.NewReader(`{"name":"Resistor","current_stock":50,"min_required":200}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", body)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastCreate.Name != "Resistor" || svc.lastCreate.CurrentStock != 50 || svc.lastCreate.MinRequired != 200 {
		t.Fatalf("unexpected input %+v", svc.lastCreate)
	}
}

func TestCreateComponentRequiresName(t *testing.T) {
	handler := CreateComponent(&stubInventoryService{}, controllerTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", strings.NewReader(`{"current_stock":5}`))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetComponentRejectsBadID(t *testing.T) {
	handler := GetComponent(&stubInventoryService{}, controllerTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/not-a-uuid", nil)
	req = withURLParam(req, "componentId", "not-a-uuid")
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", w.Code, w.Body.String())
	}
}

func TestReplenishComponentPassesQuantity(t *testing.T) {
	svc := &stubInventoryService{}
	handler := ReplenishComponent(svc, controllerTestLogger())

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/"+id+"/replenish", strings.NewReader(`{"quantity":25}`))
	req = withURLParam(req, "componentId", id)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastReplenish != 25 {
		t.Fatalf("unexpected quantity %d", svc.lastReplenish)
	}
}

func TestListComponentsParsesCriticalityFilter(t *testing.T) {
	svc := &stubInventoryService{}
	handler := ListComponents(svc, controllerTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory?criticality=critical", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastFilter.Tier == nil || *svc.lastFilter.Tier != criticality.TierCritical {
		t.Fatalf("unexpected filter %+v", svc.lastFilter)
	}
}
