package production

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pandoralabs/stockline-backend/pkg/criticality"
	"github.com/pandoralabs/stockline-backend/pkg/db/models"
	"github.com/pandoralabs/stockline-backend/pkg/enums"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
	"github.com/pandoralabs/stockline-backend/pkg/metrics"
	"github.com/pandoralabs/stockline-backend/pkg/pagination"
	"github.com/rs/zerolog"
)

// fakeStockStore emulates the components table for engine tests. The
// tx runner holds the lock for a whole transaction, mirroring the row
// locks the conditional UPDATE takes in Postgres.
type fakeStockStore struct {
	mu    sync.Mutex
	stock map[uuid.UUID]int
}

type fakeTxRunner struct {
	store *fakeStockStore
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	snapshot := make(map[uuid.UUID]int, len(f.store.stock))
	for id, qty := range f.store.stock {
		snapshot[id] = qty
	}

	if err := fn(nil); err != nil {
		f.store.stock = snapshot
		return err
	}
	return nil
}

type fakeDeductor struct {
	store *fakeStockStore
}

func (d *fakeDeductor) Deduct(ctx context.Context, tx *gorm.DB, componentID uuid.UUID, qty int) (int, bool, error) {
	stock, ok := d.store.stock[componentID]
	if !ok {
		return 0, false, gorm.ErrRecordNotFound
	}
	if stock < qty {
		return stock, false, nil
	}
	d.store.stock[componentID] = stock - qty
	return stock - qty, true, nil
}

type stubRunsRepo struct {
	mu   sync.Mutex
	runs []models.ProductionRun
}

func (s *stubRunsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRunsRepo) CreateRun(ctx context.Context, run *models.ProductionRun) (*models.ProductionRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	s.runs = append(s.runs, *run)
	return run, nil
}

func (s *stubRunsRepo) ListRuns(ctx context.Context, params pagination.Params, filters RunFilters) (*RunList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := &RunList{}
	for i := range s.runs {
		if filters.RecipeID != "" && s.runs[i].RecipeID != filters.RecipeID {
			continue
		}
		if filters.Outcome != nil && s.runs[i].Outcome != *filters.Outcome {
			continue
		}
		list.Runs = append(list.Runs, toRunView(&s.runs[i]))
	}
	return list, nil
}

func (s *stubRunsRepo) outcomes() (committed, rejected int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, run := range s.runs {
		switch run.Outcome {
		case enums.RunOutcomeCommitted:
			committed++
		case enums.RunOutcomeRejected:
			rejected++
		}
	}
	return committed, rejected
}

type stubBOMReader struct {
	lines map[string][]models.RecipeLine
}

func (s *stubBOMReader) FindLinesByRecipe(ctx context.Context, recipeID string) ([]models.RecipeLine, error) {
	return s.lines[recipeID], nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "production-test",
		Level:       zerolog.ErrorLevel,
		Output:      io.Discard,
	})
}

func bomLine(componentID uuid.UUID, name string, amount string, minRequired int) models.RecipeLine {
	return models.RecipeLine{
		ID:            uuid.New(),
		RecipeID:      "widget_v1",
		ComponentID:   componentID,
		AmountPerUnit: decimal.RequireFromString(amount),
		Component: &models.Component{
			ID:          componentID,
			Name:        name,
			MinRequired: minRequired,
		},
	}
}

func newEngine(t *testing.T, store *fakeStockStore, bom *stubBOMReader, repo *stubRunsRepo, m *metrics.ProductionMetrics) Service {
	t.Helper()
	svc, err := NewService(repo, &fakeTxRunner{store: store}, bom, &fakeDeductor{store: store}, testLogger(), m)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestExecuteRunCommitsAndDeducts(t *testing.T) {
	resistor := uuid.New()
	solder := uuid.New()
	store := &fakeStockStore{stock: map[uuid.UUID]int{
		resistor: 100,
		solder:   50,
	}}
	bom := &stubBOMReader{lines: map[string][]models.RecipeLine{
		"widget_v1": {
			bomLine(resistor, "Resistor-A", "2", 100),
			bomLine(solder, "Solder Paste", "2.5", 10),
		},
	}}
	repo := &stubRunsRepo{}
	svc := newEngine(t, store, bom, repo, metrics.NewProductionMetrics(nil))

	result, err := svc.ExecuteRun(context.Background(), ExecuteInput{RecipeID: "widget_v1", Quantity: 3})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.RunID == uuid.Nil {
		t.Fatal("expected run id assigned")
	}
	if store.stock[resistor] != 94 {
		t.Fatalf("expected resistor stock 94, got %d", store.stock[resistor])
	}
	// 2.5 per unit at quantity 3 rounds up to 8 whole units.
	if store.stock[solder] != 42 {
		t.Fatalf("expected solder stock 42, got %d", store.stock[solder])
	}
	if len(result.Deductions) != 2 {
		t.Fatalf("expected 2 deductions, got %d", len(result.Deductions))
	}
	if result.Deductions[1].Deducted != 8 {
		t.Fatalf("expected fractional amount rounded up to 8, got %d", result.Deductions[1].Deducted)
	}

	committed, rejected := repo.outcomes()
	if committed != 1 || rejected != 0 {
		t.Fatalf("expected 1 committed ledger row, got committed=%d rejected=%d", committed, rejected)
	}
}

func TestExecuteRunInsufficientStockRollsBackEverything(t *testing.T) {
	resistor := uuid.New()
	solder := uuid.New()
	store := &fakeStockStore{stock: map[uuid.UUID]int{
		resistor: 100,
		solder:   3,
	}}
	lines := []models.RecipeLine{
		bomLine(resistor, "Resistor-A", "2", 100),
		bomLine(solder, "Solder Paste", "2", 10),
	}
	bom := &stubBOMReader{lines: map[string][]models.RecipeLine{"widget_v1": lines}}
	repo := &stubRunsRepo{}
	svc := newEngine(t, store, bom, repo, metrics.NewProductionMetrics(nil))

	_, err := svc.ExecuteRun(context.Background(), ExecuteInput{RecipeID: "widget_v1", Quantity: 2})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected structured details, got %T", typed.Details())
	}
	if details["component_name"] != "Solder Paste" {
		t.Fatalf("unexpected shortfall component %v", details["component_name"])
	}
	if details["required"] != 4 || details["available"] != 3 {
		t.Fatalf("unexpected shortfall numbers %+v", details)
	}

	// The resistor deduction must not survive the rollback.
	if store.stock[resistor] != 100 {
		t.Fatalf("expected resistor stock restored to 100, got %d", store.stock[resistor])
	}
	if store.stock[solder] != 3 {
		t.Fatalf("expected solder stock untouched at 3, got %d", store.stock[solder])
	}

	committed, rejected := repo.outcomes()
	if committed != 0 || rejected != 1 {
		t.Fatalf("expected 1 rejected ledger row, got committed=%d rejected=%d", committed, rejected)
	}
	if repo.runs[0].FailureReason == nil || *repo.runs[0].FailureReason == "" {
		t.Fatal("expected failure reason recorded")
	}
}

func TestExecuteRunUnknownRecipe(t *testing.T) {
	store := &fakeStockStore{stock: map[uuid.UUID]int{}}
	bom := &stubBOMReader{lines: map[string][]models.RecipeLine{}}
	repo := &stubRunsRepo{}
	svc := newEngine(t, store, bom, repo, metrics.NewProductionMetrics(nil))

	_, err := svc.ExecuteRun(context.Background(), ExecuteInput{RecipeID: "missing", Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if committed, rejected := repo.outcomes(); committed != 0 || rejected != 0 {
		t.Fatal("no ledger rows expected for unknown recipe")
	}
}

func TestExecuteRunValidatesInput(t *testing.T) {
	store := &fakeStockStore{stock: map[uuid.UUID]int{}}
	bom := &stubBOMReader{lines: map[string][]models.RecipeLine{}}
	svc := newEngine(t, store, bom, &stubRunsRepo{}, metrics.NewProductionMetrics(nil))

	_, err := svc.ExecuteRun(context.Background(), ExecuteInput{RecipeID: "widget_v1", Quantity: 0})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}

	_, err = svc.ExecuteRun(context.Background(), ExecuteInput{RecipeID: "  ", Quantity: 1})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank recipe, got %v", err)
	}
}

func TestExecuteRunConcurrentNeverOversells(t *testing.T) {
	componentID := uuid.New()
	const initialStock = 50
	const perRun = 10
	const workers = 20

	store := &fakeStockStore{stock: map[uuid.UUID]int{componentID: initialStock}}
	bom := &stubBOMReader{lines: map[string][]models.RecipeLine{
		"widget_v1": {bomLine(componentID, "Resistor-A", "10", 100)},
	}}
	repo := &stubRunsRepo{}
	svc := newEngine(t, store, bom, repo, metrics.NewProductionMetrics(nil))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.ExecuteRun(context.Background(), ExecuteInput{RecipeID: "widget_v1", Quantity: 1})
		}()
	}
	wg.Wait()

	committed, rejected := repo.outcomes()
	if committed != initialStock/perRun {
		t.Fatalf("expected %d committed runs, got %d", initialStock/perRun, committed)
	}
	if rejected != workers-committed {
		t.Fatalf("expected %d rejected runs, got %d", workers-committed, rejected)
	}
	if store.stock[componentID] != 0 {
		t.Fatalf("expected stock drained to exactly 0, got %d", store.stock[componentID])
	}
}

func TestExecuteRunEmitsLowStockAlert(t *testing.T) {
	componentID := uuid.New()
	store := &fakeStockStore{stock: map[uuid.UUID]int{componentID: 25}}
	bom := &stubBOMReader{lines: map[string][]models.RecipeLine{
		"widget_v1": {bomLine(componentID, "Resistor-A", "1", 100)},
	}}
	repo := &stubRunsRepo{}
	registry := prometheus.NewRegistry()
	m := metrics.NewProductionMetrics(registry)
	svc := newEngine(t, store, bom, repo, m)

	// 25 - 10 = 15, at or below 20% of min_required 100.
	result, err := svc.ExecuteRun(context.Background(), ExecuteInput{RecipeID: "widget_v1", Quantity: 10})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.Deductions[0].Criticality != criticality.TierCritical {
		t.Fatalf("expected critical tier, got %s", result.Deductions[0].Criticality)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	var alerts float64
	for _, family := range families {
		if family.GetName() == "low_stock_alerts" {
			for _, metric := range family.GetMetric() {
				alerts += metric.GetCounter().GetValue()
			}
		}
	}
	if alerts != 1 {
		t.Fatalf("expected 1 low stock alert, got %f", alerts)
	}
}
