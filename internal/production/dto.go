package production

import (
	"time"

	"github.com/google/uuid"

	"github.com/pandoralabs/stockline-backend/pkg/criticality"
	"github.com/pandoralabs/stockline-backend/pkg/db/models"
	"github.com/pandoralabs/stockline-backend/pkg/enums"
)

// ExecuteInput is a request to run a recipe at a given quantity.
type ExecuteInput struct {
	RecipeID string
	Quantity int
}

// Deduction reports one component's stock movement from a committed run.
type Deduction struct {
	ComponentID   uuid.UUID        `json:"component_id"`
	ComponentName string           `json:"component_name"`
	Deducted      int              `json:"deducted"`
	Remaining     int              `json:"remaining"`
	Criticality   criticality.Tier `json:"criticality"`
}

// RunResult is the outcome of a committed production run.
type RunResult struct {
	RunID      uuid.UUID   `json:"run_id"`
	RecipeID   string      `json:"recipe_id"`
	Quantity   int         `json:"quantity_produced"`
	Deductions []Deduction `json:"deductions"`
	CreatedAt  time.Time   `json:"created_at"`
}

// RunFilters narrows ledger listings.
type RunFilters struct {
	RecipeID string
	Outcome  *enums.RunOutcome
}

// RunView is one ledger entry in API responses.
type RunView struct {
	ID               uuid.UUID        `json:"id"`
	RecipeID         string           `json:"recipe_id"`
	QuantityProduced int              `json:"quantity_produced"`
	Outcome          enums.RunOutcome `json:"outcome"`
	FailureReason    *string          `json:"failure_reason,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// RunList is a cursor-paginated page of ledger entries.
type RunList struct {
	Runs       []RunView `json:"runs"`
	NextCursor string    `json:"next_cursor,omitempty"`
	HasMore    bool      `json:"has_more"`
}

func toRunView(run *models.ProductionRun) RunView {
	return RunView{
		ID:               run.ID,
		RecipeID:         run.RecipeID,
		QuantityProduced: run.QuantityProduced,
		Outcome:          run.Outcome,
		FailureReason:    run.FailureReason,
		CreatedAt:        run.CreatedAt,
	}
}
