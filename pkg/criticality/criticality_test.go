package criticality

import "testing"

func TestClassifyBoundary(t *testing.T) {
	tests := []struct {
		name         string
		currentStock int
		minRequired  int
		want         Tier
	}{
		{name: "exactly at 20 percent is critical", currentStock: 20, minRequired: 100, want: TierCritical},
		{name: "just above 20 percent is optimal", currentStock: 21, minRequired: 100, want: TierOptimal},
		{name: "zero stock is critical", currentStock: 0, minRequired: 100, want: TierCritical},
		{name: "well stocked is optimal", currentStock: 500, minRequired: 100, want: TierOptimal},
		{name: "odd baseline boundary", currentStock: 1, minRequired: 5, want: TierCritical},
		{name: "odd baseline above boundary", currentStock: 2, minRequired: 5, want: TierOptimal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.currentStock, tt.minRequired); got != tt.want {
				t.Fatalf("Classify(%d, %d) = %s, want %s", tt.currentStock, tt.minRequired, got, tt.want)
			}
		})
	}
}

func TestClassifyFailsClosedOnInvalidBaseline(t *testing.T) {
	if got := Classify(5, 0); got != TierCritical {
		t.Fatalf("zero baseline should classify critical, got %s", got)
	}
	if got := Classify(1000, -1); got != TierCritical {
		t.Fatalf("negative baseline should classify critical, got %s", got)
	}
}

func TestStockPercent(t *testing.T) {
	if got := StockPercent(40, 100); got != 40 {
		t.Fatalf("expected 40, got %d", got)
	}
	if got := StockPercent(250, 100); got != 100 {
		t.Fatalf("expected cap at 100, got %d", got)
	}
	if got := StockPercent(10, 0); got != 0 {
		t.Fatalf("expected 0 for invalid baseline, got %d", got)
	}
}
