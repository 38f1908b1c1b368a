package tx

import "testing"

func TestGasCostSummary(t *testing.T) {
	g := GasCostSummary{ComputationCost: 1000, StorageCost: 2000, StorageRebate: 500}
	if got := g.NetGasUsed(); got != 2500 {
		t.Errorf("NetGasUsed() = %d, want 2500", got)
	}
	refund := GasCostSummary{ComputationCost: 100, StorageRebate: 900}
	if got := refund.NetGasUsed(); got != -800 {
		t.Errorf("NetGasUsed() = %d, want -800", got)
	}
	if got := refund.GasUsed(); got != 0 {
		t.Errorf("GasUsed() = %d, want 0", got)
	}
}

func TestEstimateGasBudget(t *testing.T) {
	tests := []struct {
		name  string
		dry   GasCostSummary
		price uint64
		want  uint64
	}{
		{"net dominates", GasCostSummary{ComputationCost: 1000, StorageCost: 2000, StorageRebate: 500}, 1, 3500},
		{"computation dominates", GasCostSummary{ComputationCost: 1000, StorageRebate: 900}, 1, 2000},
		{"price scales overhead", GasCostSummary{ComputationCost: 1000}, 1000, 1_001_000},
	}
	for _, tt := range tests {
		if got := EstimateGasBudget(tt.dry, tt.price); got != tt.want {
			t.Errorf("%s: EstimateGasBudget() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
