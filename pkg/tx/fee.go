package tx

// DefaultGasBudget is the budget used when no dry run informs it.
const DefaultGasBudget uint64 = 5_000_000

// gasSafeOverheadUnits is added to dry-run estimates, in gas units.
const gasSafeOverheadUnits = 1000

// GasCostSummary is the gas charged for an executed or dry-run transaction.
type GasCostSummary struct {
	ComputationCost         uint64
	StorageCost             uint64
	StorageRebate           uint64
	NonRefundableStorageFee uint64
}

// NetGasUsed returns computation + storage - rebate. It may be negative when
// the transaction frees more storage than it uses.
func (g GasCostSummary) NetGasUsed() int64 {
	return int64(g.ComputationCost) + int64(g.StorageCost) - int64(g.StorageRebate)
}

// GasUsed returns NetGasUsed clamped at zero.
func (g GasCostSummary) GasUsed() uint64 {
	if n := g.NetGasUsed(); n > 0 {
		return uint64(n)
	}
	return 0
}

// EstimateGasBudget derives a budget from a dry run at the given gas price:
// the larger of the computation cost and the net gas used, plus a fixed
// safety overhead.
func EstimateGasBudget(dryRun GasCostSummary, gasPrice uint64) uint64 {
	base := dryRun.ComputationCost
	if used := dryRun.GasUsed(); used > base {
		base = used
	}
	return base + gasSafeOverheadUnits*gasPrice
}
