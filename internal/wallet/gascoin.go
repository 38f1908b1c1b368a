package wallet

import (
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-wallet/pkg/ledger"
	"github.com/Klingon-tech/klingnet-wallet/pkg/tx"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// Coin is a coin object of one asset type owned by the wallet.
type Coin struct {
	Ref     types.ObjectRef
	Balance uint64
}

// GasSelection is the outcome of gas coin selection. Gas pays for the
// transaction and receives every coin in Merge before the transfer is split
// off it.
type GasSelection struct {
	Gas   Coin
	Merge []Coin
	Total uint64 // Gas.Balance plus every merged balance.
}

// GasPayment returns the gas payment object set.
func (s *GasSelection) GasPayment() []types.ObjectRef {
	return []types.ObjectRef{s.Gas.Ref}
}

// SelectGasCoins picks coins so that one gas coin covers amount + budget.
//
// The first coin whose balance exceeds amount + budget is used alone.
// Otherwise the largest coin covering the budget becomes the gas coin (the
// first one on ties) and the remaining coins are accumulated in inventory
// order until the total reaches amount + budget. Picking the largest
// rather than the first coin covering the budget is intentional; it keeps
// the merge set small. Fails with a
// *ledger.InsufficientBalanceError when the inventory cannot cover it.
func SelectGasCoins(coins []Coin, amount, budget uint64) (*GasSelection, error) {
	if amount > math.MaxUint64-budget {
		return nil, fmt.Errorf("select gas coins: amount %d + budget %d overflows", amount, budget)
	}
	required := amount + budget

	for _, c := range coins {
		if c.Balance > required {
			return &GasSelection{Gas: c, Total: c.Balance}, nil
		}
	}

	gasIdx := -1
	for i, c := range coins {
		if c.Balance >= budget && (gasIdx < 0 || c.Balance > coins[gasIdx].Balance) {
			gasIdx = i
		}
	}
	if gasIdx < 0 {
		return nil, &ledger.InsufficientBalanceError{Required: required, Found: inventoryTotal(coins)}
	}

	sel := &GasSelection{Gas: coins[gasIdx], Total: coins[gasIdx].Balance}
	for i, c := range coins {
		if sel.Total >= required {
			break
		}
		if i == gasIdx {
			continue
		}
		sel.Merge = append(sel.Merge, c)
		sel.Total = saturatingAdd(sel.Total, c.Balance)
	}
	if sel.Total < required {
		return nil, &ledger.InsufficientBalanceError{Required: required, Found: sel.Total}
	}
	return sel, nil
}

// FundTransfer appends the commands that move amount from the gas coin to
// recipient: one MergeCoins folding sel.Merge into the gas coin when
// needed, then the split and transfer.
func FundTransfer(b *tx.Builder, sel *GasSelection, recipient types.Address, amount uint64) error {
	if len(sel.Merge) > 0 {
		sources := make([]tx.Argument, 0, len(sel.Merge))
		for _, c := range sel.Merge {
			arg, err := b.Obj(tx.ImmOrOwnedObject{Ref: c.Ref})
			if err != nil {
				return fmt.Errorf("merge coin %s: %w", c.Ref.ObjectID, err)
			}
			sources = append(sources, arg)
		}
		if _, err := b.Command(tx.MergeCoins{Destination: tx.GasCoin(), Sources: sources}); err != nil {
			return err
		}
	}
	return b.PayFromGas([]types.Address{recipient}, []uint64{amount})
}

func inventoryTotal(coins []Coin) uint64 {
	var total uint64
	for _, c := range coins {
		total = saturatingAdd(total, c.Balance)
	}
	return total
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
