package wallet

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// Output selection errors.
var (
	ErrNoOutputs           = errors.New("no unspent outputs available")
	ErrZeroTarget          = errors.New("target must be positive")
	ErrInsufficientOutputs = errors.New("insufficient funds")
	ErrNoSelection         = errors.New("no output selection satisfies the change constraint")
)

// UTXO is an unspent output owned by the wallet on the UTXO ledger.
type UTXO struct {
	TxID   types.Digest
	Index  uint16
	Amount uint64
}

// OutputSelection holds the result of output selection.
type OutputSelection struct {
	Inputs []UTXO
	Total  uint64
	Change uint64 // Total - target.
}

// SelectOutputs chooses outputs to fund target. It compares two strategies
// and keeps the one leaving less change:
//  1. the smallest single output covering target;
//  2. largest-first accumulation until target is met.
//
// Any non-zero change must be at least minChange, since a change output
// below the storage deposit cannot be created. Pass 0 to disable the check.
func SelectOutputs(utxos []UTXO, target, minChange uint64) (*OutputSelection, error) {
	if target == 0 {
		return nil, ErrZeroTarget
	}

	candidates := make([]UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.Amount > 0 {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoOutputs
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Amount < candidates[j].Amount
	})

	valid := func(s *OutputSelection) bool {
		return s != nil && (s.Change == 0 || s.Change >= minChange)
	}

	var single *OutputSelection
	for _, u := range candidates {
		s := &OutputSelection{Inputs: []UTXO{u}, Total: u.Amount, Change: u.Amount - target}
		if u.Amount >= target && valid(s) {
			single = s
			break
		}
	}

	// Largest first. When the change would be dust keep adding outputs.
	var accum *OutputSelection
	var selected []UTXO
	var total uint64
	for i := len(candidates) - 1; i >= 0; i-- {
		selected = append(selected, candidates[i])
		total = saturatingAdd(total, candidates[i].Amount)
		if total < target {
			continue
		}
		s := &OutputSelection{Inputs: selected, Total: total, Change: total - target}
		if valid(s) {
			accum = s
			break
		}
	}

	switch {
	case single != nil && accum != nil:
		if single.Change <= accum.Change {
			return single, nil
		}
		return accum, nil
	case single != nil:
		return single, nil
	case accum != nil:
		return accum, nil
	}

	have := utxoTotal(candidates)
	if have < target {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientOutputs, target, have)
	}
	return nil, fmt.Errorf("%w: change below %d", ErrNoSelection, minChange)
}

func utxoTotal(utxos []UTXO) uint64 {
	var total uint64
	for _, u := range utxos {
		total = saturatingAdd(total, u.Amount)
	}
	return total
}
