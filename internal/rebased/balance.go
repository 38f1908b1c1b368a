package rebased

import (
	"fmt"
	"math/big"
)

// transferFlow is what a transaction's balance changes say about a
// transfer. Amounts are in base units.
type transferFlow struct {
	sender   string
	receiver string
	amount   *big.Int
	fee      *big.Int
}

// analyzeBalanceChanges reads a transfer from balance changes. The first
// negative change is the sender, its magnitude what was spent. The first
// positive change is the receiver and the amount; the fee is the rest of
// the spend. Without a positive change the transaction is a self-send: the
// sender is also the receiver, the amount is zero and the whole spend is
// fee. Without a negative change nothing is known.
func analyzeBalanceChanges(changes []BalanceChange) (transferFlow, error) {
	flow := transferFlow{amount: new(big.Int), fee: new(big.Int)}

	var spent, received *BalanceChange
	for i := range changes {
		switch sign := changes[i].Amount.Sign(); {
		case sign < 0 && spent == nil:
			spent = &changes[i]
		case sign > 0 && received == nil:
			received = &changes[i]
		}
	}
	if spent == nil {
		return flow, nil
	}

	sender, err := ownerAddress(spent.Owner)
	if err != nil {
		return flow, err
	}
	total := new(big.Int).Neg(&spent.Amount.Int)
	flow.sender = sender

	if received == nil {
		flow.receiver = sender
		flow.fee = total
		return flow, nil
	}
	if flow.receiver, err = ownerAddress(received.Owner); err != nil {
		return flow, err
	}
	flow.amount = new(big.Int).Set(&received.Amount.Int)
	if fee := new(big.Int).Sub(total, flow.amount); fee.Sign() > 0 {
		flow.fee = fee
	}
	return flow, nil
}

func ownerAddress(o Owner) (string, error) {
	if !o.HasAddress() {
		return "", fmt.Errorf("balance change owned by %s is not supported", o.Kind)
	}
	return o.Address.String(), nil
}
