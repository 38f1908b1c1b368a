package stardust

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
)

// ErrBelowDeposit is returned when a transfer amount cannot cover the
// storage deposit of the output it creates.
var ErrBelowDeposit = errors.New("amount below storage deposit")

// DataTag tags the payload attached to every transfer.
const DataTag = "data"

// Unspent is an output the wallet may consume.
type Unspent struct {
	ID     OutputID
	Output *BasicOutput
}

// Transfer describes one payment from the wallet.
type Transfer struct {
	NetworkID uint64
	From      Address
	To        Address
	Amount    uint64
	Data      []byte
	Rent      RentStructure
}

// BuildTransfer selects inputs from unspent and assembles the essence: the
// recipient output, a change output when anything is left over, and a
// tagged-data payload.
func BuildTransfer(t *Transfer, unspent []Unspent) (*Essence, *wallet.OutputSelection, error) {
	recipient := &BasicOutput{Amount: t.Amount, Address: t.To}
	minOut, err := t.Rent.MinDeposit(recipient)
	if err != nil {
		return nil, nil, err
	}
	if t.Amount < minOut {
		return nil, nil, fmt.Errorf("%w: %d < %d", ErrBelowDeposit, t.Amount, minOut)
	}
	minChange, err := t.Rent.MinDeposit(&BasicOutput{Address: t.From})
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[OutputID]*BasicOutput, len(unspent))
	utxos := make([]wallet.UTXO, len(unspent))
	for i, u := range unspent {
		byID[u.ID] = u.Output
		utxos[i] = wallet.UTXO{TxID: u.ID.TxID, Index: u.ID.Index, Amount: u.Output.Amount}
	}
	sel, err := wallet.SelectOutputs(utxos, t.Amount, minChange)
	if err != nil {
		return nil, nil, err
	}
	if len(sel.Inputs) > MaxInputs {
		return nil, nil, fmt.Errorf("%w: %d inputs needed, max %d", ErrSerialize, len(sel.Inputs), MaxInputs)
	}

	ess := &Essence{
		NetworkID: t.NetworkID,
		Outputs:   []*BasicOutput{recipient},
		Payload:   &TaggedData{Tag: []byte(DataTag), Data: t.Data},
	}
	consumed := make([]*BasicOutput, len(sel.Inputs))
	for i, in := range sel.Inputs {
		id := OutputID{TxID: in.TxID, Index: in.Index}
		ess.Inputs = append(ess.Inputs, id)
		consumed[i] = byID[id]
	}
	if sel.Change > 0 {
		ess.Outputs = append(ess.Outputs, &BasicOutput{Amount: sel.Change, Address: t.From})
	}
	if ess.InputsCommitment, err = InputsCommitment(consumed); err != nil {
		return nil, nil, err
	}
	return ess, sel, nil
}

// SignEssence signs ess once. Every input belongs to the signer, so the
// remaining inputs reference the first unlock.
func SignEssence(ess *Essence, signer crypto.Signer) (*TransactionPayload, error) {
	if signer.Scheme() != crypto.Ed25519 {
		return nil, fmt.Errorf("stardust needs an ed25519 key, got %s", signer.Scheme())
	}
	if len(ess.Inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs", ErrSerialize)
	}
	msg, err := ess.SigningHash()
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(msg[:])
	if err != nil {
		return nil, fmt.Errorf("sign essence: %w", err)
	}
	unlocks := make([]Unlock, len(ess.Inputs))
	unlocks[0] = Unlock{PublicKey: sig.PublicKey, Signature: sig.Sig}
	return &TransactionPayload{Essence: ess, Unlocks: unlocks}, nil
}
