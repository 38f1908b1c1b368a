package ledger

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Klingon-tech/klingnet-wallet/pkg/amount"
)

func TestSortByDate(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	txs := []*WalletTransaction{
		{TransactionHash: "old", Date: base},
		{TransactionHash: "new", Date: base.Add(2 * time.Hour)},
		{TransactionHash: "mid", Date: base.Add(time.Hour)},
		{TransactionHash: "mid2", Date: base.Add(time.Hour)},
	}
	SortByDate(txs)
	want := []string{"new", "mid", "mid2", "old"}
	for i, tx := range txs {
		if tx.TransactionHash != want[i] {
			t.Errorf("txs[%d] = %s, want %s", i, tx.TransactionHash, want[i])
		}
	}
}

func TestTxStatus_JSON(t *testing.T) {
	for _, s := range []TxStatus{TxPending, TxConfirmed, TxConflicting} {
		b, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("Marshal(%s): %v", s, err)
		}
		var got TxStatus
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", b, err)
		}
		if got != s {
			t.Errorf("round trip %s = %s", s, got)
		}
	}
	var s TxStatus
	if err := json.Unmarshal([]byte(`"Lost"`), &s); err == nil {
		t.Error("Unmarshal(unknown status) should fail")
	}
}

func TestErrors_Unwrap(t *testing.T) {
	var err error = &InsufficientBalanceError{Required: 7, Found: 4}
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Error("InsufficientBalanceError does not match ErrInsufficientBalance")
	}
	var ibe *InsufficientBalanceError
	if !errors.As(err, &ibe) || ibe.Required != 7 || ibe.Found != 4 {
		t.Errorf("errors.As() = %+v", ibe)
	}

	err = &ConfirmationError{TxID: "abc", Waited: time.Minute}
	if !errors.Is(err, ErrConfirmationTimeout) {
		t.Error("ConfirmationError does not match ErrConfirmationTimeout")
	}
	var ce *ConfirmationError
	if !errors.As(err, &ce) || ce.TxID != "abc" {
		t.Errorf("errors.As() = %+v", ce)
	}
}

func TestTransactionIntent_Validate(t *testing.T) {
	ok := &TransactionIntent{AddressTo: "0x1", Amount: amount.MustParse("1.5")}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	noAddr := &TransactionIntent{Amount: amount.MustParse("1")}
	if err := noAddr.Validate(); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Validate(no address) = %v, want ErrInvalidAddress", err)
	}
	zero := &TransactionIntent{AddressTo: "0x1"}
	if err := zero.Validate(); !errors.Is(err, ErrZeroAmount) {
		t.Errorf("Validate(zero) = %v, want ErrZeroAmount", err)
	}
}

func TestZeroGasCost(t *testing.T) {
	g := ZeroGasCost()
	if g.GasLimit != 0 || g.MaxFeePerGas.Sign() != 0 || g.MaxPriorityFeePerGas.Sign() != 0 {
		t.Errorf("ZeroGasCost() = %+v", g)
	}
}
