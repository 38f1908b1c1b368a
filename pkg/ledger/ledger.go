// Package ledger defines the wallet facade shared by every backend ledger.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/Klingon-tech/klingnet-wallet/pkg/amount"
)

// Wallet is implemented once per backend ledger. Implementations are safe
// for concurrent use; concurrent sends may race for the same coins and the
// ledger rejects the loser.
type Wallet interface {
	// Address returns the wallet's receiving address in the ledger's
	// display form.
	Address(ctx context.Context) (string, error)
	// Balance returns the spendable balance.
	Balance(ctx context.Context) (amount.CryptoAmount, error)
	// SendAmount builds, signs and submits a transfer, then waits for
	// inclusion. A *ConfirmationError still carries the transaction id.
	SendAmount(ctx context.Context, intent *TransactionIntent) (string, error)
	// WalletTxList returns transaction ids, newest first, for page start
	// of size limit.
	WalletTxList(ctx context.Context, start, limit int) ([]string, error)
	// WalletTx returns details for one transaction.
	WalletTx(ctx context.Context, id string) (*WalletTransaction, error)
	// EstimateGasCost runs the send path without submitting.
	EstimateGasCost(ctx context.Context, intent *TransactionIntent) (*GasCostEstimation, error)
}

// TransactionIntent is a request to send Amount to AddressTo. Data is an
// optional payload; ledgers without a data field ignore it.
type TransactionIntent struct {
	AddressTo string
	Amount    amount.CryptoAmount
	Data      []byte
}

// Validate checks the intent before any network call.
func (i *TransactionIntent) Validate() error {
	if strings.TrimSpace(i.AddressTo) == "" {
		return fmt.Errorf("%w: empty recipient", ErrInvalidAddress)
	}
	if i.Amount.IsZero() {
		return ErrZeroAmount
	}
	return nil
}

// GasCostEstimation describes the cost of a transaction. Fee fields are
// 128-bit quantities; feeless or fixed-price ledgers report zero.
type GasCostEstimation struct {
	MaxFeePerGas         *big.Int `json:"max_fee_per_gas"`
	MaxPriorityFeePerGas *big.Int `json:"max_priority_fee_per_gas"`
	GasLimit             uint64   `json:"gas_limit"`
}

// ZeroGasCost returns an estimation with every field zero.
func ZeroGasCost() *GasCostEstimation {
	return &GasCostEstimation{MaxFeePerGas: new(big.Int), MaxPriorityFeePerGas: new(big.Int)}
}

// TxStatus is the backend-agnostic state of a submitted transaction.
type TxStatus uint8

const (
	TxPending TxStatus = iota
	TxConfirmed
	TxConflicting
)

func (s TxStatus) String() string {
	switch s {
	case TxPending:
		return "Pending"
	case TxConfirmed:
		return "Confirmed"
	case TxConflicting:
		return "Conflicting"
	default:
		return fmt.Sprintf("TxStatus(%d)", uint8(s))
	}
}

// MarshalJSON encodes the status name.
func (s TxStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *TxStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "Pending":
		*s = TxPending
	case "Confirmed":
		*s = TxConfirmed
	case "Conflicting":
		*s = TxConflicting
	default:
		return fmt.Errorf("unknown tx status %q", name)
	}
	return nil
}

// BlockRef locates a transaction: a block or checkpoint number and hash.
type BlockRef struct {
	Number uint64 `json:"number"`
	Hash   string `json:"hash"`
}

// WalletTransaction is a ledger transaction as seen by the wallet.
type WalletTransaction struct {
	Date            time.Time            `json:"date"`
	BlockNumberHash *BlockRef            `json:"block_number_hash,omitempty"`
	TransactionHash string               `json:"transaction_hash"`
	Sender          string               `json:"sender"`
	Receiver        string               `json:"receiver"`
	Amount          amount.CryptoAmount  `json:"amount"`
	NetworkKey      string               `json:"network_key"`
	Status          TxStatus             `json:"status"`
	ExplorerURL     string               `json:"explorer_url,omitempty"`
	GasFee          *amount.CryptoAmount `json:"gas_fee,omitempty"`
	IsSender        bool                 `json:"is_sender"`
}

// SortByDate orders txs newest first. Equal dates keep their order.
func SortByDate(txs []*WalletTransaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
}
