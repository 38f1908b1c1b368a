// Package rebased implements the wallet facade for the Move-object ledger
// over its JSON-RPC API.
package rebased

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/Klingon-tech/klingnet-wallet/pkg/tx"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// BigUint64 is a u64 the node encodes as a decimal string. Plain JSON
// numbers are accepted too.
type BigUint64 uint64

// MarshalJSON encodes the value as a decimal string.
func (n BigUint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(n), 10))
}

// UnmarshalJSON decodes a string or number.
func (n *BigUint64) UnmarshalJSON(data []byte) error {
	s, err := unquoteNumber(data)
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid u64 %q: %w", s, err)
	}
	*n = BigUint64(v)
	return nil
}

// BigInt is a signed 128-bit quantity encoded as a decimal string.
type BigInt struct {
	big.Int
}

// NewBigInt returns v as a BigInt.
func NewBigInt(v int64) BigInt {
	var b BigInt
	b.SetInt64(v)
	return b
}

// MarshalJSON encodes the value as a decimal string.
func (b BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON decodes a string or number.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	s, err := unquoteNumber(data)
	if err != nil {
		return err
	}
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("invalid integer %q", s)
	}
	return nil
}

func unquoteNumber(data []byte) (string, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(data), nil
}

// Coin is a coin object returned by iotax_getCoins.
type Coin struct {
	CoinType            string                  `json:"coinType"`
	CoinObjectID        types.ObjectID          `json:"coinObjectId"`
	Version             BigUint64               `json:"version"`
	Digest              types.ObjectDigest      `json:"digest"`
	Balance             BigUint64               `json:"balance"`
	PreviousTransaction types.TransactionDigest `json:"previousTransaction"`
}

// Ref returns the coin's object reference.
func (c *Coin) Ref() types.ObjectRef {
	return types.ObjectRef{
		ObjectID: c.CoinObjectID,
		Version:  types.SequenceNumber(c.Version),
		Digest:   c.Digest,
	}
}

// CoinPage is one page of iotax_getCoins.
type CoinPage struct {
	Data        []Coin          `json:"data"`
	NextCursor  *types.ObjectID `json:"nextCursor"`
	HasNextPage bool            `json:"hasNextPage"`
}

// Balance is the result of iotax_getBalance.
type Balance struct {
	CoinType        string `json:"coinType"`
	CoinObjectCount int    `json:"coinObjectCount"`
	TotalBalance    BigInt `json:"totalBalance"`
}

// ResponseOptions selects the fields of a transaction block response.
type ResponseOptions struct {
	ShowInput          bool `json:"showInput,omitempty"`
	ShowRawInput       bool `json:"showRawInput,omitempty"`
	ShowEffects        bool `json:"showEffects,omitempty"`
	ShowEvents         bool `json:"showEvents,omitempty"`
	ShowObjectChanges  bool `json:"showObjectChanges,omitempty"`
	ShowBalanceChanges bool `json:"showBalanceChanges,omitempty"`
	ShowRawEffects     bool `json:"showRawEffects,omitempty"`
}

// FullContent requests every field.
func FullContent() *ResponseOptions {
	return &ResponseOptions{
		ShowInput:          true,
		ShowRawInput:       true,
		ShowEffects:        true,
		ShowEvents:         true,
		ShowObjectChanges:  true,
		ShowBalanceChanges: true,
		ShowRawEffects:     true,
	}
}

// ExecuteRequestType tells the node how long to hold the execute call.
type ExecuteRequestType string

const (
	WaitForEffectsCert    ExecuteRequestType = "WaitForEffectsCert"
	WaitForLocalExecution ExecuteRequestType = "WaitForLocalExecution"
)

// ExecutionStatus is "success" or "failure" with an error message.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// OK reports whether execution succeeded.
func (s ExecutionStatus) OK() bool { return s.Status == "success" }

// GasUsed is the gas cost summary in its JSON form.
type GasUsed struct {
	ComputationCost         BigUint64 `json:"computationCost"`
	StorageCost             BigUint64 `json:"storageCost"`
	StorageRebate           BigUint64 `json:"storageRebate"`
	NonRefundableStorageFee BigUint64 `json:"nonRefundableStorageFee"`
}

// Summary converts g to a tx.GasCostSummary.
func (g GasUsed) Summary() tx.GasCostSummary {
	return tx.GasCostSummary{
		ComputationCost:         uint64(g.ComputationCost),
		StorageCost:             uint64(g.StorageCost),
		StorageRebate:           uint64(g.StorageRebate),
		NonRefundableStorageFee: uint64(g.NonRefundableStorageFee),
	}
}

// Effects are the execution effects of a transaction. Only the fields the
// wallet reads are decoded.
type Effects struct {
	MessageVersion string          `json:"messageVersion,omitempty"`
	Status         ExecutionStatus `json:"status"`
	GasUsed        GasUsed         `json:"gasUsed"`
}

// OwnerKind names the ownership variants of a ledger object.
type OwnerKind string

const (
	OwnerAddress   OwnerKind = "AddressOwner"
	OwnerObject    OwnerKind = "ObjectOwner"
	OwnerShared    OwnerKind = "Shared"
	OwnerImmutable OwnerKind = "Immutable"
)

// Owner is the owner of an object or balance change. Address is set for
// the AddressOwner and ObjectOwner kinds.
type Owner struct {
	Kind    OwnerKind
	Address types.Address
}

// HasAddress reports whether the owner is an account or object address.
func (o Owner) HasAddress() bool {
	return o.Kind == OwnerAddress || o.Kind == OwnerObject
}

// MarshalJSON encodes the owner in the node's externally tagged form.
func (o Owner) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OwnerImmutable:
		return json.Marshal(string(OwnerImmutable))
	case OwnerAddress, OwnerObject:
		return json.Marshal(map[OwnerKind]types.Address{o.Kind: o.Address})
	case OwnerShared:
		return json.Marshal(map[OwnerKind]map[string]uint64{o.Kind: {"initial_shared_version": 0}})
	}
	return nil, fmt.Errorf("unknown owner kind %q", o.Kind)
}

// UnmarshalJSON decodes "Immutable" or a single-key object.
func (o *Owner) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if OwnerKind(name) != OwnerImmutable {
			return fmt.Errorf("unknown owner %q", name)
		}
		*o = Owner{Kind: OwnerImmutable}
		return nil
	}
	var tagged map[OwnerKind]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decode owner: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("owner must have one variant, got %d", len(tagged))
	}
	for kind, raw := range tagged {
		switch kind {
		case OwnerAddress, OwnerObject:
			var addr types.Address
			if err := json.Unmarshal(raw, &addr); err != nil {
				return fmt.Errorf("decode %s: %w", kind, err)
			}
			*o = Owner{Kind: kind, Address: addr}
		case OwnerShared:
			*o = Owner{Kind: OwnerShared}
		default:
			return fmt.Errorf("unknown owner kind %q", kind)
		}
	}
	return nil
}

// BalanceChange is the net change of one coin type for one owner. A
// negative amount is spent, a positive amount received.
type BalanceChange struct {
	Owner    Owner  `json:"owner"`
	CoinType string `json:"coinType"`
	Amount   BigInt `json:"amount"`
}

// TransactionBlockResponse is returned by the execute, get and query calls.
// Optional sections are nil unless requested.
type TransactionBlockResponse struct {
	Digest         types.TransactionDigest `json:"digest"`
	Effects        *Effects                `json:"effects,omitempty"`
	BalanceChanges []BalanceChange         `json:"balanceChanges,omitempty"`
	TimestampMs    *BigUint64              `json:"timestampMs,omitempty"`
	Checkpoint     *BigUint64              `json:"checkpoint,omitempty"`
	Errors         []string                `json:"errors,omitempty"`
}

// DryRunResponse is the result of iota_dryRunTransactionBlock.
type DryRunResponse struct {
	Effects        Effects         `json:"effects"`
	BalanceChanges []BalanceChange `json:"balanceChanges,omitempty"`
}

// Checkpoint is the header of a checkpoint.
type Checkpoint struct {
	Epoch          BigUint64              `json:"epoch"`
	SequenceNumber BigUint64              `json:"sequenceNumber"`
	Digest         types.CheckpointDigest `json:"digest"`
	TimestampMs    BigUint64              `json:"timestampMs,omitempty"`
}

// TransactionFilter selects transactions in iotax_queryTransactionBlocks.
// Exactly one field is set.
type TransactionFilter struct {
	FromAddress *types.Address `json:"FromAddress,omitempty"`
	ToAddress   *types.Address `json:"ToAddress,omitempty"`
}

// FromAddress filters by sender.
func FromAddress(a types.Address) *TransactionFilter { return &TransactionFilter{FromAddress: &a} }

// ToAddress filters by recipient.
func ToAddress(a types.Address) *TransactionFilter { return &TransactionFilter{ToAddress: &a} }

// TransactionQuery is the query argument of iotax_queryTransactionBlocks.
type TransactionQuery struct {
	Filter  *TransactionFilter `json:"filter,omitempty"`
	Options *ResponseOptions   `json:"options,omitempty"`
}

// TransactionBlocksPage is one page of iotax_queryTransactionBlocks.
type TransactionBlocksPage struct {
	Data        []TransactionBlockResponse `json:"data"`
	NextCursor  *types.TransactionDigest   `json:"nextCursor"`
	HasNextPage bool                       `json:"hasNextPage"`
}
