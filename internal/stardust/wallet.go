// Package stardust implements the wallet facade for the Stardust UTXO
// ledger: basic outputs, transaction payloads and blocks submitted through
// the node REST API.
package stardust

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
	"github.com/Klingon-tech/klingnet-wallet/pkg/amount"
	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
	"github.com/Klingon-tech/klingnet-wallet/pkg/ledger"
)

// ErrConflicting is returned when a milestone rejected a submitted
// transaction.
var ErrConflicting = errors.New("transaction conflicting")

// Defaults for the Stardust ledger.
const (
	DefaultDecimals   = 6
	DefaultNetworkKey = "iota_stardust"
)

// MinDustOutput is the balance a send must leave on top of the amount.
var MinDustOutput = amount.MustParse("0.1")

// Config holds the per-network settings of a Wallet.
type Config struct {
	NetworkKey string
	Decimals   uint32
	// ExplorerURL is the explorer base; transactions link to
	// <ExplorerURL>/transaction/<id>. Empty disables links.
	ExplorerURL string
	Poll        wallet.PollPolicy
}

// DefaultConfig returns the defaults for the IOTA Stardust network.
func DefaultConfig() Config {
	return Config{
		NetworkKey: DefaultNetworkKey,
		Decimals:   DefaultDecimals,
		Poll:       wallet.DefaultPollPolicy(),
	}
}

// Wallet implements ledger.Wallet for one Ed25519 key.
type Wallet struct {
	client  *Client
	keys    *wallet.Keystore
	address Address
	journal *Journal
	cfg     Config
	log     zerolog.Logger

	mu   sync.Mutex
	info *NodeInfo
}

var _ ledger.Wallet = (*Wallet)(nil)

// New creates a Wallet. Sent transactions are recorded in journal.
func New(client *Client, keys *wallet.Keystore, journal *Journal, cfg Config) (*Wallet, error) {
	if keys.Account().Scheme != crypto.Ed25519 {
		return nil, fmt.Errorf("stardust wallet needs an ed25519 key, got %s", keys.Account().Scheme)
	}
	addr, err := AddressFromPublicKey(keys.PublicKey())
	if err != nil {
		return nil, err
	}
	if cfg.Decimals == 0 {
		cfg.Decimals = DefaultDecimals
	}
	return &Wallet{
		client:  client,
		keys:    keys,
		address: addr,
		journal: journal,
		cfg:     cfg,
		log:     log.WithNetwork(log.Stardust, cfg.NetworkKey).With().Str("address", addr.String()).Logger(),
	}, nil
}

// nodeInfo fetches protocol parameters once per wallet.
func (w *Wallet) nodeInfo(ctx context.Context) (*NodeInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.info != nil {
		return w.info, nil
	}
	info, err := w.client.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("get node info: %w", err)
	}
	if info.Protocol.Bech32HRP == "" {
		return nil, fmt.Errorf("node info has no bech32 prefix")
	}
	w.log.Debug().
		Str("network", info.Protocol.NetworkName).
		Str("hrp", info.Protocol.Bech32HRP).
		Uint8("protocol", info.Protocol.Version).
		Msg("connected to node")
	w.info = info
	return info, nil
}

// Address returns the bech32 address under the node's prefix.
func (w *Wallet) Address(ctx context.Context) (string, error) {
	info, err := w.nodeInfo(ctx)
	if err != nil {
		return "", err
	}
	return w.address.Bech32(info.Protocol.Bech32HRP)
}

// Balance sums the wallet's unspent basic outputs.
func (w *Wallet) Balance(ctx context.Context) (amount.CryptoAmount, error) {
	bech32, err := w.Address(ctx)
	if err != nil {
		return amount.Zero, err
	}
	unspent, err := w.unspent(ctx, bech32)
	if err != nil {
		return amount.Zero, err
	}
	return amount.Uint64ToDecimal(total(unspent), w.cfg.Decimals)
}

// unspent returns the outputs the wallet's key alone can spend.
func (w *Wallet) unspent(ctx context.Context, bech32 string) ([]Unspent, error) {
	ids, err := w.client.BasicOutputIDs(ctx, bech32)
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	fetched, err := w.client.Outputs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch outputs: %w", err)
	}
	out := make([]Unspent, 0, len(fetched))
	for _, f := range fetched {
		switch {
		case f.Err != nil:
			w.log.Debug().Str("output", f.ID.String()).Err(f.Err).Msg("skipping output")
		case f.Metadata.IsSpent, f.Output.Address != w.address:
		default:
			out = append(out, Unspent{ID: f.ID, Output: f.Output})
		}
	}
	return out, nil
}

func total(unspent []Unspent) uint64 {
	var sum uint64
	for _, u := range unspent {
		if sum+u.Output.Amount < sum {
			return ^uint64(0)
		}
		sum += u.Output.Amount
	}
	return sum
}

// SendAmount transfers intent.Amount to intent.AddressTo, attaching
// intent.Data as tagged data, and waits for a milestone to reference the
// block.
func (w *Wallet) SendAmount(ctx context.Context, intent *ledger.TransactionIntent) (string, error) {
	if err := intent.Validate(); err != nil {
		return "", err
	}
	recipient, err := ParseAddress(intent.AddressTo, "")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrInvalidAddress, err)
	}
	value, err := intent.Amount.ToUint64(w.cfg.Decimals)
	if err != nil {
		return "", fmt.Errorf("convert amount: %w", err)
	}
	dust, err := MinDustOutput.ToUint64(w.cfg.Decimals)
	if err != nil {
		return "", fmt.Errorf("convert dust threshold: %w", err)
	}

	info, err := w.nodeInfo(ctx)
	if err != nil {
		return "", err
	}
	hrp := info.Protocol.Bech32HRP
	if _, err := ParseAddress(intent.AddressTo, hrp); err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrInvalidAddress, err)
	}
	sender, err := w.address.Bech32(hrp)
	if err != nil {
		return "", err
	}

	unspent, err := w.unspent(ctx, sender)
	if err != nil {
		return "", err
	}
	balance := total(unspent)
	if required := value + dust; required < value || balance < required {
		return "", &ledger.InsufficientBalanceError{Required: required, Found: balance}
	}

	ess, sel, err := BuildTransfer(&Transfer{
		NetworkID: NetworkID(info.Protocol.NetworkName),
		From:      w.address,
		To:        recipient,
		Amount:    value,
		Data:      intent.Data,
		Rent:      info.Protocol.Rent,
	}, unspent)
	if err != nil {
		return "", fmt.Errorf("build transfer: %w", err)
	}
	w.log.Debug().Int("inputs", len(sel.Inputs)).Uint64("total", sel.Total).Uint64("change", sel.Change).Msg("selected outputs")

	payload, err := SignEssence(ess, w.keys.Signer())
	if err != nil {
		return "", err
	}
	txID, err := payload.ID()
	if err != nil {
		return "", err
	}
	tips, err := w.client.Tips(ctx)
	if err != nil {
		return "", fmt.Errorf("get tips: %w", err)
	}
	if len(tips) > MaxParents {
		tips = tips[:MaxParents]
	}

	start := time.Now()
	blockID, err := w.client.SubmitBlock(ctx, &Block{ProtocolVersion: info.Protocol.Version, Parents: tips, Payload: payload})
	if err != nil {
		return "", fmt.Errorf("submit block: %w", err)
	}
	id := HexID(txID)
	entry := &JournalEntry{
		TxID:      id,
		BlockID:   HexID(blockID),
		Sender:    sender,
		Receiver:  intent.AddressTo,
		Amount:    intent.Amount,
		Status:    ledger.TxPending,
		Timestamp: start.UTC(),
	}
	if err := w.journal.Put(entry); err != nil {
		w.log.Error().Err(err).Str("tx", id).Msg("failed to record transaction")
	}
	w.log.Info().Str("tx", id).Str("block", entry.BlockID).Msg("transaction submitted")

	meta, err := wallet.WaitFor(ctx, w.cfg.Poll, func(ctx context.Context) (*BlockMetadata, bool) {
		m, err := w.client.BlockMetadata(ctx, blockID)
		return m, err == nil && m.Referenced()
	})
	switch {
	case errors.Is(err, wallet.ErrPollTimeout):
		waited := time.Since(start)
		w.log.Warn().Str("tx", id).Dur("waited", waited).Msg("transaction not confirmed")
		return id, &ledger.ConfirmationError{TxID: id, Waited: waited}
	case err != nil:
		return id, fmt.Errorf("wait for %s: %w", id, err)
	}

	w.record(entry, meta)
	if entry.Status == ledger.TxConflicting {
		w.log.Warn().Str("tx", id).Msg("transaction conflicting")
		return id, fmt.Errorf("%w: %s", ErrConflicting, id)
	}
	w.log.Info().Str("tx", id).Dur("took", time.Since(start)).Msg("transaction confirmed")
	return id, nil
}

// record applies block metadata to entry and persists it.
func (w *Wallet) record(entry *JournalEntry, meta *BlockMetadata) {
	entry.Status = inclusionStatus(meta)
	entry.Milestone = meta.ReferencedByMilestoneIndex
	if meta.BlockID != "" {
		entry.BlockID = meta.BlockID
	}
	if err := w.journal.Put(entry); err != nil {
		w.log.Error().Err(err).Str("tx", entry.TxID).Msg("failed to record transaction")
	}
}

func inclusionStatus(m *BlockMetadata) ledger.TxStatus {
	switch m.LedgerInclusionState {
	case InclusionIncluded:
		return ledger.TxConfirmed
	case InclusionConflicting:
		return ledger.TxConflicting
	default:
		return ledger.TxPending
	}
}

// WalletTxList returns ids of sent transactions, newest first, for page
// start of size limit.
func (w *Wallet) WalletTxList(_ context.Context, start, limit int) ([]string, error) {
	if start < 0 || limit <= 0 {
		return []string{}, nil
	}
	entries, err := w.journal.List()
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	skip := start * limit
	if skip/limit != start || skip >= len(entries) {
		return []string{}, nil
	}
	entries = entries[skip:]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.TxID
	}
	return ids, nil
}

// WalletTx returns a sent transaction, refreshing a pending status from
// the node.
func (w *Wallet) WalletTx(ctx context.Context, id string) (*ledger.WalletTransaction, error) {
	txID, err := ParseHexID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidTransaction, err)
	}
	id = HexID(txID)
	entry, err := w.journal.Get(id)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrTransactionNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if entry.Status == ledger.TxPending {
		meta, err := w.client.IncludedBlockMetadata(ctx, txID)
		if rpcclient.IsNotFound(err) && entry.BlockID != "" {
			blockID, perr := ParseHexID(entry.BlockID)
			if perr != nil {
				err = perr
			} else {
				meta, err = w.client.BlockMetadata(ctx, blockID)
			}
		}
		switch {
		case err != nil:
			w.log.Debug().Err(err).Str("tx", id).Msg("status refresh failed")
		case meta.Referenced():
			w.record(entry, meta)
		}
	}

	fee := amount.Zero
	out := &ledger.WalletTransaction{
		Date:            entry.Timestamp,
		TransactionHash: entry.TxID,
		Sender:          entry.Sender,
		Receiver:        entry.Receiver,
		Amount:          entry.Amount,
		NetworkKey:      w.cfg.NetworkKey,
		Status:          entry.Status,
		GasFee:          &fee,
		// The journal only holds transactions this wallet sent.
		IsSender: true,
	}
	if entry.Milestone > 0 {
		out.BlockNumberHash = &ledger.BlockRef{Number: uint64(entry.Milestone), Hash: entry.BlockID}
	}
	if w.cfg.ExplorerURL != "" {
		out.ExplorerURL = strings.TrimRight(w.cfg.ExplorerURL, "/") + "/transaction/" + entry.TxID
	}
	return out, nil
}

// EstimateGasCost reports zero: the ledger charges no fees.
func (w *Wallet) EstimateGasCost(context.Context, *ledger.TransactionIntent) (*ledger.GasCostEstimation, error) {
	return ledger.ZeroGasCost(), nil
}
