package rebased

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
	"github.com/Klingon-tech/klingnet-wallet/pkg/amount"
	"github.com/Klingon-tech/klingnet-wallet/pkg/ledger"
	"github.com/Klingon-tech/klingnet-wallet/pkg/tx"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// Defaults for the Move-object ledger.
const (
	DefaultCoinType   = "0x2::iota::IOTA"
	DefaultDecimals   = 9
	DefaultNetworkKey = "iota_rebased_testnet"

	// historyPageSize is the number of transactions fetched per direction.
	historyPageSize = 25
)

// Config holds the per-network settings of a Wallet.
type Config struct {
	NetworkKey string
	CoinType   string
	Decimals   uint32
	GasBudget  uint64
	// ExplorerURL is the explorer base; transactions link to
	// <ExplorerURL>/txblock/<digest>. Empty disables links.
	ExplorerURL string
	Poll        wallet.PollPolicy
}

// DefaultConfig returns the testnet defaults.
func DefaultConfig() Config {
	return Config{
		NetworkKey: DefaultNetworkKey,
		CoinType:   DefaultCoinType,
		Decimals:   DefaultDecimals,
		GasBudget:  tx.DefaultGasBudget,
		Poll:       wallet.DefaultPollPolicy(),
	}
}

// Wallet implements ledger.Wallet for one key on the Move-object ledger.
type Wallet struct {
	client  *Client
	keys    *wallet.Keystore
	address types.Address
	cfg     Config
	log     zerolog.Logger
}

var _ ledger.Wallet = (*Wallet)(nil)

// New creates a Wallet sending from keys' address.
func New(client *Client, keys *wallet.Keystore, cfg Config) *Wallet {
	if cfg.GasBudget == 0 {
		cfg.GasBudget = tx.DefaultGasBudget
	}
	if cfg.CoinType == "" {
		cfg.CoinType = DefaultCoinType
	}
	addr := keys.Address()
	return &Wallet{
		client:  client,
		keys:    keys,
		address: addr,
		cfg:     cfg,
		log:     log.WithNetwork(log.Rebased, cfg.NetworkKey).With().Str("address", addr.String()).Logger(),
	}
}

// Address returns the 0x-prefixed account address.
func (w *Wallet) Address(context.Context) (string, error) {
	return w.address.String(), nil
}

// Balance returns the total balance of the configured coin type.
func (w *Wallet) Balance(ctx context.Context) (amount.CryptoAmount, error) {
	bal, err := w.client.Balance(ctx, w.address, w.cfg.CoinType)
	if err != nil {
		return amount.Zero, fmt.Errorf("get balance: %w", err)
	}
	return amount.FixedToDecimal(&bal.TotalBalance.Int, w.cfg.Decimals)
}

// SendAmount transfers intent.Amount to intent.AddressTo and waits for the
// node to report the transaction. The intent's Data has no place in a
// transfer on this ledger and is ignored.
func (w *Wallet) SendAmount(ctx context.Context, intent *ledger.TransactionIntent) (string, error) {
	signed, err := w.prepare(ctx, intent)
	if err != nil {
		return "", err
	}
	txBytes, sigs, err := signed.TxBytesAndSignatures()
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := w.client.ExecuteTransactionBlock(ctx, txBytes, sigs, &ResponseOptions{ShowEffects: true}, WaitForEffectsCert)
	if err != nil {
		return "", fmt.Errorf("execute transaction: %w", err)
	}
	digest := resp.Digest
	w.log.Info().Str("tx", digest.String()).Msg("transaction submitted")
	if len(resp.Errors) > 0 {
		w.log.Warn().Str("tx", digest.String()).Strs("errors", resp.Errors).Msg("node reported errors")
	}

	_, err = wallet.WaitFor(ctx, w.cfg.Poll, func(ctx context.Context) (*TransactionBlockResponse, bool) {
		r, err := w.client.TransactionBlock(ctx, digest, nil)
		return r, err == nil
	})
	switch {
	case errors.Is(err, wallet.ErrPollTimeout):
		waited := time.Since(start)
		w.log.Warn().Str("tx", digest.String()).Dur("waited", waited).Msg("transaction not confirmed")
		return digest.String(), &ledger.ConfirmationError{TxID: digest.String(), Waited: waited}
	case err != nil:
		return digest.String(), fmt.Errorf("wait for %s: %w", digest, err)
	}
	w.log.Info().Str("tx", digest.String()).Dur("took", time.Since(start)).Msg("transaction confirmed")
	return digest.String(), nil
}

// EstimateGasCost dry-runs the transfer and reports computation plus
// storage cost net of the storage rebate. This ledger has no per-gas fee
// market so both fee fields are zero.
func (w *Wallet) EstimateGasCost(ctx context.Context, intent *ledger.TransactionIntent) (*ledger.GasCostEstimation, error) {
	signed, err := w.prepare(ctx, intent)
	if err != nil {
		return nil, err
	}
	txBytes, _, err := signed.TxBytesAndSignatures()
	if err != nil {
		return nil, err
	}
	dry, err := w.client.DryRunTransactionBlock(ctx, txBytes)
	if err != nil {
		return nil, fmt.Errorf("dry run: %w", err)
	}
	used := dry.Effects.GasUsed.Summary().GasUsed()
	w.log.Debug().Uint64("gas_used", used).Msg("estimated gas")

	est := ledger.ZeroGasCost()
	est.GasLimit = used
	return est, nil
}

// prepare converts, funds, builds and signs a transfer. Input errors are
// reported before any network call.
func (w *Wallet) prepare(ctx context.Context, intent *ledger.TransactionIntent) (*tx.SignedTransaction, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}
	recipient, err := types.ParseAddress(intent.AddressTo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidAddress, err)
	}
	value, err := intent.Amount.ToUint64(w.cfg.Decimals)
	if err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}

	listed, err := w.client.AllCoins(ctx, w.address, w.cfg.CoinType)
	if err != nil {
		return nil, fmt.Errorf("list coins: %w", err)
	}
	coins := make([]wallet.Coin, len(listed))
	for i := range listed {
		coins[i] = wallet.Coin{Ref: listed[i].Ref(), Balance: uint64(listed[i].Balance)}
	}

	sel, err := wallet.SelectGasCoins(coins, value, w.cfg.GasBudget)
	if err != nil {
		return nil, err
	}
	w.log.Debug().
		Str("gas_coin", sel.Gas.Ref.ObjectID.String()).
		Int("merged", len(sel.Merge)).
		Uint64("total", sel.Total).
		Msg("selected coins")

	b := tx.NewBuilder()
	if err := wallet.FundTransfer(b, sel, recipient, value); err != nil {
		return nil, fmt.Errorf("build transfer: %w", err)
	}
	pt, err := b.Finish()
	if err != nil {
		return nil, err
	}

	price, err := w.client.ReferenceGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("get gas price: %w", err)
	}
	data := tx.NewProgrammable(w.address, sel.GasPayment(), pt, w.cfg.GasBudget, price)
	return tx.Sign(data, w.keys.Signer())
}

// WalletTxList returns digests of transactions sent from or to the wallet,
// newest first, for page start of size limit.
func (w *Wallet) WalletTxList(ctx context.Context, start, limit int) ([]string, error) {
	if start < 0 || limit <= 0 {
		return []string{}, nil
	}
	var from, to *TransactionBlocksPage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		from, err = w.client.QueryTransactionBlocks(gctx, TransactionQuery{Filter: FromAddress(w.address), Options: &ResponseOptions{}}, nil, historyPageSize, true)
		return err
	})
	g.Go(func() error {
		var err error
		to, err = w.client.QueryTransactionBlocks(gctx, TransactionQuery{Filter: ToAddress(w.address), Options: &ResponseOptions{}}, nil, historyPageSize, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	seen := make(map[types.TransactionDigest]bool, len(from.Data)+len(to.Data))
	var ids []string
	for _, page := range []*TransactionBlocksPage{from, to} {
		for _, t := range page.Data {
			if seen[t.Digest] {
				continue
			}
			seen[t.Digest] = true
			ids = append(ids, t.Digest.String())
		}
	}
	return paginate(ids, start, limit), nil
}

// WalletTx returns the details of transaction id.
func (w *Wallet) WalletTx(ctx context.Context, id string) (*ledger.WalletTransaction, error) {
	digest, err := types.ParseTransactionDigest(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidTransaction, err)
	}
	resp, err := w.client.TransactionBlock(ctx, digest, FullContent())
	if rpcclient.IsCode(err, rpcclient.CodeInvalidParams) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrTransactionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	out := &ledger.WalletTransaction{
		Date:            time.Unix(0, 0).UTC(),
		TransactionHash: id,
		NetworkKey:      w.cfg.NetworkKey,
		Status:          statusOf(resp.Effects),
	}
	if resp.TimestampMs != nil {
		out.Date = time.UnixMilli(int64(*resp.TimestampMs)).UTC()
	}
	if resp.Checkpoint != nil {
		cp, err := w.client.Checkpoint(ctx, uint64(*resp.Checkpoint))
		if err != nil {
			return nil, fmt.Errorf("get checkpoint %d: %w", *resp.Checkpoint, err)
		}
		out.BlockNumberHash = &ledger.BlockRef{Number: uint64(*resp.Checkpoint), Hash: cp.Digest.String()}
	}
	if w.cfg.ExplorerURL != "" {
		out.ExplorerURL = strings.TrimRight(w.cfg.ExplorerURL, "/") + "/txblock/" + id
	}

	flow, err := analyzeBalanceChanges(resp.BalanceChanges)
	if err != nil {
		return nil, err
	}
	out.Sender, out.Receiver = flow.sender, flow.receiver
	if out.Amount, err = amount.FixedToDecimal(flow.amount, w.cfg.Decimals); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	fee, err := amount.FixedToDecimal(flow.fee, w.cfg.Decimals)
	if err != nil {
		return nil, fmt.Errorf("convert fee: %w", err)
	}
	out.GasFee = &fee
	out.IsSender = out.Sender == w.address.String()
	return out, nil
}

// statusOf maps execution effects to a wallet status. Missing effects mean
// the node has not executed the transaction yet.
func statusOf(e *Effects) ledger.TxStatus {
	switch {
	case e == nil:
		return ledger.TxPending
	case e.Status.OK():
		return ledger.TxConfirmed
	default:
		return ledger.TxConflicting
	}
}

func paginate(ids []string, start, limit int) []string {
	skip := start * limit
	if skip >= len(ids) || skip/limit != start {
		return []string{}
	}
	end := skip + limit
	if end > len(ids) || end < skip {
		end = len(ids)
	}
	return ids[skip:end]
}
