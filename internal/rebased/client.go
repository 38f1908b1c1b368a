package rebased

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Klingon-tech/klingnet-wallet/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// Maximum page size the node accepts for coin and transaction queries.
const maxPageSize = 50

// Client is a typed view of the node's JSON-RPC API.
type Client struct {
	rpc *rpcclient.Client
}

// NewClient wraps an rpcclient.Client.
func NewClient(rpc *rpcclient.Client) *Client {
	return &Client{rpc: rpc}
}

// Balance calls iotax_getBalance. An empty coinType means the native coin.
func (c *Client) Balance(ctx context.Context, owner types.Address, coinType string) (*Balance, error) {
	var out Balance
	if err := c.rpc.Call(ctx, "iotax_getBalance", &out, owner, optional(coinType)); err != nil {
		return nil, err
	}
	return &out, nil
}

// Coins calls iotax_getCoins for one page starting after cursor.
func (c *Client) Coins(ctx context.Context, owner types.Address, coinType string, cursor *types.ObjectID, limit int) (*CoinPage, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	var out CoinPage
	if err := c.rpc.Call(ctx, "iotax_getCoins", &out, owner, optional(coinType), cursor, lim); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllCoins follows nextCursor until every coin of coinType is listed.
func (c *Client) AllCoins(ctx context.Context, owner types.Address, coinType string) ([]Coin, error) {
	var (
		coins  []Coin
		cursor *types.ObjectID
	)
	for {
		page, err := c.Coins(ctx, owner, coinType, cursor, maxPageSize)
		if err != nil {
			return nil, err
		}
		coins = append(coins, page.Data...)
		if !page.HasNextPage || page.NextCursor == nil {
			return coins, nil
		}
		if cursor != nil && *cursor == *page.NextCursor {
			return nil, fmt.Errorf("iotax_getCoins: cursor %s did not advance", cursor)
		}
		cursor = page.NextCursor
	}
}

// ReferenceGasPrice calls iotax_getReferenceGasPrice.
func (c *Client) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	var out BigUint64
	if err := c.rpc.Call(ctx, "iotax_getReferenceGasPrice", &out); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// ExecuteTransactionBlock submits signed transaction bytes. txBytes and
// signatures are Base64.
func (c *Client) ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string, opts *ResponseOptions, requestType ExecuteRequestType) (*TransactionBlockResponse, error) {
	params := []any{txBytes, signatures, opts}
	if requestType != "" {
		params = append(params, requestType)
	}
	var out TransactionBlockResponse
	if err := c.rpc.Call(ctx, "iota_executeTransactionBlock", &out, params...); err != nil {
		return nil, err
	}
	return &out, nil
}

// DryRunTransactionBlock executes txBytes without committing it.
func (c *Client) DryRunTransactionBlock(ctx context.Context, txBytes string) (*DryRunResponse, error) {
	var out DryRunResponse
	if err := c.rpc.Call(ctx, "iota_dryRunTransactionBlock", &out, txBytes); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransactionBlock calls iota_getTransactionBlock.
func (c *Client) TransactionBlock(ctx context.Context, digest types.TransactionDigest, opts *ResponseOptions) (*TransactionBlockResponse, error) {
	var out TransactionBlockResponse
	if err := c.rpc.Call(ctx, "iota_getTransactionBlock", &out, digest, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkpoint calls iota_getCheckpoint by sequence number.
func (c *Client) Checkpoint(ctx context.Context, seq uint64) (*Checkpoint, error) {
	var out Checkpoint
	if err := c.rpc.Call(ctx, "iota_getCheckpoint", &out, strconv.FormatUint(seq, 10)); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryTransactionBlocks calls iotax_queryTransactionBlocks.
func (c *Client) QueryTransactionBlocks(ctx context.Context, q TransactionQuery, cursor *types.TransactionDigest, limit int, descending bool) (*TransactionBlocksPage, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	var out TransactionBlocksPage
	if err := c.rpc.Call(ctx, "iotax_queryTransactionBlocks", &out, q, cursor, lim, descending); err != nil {
		return nil, err
	}
	return &out, nil
}

// optional turns "" into a JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
