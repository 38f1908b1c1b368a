package stardust

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/Klingon-tech/klingnet-wallet/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// blockContentType is the media type of a binary serialized block.
const blockContentType = "application/vnd.iota.serializer-v1"

// fetchConcurrency bounds parallel output lookups.
const fetchConcurrency = 8

// Client speaks the node's core and indexer REST APIs.
type Client struct {
	http *rpcclient.Client
}

// NewClient wraps a transport pointed at the node's base URL.
func NewClient(c *rpcclient.Client) *Client {
	return &Client{http: c}
}

// Info returns the node and protocol information.
func (c *Client) Info(ctx context.Context) (*NodeInfo, error) {
	var info NodeInfo
	if err := c.http.Get(ctx, "api/core/v2/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// BasicOutputIDs lists the basic outputs address alone can unlock, following
// the indexer cursor until exhausted.
func (c *Client) BasicOutputIDs(ctx context.Context, bech32 string) ([]OutputID, error) {
	q := url.Values{
		"address":                 {bech32},
		"hasStorageDepositReturn": {"false"},
		"hasTimelock":             {"false"},
		"hasExpiration":           {"false"},
	}
	var ids []OutputID
	for {
		var page outputPage
		if err := c.http.Get(ctx, "api/indexer/v1/outputs/basic", q, &page); err != nil {
			return nil, err
		}
		for _, s := range page.Items {
			id, err := ParseOutputID(s)
			if err != nil {
				return nil, fmt.Errorf("indexer output id: %w", err)
			}
			ids = append(ids, id)
		}
		if page.Cursor == nil || *page.Cursor == "" || len(page.Items) == 0 {
			return ids, nil
		}
		if q.Get("cursor") == *page.Cursor {
			return nil, fmt.Errorf("indexer returned the same cursor %q twice", *page.Cursor)
		}
		q.Set("cursor", *page.Cursor)
	}
}

// Output fetches one output with its metadata.
func (c *Client) Output(ctx context.Context, id OutputID) (*BasicOutput, *OutputMetadata, error) {
	var resp outputResponse
	if err := c.http.Get(ctx, "api/core/v2/outputs/"+id.String(), nil, &resp); err != nil {
		return nil, nil, err
	}
	var raw outputJSON
	if err := json.Unmarshal(resp.Output, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode output %s: %w", id, err)
	}
	out, err := raw.basic()
	if err != nil {
		return nil, &resp.Metadata, fmt.Errorf("output %s: %w", id, err)
	}
	return out, &resp.Metadata, nil
}

// FetchedOutput is the result of one lookup in Outputs. Err is set for
// outputs that could not be used.
type FetchedOutput struct {
	ID       OutputID
	Output   *BasicOutput
	Metadata *OutputMetadata
	Err      error
}

// Outputs fetches ids concurrently. Transport failures abort the whole
// call; unsupported outputs are reported per entry.
func (c *Client) Outputs(ctx context.Context, ids []OutputID) ([]FetchedOutput, error) {
	out := make([]FetchedOutput, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			o, meta, err := c.Output(gctx, id)
			if err != nil && meta == nil {
				return err
			}
			out[i] = FetchedOutput{ID: id, Output: o, Metadata: meta, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Tips returns block ids suitable as parents.
func (c *Client) Tips(ctx context.Context) ([]types.Digest, error) {
	var resp tipsResponse
	if err := c.http.Get(ctx, "api/core/v2/tips", nil, &resp); err != nil {
		return nil, err
	}
	tips := make([]types.Digest, 0, len(resp.Tips))
	for _, s := range resp.Tips {
		d, err := ParseHexID(s)
		if err != nil {
			return nil, fmt.Errorf("tip %q: %w", s, err)
		}
		tips = append(tips, d)
	}
	return tips, nil
}

// SubmitBlock posts a serialized block and returns the id the node
// assigned. The node fills in proof of work when the nonce is zero.
func (c *Client) SubmitBlock(ctx context.Context, b *Block) (types.Digest, error) {
	raw, err := b.Bytes()
	if err != nil {
		return types.Digest{}, err
	}
	var resp submitResponse
	if err := c.http.Post(ctx, "api/core/v2/blocks", blockContentType, raw, &resp); err != nil {
		return types.Digest{}, err
	}
	return ParseHexID(resp.BlockID)
}

// BlockMetadata returns the inclusion state of a block.
func (c *Client) BlockMetadata(ctx context.Context, id types.Digest) (*BlockMetadata, error) {
	var meta BlockMetadata
	if err := c.http.Get(ctx, "api/core/v2/blocks/"+HexID(id)+"/metadata", nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// IncludedBlockMetadata returns the metadata of the block that included
// transaction txID.
func (c *Client) IncludedBlockMetadata(ctx context.Context, txID types.Digest) (*BlockMetadata, error) {
	var meta BlockMetadata
	if err := c.http.Get(ctx, "api/core/v2/transactions/"+HexID(txID)+"/included-block/metadata", nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
