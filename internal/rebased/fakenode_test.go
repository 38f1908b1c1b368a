package rebased

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

type handlerFunc func(params []json.RawMessage) (any, *rpcclient.RPCError)

// fakeNode is a JSON-RPC node answering from per-method handlers.
type fakeNode struct {
	t        *testing.T
	srv      *httptest.Server
	mu       sync.Mutex
	handlers map[string]handlerFunc
	calls    map[string]int
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	n := &fakeNode{t: t, handlers: map[string]handlerFunc{}, calls: map[string]int{}}
	n.srv = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.srv.Close)
	return n
}

func (n *fakeNode) handle(method string, fn handlerFunc) {
	n.mu.Lock()
	n.handlers[method] = fn
	n.mu.Unlock()
}

func (n *fakeNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
		ID     uint64            `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		n.t.Errorf("decode request: %v", err)
		return
	}
	n.mu.Lock()
	n.calls[req.Method]++
	fn := n.handlers[req.Method]
	n.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if fn == nil {
		resp["error"] = &rpcclient.RPCError{Code: rpcclient.CodeMethodNotFound, Message: "no handler for " + req.Method}
	} else if result, rpcErr := fn(req.Params); rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ExplorerURL = "https://explorer.example/"
	cfg.Poll = wallet.PollPolicy{Timeout: time.Second, Delay: time.Millisecond, Interval: 5 * time.Millisecond}
	return cfg
}

func newTestWallet(t *testing.T, n *fakeNode, cfg Config) *Wallet {
	t.Helper()
	log.Disable()
	keys, err := wallet.NewKeystore(testMnemonic, "", crypto.Ed25519, wallet.CoinTypeIota, 0, 0)
	require.NoError(t, err)
	return New(NewClient(rpcclient.New(n.srv.URL)), keys, cfg)
}

func testCoin(id byte, balance uint64) Coin {
	var oid types.ObjectID
	oid[31] = id
	return Coin{
		CoinType:            DefaultCoinType,
		CoinObjectID:        oid,
		Version:             BigUint64(10 + uint64(id)),
		Digest:              types.NewObjectDigest(types.Digest{id, 0xcc}),
		Balance:             BigUint64(balance),
		PreviousTransaction: types.NewTransactionDigest(types.Digest{0xee, id}),
	}
}

func u64p(v uint64) *BigUint64 {
	b := BigUint64(v)
	return &b
}

func decodeParam[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}
