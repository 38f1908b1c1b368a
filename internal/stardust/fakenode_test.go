package stardust

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-wallet/internal/storage"
	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
	"github.com/Klingon-tech/klingnet-wallet/pkg/encoding"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

type fakeOutput struct {
	output map[string]any
	spent  bool
}

// fakeNode serves the subset of the core and indexer APIs the wallet uses.
type fakeNode struct {
	t   *testing.T
	srv *httptest.Server

	mu        sync.Mutex
	outputs   map[string]*fakeOutput
	pages     [][]string
	tips      []types.Digest
	blocks    [][]byte
	inclusion func(poll int) *BlockMetadata
	included  *BlockMetadata
	polls     int
	calls     map[string]int
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	n := &fakeNode{
		t:       t,
		outputs: map[string]*fakeOutput{},
		tips:    []types.Digest{{0xbb}, {0xaa}},
		calls:   map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/core/v2/info", n.info)
	mux.HandleFunc("GET /api/indexer/v1/outputs/basic", n.indexer)
	mux.HandleFunc("GET /api/core/v2/outputs/{id}", n.output)
	mux.HandleFunc("GET /api/core/v2/tips", n.tipsHandler)
	mux.HandleFunc("POST /api/core/v2/blocks", n.submit)
	mux.HandleFunc("GET /api/core/v2/blocks/{id}/metadata", n.blockMetadata)
	mux.HandleFunc("GET /api/core/v2/transactions/{id}/included-block/metadata", n.includedMetadata)
	n.srv = httptest.NewServer(mux)
	t.Cleanup(n.srv.Close)
	return n
}

func (n *fakeNode) count(name string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[name]
}

func (n *fakeNode) hit(name string) {
	n.mu.Lock()
	n.calls[name]++
	n.mu.Unlock()
}

// addOutput registers a basic output owned by owner and lists it on the
// indexer's last page. The returned map is the output's JSON form.
func (n *fakeNode) addOutput(id OutputID, owner Address, amount uint64) map[string]any {
	out := map[string]any{
		"type":   3,
		"amount": strconv.FormatUint(amount, 10),
		"unlockConditions": []any{map[string]any{
			"type":    0,
			"address": map[string]any{"type": 0, "pubKeyHash": encoding.HexPrefixed(owner[:])},
		}},
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outputs[id.String()] = &fakeOutput{output: out}
	if len(n.pages) == 0 {
		n.pages = append(n.pages, nil)
	}
	n.pages[len(n.pages)-1] = append(n.pages[len(n.pages)-1], id.String())
	return out
}

func (n *fakeNode) setSpent(id OutputID) {
	n.mu.Lock()
	n.outputs[id.String()].spent = true
	n.mu.Unlock()
}

// newPage starts a new indexer page; earlier pages carry a cursor.
func (n *fakeNode) newPage() {
	n.mu.Lock()
	n.pages = append(n.pages, nil)
	n.mu.Unlock()
}

func (n *fakeNode) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (n *fakeNode) notFound(w http.ResponseWriter) {
	n.writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]string{"code": "404", "message": "not found"}})
}

func (n *fakeNode) info(w http.ResponseWriter, _ *http.Request) {
	n.hit("info")
	n.writeJSON(w, http.StatusOK, map[string]any{
		"name":    "HORNET",
		"version": "2.0.0",
		"protocol": map[string]any{
			"version":       2,
			"networkName":   "testnet",
			"bech32Hrp":     "rms",
			"minPowScore":   0,
			"rentStructure": map[string]any{"vByteCost": 100, "vByteFactorData": 1, "vByteFactorKey": 10},
			"tokenSupply":   "1450896407249092",
		},
		"baseToken": map[string]any{"name": "Shimmer", "tickerSymbol": "SMR", "unit": "SMR", "decimals": 6},
	})
}

func (n *fakeNode) indexer(w http.ResponseWriter, r *http.Request) {
	n.hit("indexer")
	q := r.URL.Query()
	for _, f := range []string{"hasStorageDepositReturn", "hasTimelock", "hasExpiration"} {
		if q.Get(f) != "false" {
			n.t.Errorf("indexer filter %s = %q", f, q.Get(f))
		}
	}
	page := 0
	if c := q.Get("cursor"); c != "" {
		page = int(c[len(c)-1] - '0')
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	resp := map[string]any{"ledgerIndex": 100, "items": []string{}}
	if page < len(n.pages) {
		resp["items"] = n.pages[page]
	}
	if page+1 < len(n.pages) {
		resp["cursor"] = "page" + string(rune('0'+page+1))
	}
	n.writeJSON(w, http.StatusOK, resp)
}

func (n *fakeNode) output(w http.ResponseWriter, r *http.Request) {
	n.hit("output")
	n.mu.Lock()
	o, ok := n.outputs[r.PathValue("id")]
	var spent bool
	if ok {
		spent = o.spent
	}
	n.mu.Unlock()
	if !ok {
		n.notFound(w)
		return
	}
	id, _ := ParseOutputID(r.PathValue("id"))
	n.writeJSON(w, http.StatusOK, map[string]any{
		"metadata": map[string]any{
			"blockId":       HexID(types.Digest{0x0b}),
			"transactionId": HexID(id.TxID),
			"outputIndex":   id.Index,
			"isSpent":       spent,
		},
		"output": o.output,
	})
}

func (n *fakeNode) tipsHandler(w http.ResponseWriter, _ *http.Request) {
	n.hit("tips")
	n.mu.Lock()
	tips := make([]string, len(n.tips))
	for i, t := range n.tips {
		tips[i] = HexID(t)
	}
	n.mu.Unlock()
	n.writeJSON(w, http.StatusOK, map[string]any{"tips": tips})
}

func (n *fakeNode) submit(w http.ResponseWriter, r *http.Request) {
	n.hit("submit")
	if ct := r.Header.Get("Content-Type"); ct != blockContentType {
		n.t.Errorf("content type = %q", ct)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		n.t.Errorf("read block: %v", err)
		return
	}
	n.mu.Lock()
	n.blocks = append(n.blocks, body)
	n.mu.Unlock()
	n.writeJSON(w, http.StatusCreated, map[string]string{"blockId": HexID(crypto.Hash(body))})
}

func (n *fakeNode) blockMetadata(w http.ResponseWriter, r *http.Request) {
	n.hit("blockMetadata")
	n.mu.Lock()
	n.polls++
	poll, fn := n.polls, n.inclusion
	n.mu.Unlock()
	meta := &BlockMetadata{}
	if fn != nil {
		meta = fn(poll)
	}
	meta.BlockID = r.PathValue("id")
	n.writeJSON(w, http.StatusOK, meta)
}

func (n *fakeNode) includedMetadata(w http.ResponseWriter, _ *http.Request) {
	n.hit("includedMetadata")
	n.mu.Lock()
	meta := n.included
	n.mu.Unlock()
	if meta == nil {
		n.notFound(w)
		return
	}
	n.writeJSON(w, http.StatusOK, meta)
}

func (n *fakeNode) lastBlock() []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.blocks) == 0 {
		return nil
	}
	return n.blocks[len(n.blocks)-1]
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.NetworkKey = "shimmer_testnet"
	cfg.ExplorerURL = "https://explorer.example/testnet/"
	cfg.Poll = wallet.PollPolicy{Timeout: time.Second, Delay: time.Millisecond, Interval: 5 * time.Millisecond}
	return cfg
}

func testKeys(t *testing.T) *wallet.Keystore {
	t.Helper()
	keys, err := wallet.NewKeystore(testMnemonic, "", crypto.Ed25519, wallet.CoinTypeShimmer, 0, 0)
	require.NoError(t, err)
	return keys
}

func newTestWallet(t *testing.T, n *fakeNode, cfg Config) (*Wallet, *Journal) {
	t.Helper()
	log.Disable()
	journal := NewJournal(storage.NewMemory())
	w, err := New(NewClient(rpcclient.New(n.srv.URL)), testKeys(t), journal, cfg)
	require.NoError(t, err)
	return w, journal
}
