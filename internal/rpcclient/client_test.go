package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// fakeNode answers every call with handler's result or error.
func fakeNode(t *testing.T, handler func(method string, params []json.RawMessage) (any, *RPCError)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JSONRPC string            `json:"jsonrpc"`
			Method  string            `json:"method"`
			Params  []json.RawMessage `json:"params"`
			ID      uint64            `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.JSONRPC != "2.0" {
			t.Errorf("jsonrpc = %q, want 2.0", req.JSONRPC)
		}
		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCall_Result(t *testing.T) {
	srv := fakeNode(t, func(method string, params []json.RawMessage) (any, *RPCError) {
		if method != "iotax_getBalance" {
			t.Errorf("method = %s", method)
		}
		if len(params) != 2 || string(params[0]) != `"0xabc"` || string(params[1]) != "null" {
			t.Errorf("params = %s", params)
		}
		return map[string]string{"totalBalance": "42"}, nil
	})

	c := New(srv.URL)
	var out struct {
		TotalBalance string `json:"totalBalance"`
	}
	if err := c.Call(context.Background(), "iotax_getBalance", &out, "0xabc", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out.TotalBalance != "42" {
		t.Errorf("TotalBalance = %s, want 42", out.TotalBalance)
	}
}

func TestCall_NoParamsSendsEmptyArray(t *testing.T) {
	srv := fakeNode(t, func(_ string, params []json.RawMessage) (any, *RPCError) {
		if params == nil {
			t.Error("params missing, want []")
		}
		return "1000", nil
	})
	var price string
	if err := New(srv.URL).Call(context.Background(), "iotax_getReferenceGasPrice", &price); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if price != "1000" {
		t.Errorf("price = %s", price)
	}
}

func TestCall_RPCError(t *testing.T) {
	srv := fakeNode(t, func(string, []json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "could not find the referenced transaction"}
	})
	err := New(srv.URL).Call(context.Background(), "iota_getTransactionBlock", nil, "x")
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("error = %v, want *RPCError", err)
	}
	if rpcErr.Code != CodeInvalidParams {
		t.Errorf("Code = %d, want %d", rpcErr.Code, CodeInvalidParams)
	}
	if !IsCode(err, CodeInvalidParams) || IsCode(err, CodeInternalError) {
		t.Error("IsCode mismatch")
	}
}

func TestCall_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()
	err := New(srv.URL).Call(context.Background(), "m", nil)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestCall_ContextCancelled(t *testing.T) {
	srv := fakeNode(t, func(string, []json.RawMessage) (any, *RPCError) { return 1, nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(srv.URL).Call(ctx, "m", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestCall_RateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := fakeNode(t, func(string, []json.RawMessage) (any, *RPCError) {
		calls.Add(1)
		return 1, nil
	})
	c := New(srv.URL, WithRateLimit(20, 1), WithTimeout(time.Second))

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := c.Call(context.Background(), "m", nil); err != nil {
			t.Fatalf("Call %d: %v", i, err)
		}
	}
	// Burst 1 at 20/s: the 2nd and 3rd calls each wait ~50ms.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 paced calls took %v, want >= 80ms", elapsed)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	slow := New(srv.URL, WithRateLimit(0.001, 1))
	_ = slow.Call(context.Background(), "m", nil)
	if err := slow.Call(ctx, "m", nil); err == nil {
		t.Error("rate limited call past deadline should fail")
	}
}
