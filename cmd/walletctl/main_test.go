package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Klingon-tech/klingnet-wallet/config"
	"github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
	"github.com/Klingon-tech/klingnet-wallet/pkg/amount"
	"github.com/Klingon-tech/klingnet-wallet/pkg/ledger"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestIntentFromArgs(t *testing.T) {
	intent, err := intentFromArgs("send", []string{"--to", "0x2", "--amount", "1.5", "--data", "0xcafe"})
	if err != nil {
		t.Fatalf("intentFromArgs: %v", err)
	}
	if intent.AddressTo != "0x2" || !intent.Amount.Equal(amount.MustParse("1.5")) {
		t.Errorf("intent = %+v", intent)
	}
	if !bytes.Equal(intent.Data, []byte{0xca, 0xfe}) {
		t.Errorf("data = %x", intent.Data)
	}

	intent, err = intentFromArgs("send", []string{"--to", "rms1x", "--amount", "2", "--data", "text:hello"})
	if err != nil {
		t.Fatalf("intentFromArgs(text): %v", err)
	}
	if string(intent.Data) != "hello" {
		t.Errorf("data = %q, want hello", intent.Data)
	}
}

func TestIntentFromArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing to", []string{"--amount", "1"}, nil},
		{"missing amount", []string{"--to", "0x2"}, nil},
		{"bad amount", []string{"--to", "0x2", "--amount", "one"}, nil},
		{"negative", []string{"--to", "0x2", "--amount", "-1"}, amount.ErrNegativeAmount},
		{"zero", []string{"--to", "0x2", "--amount", "0"}, ledger.ErrZeroAmount},
		{"bad data", []string{"--to", "0x2", "--amount", "1", "--data", "zz"}, nil},
		{"unknown flag", []string{"--from", "0x1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := intentFromArgs("send", tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestJournalPrefix(t *testing.T) {
	a := journalPrefix(wallet.Account{CoinType: 4219, Index: 1, AddressIndex: 2})
	b := journalPrefix(wallet.Account{CoinType: 4219, Index: 12})
	if string(a) != "4219/1/2/" {
		t.Errorf("prefix = %q", a)
	}
	if bytes.HasPrefix(b, a) || bytes.HasPrefix(a, b) {
		t.Errorf("prefixes %q and %q overlap", a, b)
	}
}

func TestOpenBackend(t *testing.T) {
	log.Disable()
	ctx := context.Background()

	cfg := config.DefaultTestnet()
	cfg.DataDir = t.TempDir()
	b, err := openBackend(cfg, testMnemonic)
	if err != nil {
		t.Fatalf("openBackend(rebased): %v", err)
	}
	addr, err := b.Wallet.Address(ctx)
	if err != nil || !strings.HasPrefix(addr, "0x") || len(addr) != 66 {
		t.Errorf("rebased address = %q, %v", addr, err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	cfg.Backend = config.BackendStardust
	b, err = openBackend(cfg, testMnemonic)
	if err != nil {
		t.Fatalf("openBackend(stardust): %v", err)
	}
	ids, err := b.Wallet.WalletTxList(ctx, 0, 10)
	if err != nil || len(ids) != 0 {
		t.Errorf("empty journal = %v, %v", ids, err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	cfg.Account.Scheme = "secp256k1"
	if _, err := openBackend(cfg, testMnemonic); err == nil {
		t.Error("stardust accepted a secp256k1 key")
	}

	cfg.Backend = "eth"
	if _, err := openBackend(cfg, testMnemonic); err == nil {
		t.Error("unknown backend accepted")
	}
}
