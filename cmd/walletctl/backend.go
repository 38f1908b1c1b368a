package main

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-wallet/config"
	"github.com/Klingon-tech/klingnet-wallet/internal/rebased"
	"github.com/Klingon-tech/klingnet-wallet/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-wallet/internal/stardust"
	"github.com/Klingon-tech/klingnet-wallet/internal/storage"
	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
	"github.com/Klingon-tech/klingnet-wallet/pkg/ledger"
)

// rateBurst is the request burst allowed above the configured rate.
const rateBurst = 4

// backend is an opened wallet plus the resources it holds.
type backend struct {
	Wallet ledger.Wallet
	keys   *wallet.Keystore
	db     storage.DB
}

// Close wipes the key and closes the journal database.
func (b *backend) Close() error {
	b.keys.Close()
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// openBackend derives the configured key from mnemonic and connects the
// configured ledger. The stardust journal is opened under the network
// directory, one key space per derivation path.
func openBackend(cfg *config.Config, mnemonic string) (*backend, error) {
	scheme, err := crypto.ParseScheme(cfg.Account.Scheme)
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendRebased:
		keys, err := wallet.NewKeystore(mnemonic, "", scheme, wallet.CoinTypeIota, cfg.Account.Index, cfg.Account.AddressIndex)
		if err != nil {
			return nil, fmt.Errorf("derive key: %w", err)
		}
		rpc := rpcclient.New(cfg.Rebased.URL, rpcclient.WithRateLimit(cfg.Rebased.RateLimit, rateBurst))
		w := rebased.New(rebased.NewClient(rpc), keys, cfg.RebasedWallet())
		return &backend{Wallet: w, keys: keys}, nil

	case config.BackendStardust:
		keys, err := wallet.NewKeystore(mnemonic, "", scheme, cfg.Stardust.CoinType, cfg.Account.Index, cfg.Account.AddressIndex)
		if err != nil {
			return nil, fmt.Errorf("derive key: %w", err)
		}
		db, err := storage.NewBadger(cfg.JournalDir())
		if err != nil {
			keys.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		journal := stardust.NewJournal(storage.NewPrefixDB(db, journalPrefix(keys.Account())))

		rpc := rpcclient.New(cfg.Stardust.URL, rpcclient.WithRateLimit(cfg.Stardust.RateLimit, rateBurst))
		w, err := stardust.New(stardust.NewClient(rpc), keys, journal, cfg.StardustWallet())
		if err != nil {
			keys.Close()
			db.Close()
			return nil, err
		}
		return &backend{Wallet: w, keys: keys, db: db}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// journalPrefix separates the journals of different derived keys sharing
// one database.
func journalPrefix(acct wallet.Account) []byte {
	return []byte(fmt.Sprintf("%d/%d/%d/", acct.CoinType, acct.Index, acct.AddressIndex))
}
