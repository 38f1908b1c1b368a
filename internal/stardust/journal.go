package stardust

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Klingon-tech/klingnet-wallet/internal/storage"
	"github.com/Klingon-tech/klingnet-wallet/pkg/amount"
	"github.com/Klingon-tech/klingnet-wallet/pkg/ledger"
)

var journalPrefix = []byte("tx/")

// JournalEntry records one transaction sent by the wallet.
type JournalEntry struct {
	TxID      string              `json:"txId"`
	BlockID   string              `json:"blockId"`
	Sender    string              `json:"sender"`
	Receiver  string              `json:"receiver"`
	Amount    amount.CryptoAmount `json:"amount"`
	Status    ledger.TxStatus     `json:"status"`
	Milestone uint32              `json:"milestone,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Journal persists sent transactions. The node keeps no per-address
// history, so the wallet remembers what it submitted.
type Journal struct {
	db storage.DB
}

// NewJournal stores entries in db.
func NewJournal(db storage.DB) *Journal {
	return &Journal{db: db}
}

func journalKey(txID string) []byte {
	return append(append([]byte{}, journalPrefix...), txID...)
}

// Put inserts or replaces e.
func (j *Journal) Put(e *JournalEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	return j.db.Put(journalKey(e.TxID), data)
}

// Get returns the entry for txID or storage.ErrNotFound.
func (j *Journal) Get(txID string) (*JournalEntry, error) {
	data, err := j.db.Get(journalKey(txID))
	if err != nil {
		return nil, err
	}
	var e JournalEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode journal entry %s: %w", txID, err)
	}
	return &e, nil
}

// List returns all entries, newest first.
func (j *Journal) List() ([]*JournalEntry, error) {
	var out []*JournalEntry
	err := j.db.ForEach(journalPrefix, func(key, value []byte) error {
		var e JournalEntry
		if err := json.Unmarshal(value, &e); err != nil {
			return fmt.Errorf("decode journal entry %s: %w", key[len(journalPrefix):], err)
		}
		out = append(out, &e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Timestamp.After(out[b].Timestamp)
	})
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
