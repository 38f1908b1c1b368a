package stardust

import "encoding/json"

// NodeInfo is the reply of GET /api/core/v2/info.
type NodeInfo struct {
	Name      string             `json:"name"`
	Version   string             `json:"version"`
	Protocol  ProtocolParameters `json:"protocol"`
	BaseToken BaseToken          `json:"baseToken"`
}

// ProtocolParameters are the network constants a wallet needs.
type ProtocolParameters struct {
	Version     uint8         `json:"version"`
	NetworkName string        `json:"networkName"`
	Bech32HRP   string        `json:"bech32Hrp"`
	MinPoWScore uint32        `json:"minPowScore"`
	Rent        RentStructure `json:"rentStructure"`
	TokenSupply string        `json:"tokenSupply"`
}

// BaseToken describes the network's base coin.
type BaseToken struct {
	Name         string `json:"name"`
	TickerSymbol string `json:"tickerSymbol"`
	Unit         string `json:"unit"`
	Subunit      string `json:"subunit,omitempty"`
	Decimals     uint32 `json:"decimals"`
}

// outputPage is one page of indexer results.
type outputPage struct {
	LedgerIndex uint32   `json:"ledgerIndex"`
	Cursor      *string  `json:"cursor,omitempty"`
	Items       []string `json:"items"`
}

// OutputMetadata locates an output and tells whether it is spent.
type OutputMetadata struct {
	BlockID       string `json:"blockId"`
	TransactionID string `json:"transactionId"`
	OutputIndex   uint16 `json:"outputIndex"`
	IsSpent       bool   `json:"isSpent"`
}

type outputResponse struct {
	Metadata OutputMetadata  `json:"metadata"`
	Output   json.RawMessage `json:"output"`
}

type tipsResponse struct {
	Tips []string `json:"tips"`
}

type submitResponse struct {
	BlockID string `json:"blockId"`
}

// Ledger inclusion states reported in block metadata.
const (
	InclusionIncluded    = "included"
	InclusionConflicting = "conflicting"
	InclusionNoTx        = "noTransaction"
)

// BlockMetadata is the node's view of a block. LedgerInclusionState is
// empty until a milestone references the block.
type BlockMetadata struct {
	BlockID                    string `json:"blockId"`
	LedgerInclusionState       string `json:"ledgerInclusionState,omitempty"`
	ReferencedByMilestoneIndex uint32 `json:"referencedByMilestoneIndex,omitempty"`
	ShouldReattach             bool   `json:"shouldReattach,omitempty"`
}

// Referenced reports whether a milestone has decided on the block.
func (m *BlockMetadata) Referenced() bool {
	return m.LedgerInclusionState != ""
}
