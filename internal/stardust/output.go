package stardust

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
	"github.com/Klingon-tech/klingnet-wallet/pkg/encoding"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// ErrUnsupportedOutput is returned for outputs the wallet cannot spend.
var ErrUnsupportedOutput = errors.New("unsupported output")

const (
	outputTypeBasic          = 3
	unlockConditionAddress   = 0
	maxFeatures              = 4
	maxTagLength             = 64
	outputIDLength           = 34
	confirmationMetadataSize = 32 + 4 + 4
)

// FeatureType identifies an output feature.
type FeatureType uint8

// Features a basic output may carry.
const (
	FeatureSender   FeatureType = 0
	FeatureMetadata FeatureType = 2
	FeatureTag      FeatureType = 3
)

// Feature is a sender, metadata or tag feature. Sender uses Address,
// the others use Data.
type Feature struct {
	Type    FeatureType
	Address Address
	Data    []byte
}

// BasicOutput holds base tokens locked to one address.
type BasicOutput struct {
	Amount   uint64
	Address  Address
	Features []Feature
}

// Bytes returns the serialized output.
func (o *BasicOutput) Bytes() ([]byte, error) {
	var w writer
	o.serialize(&w)
	return w.result()
}

func (o *BasicOutput) serialize(w *writer) {
	w.u8(outputTypeBasic)
	w.u64(o.Amount)
	w.u8(0) // native tokens
	w.u8(1)
	w.u8(unlockConditionAddress)
	o.Address.serialize(w)
	w.count(len(o.Features), maxFeatures, false, "features")
	for _, f := range o.Features {
		w.u8(uint8(f.Type))
		switch f.Type {
		case FeatureSender:
			f.Address.serialize(w)
		case FeatureMetadata:
			w.bytes16(f.Data, "metadata")
		case FeatureTag:
			if len(f.Data) > maxTagLength {
				w.fail("tag length %d", len(f.Data))
			}
			w.bytes8(f.Data, "tag")
		default:
			w.fail("feature type %d", f.Type)
		}
	}
}

// RentStructure prices ledger storage in virtual bytes.
type RentStructure struct {
	VByteCost  uint32 `json:"vByteCost"`
	FactorData uint8  `json:"vByteFactorData"`
	FactorKey  uint8  `json:"vByteFactorKey"`
}

// MinDeposit returns the storage deposit o must hold to be created.
func (r RentStructure) MinDeposit(o *BasicOutput) (uint64, error) {
	b, err := o.Bytes()
	if err != nil {
		return 0, err
	}
	offset := uint64(r.FactorKey)*outputIDLength + uint64(r.FactorData)*confirmationMetadataSize
	vbytes := offset + uint64(r.FactorData)*uint64(len(b))
	return uint64(r.VByteCost) * vbytes, nil
}

// InputsCommitment hashes the consumed outputs in input order.
func InputsCommitment(consumed []*BasicOutput) (types.Digest, error) {
	hashes := make([][]byte, len(consumed))
	for i, o := range consumed {
		b, err := o.Bytes()
		if err != nil {
			return types.Digest{}, err
		}
		h := crypto.Hash(b)
		hashes[i] = h[:]
	}
	return crypto.Hash(hashes...), nil
}

type addressJSON struct {
	Type       uint8  `json:"type"`
	PubKeyHash string `json:"pubKeyHash"`
}

func (a *addressJSON) address() (Address, error) {
	if a == nil || a.Type != addressTypeEd25519 {
		return Address{}, fmt.Errorf("%w: non-ed25519 address", ErrUnsupportedOutput)
	}
	b, err := encoding.Hex.Decode(a.PubKeyHash)
	if err != nil || len(b) != 32 {
		return Address{}, fmt.Errorf("%w: pubKeyHash %q", ErrUnsupportedOutput, a.PubKeyHash)
	}
	return Address(b), nil
}

// outputJSON is an output as the node's REST API renders it.
type outputJSON struct {
	Type             uint8             `json:"type"`
	Amount           string            `json:"amount"`
	NativeTokens     []json.RawMessage `json:"nativeTokens,omitempty"`
	UnlockConditions []struct {
		Type    uint8        `json:"type"`
		Address *addressJSON `json:"address"`
	} `json:"unlockConditions"`
	Features []struct {
		Type    uint8        `json:"type"`
		Address *addressJSON `json:"address,omitempty"`
		Data    string       `json:"data,omitempty"`
		Tag     string       `json:"tag,omitempty"`
	} `json:"features,omitempty"`
}

// basic converts o into a BasicOutput. Outputs carrying native tokens or
// unlock conditions beyond a single address are unsupported.
func (o *outputJSON) basic() (*BasicOutput, error) {
	if o.Type != outputTypeBasic {
		return nil, fmt.Errorf("%w: output type %d", ErrUnsupportedOutput, o.Type)
	}
	if len(o.NativeTokens) > 0 {
		return nil, fmt.Errorf("%w: native tokens", ErrUnsupportedOutput)
	}
	if len(o.UnlockConditions) != 1 || o.UnlockConditions[0].Type != unlockConditionAddress {
		return nil, fmt.Errorf("%w: unlock conditions", ErrUnsupportedOutput)
	}
	amt, err := strconv.ParseUint(o.Amount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q", ErrUnsupportedOutput, o.Amount)
	}
	addr, err := o.UnlockConditions[0].Address.address()
	if err != nil {
		return nil, err
	}

	out := &BasicOutput{Amount: amt, Address: addr}
	for _, f := range o.Features {
		feat := Feature{Type: FeatureType(f.Type)}
		switch feat.Type {
		case FeatureSender:
			if feat.Address, err = f.Address.address(); err != nil {
				return nil, err
			}
		case FeatureMetadata:
			feat.Data, err = encoding.Hex.Decode(f.Data)
		case FeatureTag:
			feat.Data, err = encoding.Hex.Decode(f.Tag)
		default:
			return nil, fmt.Errorf("%w: feature type %d", ErrUnsupportedOutput, f.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: feature %d: %v", ErrUnsupportedOutput, f.Type, err)
		}
		out.Features = append(out.Features, feat)
	}
	return out, nil
}
