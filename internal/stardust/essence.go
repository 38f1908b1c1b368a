package stardust

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
	"github.com/Klingon-tech/klingnet-wallet/pkg/encoding"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// Wire type tags.
const (
	essenceTypeRegular     = 1
	inputTypeUTXO          = 0
	unlockTypeSignature    = 0
	unlockTypeReference    = 1
	signatureTypeEd25519   = 0
	payloadTypeTaggedData  = 5
	payloadTypeTransaction = 6
)

// Protocol limits.
const (
	MaxInputs  = 128
	MaxOutputs = 128
	MaxParents = 8
)

// NetworkID derives the numeric network id from the network name.
func NetworkID(name string) uint64 {
	h := crypto.Hash([]byte(name))
	return binary.LittleEndian.Uint64(h[:8])
}

// HexID renders a transaction or block id.
func HexID(d types.Digest) string {
	return encoding.HexPrefixed(d[:])
}

// ParseHexID parses a 0x-prefixed 32-byte transaction or block id.
func ParseHexID(s string) (types.Digest, error) {
	b, err := encoding.Hex.Decode(s)
	if err != nil {
		return types.Digest{}, err
	}
	return types.NewDigest(b)
}

// OutputID names an output by the transaction creating it and its index.
type OutputID struct {
	TxID  types.Digest
	Index uint16
}

// ParseOutputID parses the 0x-prefixed hex of txid || u16 index.
func ParseOutputID(s string) (OutputID, error) {
	b, err := encoding.Hex.Decode(s)
	if err != nil {
		return OutputID{}, err
	}
	if len(b) != outputIDLength {
		return OutputID{}, fmt.Errorf("output id must be %d bytes, got %d", outputIDLength, len(b))
	}
	var id OutputID
	copy(id.TxID[:], b[:32])
	id.Index = binary.LittleEndian.Uint16(b[32:])
	return id, nil
}

func (id OutputID) String() string {
	b := binary.LittleEndian.AppendUint16(id.TxID.Bytes(), id.Index)
	return encoding.HexPrefixed(b)
}

// TaggedData is an indexable payload carried by a transaction.
type TaggedData struct {
	Tag  []byte
	Data []byte
}

func (p *TaggedData) serialize(w *writer) {
	w.u32(payloadTypeTaggedData)
	if len(p.Tag) > maxTagLength {
		w.fail("tag length %d", len(p.Tag))
	}
	w.bytes8(p.Tag, "tag")
	w.bytes32(p.Data)
}

// Essence is the signed part of a transaction.
type Essence struct {
	NetworkID        uint64
	Inputs           []OutputID
	InputsCommitment types.Digest
	Outputs          []*BasicOutput
	Payload          *TaggedData
}

// Bytes returns the serialized essence.
func (e *Essence) Bytes() ([]byte, error) {
	var w writer
	e.serialize(&w)
	return w.result()
}

// SigningHash is the message every unlock signature covers.
func (e *Essence) SigningHash() (types.Digest, error) {
	b, err := e.Bytes()
	if err != nil {
		return types.Digest{}, err
	}
	return crypto.Hash(b), nil
}

func (e *Essence) serialize(w *writer) {
	w.u8(essenceTypeRegular)
	w.u64(e.NetworkID)
	if len(e.Inputs) == 0 {
		w.fail("no inputs")
	}
	w.count(len(e.Inputs), MaxInputs, true, "inputs")
	seen := make(map[OutputID]bool, len(e.Inputs))
	for _, in := range e.Inputs {
		if seen[in] {
			w.fail("duplicate input %s", in)
		}
		seen[in] = true
		w.u8(inputTypeUTXO)
		w.raw(in.TxID[:])
		w.u16(in.Index)
	}
	w.raw(e.InputsCommitment[:])
	if len(e.Outputs) == 0 {
		w.fail("no outputs")
	}
	w.count(len(e.Outputs), MaxOutputs, true, "outputs")
	for _, o := range e.Outputs {
		o.serialize(w)
	}
	if e.Payload == nil {
		w.u32(0)
		return
	}
	var p writer
	e.Payload.serialize(&p)
	if p.err != nil {
		w.fail("%v", p.err)
	}
	w.bytes32(p.buf)
}

// Unlock proves the right to spend one input: a signature, or a reference
// to an earlier signature unlock when Signature is nil.
type Unlock struct {
	PublicKey []byte
	Signature []byte
	Reference uint16
}

// TransactionPayload is a signed essence.
type TransactionPayload struct {
	Essence *Essence
	Unlocks []Unlock
}

// Bytes returns the serialized payload including its type tag.
func (p *TransactionPayload) Bytes() ([]byte, error) {
	var w writer
	p.serialize(&w)
	return w.result()
}

// ID returns the transaction id.
func (p *TransactionPayload) ID() (types.Digest, error) {
	b, err := p.Bytes()
	if err != nil {
		return types.Digest{}, err
	}
	return crypto.Hash(b), nil
}

func (p *TransactionPayload) serialize(w *writer) {
	w.u32(payloadTypeTransaction)
	p.Essence.serialize(w)
	if len(p.Unlocks) != len(p.Essence.Inputs) {
		w.fail("%d unlocks for %d inputs", len(p.Unlocks), len(p.Essence.Inputs))
	}
	w.count(len(p.Unlocks), MaxInputs, true, "unlocks")
	for i, u := range p.Unlocks {
		if u.Signature == nil {
			if int(u.Reference) >= i {
				w.fail("unlock %d references %d", i, u.Reference)
			}
			w.u8(unlockTypeReference)
			w.u16(u.Reference)
			continue
		}
		if len(u.PublicKey) != 32 || len(u.Signature) != crypto.SignatureLength {
			w.fail("unlock %d: malformed ed25519 signature", i)
		}
		w.u8(unlockTypeSignature)
		w.u8(signatureTypeEd25519)
		w.raw(u.PublicKey)
		w.raw(u.Signature)
	}
}

// Block carries a transaction payload into the tangle.
type Block struct {
	ProtocolVersion uint8
	Parents         []types.Digest
	Payload         *TransactionPayload
	Nonce           uint64
}

// Bytes returns the serialized block. Parents are written sorted and
// deduplicated.
func (b *Block) Bytes() ([]byte, error) {
	parents := sortParents(b.Parents)
	var w writer
	w.u8(b.ProtocolVersion)
	if len(parents) == 0 {
		w.fail("no parents")
	}
	w.count(len(parents), MaxParents, false, "parents")
	for _, p := range parents {
		w.raw(p[:])
	}
	if b.Payload == nil {
		w.u32(0)
	} else {
		var p writer
		b.Payload.serialize(&p)
		if p.err != nil {
			w.fail("%v", p.err)
		}
		w.bytes32(p.buf)
	}
	w.u64(b.Nonce)
	return w.result()
}

// ID returns the block id.
func (b *Block) ID() (types.Digest, error) {
	raw, err := b.Bytes()
	if err != nil {
		return types.Digest{}, err
	}
	return crypto.Hash(raw), nil
}

func sortParents(in []types.Digest) []types.Digest {
	out := make([]types.Digest, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	uniq := out[:0]
	for _, p := range out {
		if len(uniq) == 0 || p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	return uniq
}
