package tx

import (
	"fmt"

	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/bcs"
	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"

	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// serializable is implemented by every value with a canonical BCS form.
type serializable interface {
	serialize(s serde.Serializer) error
}

func marshalBCS(v serializable) ([]byte, error) {
	s := bcs.NewSerializer()
	if err := v.serialize(s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBcs, err)
	}
	return s.GetBytes(), nil
}

func serializeFixed(s serde.Serializer, b []byte) error {
	for _, v := range b {
		if err := s.SerializeU8(v); err != nil {
			return err
		}
	}
	return nil
}

func serializeSeq[T serializable](s serde.Serializer, items []T) error {
	if err := s.SerializeLen(uint64(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := item.serialize(s); err != nil {
			return err
		}
	}
	return nil
}

func serializeAddress(s serde.Serializer, a types.Address) error {
	return serializeFixed(s, a[:])
}

func serializeObjectID(s serde.Serializer, id types.ObjectID) error {
	return serializeFixed(s, id[:])
}

// Digests are length-prefixed on the wire even though their size is fixed.
func serializeDigest(s serde.Serializer, d types.Digest) error {
	return s.SerializeBytes(d[:])
}

func serializeObjectRef(s serde.Serializer, ref types.ObjectRef) error {
	if err := serializeObjectID(s, ref.ObjectID); err != nil {
		return err
	}
	if err := s.SerializeU64(uint64(ref.Version)); err != nil {
		return err
	}
	return serializeDigest(s, ref.Digest.Digest())
}

func serializeObjectIDs(s serde.Serializer, ids []types.ObjectID) error {
	if err := s.SerializeLen(uint64(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		if err := serializeObjectID(s, id); err != nil {
			return err
		}
	}
	return nil
}

func serializeModules(s serde.Serializer, modules [][]byte) error {
	if err := s.SerializeLen(uint64(len(modules))); err != nil {
		return err
	}
	for _, m := range modules {
		if err := s.SerializeBytes(m); err != nil {
			return err
		}
	}
	return nil
}
