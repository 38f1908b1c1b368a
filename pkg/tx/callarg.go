package tx

import (
	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"

	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// CallArg is a transaction input: pure BCS bytes or an object.
type CallArg interface {
	serializable
	// addTo registers the input with a builder and returns its argument.
	addTo(b *Builder) (Argument, error)
}

// PureArg holds the BCS encoding of a plain value.
type PureArg struct {
	Bytes []byte
}

// ObjectCallArg is an object input.
type ObjectCallArg struct {
	Object ObjectArg
}

func (p PureArg) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(0); err != nil {
		return err
	}
	return s.SerializeBytes(p.Bytes)
}

func (o ObjectCallArg) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(1); err != nil {
		return err
	}
	return o.Object.serialize(s)
}

func (p PureArg) addTo(b *Builder) (Argument, error)       { return b.pureBytes(p.Bytes, false) }
func (o ObjectCallArg) addTo(b *Builder) (Argument, error) { return b.Obj(o.Object) }

// ObjectArg describes how an object enters a transaction.
type ObjectArg interface {
	serializable
	ID() types.ObjectID
	kind() string
}

// ImmOrOwnedObject is an owned or immutable object pinned by reference.
type ImmOrOwnedObject struct {
	Ref types.ObjectRef
}

// SharedObject is a consensus object. Mutable requests write access.
type SharedObject struct {
	ObjectID             types.ObjectID
	InitialSharedVersion types.SequenceNumber
	Mutable              bool
}

// ReceivingObject is an object sent to another object, received in this
// transaction.
type ReceivingObject struct {
	Ref types.ObjectRef
}

func (o ImmOrOwnedObject) ID() types.ObjectID { return o.Ref.ObjectID }
func (o SharedObject) ID() types.ObjectID     { return o.ObjectID }
func (o ReceivingObject) ID() types.ObjectID  { return o.Ref.ObjectID }

func (ImmOrOwnedObject) kind() string { return "owned" }
func (SharedObject) kind() string     { return "shared" }
func (ReceivingObject) kind() string  { return "receiving" }

func (o ImmOrOwnedObject) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(0); err != nil {
		return err
	}
	return serializeObjectRef(s, o.Ref)
}

func (o SharedObject) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(1); err != nil {
		return err
	}
	if err := serializeObjectID(s, o.ObjectID); err != nil {
		return err
	}
	if err := s.SerializeU64(uint64(o.InitialSharedVersion)); err != nil {
		return err
	}
	return s.SerializeBool(o.Mutable)
}

func (o ReceivingObject) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(2); err != nil {
		return err
	}
	return serializeObjectRef(s, o.Ref)
}
