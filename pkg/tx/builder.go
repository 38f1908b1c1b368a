package tx

import (
	"fmt"
	"math"

	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/bcs"
	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"

	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// PureMarshaler is implemented by values that provide their own BCS form
// for use as a pure input.
type PureMarshaler interface {
	MarshalBCS() ([]byte, error)
}

// EncodePure returns the BCS encoding of a plain value.
// Supported: bool, unsigned integers, string, []byte, types.Address,
// types.ObjectID, []types.Address, []uint64 and PureMarshaler.
func EncodePure(v any) ([]byte, error) {
	if m, ok := v.(PureMarshaler); ok {
		return m.MarshalBCS()
	}
	s := bcs.NewSerializer()
	if err := encodePure(s, v); err != nil {
		return nil, err
	}
	return s.GetBytes(), nil
}

func encodePure(s serde.Serializer, v any) error {
	var err error
	switch x := v.(type) {
	case bool:
		err = s.SerializeBool(x)
	case uint8:
		err = s.SerializeU8(x)
	case uint16:
		err = s.SerializeU16(x)
	case uint32:
		err = s.SerializeU32(x)
	case uint64:
		err = s.SerializeU64(x)
	case string:
		err = s.SerializeStr(x)
	case []byte:
		err = s.SerializeBytes(x)
	case types.Address:
		err = serializeAddress(s, x)
	case types.ObjectID:
		err = serializeObjectID(s, x)
	case []types.Address:
		if err = s.SerializeLen(uint64(len(x))); err == nil {
			for _, a := range x {
				if err = serializeAddress(s, a); err != nil {
					break
				}
			}
		}
	case []uint64:
		if err = s.SerializeLen(uint64(len(x))); err == nil {
			for _, n := range x {
				if err = s.SerializeU64(n); err != nil {
					break
				}
			}
		}
	default:
		return fmt.Errorf("%w: unsupported pure value of type %T", ErrBcs, v)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBcs, err)
	}
	return nil
}

type inputKind uint8

const (
	inputObject inputKind = iota
	inputPure
	inputForcedPure
)

// inputKey identifies an input slot. Objects dedupe by id, pure values by
// their bytes; forced pure inputs are unique by insertion position.
type inputKey struct {
	kind inputKind
	id   types.ObjectID
	pure string
	pos  int
}

// Builder constructs a programmable transaction incrementally. Equal pure
// values and repeated objects share one input slot. Once Finish is called
// every method returns ErrBuilderFinished.
type Builder struct {
	slots    map[inputKey]int
	inputs   []CallArg
	commands []Command
	finished bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{slots: make(map[inputKey]int)}
}

func (b *Builder) check() error {
	if b.finished {
		return ErrBuilderFinished
	}
	return nil
}

func (b *Builder) insert(key inputKey, arg CallArg) (Argument, error) {
	if idx, ok := b.slots[key]; ok {
		return InputArg{Index: uint16(idx)}, nil
	}
	if len(b.inputs) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: more than %d inputs", ErrInvariantViolation, math.MaxUint16+1)
	}
	idx := len(b.inputs)
	b.slots[key] = idx
	b.inputs = append(b.inputs, arg)
	return InputArg{Index: uint16(idx)}, nil
}

// Pure adds the BCS encoding of v as an input, reusing the slot of an
// identical earlier value.
func (b *Builder) Pure(v any) (Argument, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	raw, err := EncodePure(v)
	if err != nil {
		return nil, err
	}
	return b.pureBytes(raw, false)
}

// ForceSeparatePure adds v as a new input even if an identical value exists.
func (b *Builder) ForceSeparatePure(v any) (Argument, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	raw, err := EncodePure(v)
	if err != nil {
		return nil, err
	}
	return b.pureBytes(raw, true)
}

// PureBytes adds already encoded BCS bytes as an input.
func (b *Builder) PureBytes(raw []byte, forceSeparate bool) (Argument, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	return b.pureBytes(raw, forceSeparate)
}

func (b *Builder) pureBytes(raw []byte, forceSeparate bool) (Argument, error) {
	key := inputKey{kind: inputPure, pure: string(raw)}
	if forceSeparate {
		key = inputKey{kind: inputForcedPure, pos: len(b.inputs)}
	}
	return b.insert(key, PureArg{Bytes: append([]byte(nil), raw...)})
}

// Obj adds an object input. Adding the same object again returns the
// existing slot: two shared references with the same initial version merge
// with mutable = a.mutable || b.mutable, any other pair must be identical.
func (b *Builder) Obj(arg ObjectArg) (Argument, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	id := arg.ID()
	key := inputKey{kind: inputObject, id: id}
	idx, ok := b.slots[key]
	if !ok {
		return b.insert(key, ObjectCallArg{Object: arg})
	}

	prev, ok := b.inputs[idx].(ObjectCallArg)
	if !ok {
		return nil, fmt.Errorf("%w: object %s already used as a pure input", ErrInvariantViolation, id)
	}
	merged, err := mergeObjectArgs(prev.Object, arg)
	if err != nil {
		return nil, err
	}
	b.inputs[idx] = ObjectCallArg{Object: merged}
	return InputArg{Index: uint16(idx)}, nil
}

func mergeObjectArgs(prev, next ObjectArg) (ObjectArg, error) {
	ps, pShared := prev.(SharedObject)
	ns, nShared := next.(SharedObject)
	if pShared && nShared && ps.InitialSharedVersion == ns.InitialSharedVersion {
		ps.Mutable = ps.Mutable || ns.Mutable
		return ps, nil
	}
	if prev == next {
		return prev, nil
	}
	return nil, fmt.Errorf("%w: object %s given as %s and %s", ErrMismatch, prev.ID(), describeObjectArg(prev), describeObjectArg(next))
}

func describeObjectArg(arg ObjectArg) string {
	switch a := arg.(type) {
	case SharedObject:
		return fmt.Sprintf("shared(v%d, mutable=%t)", a.InitialSharedVersion, a.Mutable)
	case ImmOrOwnedObject:
		return fmt.Sprintf("owned(%s)", a.Ref)
	case ReceivingObject:
		return fmt.Sprintf("receiving(%s)", a.Ref)
	}
	return arg.kind()
}

// Input adds a prepared call argument.
func (b *Builder) Input(arg CallArg) (Argument, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	return arg.addTo(b)
}

// MakeObjVec adds each object and a MakeMoveVec over them.
func (b *Builder) MakeObjVec(objs []ObjectArg) (Argument, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	elems := make([]Argument, 0, len(objs))
	for _, o := range objs {
		arg, err := b.Obj(o)
		if err != nil {
			return nil, err
		}
		elems = append(elems, arg)
	}
	return b.Command(MakeMoveVec{Elements: elems})
}

// Command appends cmd and returns a Result argument referencing it.
func (b *Builder) Command(cmd Command) (Argument, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if len(b.commands) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: more than %d commands", ErrInvariantViolation, math.MaxUint16+1)
	}
	b.commands = append(b.commands, cmd)
	return ResultArg{Index: uint16(len(b.commands) - 1)}, nil
}

// MoveCall adds args as inputs and calls pkg::module::function.
func (b *Builder) MoveCall(pkg types.ObjectID, module, function string, typeArgs []TypeTag, args []CallArg) error {
	if err := b.check(); err != nil {
		return err
	}
	callArgs := make([]Argument, 0, len(args))
	for _, a := range args {
		arg, err := b.Input(a)
		if err != nil {
			return err
		}
		callArgs = append(callArgs, arg)
	}
	_, err := b.Command(MoveCall{
		Package:       pkg,
		Module:        module,
		Function:      function,
		TypeArguments: typeArgs,
		Arguments:     callArgs,
	})
	return err
}

// ProgrammableMoveCall calls pkg::module::function with existing arguments.
func (b *Builder) ProgrammableMoveCall(pkg types.ObjectID, module, function string, typeArgs []TypeTag, args []Argument) (Argument, error) {
	return b.Command(MoveCall{
		Package:       pkg,
		Module:        module,
		Function:      function,
		TypeArguments: typeArgs,
		Arguments:     args,
	})
}

// TransferArg transfers one argument to recipient.
func (b *Builder) TransferArg(recipient types.Address, arg Argument) error {
	return b.TransferArgs(recipient, []Argument{arg})
}

// TransferArgs transfers args to recipient.
func (b *Builder) TransferArgs(recipient types.Address, args []Argument) error {
	rec, err := b.Pure(recipient)
	if err != nil {
		return err
	}
	_, err = b.Command(TransferObjects{Objects: args, Address: rec})
	return err
}

// TransferObject transfers an owned object to recipient.
func (b *Builder) TransferObject(recipient types.Address, ref types.ObjectRef) error {
	rec, err := b.Pure(recipient)
	if err != nil {
		return err
	}
	obj, err := b.Obj(ImmOrOwnedObject{Ref: ref})
	if err != nil {
		return err
	}
	_, err = b.Command(TransferObjects{Objects: []Argument{obj}, Address: rec})
	return err
}

// TransferAmount sends amount from the gas coin to recipient. A nil
// amount transfers the whole gas coin.
func (b *Builder) TransferAmount(recipient types.Address, amount *uint64) error {
	rec, err := b.Pure(recipient)
	if err != nil {
		return err
	}
	coin := GasCoin()
	if amount != nil {
		amt, err := b.Pure(*amount)
		if err != nil {
			return err
		}
		if coin, err = b.Command(SplitCoins{Coin: GasCoin(), Amounts: []Argument{amt}}); err != nil {
			return err
		}
	}
	_, err = b.Command(TransferObjects{Objects: []Argument{coin}, Address: rec})
	return err
}

// PayAll transfers the whole gas coin to recipient.
func (b *Builder) PayAll(recipient types.Address) error {
	rec, err := b.Pure(recipient)
	if err != nil {
		return err
	}
	_, err = b.Command(TransferObjects{Objects: []Argument{GasCoin()}, Address: rec})
	return err
}

// PayFromGas splits amounts off the gas coin and sends them to recipients.
func (b *Builder) PayFromGas(recipients []types.Address, amounts []uint64) error {
	if err := b.check(); err != nil {
		return err
	}
	return b.pay(recipients, amounts, GasCoin())
}

// Pay merges coins into the first one, then splits amounts off it and sends
// them to recipients.
func (b *Builder) Pay(coins []types.ObjectRef, recipients []types.Address, amounts []uint64) error {
	if err := b.check(); err != nil {
		return err
	}
	if len(coins) == 0 {
		return fmt.Errorf("%w: coins vector is empty", ErrLengthMismatch)
	}
	if len(recipients) != len(amounts) {
		return lengthMismatch(recipients, amounts)
	}
	coin, err := b.Obj(ImmOrOwnedObject{Ref: coins[0]})
	if err != nil {
		return err
	}
	if len(coins) > 1 {
		sources := make([]Argument, 0, len(coins)-1)
		for _, ref := range coins[1:] {
			arg, err := b.Obj(ImmOrOwnedObject{Ref: ref})
			if err != nil {
				return err
			}
			sources = append(sources, arg)
		}
		if _, err := b.Command(MergeCoins{Destination: coin, Sources: sources}); err != nil {
			return err
		}
	}
	return b.pay(recipients, amounts, coin)
}

func lengthMismatch(recipients []types.Address, amounts []uint64) error {
	return fmt.Errorf("%w: got %d recipients but %d amounts", ErrLengthMismatch, len(recipients), len(amounts))
}

// pay emits one SplitCoins for all amounts, then one TransferObjects per
// distinct recipient in first-seen order.
func (b *Builder) pay(recipients []types.Address, amounts []uint64, coin Argument) error {
	if len(recipients) != len(amounts) {
		return lengthMismatch(recipients, amounts)
	}
	if len(amounts) == 0 {
		return nil
	}

	amtArgs := make([]Argument, 0, len(amounts))
	for _, amt := range amounts {
		arg, err := b.Pure(amt)
		if err != nil {
			return err
		}
		amtArgs = append(amtArgs, arg)
	}
	res, err := b.Command(SplitCoins{Coin: coin, Amounts: amtArgs})
	if err != nil {
		return err
	}
	split := res.(ResultArg).Index

	var order []types.Address
	coinsFor := make(map[types.Address][]Argument)
	for i, r := range recipients {
		if _, ok := coinsFor[r]; !ok {
			order = append(order, r)
		}
		coinsFor[r] = append(coinsFor[r], NestedResult(split, uint16(i)))
	}
	for _, r := range order {
		if err := b.TransferArgs(r, coinsFor[r]); err != nil {
			return err
		}
	}
	return nil
}

// Finish returns the built transaction. The builder cannot be used after.
func (b *Builder) Finish() (ProgrammableTransaction, error) {
	if err := b.check(); err != nil {
		return ProgrammableTransaction{}, err
	}
	b.finished = true
	return ProgrammableTransaction{Inputs: b.inputs, Commands: b.commands}, nil
}
