package tx

import (
	"fmt"

	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"
)

// Argument refers to a value available to a command: the gas coin, a
// transaction input, or the result of an earlier command.
// Implementations are comparable and may be used as map keys.
type Argument interface {
	serializable
	fmt.Stringer
	isArgument()
}

// GasCoinArg is the coin paying for gas.
type GasCoinArg struct{}

// InputArg is the input at Index.
type InputArg struct{ Index uint16 }

// ResultArg is the whole result of command Index.
type ResultArg struct{ Index uint16 }

// NestedResultArg is element Sub of the result of command Index.
type NestedResultArg struct{ Index, Sub uint16 }

// GasCoin returns the gas coin argument.
func GasCoin() Argument { return GasCoinArg{} }

// Input returns an argument referencing input i.
func Input(i uint16) Argument { return InputArg{Index: i} }

// Result returns an argument referencing the result of command i.
func Result(i uint16) Argument { return ResultArg{Index: i} }

// NestedResult returns an argument referencing element j of command i's result.
func NestedResult(i, j uint16) Argument { return NestedResultArg{Index: i, Sub: j} }

func (GasCoinArg) isArgument()      {}
func (InputArg) isArgument()        {}
func (ResultArg) isArgument()       {}
func (NestedResultArg) isArgument() {}

func (GasCoinArg) serialize(s serde.Serializer) error {
	return s.SerializeVariantIndex(0)
}

func (a InputArg) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(1); err != nil {
		return err
	}
	return s.SerializeU16(a.Index)
}

func (a ResultArg) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(2); err != nil {
		return err
	}
	return s.SerializeU16(a.Index)
}

func (a NestedResultArg) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(3); err != nil {
		return err
	}
	if err := s.SerializeU16(a.Index); err != nil {
		return err
	}
	return s.SerializeU16(a.Sub)
}

func (GasCoinArg) String() string        { return "GasCoin" }
func (a InputArg) String() string        { return fmt.Sprintf("Input(%d)", a.Index) }
func (a ResultArg) String() string       { return fmt.Sprintf("Result(%d)", a.Index) }
func (a NestedResultArg) String() string { return fmt.Sprintf("NestedResult(%d,%d)", a.Index, a.Sub) }
