package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// Builder and validation errors.
var (
	ErrInvariantViolation = errors.New("invariant violation")
	ErrLengthMismatch     = errors.New("length mismatch")
	ErrMismatch           = errors.New("object argument mismatch")
	ErrBcs                = errors.New("bcs serialization failed")
	ErrBuilderFinished    = errors.New("builder already finished")

	ErrNoCommands        = errors.New("transaction has no commands")
	ErrNoGasPayment      = errors.New("transaction has no gas payment")
	ErrZeroGasBudget     = errors.New("gas budget is zero")
	ErrZeroGasPrice      = errors.New("gas price is zero")
	ErrTooManyInputs     = errors.New("too many inputs")
	ErrTooManyCommands   = errors.New("too many commands")
	ErrDuplicateObject   = errors.New("duplicate object")
	ErrInvalidArgument   = errors.New("argument out of range")
	ErrForwardReference  = errors.New("command references a later result")
	ErrTooManyGasObjects = errors.New("too many gas objects")
)

// Limits on a single programmable transaction.
const (
	MaxInputs         = 2048
	MaxCommands       = 1024
	MaxGasPaymentObjs = 256
)

// Validate checks the structure of a programmable transaction: sizes,
// argument ranges and that commands only consume earlier results.
func (pt *ProgrammableTransaction) Validate() error {
	if len(pt.Commands) == 0 {
		return ErrNoCommands
	}
	if len(pt.Inputs) > MaxInputs {
		return fmt.Errorf("%w: %d inputs, max %d", ErrTooManyInputs, len(pt.Inputs), MaxInputs)
	}
	if len(pt.Commands) > MaxCommands {
		return fmt.Errorf("%w: %d commands, max %d", ErrTooManyCommands, len(pt.Commands), MaxCommands)
	}

	seen := make(map[types.ObjectID]bool)
	for i, in := range pt.Inputs {
		obj, ok := in.(ObjectCallArg)
		if !ok {
			continue
		}
		id := obj.Object.ID()
		if seen[id] {
			return fmt.Errorf("input %d: %w: %s", i, ErrDuplicateObject, id)
		}
		seen[id] = true
	}

	for i, cmd := range pt.Commands {
		for _, arg := range cmd.arguments() {
			if err := checkArgument(arg, i, len(pt.Inputs)); err != nil {
				return fmt.Errorf("command %d: %w", i, err)
			}
		}
	}
	return nil
}

func checkArgument(arg Argument, cmd, inputs int) error {
	switch a := arg.(type) {
	case InputArg:
		if int(a.Index) >= inputs {
			return fmt.Errorf("%w: %s with %d inputs", ErrInvalidArgument, a, inputs)
		}
	case ResultArg:
		if int(a.Index) >= cmd {
			return fmt.Errorf("%w: %s", ErrForwardReference, a)
		}
	case NestedResultArg:
		if int(a.Index) >= cmd {
			return fmt.Errorf("%w: %s", ErrForwardReference, a)
		}
	}
	return nil
}

// Validate checks the programmable body and the gas data. Gas coins must
// not also appear as object inputs.
func (d *TransactionData) Validate() error {
	if err := d.Kind.Validate(); err != nil {
		return err
	}
	g := d.GasData
	if len(g.Payment) == 0 {
		return ErrNoGasPayment
	}
	if len(g.Payment) > MaxGasPaymentObjs {
		return fmt.Errorf("%w: %d, max %d", ErrTooManyGasObjects, len(g.Payment), MaxGasPaymentObjs)
	}
	if g.Budget == 0 {
		return ErrZeroGasBudget
	}
	if g.Price == 0 {
		return ErrZeroGasPrice
	}
	inputs := make(map[types.ObjectID]bool)
	for _, in := range d.Kind.Inputs {
		if obj, ok := in.(ObjectCallArg); ok {
			inputs[obj.Object.ID()] = true
		}
	}
	gas := make(map[types.ObjectID]bool, len(g.Payment))
	for i, ref := range g.Payment {
		if gas[ref.ObjectID] || inputs[ref.ObjectID] {
			return fmt.Errorf("gas payment %d: %w: %s", i, ErrDuplicateObject, ref.ObjectID)
		}
		gas[ref.ObjectID] = true
	}
	return nil
}
