package ledger

import (
	"errors"
	"fmt"
	"time"
)

// Facade errors.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrConfirmationTimeout = errors.New("transaction could not be confirmed")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransaction  = errors.New("invalid transaction id")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrZeroAmount          = errors.New("amount must be positive")
)

// InsufficientBalanceError reports the amount a send needed and the amount
// the wallet holds, both in base units.
type InsufficientBalanceError struct {
	Required uint64
	Found    uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%v: required %d, found %d", ErrInsufficientBalance, e.Required, e.Found)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// ConfirmationError is returned when a submitted transaction was not seen
// included before the polling deadline. It may still land later.
type ConfirmationError struct {
	TxID   string
	Waited time.Duration
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%v: %s not included after %s", ErrConfirmationTimeout, e.TxID, e.Waited)
}

func (e *ConfirmationError) Unwrap() error { return ErrConfirmationTimeout }
