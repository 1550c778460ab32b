package exchange

import (
	"errors"
	"fmt"

	"swapdex/crypto"
)

// Runtime validation failures discovered at execution time. Every one aborts
// the whole call with no state mutation; none is retried internally.
var (
	ErrAmountMustBePositive          = errors.New("exchange: amount must be positive")
	ErrInsufficientTokens            = errors.New("exchange: engine token balance too low")
	ErrInsufficientCallerTokens      = errors.New("exchange: caller token balance too low")
	ErrInsufficientSourceTokens      = errors.New("exchange: caller source token balance too low")
	ErrInsufficientDestinationTokens = errors.New("exchange: engine destination token balance too low")
	ErrEngineUnderfunded             = errors.New("exchange: engine native balance too low")
	ErrTokenTransferFailed           = errors.New("exchange: token transfer from caller failed")
	ErrTransferFailed                = errors.New("exchange: transfer failed")
	ErrTokensMustDiffer              = errors.New("exchange: source and destination tokens must differ")
	ErrInsufficientBalance           = errors.New("exchange: insufficient balance")
	ErrReentrancy                    = errors.New("exchange: reentrant call rejected")
)

// InvalidSlotError reports a reference to a registry slot that has not been
// populated. It is raised before any state change.
type InvalidSlotError struct {
	Slot uint8
}

func (e *InvalidSlotError) Error() string {
	return fmt.Sprintf("exchange: invalid token slot %d", e.Slot)
}

// CapacityError reports a registration attempt beyond the fixed registry
// capacity.
type CapacityError struct {
	Count int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("exchange: token capacity exceeded with %d registered", e.Count)
}

// AccessDeniedError reports an owner-only operation attempted by another
// identity.
type AccessDeniedError struct {
	Caller [20]byte
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("exchange: access denied for %s", crypto.NewAddress(crypto.DexPrefix, e.Caller[:]).String())
}
