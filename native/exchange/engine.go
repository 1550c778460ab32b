package exchange

import (
	"errors"
	"math/big"
	"sync"

	"swapdex/core/events"
	nativecommon "swapdex/native/common"
)

var (
	errNilLedger  = errors.New("exchange engine: native ledger not configured")
	errNilFactory = errors.New("exchange engine: token factory not configured")
)

// Engine is the accounting and guard core of the exchange. It owns the token
// registry and the reentrancy lock, and brokers every conversion between the
// native currency and registered tokens at the fixed rate. All state the
// engine mutates directly is confined to the registry and the lock; balances
// live in the native ledger and the token capabilities.
type Engine struct {
	mu     sync.Mutex
	locked bool

	owner [20]byte
	self  [20]byte
	unit  *big.Int

	registry []RegistryEntry

	ledger  NativeLedger
	factory TokenFactory
	emitter events.Emitter
	pauses  nativecommon.PauseView
}

// NewEngine creates an exchange engine owned by the creating identity. The
// owner is immutable for the lifetime of the engine; there is no ownership
// transfer operation.
func NewEngine(owner, self [20]byte, ledger NativeLedger, factory TokenFactory) *Engine {
	return &Engine{
		owner:   owner,
		self:    self,
		unit:    new(big.Int).Set(DefaultUnit),
		ledger:  ledger,
		factory: factory,
		emitter: events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses configures the administrative pause view consulted before every
// mutating operation.
func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetUnit overrides the native-currency amount per conversion step. Intended
// for wiring at construction time; the rate is fixed once calls start flowing.
func (e *Engine) SetUnit(unit *big.Int) {
	if e == nil || unit == nil || unit.Sign() <= 0 {
		return
	}
	e.unit = new(big.Int).Set(unit)
}

// Owner returns the administrator identity fixed at construction.
func (e *Engine) Owner() [20]byte { return e.owner }

// Self returns the engine's own ledger identity.
func (e *Engine) Self() [20]byte { return e.self }

// Unit returns a copy of the conversion step amount.
func (e *Engine) Unit() *big.Int { return new(big.Int).Set(e.unit) }

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

// requireOwner gates owner-only operations. It has no side effects.
func (e *Engine) requireOwner(caller [20]byte) error {
	if caller != e.owner {
		return &AccessDeniedError{Caller: caller}
	}
	return nil
}

// acquire takes the reentrancy lock. A token capability that calls back into
// the engine while a guarded operation is in flight observes ErrReentrancy
// here; the flag is the single mechanism serializing external-call sequences.
func (e *Engine) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locked {
		return ErrReentrancy
	}
	e.locked = true
	return nil
}

// release drops the reentrancy lock unconditionally. Guarded operations defer
// it immediately after acquire so every exit path, including failures raised
// by external transfer calls, leaves the engine unlocked.
func (e *Engine) release() {
	e.mu.Lock()
	e.locked = false
	e.mu.Unlock()
}

func (e *Engine) checkWiring() error {
	if e == nil || e.ledger == nil {
		return errNilLedger
	}
	return nil
}

// entry resolves a registry slot, failing before any state change when the
// slot has not been populated.
func (e *Engine) entry(slot uint8) (RegistryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.registry) == 0 || int(slot) >= len(e.registry) {
		return RegistryEntry{}, &InvalidSlotError{Slot: slot}
	}
	return e.registry[slot], nil
}

func positive(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountMustBePositive
	}
	return nil
}
