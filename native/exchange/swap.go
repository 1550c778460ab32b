package exchange

import (
	"fmt"
	"math/big"

	"swapdex/core/events"
	nativecommon "swapdex/native/common"
)

// SwapNativeToToken converts the supplied native amount into the token at the
// slot at the fixed rate. The conversion floors to whole UNIT steps: the
// sub-UNIT remainder buys nothing and is retained by the engine rather than
// refunded. A computed output of zero is a deliberate no-op, not a failure:
// the deposit is kept, nothing is transferred and no event is emitted.
func (e *Engine) SwapNativeToToken(caller [20]byte, slot uint8, nativeAmount *big.Int) (*big.Int, error) {
	if err := e.checkWiring(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	entry, err := e.entry(slot)
	if err != nil {
		return nil, err
	}

	supplied := big.NewInt(0)
	if nativeAmount != nil && nativeAmount.Sign() > 0 {
		supplied = new(big.Int).Set(nativeAmount)
	}
	out := new(big.Int).Quo(supplied, e.unit)
	out.Mul(out, TokenScale)

	if supplied.Sign() > 0 {
		if err := e.ledger.Transfer(caller, e.self, supplied); err != nil {
			return nil, fmt.Errorf("exchange: native deposit: %w", err)
		}
	}
	if out.Sign() == 0 {
		return big.NewInt(0), nil
	}

	if entry.Token.BalanceOf(e.self).Cmp(out) < 0 {
		e.refundNative(caller, supplied)
		return nil, ErrInsufficientTokens
	}
	if !entry.Token.Transfer(caller, out) {
		e.refundNative(caller, supplied)
		return nil, ErrTransferFailed
	}

	e.emit(events.NativeToTokenSwap{
		Caller:    caller,
		Slot:      slot,
		NativeIn:  supplied,
		TokensOut: out,
	})
	return out, nil
}

// SwapTokenToNative converts the caller's tokens at the slot back into native
// currency. Whole token units are paid out at the fixed rate; a fractional
// remainder below one whole unit is still pulled from the caller but yields
// zero native currency.
func (e *Engine) SwapTokenToNative(caller [20]byte, slot uint8, amount *big.Int) (*big.Int, error) {
	if err := e.checkWiring(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	entry, err := e.entry(slot)
	if err != nil {
		return nil, err
	}
	if err := positive(amount); err != nil {
		return nil, err
	}
	if entry.Token.BalanceOf(caller).Cmp(amount) < 0 {
		return nil, ErrInsufficientCallerTokens
	}

	owed := new(big.Int).Quo(amount, TokenScale)
	owed.Mul(owed, e.unit)

	engineNative, err := e.ledger.BalanceOf(e.self)
	if err != nil {
		return nil, err
	}
	if engineNative.Cmp(owed) < 0 {
		return nil, ErrEngineUnderfunded
	}

	if !entry.Token.TransferFrom(caller, e.self, amount) {
		return nil, ErrTokenTransferFailed
	}
	if owed.Sign() > 0 {
		if err := e.ledger.Transfer(e.self, caller, owed); err != nil {
			// Reverse the pull so the failed call leaves balances unchanged.
			// The reversal is best effort and the allowance consumed by the
			// pull stays spent: the capability surface has no approve call.
			entry.Token.Transfer(caller, amount)
			return nil, ErrTransferFailed
		}
	}

	e.emit(events.TokenToNativeSwap{
		Caller:    caller,
		Slot:      slot,
		TokensIn:  new(big.Int).Set(amount),
		NativeOut: owed,
	})
	return owed, nil
}

// SwapTokenToToken exchanges the caller's source tokens one-to-one for the
// engine's destination tokens. No rate conversion applies. Both transfer legs
// succeed or the operation fails with the first leg reversed.
func (e *Engine) SwapTokenToToken(caller [20]byte, sourceSlot, destSlot uint8, amount *big.Int) error {
	if err := e.checkWiring(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	source, err := e.entry(sourceSlot)
	if err != nil {
		return err
	}
	dest, err := e.entry(destSlot)
	if err != nil {
		return err
	}
	if sourceSlot == destSlot {
		return ErrTokensMustDiffer
	}
	if err := positive(amount); err != nil {
		return err
	}
	if source.Token.BalanceOf(caller).Cmp(amount) < 0 {
		return ErrInsufficientSourceTokens
	}
	if dest.Token.BalanceOf(e.self).Cmp(amount) < 0 {
		return ErrInsufficientDestinationTokens
	}

	if !source.Token.TransferFrom(caller, e.self, amount) {
		return ErrTokenTransferFailed
	}
	if !dest.Token.Transfer(caller, amount) {
		// Best-effort reversal of the pull; the spent allowance is not
		// restored.
		source.Token.Transfer(caller, amount)
		return ErrTransferFailed
	}

	e.emit(events.TokenToTokenSwap{
		Caller:     caller,
		SourceSlot: sourceSlot,
		DestSlot:   destSlot,
		Amount:     new(big.Int).Set(amount),
	})
	return nil
}

// refundNative returns a retained deposit after a failed swap leg. The refund
// is best effort: the primary failure is what surfaces to the caller.
func (e *Engine) refundNative(caller [20]byte, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	_ = e.ledger.Transfer(e.self, caller, amount)
}
