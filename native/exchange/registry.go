package exchange

import (
	"math/big"

	"swapdex/core/events"
	nativecommon "swapdex/native/common"
)

// RegisterToken deploys a new token capability and appends it at the next free
// registry slot. Only the owner may register tokens and at most MaxTokens may
// ever be registered; entries are never replaced or removed. The seed exists
// solely to make repeated registrations with identical name and symbol produce
// distinguishable instances.
func (e *Engine) RegisterToken(caller [20]byte, name, symbol string, seed []byte) (uint8, error) {
	if err := e.requireOwner(caller); err != nil {
		return 0, err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return 0, err
	}
	if e.factory == nil {
		return 0, errNilFactory
	}
	if err := e.acquire(); err != nil {
		return 0, err
	}
	defer e.release()

	e.mu.Lock()
	count := len(e.registry)
	e.mu.Unlock()
	if count >= MaxTokens {
		return 0, &CapacityError{Count: count}
	}

	tok, addr, err := e.factory.Deploy(e.self, name, symbol, seed)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	slot := uint8(len(e.registry))
	e.registry = append(e.registry, RegistryEntry{Token: tok, Address: addr})
	e.mu.Unlock()

	e.emit(events.TokenRegistered{
		Engine: e.self,
		Token:  addr,
		Name:   name,
		Symbol: symbol,
		Slot:   slot,
	})
	return slot, nil
}

// TokenCount reports how many tokens have been registered.
func (e *Engine) TokenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.registry)
}

// TokenName returns the name reported by the token at the slot.
func (e *Engine) TokenName(slot uint8) (string, error) {
	entry, err := e.entry(slot)
	if err != nil {
		return "", err
	}
	return entry.Token.Name(), nil
}

// TokenAddress returns the identity the token at the slot was deployed under.
func (e *Engine) TokenAddress(slot uint8) ([20]byte, error) {
	entry, err := e.entry(slot)
	if err != nil {
		return [20]byte{}, err
	}
	return entry.Address, nil
}

// BalanceOf returns the holder's balance of the token at the slot.
func (e *Engine) BalanceOf(slot uint8, holder [20]byte) (*big.Int, error) {
	entry, err := e.entry(slot)
	if err != nil {
		return nil, err
	}
	return entry.Token.BalanceOf(holder), nil
}
