package token

import (
	"math/big"
	"strings"
	"sync"
)

// DefaultDecimals matches the smallest-unit scale used by the exchange rate
// arithmetic (10^18 subunits per whole token).
const DefaultDecimals = 18

// Ledger is the shared bookkeeping state of one fungible token: balances and
// allowances keyed by 20-byte identities. All mutating paths report success as
// a boolean, mirroring the capability contract consumed by the exchange.
type Ledger struct {
	mu          sync.RWMutex
	address     [20]byte
	name        string
	symbol      string
	decimals    uint8
	totalSupply *big.Int
	balances    map[[20]byte]*big.Int
	allowances  map[[20]byte]map[[20]byte]*big.Int
}

// NewLedger creates an empty token ledger with the supplied metadata.
func NewLedger(address [20]byte, name, symbol string) *Ledger {
	return &Ledger{
		address:     address,
		name:        strings.TrimSpace(name),
		symbol:      strings.TrimSpace(symbol),
		decimals:    DefaultDecimals,
		totalSupply: big.NewInt(0),
		balances:    make(map[[20]byte]*big.Int),
		allowances:  make(map[[20]byte]map[[20]byte]*big.Int),
	}
}

// Address returns the deterministic identity assigned at deployment.
func (l *Ledger) Address() [20]byte { return l.address }

// Name returns the token name.
func (l *Ledger) Name() string { return l.name }

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// Decimals returns the smallest-unit exponent.
func (l *Ledger) Decimals() uint8 { return l.decimals }

// TotalSupply returns a copy of the minted supply.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.totalSupply)
}

// BalanceOf returns a copy of the balance held by the identity.
func (l *Ledger) BalanceOf(holder [20]byte) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if balance, ok := l.balances[holder]; ok {
		return new(big.Int).Set(balance)
	}
	return big.NewInt(0)
}

// Allowance returns the amount spender may move on behalf of owner.
func (l *Ledger) Allowance(owner, spender [20]byte) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if granted, ok := l.allowances[owner]; ok {
		if amount, ok := granted[spender]; ok {
			return new(big.Int).Set(amount)
		}
	}
	return big.NewInt(0)
}

// Mint credits newly created tokens to the recipient.
func (l *Ledger) Mint(to [20]byte, amount *big.Int) bool {
	if amount == nil || amount.Sign() < 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, amount)
	l.totalSupply = new(big.Int).Add(l.totalSupply, amount)
	return true
}

// Approve authorises spender to move up to amount from owner's balance.
func (l *Ledger) Approve(owner, spender [20]byte, amount *big.Int) bool {
	if amount == nil || amount.Sign() < 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	granted, ok := l.allowances[owner]
	if !ok {
		granted = make(map[[20]byte]*big.Int)
		l.allowances[owner] = granted
	}
	granted[spender] = new(big.Int).Set(amount)
	return true
}

// Transfer moves amount from the sender's balance to the recipient.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) bool {
	if amount == nil || amount.Sign() < 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// TransferFrom moves amount from the owner's balance using the spender's
// allowance. The allowance is reduced only when the move succeeds.
func (l *Ledger) TransferFrom(spender, from, to [20]byte, amount *big.Int) bool {
	if amount == nil || amount.Sign() < 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	granted, ok := l.allowances[from]
	if !ok {
		return false
	}
	remaining, ok := granted[spender]
	if !ok || remaining.Cmp(amount) < 0 {
		return false
	}
	if !l.move(from, to, amount) {
		return false
	}
	granted[spender] = new(big.Int).Sub(remaining, amount)
	return true
}

func (l *Ledger) move(from, to [20]byte, amount *big.Int) bool {
	balance, ok := l.balances[from]
	if !ok || balance.Cmp(amount) < 0 {
		return false
	}
	l.balances[from] = new(big.Int).Sub(balance, amount)
	l.credit(to, amount)
	return true
}

func (l *Ledger) credit(to [20]byte, amount *big.Int) {
	if existing, ok := l.balances[to]; ok {
		l.balances[to] = new(big.Int).Add(existing, amount)
		return
	}
	l.balances[to] = new(big.Int).Set(amount)
}

// Handle binds a token ledger to an acting identity so the four-method
// capability surface can be offered without ambient caller context: Transfer
// spends the actor's balance, TransferFrom spends an allowance granted to the
// actor.
type Handle struct {
	ledger *Ledger
	actor  [20]byte
}

// HandleFor returns a capability handle acting as the supplied identity.
func (l *Ledger) HandleFor(actor [20]byte) *Handle {
	return &Handle{ledger: l, actor: actor}
}

// Name returns the token name.
func (h *Handle) Name() string { return h.ledger.Name() }

// BalanceOf returns the balance of the supplied holder.
func (h *Handle) BalanceOf(holder [20]byte) *big.Int {
	return h.ledger.BalanceOf(holder)
}

// Transfer moves amount from the bound actor to the recipient.
func (h *Handle) Transfer(to [20]byte, amount *big.Int) bool {
	return h.ledger.Transfer(h.actor, to, amount)
}

// TransferFrom moves amount from the owner to the recipient using the
// allowance previously granted to the bound actor.
func (h *Handle) TransferFrom(from, to [20]byte, amount *big.Int) bool {
	return h.ledger.TransferFrom(h.actor, from, to, amount)
}
