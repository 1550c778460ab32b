package state

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"swapdex/core/types"
	"swapdex/storage"
)

var (
	ErrAmountNegative    = errors.New("ledger: amount must not be negative")
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
)

var accountPrefix = []byte("ledger/account/")

// Ledger tracks native-currency balances for every identity known to the
// exchange. It is the in-process stand-in for the host chain's base-asset
// accounting: deposits are plain credits, payouts are synchronous transfers
// with no receive-side callback.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[[20]byte]*types.Account
	store    storage.Database
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[[20]byte]*types.Account)}
}

// NewPersistentLedger creates a ledger that writes every balance change
// through to the supplied store. Previously persisted balances are loaded
// lazily on first access.
func NewPersistentLedger(store storage.Database) *Ledger {
	return &Ledger{accounts: make(map[[20]byte]*types.Account), store: store}
}

func accountKey(addr [20]byte) []byte {
	buf := make([]byte, len(accountPrefix)+len(addr))
	copy(buf, accountPrefix)
	copy(buf[len(accountPrefix):], addr[:])
	return ethcrypto.Keccak256(buf)
}

type storedAccount struct {
	Nonce   uint64
	Balance *big.Int
}

// account returns the live account for addr, loading it from storage when a
// persisted copy exists. Callers must hold the write lock.
func (l *Ledger) account(addr [20]byte) (*types.Account, error) {
	if acc, ok := l.accounts[addr]; ok {
		return acc, nil
	}
	acc := types.NewAccount()
	if l.store != nil {
		raw, err := l.store.Get(accountKey(addr))
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			var stored storedAccount
			if err := rlp.DecodeBytes(raw, &stored); err != nil {
				return nil, fmt.Errorf("ledger: decode account: %w", err)
			}
			acc.Nonce = stored.Nonce
			if stored.Balance != nil {
				acc.Balance = new(big.Int).Set(stored.Balance)
			}
		}
	}
	l.accounts[addr] = acc
	return acc, nil
}

// persistBalance writes the record for addr with the prospective balance.
// Cached accounts must only be mutated after this succeeds so a storage
// failure leaves the observable ledger unchanged.
func (l *Ledger) persistBalance(addr [20]byte, acc *types.Account, balance *big.Int) error {
	if l.store == nil {
		return nil
	}
	if balance == nil {
		balance = big.NewInt(0)
	}
	encoded, err := rlp.EncodeToBytes(&storedAccount{Nonce: acc.Nonce, Balance: balance})
	if err != nil {
		return err
	}
	return l.store.Put(accountKey(addr), encoded)
}

// BalanceOf returns a copy of the native balance held by addr.
func (l *Ledger) BalanceOf(addr [20]byte) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, err := l.account(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(acc.Balance), nil
}

// Credit adds amount to the balance of addr. A zero amount is a no-op.
func (l *Ledger) Credit(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrAmountNegative
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, err := l.account(addr)
	if err != nil {
		return err
	}
	next := new(big.Int).Add(acc.Balance, amount)
	if err := l.persistBalance(addr, acc, next); err != nil {
		return err
	}
	acc.Balance = next
	return nil
}

// Debit removes amount from the balance of addr, failing without mutation when
// the balance does not cover it.
func (l *Ledger) Debit(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrAmountNegative
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, err := l.account(addr)
	if err != nil {
		return err
	}
	if acc.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	next := new(big.Int).Sub(acc.Balance, amount)
	if err := l.persistBalance(addr, acc, next); err != nil {
		return err
	}
	acc.Balance = next
	return nil
}

// Transfer atomically moves amount from one identity to another. Either both
// sides change or neither does.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrAmountNegative
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	src, err := l.account(from)
	if err != nil {
		return err
	}
	if src.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	if from == to {
		return nil
	}
	dst, err := l.account(to)
	if err != nil {
		return err
	}
	newSrc := new(big.Int).Sub(src.Balance, amount)
	newDst := new(big.Int).Add(dst.Balance, amount)
	if err := l.persistBalance(from, src, newSrc); err != nil {
		return err
	}
	if err := l.persistBalance(to, dst, newDst); err != nil {
		// Put the already-written source record back so disk does not drift
		// from the unchanged cache.
		_ = l.persistBalance(from, src, src.Balance)
		return err
	}
	src.Balance = newSrc
	dst.Balance = newDst
	return nil
}
