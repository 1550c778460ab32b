package token

import (
	"errors"
	"fmt"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var ErrTokenExists = errors.New("token: identity already deployed")

// Factory instantiates token ledgers with deterministic identities. The
// identity is derived from the deployer, the metadata and a caller-supplied
// seed; the seed carries no semantic weight beyond distinguishing repeated
// deployments with identical name and symbol.
type Factory struct {
	mu       sync.RWMutex
	deployer [20]byte
	tokens   map[[20]byte]*Ledger
}

// NewFactory creates a factory attributed to the supplied deployer identity.
func NewFactory(deployer [20]byte) *Factory {
	return &Factory{deployer: deployer, tokens: make(map[[20]byte]*Ledger)}
}

// DeriveAddress computes the identity a deployment with these inputs would be
// assigned.
func (f *Factory) DeriveAddress(name, symbol string, seed []byte) [20]byte {
	material := make([]byte, 0, 20+len(name)+len(symbol)+len(seed))
	material = append(material, f.deployer[:]...)
	material = append(material, []byte(name)...)
	material = append(material, []byte(symbol)...)
	material = append(material, seed...)
	digest := ethcrypto.Keccak256(material)
	var addr [20]byte
	copy(addr[:], digest[12:])
	return addr
}

// Deploy instantiates a new token ledger and registers it under its derived
// identity. Deploying the same name/symbol/seed combination twice fails.
func (f *Factory) Deploy(name, symbol string, seed []byte) (*Ledger, error) {
	addr := f.DeriveAddress(name, symbol, seed)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[addr]; ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrTokenExists, name, symbol)
	}
	ledger := NewLedger(addr, name, symbol)
	f.tokens[addr] = ledger
	return ledger, nil
}

// Get returns the ledger deployed under the supplied identity.
func (f *Factory) Get(addr [20]byte) (*Ledger, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ledger, ok := f.tokens[addr]
	return ledger, ok
}
