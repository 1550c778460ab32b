package exchange

import "math/big"

// MaxTokens is the fixed registry capacity.
const MaxTokens = 3

// moduleName identifies the exchange in the pause registry.
const moduleName = "exchange"

var (
	// DefaultUnit is the native-currency amount representing one conversion
	// step: 10^15 base units, so one whole native coin (10^18) buys a
	// thousand whole tokens at the fixed rate.
	DefaultUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil)
	// TokenScale is the smallest-subunit scale shared by every registered
	// token (10^18 subunits per whole token).
	TokenScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

// Token is the narrow capability surface the engine consumes. The engine never
// owns token balances directly; bookkeeping lives behind this interface and
// transfer outcomes are reported as booleans.
type Token interface {
	Name() string
	BalanceOf(holder [20]byte) *big.Int
	Transfer(to [20]byte, amount *big.Int) bool
	TransferFrom(from, to [20]byte, amount *big.Int) bool
}

// NativeLedger is the engine's view of the host ledger holding native-currency
// balances. Payouts are synchronous transfers with no receive-side callback.
type NativeLedger interface {
	BalanceOf(addr [20]byte) (*big.Int, error)
	Transfer(from, to [20]byte, amount *big.Int) error
}

// TokenFactory instantiates a new token capability on behalf of the engine and
// reports the opaque identity it was deployed under. The seed only serves to
// distinguish repeated deployments with identical metadata.
type TokenFactory interface {
	Deploy(engine [20]byte, name, symbol string, seed []byte) (Token, [20]byte, error)
}

// FactoryFunc adapts a plain function to the TokenFactory interface.
type FactoryFunc func(engine [20]byte, name, symbol string, seed []byte) (Token, [20]byte, error)

// Deploy implements the TokenFactory interface.
func (f FactoryFunc) Deploy(engine [20]byte, name, symbol string, seed []byte) (Token, [20]byte, error) {
	return f(engine, name, symbol, seed)
}

// RegistryEntry pairs a deployed token capability with its identity. Entries
// are created only by registration and never replaced or removed.
type RegistryEntry struct {
	Token   Token
	Address [20]byte
}
