package events

import (
	"math/big"
	"strconv"
	"strings"

	"swapdex/core/types"
	"swapdex/crypto"
)

const (
	// TypeTokenRegistered is emitted when the owner registers a new token.
	TypeTokenRegistered = "exchange.token.registered"
	// TypeNativeToTokenSwap is emitted after a native-to-token conversion settles.
	TypeNativeToTokenSwap = "exchange.swap.nativeToToken"
	// TypeTokenToNativeSwap is emitted after a token-to-native conversion settles.
	TypeTokenToNativeSwap = "exchange.swap.tokenToNative"
	// TypeTokenToTokenSwap is emitted after a one-to-one token swap settles.
	TypeTokenToTokenSwap = "exchange.swap.tokenToToken"
	// TypeTreasuryWithdrawal is emitted when the owner drains native funds.
	TypeTreasuryWithdrawal = "exchange.treasury.withdrawal"
)

type TokenRegistered struct {
	Engine [20]byte
	Token  [20]byte
	Name   string
	Symbol string
	Slot   uint8
}

func (TokenRegistered) EventType() string { return TypeTokenRegistered }

func (e TokenRegistered) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenRegistered,
		Attributes: map[string]string{
			"engine": crypto.NewAddress(crypto.DexPrefix, e.Engine[:]).String(),
			"token":  crypto.NewAddress(crypto.DexPrefix, e.Token[:]).String(),
			"name":   strings.TrimSpace(e.Name),
			"symbol": strings.TrimSpace(e.Symbol),
			"slot":   strconv.FormatUint(uint64(e.Slot), 10),
		},
	}
}

type NativeToTokenSwap struct {
	Caller    [20]byte
	Slot      uint8
	NativeIn  *big.Int
	TokensOut *big.Int
}

func (NativeToTokenSwap) EventType() string { return TypeNativeToTokenSwap }

func (e NativeToTokenSwap) Event() *types.Event {
	return &types.Event{
		Type: TypeNativeToTokenSwap,
		Attributes: map[string]string{
			"caller":    crypto.NewAddress(crypto.DexPrefix, e.Caller[:]).String(),
			"slot":      strconv.FormatUint(uint64(e.Slot), 10),
			"nativeIn":  formatAmount(e.NativeIn),
			"tokensOut": formatAmount(e.TokensOut),
		},
	}
}

type TokenToNativeSwap struct {
	Caller    [20]byte
	Slot      uint8
	TokensIn  *big.Int
	NativeOut *big.Int
}

func (TokenToNativeSwap) EventType() string { return TypeTokenToNativeSwap }

func (e TokenToNativeSwap) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenToNativeSwap,
		Attributes: map[string]string{
			"caller":    crypto.NewAddress(crypto.DexPrefix, e.Caller[:]).String(),
			"slot":      strconv.FormatUint(uint64(e.Slot), 10),
			"tokensIn":  formatAmount(e.TokensIn),
			"nativeOut": formatAmount(e.NativeOut),
		},
	}
}

type TokenToTokenSwap struct {
	Caller     [20]byte
	SourceSlot uint8
	DestSlot   uint8
	Amount     *big.Int
}

func (TokenToTokenSwap) EventType() string { return TypeTokenToTokenSwap }

func (e TokenToTokenSwap) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenToTokenSwap,
		Attributes: map[string]string{
			"caller":     crypto.NewAddress(crypto.DexPrefix, e.Caller[:]).String(),
			"sourceSlot": strconv.FormatUint(uint64(e.SourceSlot), 10),
			"destSlot":   strconv.FormatUint(uint64(e.DestSlot), 10),
			"amount":     formatAmount(e.Amount),
		},
	}
}

type TreasuryWithdrawal struct {
	Recipient [20]byte
	Amount    *big.Int
}

func (TreasuryWithdrawal) EventType() string { return TypeTreasuryWithdrawal }

func (e TreasuryWithdrawal) Event() *types.Event {
	return &types.Event{
		Type: TypeTreasuryWithdrawal,
		Attributes: map[string]string{
			"recipient": crypto.NewAddress(crypto.DexPrefix, e.Recipient[:]).String(),
			"amount":    formatAmount(e.Amount),
		},
	}
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
