package rpc

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"swapdex/crypto"
	"swapdex/native/exchange"
)

func decodeAddr(value string) ([20]byte, error) {
	var out [20]byte
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return out, err
	}
	copy(out[:], addr.Bytes())
	return out, nil
}

func encodeAddr(addr [20]byte) string {
	return crypto.NewAddress(crypto.DexPrefix, addr[:]).String()
}

func parseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("amount required")
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return amount, nil
}

// writeEngineError maps the engine's two error tiers onto JSON-RPC codes:
// structured invariant violations surface as invalid params with a payload,
// runtime validation failures as plain server errors with the verbatim reason.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	var slotErr *exchange.InvalidSlotError
	if errors.As(err, &slotErr) {
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, err.Error(), map[string]interface{}{"slot": slotErr.Slot})
		return
	}
	var capErr *exchange.CapacityError
	if errors.As(err, &capErr) {
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, err.Error(), map[string]interface{}{"count": capErr.Count})
		return
	}
	var accessErr *exchange.AccessDeniedError
	if errors.As(err, &accessErr) {
		writeError(w, http.StatusForbidden, id, codeInvalidParams, err.Error(), map[string]interface{}{"caller": encodeAddr(accessErr.Caller)})
		return
	}
	writeError(w, http.StatusBadRequest, id, codeServerError, err.Error(), nil)
}

func (s *Server) handleRegisterToken(w http.ResponseWriter, req *RPCRequest) error {
	var payload struct {
		Caller string `json:"caller"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
		Seed   string `json:"seed,omitempty"`
	}
	if err := decodeSingleParam(req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	caller, err := decodeAddr(payload.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return err
	}
	seed := []byte(payload.Seed)
	if decoded, err := hex.DecodeString(strings.TrimPrefix(payload.Seed, "0x")); err == nil && strings.HasPrefix(payload.Seed, "0x") {
		seed = decoded
	}
	slot, err := s.engine.RegisterToken(caller, payload.Name, payload.Symbol, seed)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return err
	}
	addr, err := s.engine.TokenAddress(slot)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{
		"slot":  slot,
		"token": encodeAddr(addr),
	})
	return nil
}

func (s *Server) handleSwapNativeToToken(w http.ResponseWriter, req *RPCRequest) error {
	var payload struct {
		Caller       string `json:"caller"`
		Slot         uint8  `json:"slot"`
		NativeAmount string `json:"nativeAmount"`
	}
	if err := decodeSingleParam(req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	caller, err := decodeAddr(payload.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return err
	}
	amount, err := parseAmount(payload.NativeAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	out, err := s.engine.SwapNativeToToken(caller, payload.Slot, amount)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{
		"nativeIn":  amount.String(),
		"tokensOut": out.String(),
	})
	return nil
}

func (s *Server) handleSwapTokenToNative(w http.ResponseWriter, req *RPCRequest) error {
	var payload struct {
		Caller string `json:"caller"`
		Slot   uint8  `json:"slot"`
		Amount string `json:"amount"`
	}
	if err := decodeSingleParam(req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	caller, err := decodeAddr(payload.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return err
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	owed, err := s.engine.SwapTokenToNative(caller, payload.Slot, amount)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{
		"tokensIn":  amount.String(),
		"nativeOut": owed.String(),
	})
	return nil
}

func (s *Server) handleSwapTokenToToken(w http.ResponseWriter, req *RPCRequest) error {
	var payload struct {
		Caller     string `json:"caller"`
		SourceSlot uint8  `json:"sourceSlot"`
		DestSlot   uint8  `json:"destSlot"`
		Amount     string `json:"amount"`
	}
	if err := decodeSingleParam(req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	caller, err := decodeAddr(payload.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return err
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	if err := s.engine.SwapTokenToToken(caller, payload.SourceSlot, payload.DestSlot, amount); err != nil {
		writeEngineError(w, req.ID, err)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{
		"amount": amount.String(),
	})
	return nil
}

func (s *Server) handleWithdraw(w http.ResponseWriter, req *RPCRequest) error {
	var payload struct {
		Caller string `json:"caller"`
		Amount string `json:"amount"`
	}
	if err := decodeSingleParam(req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	caller, err := decodeAddr(payload.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return err
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	if err := s.engine.Withdraw(caller, amount); err != nil {
		writeEngineError(w, req.ID, err)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{
		"recipient": encodeAddr(s.engine.Owner()),
		"amount":    amount.String(),
	})
	return nil
}

func (s *Server) handleDeposit(w http.ResponseWriter, req *RPCRequest) error {
	var payload struct {
		Caller string `json:"caller"`
		Amount string `json:"amount"`
	}
	if err := decodeSingleParam(req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	caller, err := decodeAddr(payload.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return err
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	if err := s.engine.Deposit(caller, amount); err != nil {
		writeEngineError(w, req.ID, err)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{"amount": amount.String()})
	return nil
}

func (s *Server) handleBalanceOf(w http.ResponseWriter, req *RPCRequest) error {
	var payload struct {
		Slot   uint8  `json:"slot"`
		Holder string `json:"holder"`
	}
	if err := decodeSingleParam(req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	holder, err := decodeAddr(payload.Holder)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid holder address", err.Error())
		return err
	}
	balance, err := s.engine.BalanceOf(payload.Slot, holder)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{"balance": balance.String()})
	return nil
}

func (s *Server) handleTokenName(w http.ResponseWriter, req *RPCRequest) error {
	var payload struct {
		Slot uint8 `json:"slot"`
	}
	if err := decodeSingleParam(req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	name, err := s.engine.TokenName(payload.Slot)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{"name": name})
	return nil
}

func (s *Server) handleTokenAddress(w http.ResponseWriter, req *RPCRequest) error {
	var payload struct {
		Slot uint8 `json:"slot"`
	}
	if err := decodeSingleParam(req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	addr, err := s.engine.TokenAddress(payload.Slot)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{"address": encodeAddr(addr)})
	return nil
}

func (s *Server) handleNativeBalance(w http.ResponseWriter, req *RPCRequest) error {
	balance, err := s.engine.NativeBalance()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{"balance": balance.String()})
	return nil
}

func (s *Server) handleEvents(w http.ResponseWriter, req *RPCRequest) error {
	if s.journal == nil {
		err := fmt.Errorf("event journal not configured")
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return err
	}
	payload := struct {
		From  uint64 `json:"from"`
		Limit int    `json:"limit"`
	}{}
	if len(req.Params) > 0 {
		if err := decodeSingleParam(req, &payload); err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return err
		}
	}
	list, err := s.journal.List(payload.From, payload.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{
		"total":  s.journal.Len(),
		"events": list,
	})
	return nil
}

func (s *Server) handleTokenApprove(w http.ResponseWriter, req *RPCRequest) error {
	if s.tokens == nil {
		err := fmt.Errorf("token factory not configured")
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return err
	}
	var payload struct {
		Token   string `json:"token"`
		Owner   string `json:"owner"`
		Spender string `json:"spender"`
		Amount  string `json:"amount"`
	}
	if err := decodeSingleParam(req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	tokenAddr, err := decodeAddr(payload.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid token address", err.Error())
		return err
	}
	owner, err := decodeAddr(payload.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid owner address", err.Error())
		return err
	}
	spender, err := decodeAddr(payload.Spender)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid spender address", err.Error())
		return err
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	ledger, ok := s.tokens.Get(tokenAddr)
	if !ok {
		err := fmt.Errorf("unknown token %s", payload.Token)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return err
	}
	if !ledger.Approve(owner, spender, amount) {
		err := fmt.Errorf("approve rejected")
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return err
	}
	writeResult(w, req.ID, map[string]interface{}{"approved": amount.String()})
	return nil
}

func decodeSingleParam(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("expected a single params object")
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
