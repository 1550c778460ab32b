package exchange

import (
	"math/big"

	"swapdex/core/events"
	nativecommon "swapdex/native/common"
)

// Withdraw pays out native currency held by the engine to the owner. Retained
// swap remainders are recoverable only through this path.
func (e *Engine) Withdraw(caller [20]byte, amount *big.Int) error {
	if err := e.checkWiring(); err != nil {
		return err
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	if err := positive(amount); err != nil {
		return err
	}
	balance, err := e.ledger.BalanceOf(e.self)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := e.ledger.Transfer(e.self, e.owner, amount); err != nil {
		return ErrTransferFailed
	}

	e.emit(events.TreasuryWithdrawal{
		Recipient: e.owner,
		Amount:    new(big.Int).Set(amount),
	})
	return nil
}

// Deposit moves native currency from the caller into the engine. Deposits
// carry no validation beyond ledger funding; any inbound transfer to the
// engine's identity raises its balance the same way.
func (e *Engine) Deposit(caller [20]byte, amount *big.Int) error {
	if err := e.checkWiring(); err != nil {
		return err
	}
	if err := positive(amount); err != nil {
		return err
	}
	return e.ledger.Transfer(caller, e.self, amount)
}

// NativeBalance reads the engine's own native-currency balance.
func (e *Engine) NativeBalance() (*big.Int, error) {
	if err := e.checkWiring(); err != nil {
		return nil, err
	}
	return e.ledger.BalanceOf(e.self)
}
