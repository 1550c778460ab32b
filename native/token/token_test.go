package token

import (
	"errors"
	"math/big"
	"testing"
)

func addr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func TestMintAndTransfer(t *testing.T) {
	ledger := NewLedger(addr(0x01), "Test Token", "TST")
	alice := addr(0xAA)
	bob := addr(0xBB)

	if !ledger.Mint(alice, big.NewInt(100)) {
		t.Fatal("mint failed")
	}
	if supply := ledger.TotalSupply(); supply.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected supply 100, got %s", supply)
	}
	if !ledger.Transfer(alice, bob, big.NewInt(40)) {
		t.Fatal("transfer failed")
	}
	if balance := ledger.BalanceOf(alice); balance.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("expected alice balance 60, got %s", balance)
	}
	if balance := ledger.BalanceOf(bob); balance.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("expected bob balance 40, got %s", balance)
	}
	// Overdraft reports failure and moves nothing.
	if ledger.Transfer(alice, bob, big.NewInt(61)) {
		t.Fatal("overdraft transfer should fail")
	}
	if balance := ledger.BalanceOf(alice); balance.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("failed transfer mutated balance: %s", balance)
	}
}

func TestTransferFromRequiresAllowance(t *testing.T) {
	ledger := NewLedger(addr(0x01), "Test Token", "TST")
	owner := addr(0xAA)
	spender := addr(0xBB)
	sink := addr(0xCC)
	ledger.Mint(owner, big.NewInt(100))

	if ledger.TransferFrom(spender, owner, sink, big.NewInt(10)) {
		t.Fatal("transferFrom without allowance should fail")
	}
	if !ledger.Approve(owner, spender, big.NewInt(25)) {
		t.Fatal("approve failed")
	}
	if ledger.TransferFrom(spender, owner, sink, big.NewInt(26)) {
		t.Fatal("transferFrom beyond allowance should fail")
	}
	if !ledger.TransferFrom(spender, owner, sink, big.NewInt(25)) {
		t.Fatal("transferFrom within allowance failed")
	}
	if remaining := ledger.Allowance(owner, spender); remaining.Sign() != 0 {
		t.Fatalf("allowance not consumed, %s remaining", remaining)
	}
	if balance := ledger.BalanceOf(sink); balance.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("expected sink balance 25, got %s", balance)
	}
}

func TestHandleBindsActor(t *testing.T) {
	ledger := NewLedger(addr(0x01), "Test Token", "TST")
	engine := addr(0xEE)
	user := addr(0x11)
	ledger.Mint(engine, big.NewInt(50))

	handle := ledger.HandleFor(engine)
	if handle.Name() != "Test Token" {
		t.Fatalf("unexpected name %q", handle.Name())
	}
	if !handle.Transfer(user, big.NewInt(20)) {
		t.Fatal("handle transfer failed")
	}
	if balance := handle.BalanceOf(user); balance.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("expected user balance 20, got %s", balance)
	}

	// TransferFrom spends the allowance granted to the bound actor.
	ledger.Approve(user, engine, big.NewInt(5))
	if !handle.TransferFrom(user, engine, big.NewInt(5)) {
		t.Fatal("handle transferFrom failed")
	}
	if handle.TransferFrom(user, engine, big.NewInt(1)) {
		t.Fatal("exhausted allowance should fail")
	}
}

func TestFactoryDeterministicAddresses(t *testing.T) {
	factory := NewFactory(addr(0xEE))
	first, err := factory.Deploy("Test Token", "TST", []byte("one"))
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if derived := factory.DeriveAddress("Test Token", "TST", []byte("one")); derived != first.Address() {
		t.Fatalf("derived address mismatch")
	}

	// Identical metadata with a different seed yields a distinct instance.
	second, err := factory.Deploy("Test Token", "TST", []byte("two"))
	if err != nil {
		t.Fatalf("deploy with fresh seed: %v", err)
	}
	if first.Address() == second.Address() {
		t.Fatal("seeds must distinguish identical deployments")
	}

	// Replaying the exact same inputs is rejected.
	if _, err := factory.Deploy("Test Token", "TST", []byte("one")); !errors.Is(err, ErrTokenExists) {
		t.Fatalf("expected ErrTokenExists, got %v", err)
	}

	if got, ok := factory.Get(first.Address()); !ok || got != first {
		t.Fatal("factory lookup failed")
	}
}
