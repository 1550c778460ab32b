package common

import (
	"errors"
	"testing"
)

func TestGuard(t *testing.T) {
	if err := Guard(nil, "exchange"); err != nil {
		t.Fatalf("nil view must not block: %v", err)
	}
	set := NewPauseSet()
	if err := Guard(set, ""); err != nil {
		t.Fatalf("empty module must not block: %v", err)
	}
	if err := Guard(set, "exchange"); err != nil {
		t.Fatalf("unpaused module must pass: %v", err)
	}
	set.Pause("exchange")
	if err := Guard(set, "exchange"); !errors.Is(err, ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
	set.Resume("exchange")
	if err := Guard(set, "exchange"); err != nil {
		t.Fatalf("resumed module must pass: %v", err)
	}
}

func TestPauseSetNormalizesNames(t *testing.T) {
	set := NewPauseSet(" Exchange ")
	if !set.IsPaused("exchange") {
		t.Fatal("pause names should be case and whitespace insensitive")
	}
	if set.IsPaused("treasury") {
		t.Fatal("unrelated module reported paused")
	}
	var zero PauseSet
	if zero.IsPaused("exchange") {
		t.Fatal("zero value must pause nothing")
	}
}
