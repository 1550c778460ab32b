package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}
	if cfg.RPCAddress == "" || cfg.DataDir == "" {
		t.Fatalf("defaults missing: %+v", cfg)
	}
	unit, err := cfg.Unit()
	if err != nil {
		t.Fatalf("unit: %v", err)
	}
	if unit.Sign() <= 0 {
		t.Fatalf("default unit must be positive, got %s", unit)
	}
}

func TestLoadRejectsBadOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `RPCAddress = "127.0.0.1:8645"
DataDir = "./data"
Owner = "not-an-address"
UnitWei = "1000"
InitialTokenFloat = "1000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected invalid owner address to be rejected")
	}
}

func TestLoadRejectsBadUnit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `UnitWei = "-5"`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected negative unit to be rejected")
	}
}
