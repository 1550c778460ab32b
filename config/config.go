package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"swapdex/crypto"
)

// Config captures everything the daemon needs to run one exchange engine.
type Config struct {
	RPCAddress        string   `toml:"RPCAddress"`
	DataDir           string   `toml:"DataDir"`
	Owner             string   `toml:"Owner"`
	UnitWei           string   `toml:"UnitWei"`
	InitialTokenFloat string   `toml:"InitialTokenFloat"`
	PausedModules     []string `toml:"PausedModules"`
	LogFile           string   `toml:"LogFile"`
	RPCRateLimit      float64  `toml:"RPCRateLimit"`
}

const defaultConfigTemplate = `# swapdex daemon configuration
RPCAddress = "127.0.0.1:8645"
DataDir = "./swapdex-data"
# Owner is the administrator identity; leave empty to generate a fresh key at
# first start (the address is logged).
Owner = ""
# UnitWei is the native amount per conversion step.
UnitWei = "1000000000000000"
# InitialTokenFloat is minted to the engine for each registered token, in
# token subunits.
InitialTokenFloat = "1000000000000000000000000"
PausedModules = []
# LogFile enables size-rotated file logging in addition to stdout.
LogFile = ""
# RPCRateLimit caps the RPC endpoint in calls per second; 0 disables the cap.
RPCRateLimit = 0.0
`

// Load reads the configuration from the given path, writing a commented
// default file when none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if _, err := toml.Decode(defaultConfigTemplate, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.RPCAddress) == "" {
		c.RPCAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./swapdex-data"
	}
	if strings.TrimSpace(c.UnitWei) == "" {
		c.UnitWei = "1000000000000000"
	}
	if strings.TrimSpace(c.InitialTokenFloat) == "" {
		c.InitialTokenFloat = "1000000000000000000000000"
	}
	if c.PausedModules == nil {
		c.PausedModules = []string{}
	}
}

// Validate rejects configurations the daemon could not safely start with.
func (c *Config) Validate() error {
	if owner := strings.TrimSpace(c.Owner); owner != "" {
		if _, err := crypto.DecodeAddress(owner); err != nil {
			return fmt.Errorf("config: invalid Owner address: %w", err)
		}
	}
	if _, err := c.parsePositive(c.UnitWei, "UnitWei"); err != nil {
		return err
	}
	if _, err := c.parsePositive(c.InitialTokenFloat, "InitialTokenFloat"); err != nil {
		return err
	}
	if c.RPCRateLimit < 0 {
		return fmt.Errorf("config: RPCRateLimit must not be negative, got %v", c.RPCRateLimit)
	}
	return nil
}

func (c *Config) parsePositive(value, field string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok || amount.Sign() <= 0 {
		return nil, fmt.Errorf("config: %s must be a positive decimal integer, got %q", field, value)
	}
	return amount, nil
}

// Unit returns the parsed conversion step amount.
func (c *Config) Unit() (*big.Int, error) {
	return c.parsePositive(c.UnitWei, "UnitWei")
}

// TokenFloat returns the parsed per-token engine float.
func (c *Config) TokenFloat() (*big.Int, error) {
	return c.parsePositive(c.InitialTokenFloat, "InitialTokenFloat")
}
