package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"swapdex/config"
	"swapdex/core/events"
	"swapdex/core/state"
	"swapdex/crypto"
	nativecommon "swapdex/native/common"
	"swapdex/native/exchange"
	"swapdex/native/token"
	"swapdex/observability/logging"
	"swapdex/rpc"
	"swapdex/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("SWAPDEX_ENV"))
	logger := logging.Setup("swapdexd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	if strings.TrimSpace(cfg.LogFile) != "" {
		logger = logging.SetupRotating("swapdexd", env, cfg.LogFile)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	owner, err := resolveOwner(cfg, logger)
	if err != nil {
		logger.Error("failed to resolve owner identity", slog.Any("error", err))
		os.Exit(1)
	}
	self := engineIdentity(owner)

	unit, err := cfg.Unit()
	if err != nil {
		logger.Error("invalid unit configuration", slog.Any("error", err))
		os.Exit(1)
	}
	float, err := cfg.TokenFloat()
	if err != nil {
		logger.Error("invalid token float configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ledger := state.NewPersistentLedger(db)
	tokens := token.NewFactory(self)
	factory := engineFactory(tokens, float)

	journal, err := events.NewJournal(db)
	if err != nil {
		logger.Error("failed to open event journal", slog.Any("error", err))
		os.Exit(1)
	}

	stream := events.NewBroadcaster()

	engine := exchange.NewEngine(owner, self, ledger, factory)
	engine.SetUnit(unit)
	engine.SetEmitter(events.MultiEmitter{journal, stream})
	engine.SetPauses(nativecommon.NewPauseSet(cfg.PausedModules...))

	logger.Info("exchange engine ready",
		slog.String("owner", crypto.NewAddress(crypto.DexPrefix, owner[:]).String()),
		slog.String("engine", crypto.NewAddress(crypto.DexPrefix, self[:]).String()),
		slog.String("unit", unit.String()),
	)

	server := rpc.NewServer(engine, tokens, journal, logger)
	server.SetStream(stream)
	if cfg.RPCRateLimit > 0 {
		server.SetRateLimit(cfg.RPCRateLimit, int(cfg.RPCRateLimit)+1)
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.RPCAddress)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("rpc server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}
}

// engineFactory adapts the token factory for the engine: every deployment
// mints the configured float to the engine identity and hands back a
// capability bound to it.
func engineFactory(tokens *token.Factory, float *big.Int) exchange.TokenFactory {
	return exchange.FactoryFunc(func(engine [20]byte, name, symbol string, seed []byte) (exchange.Token, [20]byte, error) {
		ledger, err := tokens.Deploy(name, symbol, seed)
		if err != nil {
			return nil, [20]byte{}, err
		}
		if float != nil && float.Sign() > 0 {
			if !ledger.Mint(engine, float) {
				return nil, [20]byte{}, fmt.Errorf("mint initial float for %s", symbol)
			}
		}
		return ledger.HandleFor(engine), ledger.Address(), nil
	})
}

func resolveOwner(cfg *config.Config, logger *slog.Logger) ([20]byte, error) {
	var owner [20]byte
	if trimmed := strings.TrimSpace(cfg.Owner); trimmed != "" {
		addr, err := crypto.DecodeAddress(trimmed)
		if err != nil {
			return owner, err
		}
		copy(owner[:], addr.Bytes())
		return owner, nil
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return owner, err
	}
	copy(owner[:], key.PubKey().Address().Bytes())
	logger.Info("generated ephemeral owner key",
		slog.String("owner", key.PubKey().Address().String()),
	)
	return owner, nil
}

// engineIdentity derives the engine's own ledger identity from its owner so a
// restarted daemon keeps addressing the same treasury account.
func engineIdentity(owner [20]byte) [20]byte {
	digest := ethcrypto.Keccak256([]byte("swapdex/engine/v1"), owner[:])
	var self [20]byte
	copy(self[:], digest[12:])
	return self
}
