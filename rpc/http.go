package rpc

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"swapdex/core/events"
	"swapdex/native/exchange"
	"swapdex/native/token"
	"swapdex/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

// Server exposes the exchange engine over a single-endpoint JSON-RPC surface.
// Callers are identified by a bech32 address parameter; transport-level
// authentication is delegated to the deployment in front of the node.
type Server struct {
	engine  *exchange.Engine
	tokens  *token.Factory
	journal *events.Journal
	stream  *events.Broadcaster
	logger  *slog.Logger
	metrics *observability.EngineMetrics
	limiter *rate.Limiter
}

// NewServer wires a server around the supplied engine. The token factory and
// journal are optional; methods needing them report a server error when absent.
func NewServer(engine *exchange.Engine, tokens *token.Factory, journal *events.Journal, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:  engine,
		tokens:  tokens,
		journal: journal,
		logger:  logger,
		metrics: observability.Metrics(),
	}
}

// Router assembles the HTTP surface: the RPC endpoint, a health probe and the
// prometheus scrape target.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws/events", s.handleEventStream)
	r.Post("/rpc", s.handle)
	return r
}

// Start serves the router on the supplied address and blocks.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", slog.String("addr", addr))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// RPCRequest is a JSON-RPC 2.0 call envelope.
type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 reply envelope.
type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError carries a structured failure back to the caller.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj})
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

// SetRateLimit throttles the RPC endpoint to roughly rps calls per second.
// A non-positive rate leaves the endpoint unthrottled.
func (s *Server) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		s.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)
	if s.limiter != nil && !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, nil, codeServerError, "rate limit exceeded", nil)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "unable to read request body", nil)
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", nil)
		return
	}

	started := time.Now()
	handler, ok := s.routes()[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
		return
	}
	err = handler(w, &req)
	s.metrics.Observe(req.Method, err, started)
	if err != nil {
		s.logger.Warn("rpc call failed",
			slog.String("method", req.Method),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
	}
}

type handlerFunc func(http.ResponseWriter, *RPCRequest) error

func (s *Server) routes() map[string]handlerFunc {
	return map[string]handlerFunc{
		"exchange_registerToken":     s.handleRegisterToken,
		"exchange_swapNativeToToken": s.handleSwapNativeToToken,
		"exchange_swapTokenToNative": s.handleSwapTokenToNative,
		"exchange_swapTokenToToken":  s.handleSwapTokenToToken,
		"exchange_withdraw":          s.handleWithdraw,
		"exchange_deposit":           s.handleDeposit,
		"exchange_balanceOf":         s.handleBalanceOf,
		"exchange_tokenName":         s.handleTokenName,
		"exchange_tokenAddress":      s.handleTokenAddress,
		"exchange_nativeBalance":     s.handleNativeBalance,
		"exchange_events":            s.handleEvents,
		"token_approve":              s.handleTokenApprove,
	}
}
