// Package server exposes the gateway over HTTP. Handlers are thin: they
// decode the request, call one gateway operation, and translate taxonomy
// errors into status codes.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fairview-lab/terminal-gateway/internal/broker"
	"github.com/fairview-lab/terminal-gateway/internal/gateway"
	"github.com/fairview-lab/terminal-gateway/internal/logger"
	"github.com/fairview-lab/terminal-gateway/internal/orders"
	"github.com/fairview-lab/terminal-gateway/internal/transactions"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// Server wires the gateway, order pipeline, and transaction manager into
// an HTTP API.
type Server struct {
	router       *mux.Router
	httpServer   *http.Server
	gateway      *gateway.Gateway
	pipeline     *orders.Pipeline
	transactions *transactions.Manager
	broker       broker.Broker
	universe     []string
	log          *logger.Logger
}

// New creates the server and registers all routes.
func New(address string, gw *gateway.Gateway, pipeline *orders.Pipeline, txns *transactions.Manager, b broker.Broker, universe []string, log *logger.Logger) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		gateway:      gw,
		pipeline:     pipeline,
		transactions: txns,
		broker:       b,
		universe:     universe,
		log:          log,
	}

	s.routes()

	s.httpServer = &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/instruments", s.handleInstruments).Methods(http.MethodGet)
	api.HandleFunc("/market-data/{ticker}", s.handleMarketData).Methods(http.MethodGet)
	api.HandleFunc("/market-data/{ticker}/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/yields", s.handleYields).Methods(http.MethodGet)
	api.HandleFunc("/movers", s.handleMovers).Methods(http.MethodGet)

	api.HandleFunc("/orders", s.handleSubmitOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", s.handleOrderStatus).Methods(http.MethodGet)

	api.HandleFunc("/portfolio/positions", s.handlePositions).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/balance", s.handleBalance).Methods(http.MethodGet)

	api.HandleFunc("/transactions", s.handleSubmitTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/deposit", s.handleTransactionMethod(s.transactions.InitiateDeposit)).Methods(http.MethodPost)
	api.HandleFunc("/transactions/withdraw", s.handleTransactionMethod(s.transactions.InitiateWithdraw)).Methods(http.MethodPost)
	api.HandleFunc("/transactions/transfer", s.handleTransactionMethod(s.transactions.InitiateTransfer)).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleTransactionStatus).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

// Handler returns the underlying router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("address", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(errors.KindAPI, "http server failed", err)
	}

	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// statusForKind maps the error taxonomy onto HTTP status codes.
func statusForKind(kind errors.Kind) int {
	switch kind {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindAuthorization:
		return http.StatusUnauthorized
	case errors.KindCompliance:
		return http.StatusUnprocessableEntity
	case errors.KindMarketCondition:
		return http.StatusConflict
	case errors.KindDataProvider:
		return http.StatusBadGateway
	case errors.KindBrokerConnection:
		return http.StatusServiceUnavailable
	case errors.KindAPI:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := errors.KindOf(err)
	status := statusForKind(kind)

	if status >= 500 {
		s.log.Error("request failed", zap.Error(err))
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error(), Kind: string(kind)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}
