package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fairview-lab/terminal-gateway/internal/gateway"
	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	instruments, err := s.gateway.GetInstruments(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, instruments)
}

func (s *Server) handleMarketData(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	point, err := s.gateway.GetMarketData(r.Context(), ticker)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, point)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	rng := gateway.Range(r.URL.Query().Get("range"))
	if rng == "" {
		rng = gateway.RangeOneMonth
	}

	series, err := s.gateway.GetHistoricalData(r.Context(), ticker, rng)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleYields(w http.ResponseWriter, r *http.Request) {
	points, err := s.gateway.GetGovBondYields(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleMovers(w http.ResponseWriter, r *http.Request) {
	limit := 5

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, errors.Newf(errors.KindValidation, "invalid limit %q", raw))

			return
		}

		limit = parsed
	}

	movers, err := s.gateway.GetTopMovers(r.Context(), s.universe, limit)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, movers)
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req types.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.KindValidation, "invalid order payload", err))

		return
	}

	order, err := s.pipeline.Execute(r.Context(), req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	ticker := r.URL.Query().Get("ticker")

	order, err := s.pipeline.Status(r.Context(), ticker, orderID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, order)
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.broker.GetPositions(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, s.gateway.EnrichPositions(r.Context(), positions))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.broker.GetAccountBalance(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var req types.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.KindValidation, "invalid transaction payload", err))

		return
	}

	status, err := s.transactions.Process(r.Context(), req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusAccepted, status)
}

// handleTransactionMethod serves the method-specific transaction routes;
// initiate fixes the method, so the payload does not need to carry one.
func (s *Server) handleTransactionMethod(initiate func(context.Context, types.TransactionRequest) (types.TransactionStatus, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, errors.Wrap(errors.KindValidation, "invalid transaction payload", err))

			return
		}

		status, err := initiate(r.Context(), req)
		if err != nil {
			s.writeError(w, err)

			return
		}

		s.writeJSON(w, http.StatusAccepted, status)
	}
}

func (s *Server) handleTransactionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.transactions.Status(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, status)
}
