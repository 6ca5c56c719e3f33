package api

import (
	"net/http"
	"strconv"

	"github.com/stake-dashboard/internal/logging"
)

const (
	defaultCoinIDs    = "theta-token,theta-fuel"
	defaultVsCurrency = "usd"
	defaultChartCoin  = "theta-fuel"
	defaultChartDays  = 30
)

// handleMarketPrice handles GET /api/market/price?ids=..&vs=..
func (s *Server) handleMarketPrice(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query().Get("ids")
	if ids == "" {
		ids = defaultCoinIDs
	}
	vs := r.URL.Query().Get("vs")
	if vs == "" {
		vs = defaultVsCurrency
	}

	payload, err := s.marketService.SimplePrice(r.Context(), ids, vs)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("price fetch failed")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

// handleMarketChart handles GET /api/market/chart?id=..&vs=..&days=..
func (s *Server) handleMarketChart(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		id = defaultChartCoin
	}
	vs := r.URL.Query().Get("vs")
	if vs == "" {
		vs = defaultVsCurrency
	}
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		days = defaultChartDays
	}

	payload, err := s.marketService.MarketChart(r.Context(), id, vs, days)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("chart fetch failed")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

// handleMarketQuote handles GET /api/market/quote?from=..&to=..&amount=..
func (s *Server) handleMarketQuote(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from := query.Get("from")
	to := query.Get("to")
	amount := query.Get("amount")
	if from == "" || to == "" || amount == "" {
		respondError(w, http.StatusBadRequest, "INVALID_QUOTE_PARAMS", "from, to and amount are required", nil)
		return
	}

	payload, err := s.marketService.SwapQuote(r.Context(), from, to, amount)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("quote fetch failed")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}
