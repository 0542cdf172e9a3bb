package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/freealert/freealert/internal/alerts"
	"github.com/freealert/freealert/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, errorBody{
		Error:   "Not Found",
		Message: fmt.Sprintf("Route %s not found", r.URL.Path),
		Success: false,
	})
}

type capitulationResponse struct {
	Capitulation models.CapitulationResult `json:"capitulation"`
	LastUpdate   string                    `json:"lastUpdate"`
	Success      bool                      `json:"success"`
}

// handleCapitulation serves the snapshot through the TTL cache. On a cache
// miss the warm computation kept by the refresh loop answers without touching
// the providers; only before the first refresh has landed does a request
// compute from scratch.
func (s *Server) handleCapitulation(w http.ResponseWriter, r *http.Request) {
	const key = "capitulation"
	if body, ok := s.cache.Get(r.Context(), key); ok {
		s.writeRaw(w, http.StatusOK, body)
		return
	}

	computation := s.capitulation.Last()
	if computation == nil {
		var err error
		computation, err = s.capitulation.Compute(r.Context())
		if err != nil {
			s.writeError(w, "Failed to fetch capitulation data", err)
			return
		}
	}

	body, _ := json.Marshal(capitulationResponse{
		Capitulation: computation.Result,
		LastUpdate:   computation.LastUpdate.Format(time.RFC3339),
		Success:      true,
	})
	s.cache.Set(r.Context(), key, body)
	s.writeRaw(w, http.StatusOK, body)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	const key = "sentiment"
	if body, ok := s.cache.Get(r.Context(), key); ok {
		s.writeRaw(w, http.StatusOK, body)
		return
	}

	body, err := s.sentiment.Raw(r.Context())
	if err != nil {
		s.writeError(w, "Failed to fetch Fear and Greed Index", err)
		return
	}
	s.cache.Set(r.Context(), key, body)
	s.writeRaw(w, http.StatusOK, body)
}

func (s *Server) handleGlobal(w http.ResponseWriter, r *http.Request) {
	const key = "global"
	if body, ok := s.cache.Get(r.Context(), key); ok {
		s.writeRaw(w, http.StatusOK, body)
		return
	}

	snapshot, err := s.global.Global(r.Context())
	if err != nil {
		s.writeError(w, "Failed to fetch global market data", err)
		return
	}

	payload := map[string]interface{}{
		"active_cryptocurrencies":              snapshot.ActiveCryptocurrencies,
		"total_market_cap":                     map[string]float64{"usd": snapshot.TotalMarketCapUSD},
		"total_volume":                         map[string]float64{"usd": snapshot.TotalVolumeUSD},
		"market_cap_percentage":                map[string]float64{"btc": snapshot.BTCDominancePercent},
		"market_cap_change_percentage_24h_usd": snapshot.MarketCapChange24hUSD,
	}
	body, _ := json.Marshal(payload)
	s.cache.Set(r.Context(), key, body)
	s.writeRaw(w, http.StatusOK, body)
}

func limitParam(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}

func (s *Server) handleTopGainers(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, 10)
	key := fmt.Sprintf("top-gainers:%d", limit)
	if body, ok := s.cache.Get(r.Context(), key); ok {
		s.writeRaw(w, http.StatusOK, body)
		return
	}

	movers, err := s.movers.TopGainers(r.Context(), limit)
	if err != nil {
		s.writeError(w, "Failed to fetch top gainers", err)
		return
	}
	body, _ := json.Marshal(movers)
	s.cache.Set(r.Context(), key, body)
	s.writeRaw(w, http.StatusOK, body)
}

func (s *Server) handleTopLosers(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, 10)
	key := fmt.Sprintf("top-losers:%d", limit)
	if body, ok := s.cache.Get(r.Context(), key); ok {
		s.writeRaw(w, http.StatusOK, body)
		return
	}

	movers, err := s.movers.TopLosers(r.Context(), limit)
	if err != nil {
		s.writeError(w, "Failed to fetch top losers", err)
		return
	}
	body, _ := json.Marshal(movers)
	s.cache.Set(r.Context(), key, body)
	s.writeRaw(w, http.StatusOK, body)
}

func (s *Server) handleDominance(w http.ResponseWriter, r *http.Request) {
	const key = "btc-dominance"
	if body, ok := s.cache.Get(r.Context(), key); ok {
		s.writeRaw(w, http.StatusOK, body)
		return
	}

	dominance, err := s.dominance.GlobalMetrics(r.Context())
	if err != nil {
		s.writeError(w, "Failed to fetch dominance data", err)
		return
	}
	body, _ := json.Marshal(dominance)
	s.cache.Set(r.Context(), key, body)
	s.writeRaw(w, http.StatusOK, body)
}

// handleMovers serves exchange-wide 24h movers from the ticker provider,
// USDT pairs only so stablecoin cross rates don't crowd the list.
func (s *Server) handleMovers(w http.ResponseWriter, r *http.Request) {
	tickers, err := s.tickers.AllTickers24h(r.Context())
	if err != nil {
		s.writeError(w, "Failed to fetch market movers", err)
		return
	}

	filtered := make([]models.Ticker24h, 0, len(tickers))
	order := r.URL.Query().Get("order")
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, "USDT") {
			continue
		}
		switch order {
		case "gainers":
			if t.PriceChangePercent > 0 {
				filtered = append(filtered, t)
			}
		case "losers":
			if t.PriceChangePercent < 0 {
				filtered = append(filtered, t)
			}
		default:
			filtered = append(filtered, t)
		}
	}

	ascending := order == "losers"
	sort.Slice(filtered, func(i, j int) bool {
		if ascending {
			return filtered[i].PriceChangePercent < filtered[j].PriceChangePercent
		}
		return filtered[i].PriceChangePercent > filtered[j].PriceChangePercent
	})

	if limit := limitParam(r, 0); limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	s.writeJSON(w, http.StatusOK, filtered)
}

func (s *Server) handleSymbolMeter(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = "BTCUSDT"
	}

	signal, err := s.meter.Measure(r.Context(), symbol)
	if err != nil {
		s.writeError(w, "Failed to measure symbol", err)
		return
	}
	s.writeJSON(w, http.StatusOK, signal)
}

func (s *Server) handleTicker24h(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if symbol == "" {
		s.writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "Bad Request",
			Message: "Symbol is required",
			Success: false,
		})
		return
	}

	ticker, err := s.tickers.Ticker24h(r.Context(), strings.ToUpper(symbol))
	if err != nil {
		s.writeError(w, "Failed to fetch 24h data", err)
		return
	}
	s.writeJSON(w, http.StatusOK, ticker)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.List())
}

type createAlertRequest struct {
	CoinID    string `json:"coinId"`
	Symbol    string `json:"symbol"`
	MAType    string `json:"maType"`
	Condition string `json:"condition"`
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "Bad Request",
			Message: "invalid JSON body",
			Success: false,
		})
		return
	}

	alert, err := s.registry.Add(req.CoinID, strings.ToUpper(req.Symbol),
		alerts.MAType(req.MAType), alerts.Condition(req.Condition))
	if err != nil {
		s.writeError(w, "Failed to create alert", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleRemoveAlert(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.registry.Remove(id) {
		s.writeError(w, "Failed to remove alert", &models.NotFoundError{Resource: "alert " + id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
