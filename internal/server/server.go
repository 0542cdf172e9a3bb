package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/freealert/freealert/internal/alerts"
	"github.com/freealert/freealert/internal/capitulation"
	"github.com/freealert/freealert/internal/models"
)

// CapitulationService serves the aggregate capitulation score: the warm
// snapshot when the refresh loop has produced one, computed on demand before
// the first refresh completes.
type CapitulationService interface {
	Compute(ctx context.Context) (*capitulation.Computation, error)
	Last() *capitulation.Computation
}

// MeterService measures one trading pair.
type MeterService interface {
	Measure(ctx context.Context, symbol string) (*capitulation.SymbolSignal, error)
}

// SentimentSource returns the sentiment provider payload verbatim.
type SentimentSource interface {
	Raw(ctx context.Context) ([]byte, error)
}

// GlobalSource returns the aggregate market snapshot.
type GlobalSource interface {
	Global(ctx context.Context) (models.GlobalSnapshot, error)
}

// DominanceSource returns BTC/ETH dominance.
type DominanceSource interface {
	GlobalMetrics(ctx context.Context) (models.Dominance, error)
}

// MoversSource returns ranked 24h movers.
type MoversSource interface {
	TopGainers(ctx context.Context, limit int) ([]models.CoinMover, error)
	TopLosers(ctx context.Context, limit int) ([]models.CoinMover, error)
}

// TickerSource returns Binance-style 24h stats.
type TickerSource interface {
	Ticker24h(ctx context.Context, symbol string) (*models.Ticker24h, error)
	AllTickers24h(ctx context.Context) ([]models.Ticker24h, error)
}

// Cache is the best-effort response-body cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Server wires the JSON API over the market services.
type Server struct {
	capitulation CapitulationService
	meter        MeterService
	sentiment    SentimentSource
	global       GlobalSource
	dominance    DominanceSource
	movers       MoversSource
	tickers      TickerSource
	registry     *alerts.Registry
	cache        Cache
	logger       Logger
	production   bool
	corsOrigin   string
}

type Options struct {
	Capitulation CapitulationService
	Meter        MeterService
	Sentiment    SentimentSource
	Global       GlobalSource
	Dominance    DominanceSource
	Movers       MoversSource
	Tickers      TickerSource
	Registry     *alerts.Registry
	Cache        Cache
	Logger       Logger
	Production   bool
	CORSOrigin   string
}

func New(opts Options) *Server {
	return &Server{
		capitulation: opts.Capitulation,
		meter:        opts.Meter,
		sentiment:    opts.Sentiment,
		global:       opts.Global,
		dominance:    opts.Dominance,
		movers:       opts.Movers,
		tickers:      opts.Tickers,
		registry:     opts.Registry,
		cache:        opts.Cache,
		logger:       opts.Logger,
		production:   opts.Production,
		corsOrigin:   opts.CORSOrigin,
	}
}

// Handler builds the route table wrapped in the middleware stack.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/market/capitulation", s.handleCapitulation)
	mux.HandleFunc("GET /api/v1/crypto/sentiment", s.handleSentiment)
	mux.HandleFunc("GET /api/v1/market/global", s.handleGlobal)
	mux.HandleFunc("GET /api/v1/market/top-gainers", s.handleTopGainers)
	mux.HandleFunc("GET /api/v1/market/top-losers", s.handleTopLosers)
	mux.HandleFunc("GET /api/v1/market/btc-dominance", s.handleDominance)
	mux.HandleFunc("GET /api/v1/market/movers", s.handleMovers)
	mux.HandleFunc("GET /api/v1/market/symbol-capitulation", s.handleSymbolMeter)
	mux.HandleFunc("GET /api/v1/market/{symbol}/24h", s.handleTicker24h)
	mux.HandleFunc("GET /api/v1/alerts", s.handleListAlerts)
	mux.HandleFunc("POST /api/v1/alerts", s.handleCreateAlert)
	mux.HandleFunc("DELETE /api/v1/alerts/{id}", s.handleRemoveAlert)
	mux.HandleFunc("/", s.handleNotFound)

	return s.logging(s.recovering(s.cors(mux)))
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError converts the error taxonomy to HTTP. Upstream and computation
// failures are 500; their detail passes through in development and is
// replaced with a generic message in production. Client errors keep their
// message either way.
func (s *Server) writeError(w http.ResponseWriter, label string, err error) {
	status := http.StatusInternalServerError

	var notFound *models.NotFoundError
	var validation *models.ValidationError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	}

	message := err.Error()
	if s.production && status >= http.StatusInternalServerError {
		message = "Something went wrong"
	}

	s.writeJSON(w, status, errorBody{Error: label, Message: message, Success: false})
}
