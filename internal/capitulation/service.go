package capitulation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freealert/freealert/internal/models"
)

// MarketsProvider supplies coins ranked by market cap descending.
type MarketsProvider interface {
	TopMarkets(ctx context.Context) ([]models.MarketCoin, error)
}

// GlobalProvider supplies one aggregate market snapshot.
type GlobalProvider interface {
	Global(ctx context.Context) (models.GlobalSnapshot, error)
}

// SentimentProvider supplies the latest fear/greed reading.
type SentimentProvider interface {
	Latest(ctx context.Context) (models.SentimentReading, error)
}

type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Computation is one finished scoring run.
type Computation struct {
	Result     models.CapitulationResult `json:"capitulation"`
	LastUpdate time.Time                 `json:"lastUpdate"`
}

// Service orchestrates a capitulation computation: fetch the three upstream
// snapshots concurrently, reduce to signals, score, commit the baseline.
type Service struct {
	markets   MarketsProvider
	global    GlobalProvider
	sentiment SentimentProvider
	baseline  *Baseline
	logger    Logger

	refreshing atomic.Bool

	mu   sync.RWMutex
	last *Computation
}

func NewService(markets MarketsProvider, global GlobalProvider, sentiment SentimentProvider, baseline *Baseline, logger Logger) *Service {
	return &Service{
		markets:   markets,
		global:    global,
		sentiment: sentiment,
		baseline:  baseline,
		logger:    logger,
	}
}

// Compute runs one full scoring cycle. The three provider calls fan out
// concurrently and join together: if any one fails the whole computation
// fails; there is no partial degradation.
func (s *Service) Compute(ctx context.Context) (*Computation, error) {
	var (
		wg sync.WaitGroup

		coins     []models.MarketCoin
		marketErr error

		global    models.GlobalSnapshot
		globalErr error

		sentiment    models.SentimentReading
		sentimentErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		coins, marketErr = s.markets.TopMarkets(ctx)
	}()
	go func() {
		defer wg.Done()
		global, globalErr = s.global.Global(ctx)
	}()
	go func() {
		defer wg.Done()
		sentiment, sentimentErr = s.sentiment.Latest(ctx)
	}()
	wg.Wait()

	for _, err := range []error{marketErr, globalErr, sentimentErr} {
		if err != nil {
			return nil, err
		}
	}

	ranked, err := NewRankedMarkets(coins)
	if err != nil {
		return nil, err
	}

	currentVolume := ranked.TotalVolume()
	historicalVolume, previousDominance := s.baseline.Snapshot()

	signals := ExtractSignals(ranked, currentVolume, historicalVolume, global, sentiment, previousDominance)
	result := Score(signals)

	s.baseline.Commit(currentVolume, global.BTCDominancePercent)

	computation := &Computation{Result: result, LastUpdate: time.Now().UTC()}
	s.mu.Lock()
	s.last = computation
	s.mu.Unlock()

	s.logger.Info("capitulation computed",
		"score", result.Score,
		"level", result.Level,
		"signals", len(result.Signals))

	return computation, nil
}

// Last returns the most recent computation, nil before the first one.
func (s *Service) Last() *Computation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Refresh runs Compute unless a refresh is already in flight, in which case
// the tick is skipped rather than stacking overlapping fetches.
func (s *Service) Refresh(ctx context.Context) {
	if !s.refreshing.CompareAndSwap(false, true) {
		s.logger.Info("capitulation refresh already in flight, skipping tick")
		return
	}
	defer s.refreshing.Store(false)

	if _, err := s.Compute(ctx); err != nil {
		s.logger.Error("capitulation refresh failed", "error", err)
	}
}
