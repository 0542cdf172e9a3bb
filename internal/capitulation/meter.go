package capitulation

import (
	"context"

	"github.com/freealert/freealert/internal/indicators"
	"github.com/freealert/freealert/internal/models"
)

const (
	meterWindow        = 200 // daily candles per measurement
	meterDrawdownLimit = -50.0
	meterVolumeFactor  = 2.0
	meterDepthLimit    = 100
	pressureFactor     = 1.5
)

// CandleProvider supplies daily OHLCV history for one trading pair.
type CandleProvider interface {
	DailyCandles(ctx context.Context, symbol string, limit int) ([]models.Candle, error)
}

// TickerProvider supplies 24h stats for one trading pair.
type TickerProvider interface {
	Ticker24h(ctx context.Context, symbol string) (*models.Ticker24h, error)
}

// DepthProvider supplies aggregated order-book depth.
type DepthProvider interface {
	OrderBook(ctx context.Context, symbol string, limit int) (*models.OrderBook, error)
}

// SymbolSignal is the per-symbol capitulation readout: a hard drawdown under
// the long moving average with either a volume spike or sell-side pressure.
type SymbolSignal struct {
	Symbol            string  `json:"symbol"`
	Drawdown          float64 `json:"drawdown"`
	BelowMA200        bool    `json:"belowMA200"`
	VolumeSpike       bool    `json:"volumeSpike"`
	TradeCount        int64   `json:"tradeCount"`
	OrderBookPressure string  `json:"orderBookPressure"` // buy, sell or neutral
	Capitulation      bool    `json:"capitulation"`
}

// SymbolMeter measures a single trading pair against its own 200-day history.
type SymbolMeter struct {
	candles CandleProvider
	tickers TickerProvider
	depth   DepthProvider
}

func NewSymbolMeter(candles CandleProvider, tickers TickerProvider, depth DepthProvider) *SymbolMeter {
	return &SymbolMeter{candles: candles, tickers: tickers, depth: depth}
}

// Measure fetches history, ticker and depth for the symbol and derives the
// capitulation verdict.
func (m *SymbolMeter) Measure(ctx context.Context, symbol string) (*SymbolSignal, error) {
	candles, err := m.candles.DailyCandles(ctx, symbol, meterWindow)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, &models.NotFoundError{Resource: "candles for " + symbol}
	}

	closes := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = c.Volume
	}

	ma200 := indicators.MovingAverage(closes, len(closes))
	lastClose := closes[len(closes)-1]
	belowMA200 := lastClose < ma200

	// Spike when the latest daily volume doubles the average of the candles
	// before it.
	volumeSpike := false
	if len(volumes) > 1 {
		var sum float64
		for _, v := range volumes[:len(volumes)-1] {
			sum += v
		}
		avgVolume := sum / float64(len(volumes)-1)
		volumeSpike = volumes[len(volumes)-1] > avgVolume*meterVolumeFactor
	}

	ticker, err := m.tickers.Ticker24h(ctx, symbol)
	if err != nil {
		return nil, err
	}

	book, err := m.depth.OrderBook(ctx, symbol, meterDepthLimit)
	if err != nil {
		return nil, err
	}

	var bidVolume, askVolume float64
	for _, level := range book.Bids {
		bidVolume += level[1]
	}
	for _, level := range book.Asks {
		askVolume += level[1]
	}
	pressure := "neutral"
	if bidVolume > askVolume*pressureFactor {
		pressure = "buy"
	}
	if askVolume > bidVolume*pressureFactor {
		pressure = "sell"
	}

	high := closes[0]
	for _, c := range closes[1:] {
		if c > high {
			high = c
		}
	}
	drawdown := ((lastClose - high) / high) * 100

	return &SymbolSignal{
		Symbol:            symbol,
		Drawdown:          drawdown,
		BelowMA200:        belowMA200,
		VolumeSpike:       volumeSpike,
		TradeCount:        ticker.TradeCount,
		OrderBookPressure: pressure,
		Capitulation:      drawdown < meterDrawdownLimit && belowMA200 && (volumeSpike || pressure == "sell"),
	}, nil
}
