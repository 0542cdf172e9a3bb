package capitulation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freealert/freealert/internal/models"
)

type stubCandles struct {
	candles []models.Candle
	err     error
}

func (s *stubCandles) DailyCandles(ctx context.Context, symbol string, limit int) ([]models.Candle, error) {
	return s.candles, s.err
}

type stubTicker struct {
	ticker *models.Ticker24h
	err    error
}

func (s *stubTicker) Ticker24h(ctx context.Context, symbol string) (*models.Ticker24h, error) {
	return s.ticker, s.err
}

type stubDepth struct {
	book *models.OrderBook
	err  error
}

func (s *stubDepth) OrderBook(ctx context.Context, symbol string, limit int) (*models.OrderBook, error) {
	return s.book, s.err
}

// candleSeries builds a flat history at base with a configurable final candle.
func candleSeries(n int, base, lastClose, lastVolume float64) []models.Candle {
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{Close: base, Volume: 100}
	}
	candles[n-1].Close = lastClose
	candles[n-1].Volume = lastVolume
	return candles
}

func TestSymbolMeter_Measure(t *testing.T) {
	ticker := &stubTicker{ticker: &models.Ticker24h{Symbol: "BTCUSDT", TradeCount: 123456}}
	neutralBook := &stubDepth{book: &models.OrderBook{
		Bids: [][2]float64{{100, 10}},
		Asks: [][2]float64{{101, 10}},
	}}
	sellBook := &stubDepth{book: &models.OrderBook{
		Bids: [][2]float64{{100, 10}},
		Asks: [][2]float64{{101, 20}},
	}}
	buyBook := &stubDepth{book: &models.OrderBook{
		Bids: [][2]float64{{100, 20}},
		Asks: [][2]float64{{101, 10}},
	}}

	t.Run("capitulation on drawdown below MA with volume spike", func(t *testing.T) {
		// Flat at 100, last close 40: drawdown -60%, below the average,
		// final volume 10x the running mean.
		candles := candleSeries(200, 100, 40, 1000)
		meter := NewSymbolMeter(&stubCandles{candles: candles}, ticker, neutralBook)

		got, err := meter.Measure(context.Background(), "BTCUSDT")
		require.NoError(t, err)

		assert.Equal(t, "BTCUSDT", got.Symbol)
		assert.InDelta(t, -60.0, got.Drawdown, 1e-9)
		assert.True(t, got.BelowMA200)
		assert.True(t, got.VolumeSpike)
		assert.Equal(t, "neutral", got.OrderBookPressure)
		assert.Equal(t, int64(123456), got.TradeCount)
		assert.True(t, got.Capitulation)
	})

	t.Run("capitulation on sell pressure without volume spike", func(t *testing.T) {
		candles := candleSeries(200, 100, 40, 100)
		meter := NewSymbolMeter(&stubCandles{candles: candles}, ticker, sellBook)

		got, err := meter.Measure(context.Background(), "BTCUSDT")
		require.NoError(t, err)

		assert.False(t, got.VolumeSpike)
		assert.Equal(t, "sell", got.OrderBookPressure)
		assert.True(t, got.Capitulation)
	})

	t.Run("no capitulation when drawdown is shallow", func(t *testing.T) {
		candles := candleSeries(200, 100, 80, 1000)
		meter := NewSymbolMeter(&stubCandles{candles: candles}, ticker, sellBook)

		got, err := meter.Measure(context.Background(), "BTCUSDT")
		require.NoError(t, err)

		assert.InDelta(t, -20.0, got.Drawdown, 1e-9)
		assert.False(t, got.Capitulation)
	})

	t.Run("no capitulation without spike or sell pressure", func(t *testing.T) {
		candles := candleSeries(200, 100, 40, 100)
		meter := NewSymbolMeter(&stubCandles{candles: candles}, ticker, buyBook)

		got, err := meter.Measure(context.Background(), "BTCUSDT")
		require.NoError(t, err)

		assert.True(t, got.BelowMA200)
		assert.Equal(t, "buy", got.OrderBookPressure)
		assert.False(t, got.Capitulation)
	})

	t.Run("empty history is not found", func(t *testing.T) {
		meter := NewSymbolMeter(&stubCandles{}, ticker, neutralBook)

		_, err := meter.Measure(context.Background(), "NOPEUSDT")

		var notFound *models.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("provider errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		candles := candleSeries(200, 100, 40, 1000)

		meter := NewSymbolMeter(&stubCandles{candles: candles}, &stubTicker{err: boom}, neutralBook)
		_, err := meter.Measure(context.Background(), "BTCUSDT")
		assert.ErrorIs(t, err, boom)

		meter = NewSymbolMeter(&stubCandles{candles: candles}, ticker, &stubDepth{err: boom})
		_, err = meter.Measure(context.Background(), "BTCUSDT")
		assert.ErrorIs(t, err, boom)
	})
}
