package binance

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"github.com/freealert/freealert/internal/models"
)

// Binance error code for an unknown trading pair.
const codeInvalidSymbol = -1121

// Client wraps the Binance spot SDK for the read-only market endpoints the
// dashboard consumes: 24h ticker stats, daily klines and order-book depth.
// No API key needed for any of them.
type Client struct {
	api *gobinance.Client
}

func NewClient(baseURL string) *Client {
	api := gobinance.NewClient("", "")
	if baseURL != "" {
		api.BaseURL = baseURL
	}
	return &Client{api: api}
}

func wrapErr(err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) && apiErr.Code == codeInvalidSymbol {
		return &models.NotFoundError{Resource: "ticker"}
	}
	return models.NewUpstreamError("binance", err)
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func statsToTicker(s *gobinance.PriceChangeStats) models.Ticker24h {
	return models.Ticker24h{
		Symbol:             s.Symbol,
		PriceChange:        parseFloat(s.PriceChange),
		PriceChangePercent: parseFloat(s.PriceChangePercent),
		LastPrice:          parseFloat(s.LastPrice),
		OpenPrice:          parseFloat(s.OpenPrice),
		HighPrice:          parseFloat(s.HighPrice),
		LowPrice:           parseFloat(s.LowPrice),
		Volume:             parseFloat(s.Volume),
		QuoteVolume:        parseFloat(s.QuoteVolume),
		TradeCount:         s.Count,
		CloseTime:          s.CloseTime,
	}
}

// Ticker24h fetches the 24h stats for one trading pair. Unknown symbols
// surface as NotFoundError.
func (c *Client) Ticker24h(ctx context.Context, symbol string) (*models.Ticker24h, error) {
	stats, err := c.api.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	if len(stats) == 0 {
		return nil, &models.NotFoundError{Resource: "ticker " + symbol}
	}
	ticker := statsToTicker(stats[0])
	return &ticker, nil
}

// AllTickers24h fetches 24h stats for every trading pair.
func (c *Client) AllTickers24h(ctx context.Context) ([]models.Ticker24h, error) {
	stats, err := c.api.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	tickers := make([]models.Ticker24h, 0, len(stats))
	for _, s := range stats {
		tickers = append(tickers, statsToTicker(s))
	}
	return tickers, nil
}

// DailyCandles fetches up to limit daily klines, oldest first.
func (c *Client) DailyCandles(ctx context.Context, symbol string, limit int) ([]models.Candle, error) {
	klines, err := c.api.NewKlinesService().
		Symbol(symbol).
		Interval("1d").
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}

	candles := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		candles = append(candles, models.Candle{
			OpenTime: time.UnixMilli(k.OpenTime),
			Open:     parseFloat(k.Open),
			High:     parseFloat(k.High),
			Low:      parseFloat(k.Low),
			Close:    parseFloat(k.Close),
			Volume:   parseFloat(k.Volume),
		})
	}
	return candles, nil
}

// DailyCloses fetches daily closing prices, oldest first.
func (c *Client) DailyCloses(ctx context.Context, symbol string, limit int) ([]float64, error) {
	candles, err := c.DailyCandles(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}
	return closes, nil
}

// OrderBook fetches aggregated depth for one trading pair.
func (c *Client) OrderBook(ctx context.Context, symbol string, limit int) (*models.OrderBook, error) {
	resp, err := c.api.NewDepthService().Symbol(symbol).Limit(limit).Do(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}

	book := &models.OrderBook{
		Bids: make([][2]float64, 0, len(resp.Bids)),
		Asks: make([][2]float64, 0, len(resp.Asks)),
	}
	for _, level := range resp.Bids {
		book.Bids = append(book.Bids, [2]float64{parseFloat(level.Price), parseFloat(level.Quantity)})
	}
	for _, level := range resp.Asks {
		book.Asks = append(book.Asks, [2]float64{parseFloat(level.Price), parseFloat(level.Quantity)})
	}
	return book, nil
}

// Pair converts a bare coin symbol into the USDT trading pair the alert
// recheck fetches history for.
func Pair(symbol string) string {
	return strings.ToUpper(symbol) + "USDT"
}
