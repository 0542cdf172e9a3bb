package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/freealert/freealert/internal/models"
	"github.com/freealert/freealert/internal/utils/request"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"
	marketsPerPage = 50
)

// Client talks to the CoinGecko public API. The free tier throttles
// aggressively, so every call goes through a shared rate limiter.
type Client struct {
	baseURL    string
	httpClient *resty.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: request.New(15 * time.Second),
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 2),
	}
}

type marketRow struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	CurrentPrice   float64 `json:"current_price"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
	TotalVolume    float64 `json:"total_volume"`
	MarketCap      float64 `json:"market_cap"`
}

// TopMarkets fetches the top coins ordered by market cap descending, the
// ordering the signal extractor's top-20 average depends on.
func (c *Client) TopMarkets(ctx context.Context) ([]models.MarketCoin, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, models.NewUpstreamError("coingecko", err)
	}

	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1",
		c.baseURL, marketsPerPage)

	resp, err := c.httpClient.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, models.NewUpstreamError("coingecko", fmt.Errorf("failed to execute request: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, models.NewUpstreamError("coingecko", fmt.Errorf("unexpected status code: %d", resp.StatusCode()))
	}

	var rows []marketRow
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, models.NewUpstreamError("coingecko", fmt.Errorf("failed to decode response: %w", err))
	}

	coins := make([]models.MarketCoin, 0, len(rows))
	for _, row := range rows {
		coin, err := models.NewMarketCoin(row.ID, row.Name, row.Symbol,
			row.CurrentPrice, row.PriceChange24h, row.TotalVolume, row.MarketCap)
		if err != nil {
			return nil, fmt.Errorf("coingecko market row %q: %w", row.ID, err)
		}
		coins = append(coins, *coin)
	}
	return coins, nil
}

type globalResponse struct {
	Data struct {
		ActiveCryptocurrencies int                `json:"active_cryptocurrencies"`
		TotalMarketCap         map[string]float64 `json:"total_market_cap"`
		TotalVolume            map[string]float64 `json:"total_volume"`
		MarketCapPercentage    map[string]float64 `json:"market_cap_percentage"`
		MarketCapChange24hUSD  float64            `json:"market_cap_change_percentage_24h_usd"`
	} `json:"data"`
}

// Global fetches one point-in-time aggregate market snapshot.
func (c *Client) Global(ctx context.Context) (models.GlobalSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.GlobalSnapshot{}, models.NewUpstreamError("coingecko", err)
	}

	resp, err := c.httpClient.R().SetContext(ctx).Get(c.baseURL + "/global")
	if err != nil {
		return models.GlobalSnapshot{}, models.NewUpstreamError("coingecko", fmt.Errorf("failed to execute request: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return models.GlobalSnapshot{}, models.NewUpstreamError("coingecko", fmt.Errorf("unexpected status code: %d", resp.StatusCode()))
	}

	var payload globalResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return models.GlobalSnapshot{}, models.NewUpstreamError("coingecko", fmt.Errorf("failed to decode response: %w", err))
	}

	return models.GlobalSnapshot{
		ActiveCryptocurrencies: payload.Data.ActiveCryptocurrencies,
		TotalMarketCapUSD:      payload.Data.TotalMarketCap["usd"],
		TotalVolumeUSD:         payload.Data.TotalVolume["usd"],
		BTCDominancePercent:    payload.Data.MarketCapPercentage["btc"],
		ETHDominancePercent:    payload.Data.MarketCapPercentage["eth"],
		MarketCapChange24hUSD:  payload.Data.MarketCapChange24hUSD,
	}, nil
}
