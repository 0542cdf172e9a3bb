package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/freealert/freealert/internal/models"
	"github.com/freealert/freealert/internal/utils/request"
)

const defaultBaseURL = "https://pro-api.coinmarketcap.com/v1"

// Client talks to the CoinMarketCap Pro API. The only provider in the set
// that authenticates, via the X-CMC_PRO_API_KEY header.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *resty.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: request.New(15 * time.Second),
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-CMC_PRO_API_KEY", c.apiKey).
		Get(c.baseURL + path)
	if err != nil {
		return nil, models.NewUpstreamError("coinmarketcap", fmt.Errorf("failed to execute request: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, models.NewUpstreamError("coinmarketcap", fmt.Errorf("unexpected status code: %d", resp.StatusCode()))
	}
	return resp.Body(), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GlobalMetrics fetches BTC/ETH dominance, rounded to 2 decimals for the
// dashboard widget.
func (c *Client) GlobalMetrics(ctx context.Context) (models.Dominance, error) {
	body, err := c.get(ctx, "/global-metrics/quotes/latest")
	if err != nil {
		return models.Dominance{}, err
	}

	var payload struct {
		Data struct {
			BTCDominance float64 `json:"btc_dominance"`
			ETHDominance float64 `json:"eth_dominance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Dominance{}, models.NewUpstreamError("coinmarketcap", fmt.Errorf("failed to decode response: %w", err))
	}

	return models.Dominance{
		BTCDominance: round2(payload.Data.BTCDominance),
		ETHDominance: round2(payload.Data.ETHDominance),
	}, nil
}

func (c *Client) listings(ctx context.Context) ([]models.CoinMover, error) {
	body, err := c.get(ctx, "/cryptocurrency/listings/latest")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []models.CoinMover `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, models.NewUpstreamError("coinmarketcap", fmt.Errorf("failed to decode response: %w", err))
	}
	return payload.Data, nil
}

// TopGainers returns the limit strongest 24h movers, best first.
func (c *Client) TopGainers(ctx context.Context, limit int) ([]models.CoinMover, error) {
	movers, err := c.listings(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(movers, func(i, j int) bool {
		return movers[i].Quote.USD.PercentChange24 > movers[j].Quote.USD.PercentChange24
	})
	return clip(movers, limit), nil
}

// TopLosers returns the limit weakest 24h movers, worst first.
func (c *Client) TopLosers(ctx context.Context, limit int) ([]models.CoinMover, error) {
	movers, err := c.listings(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(movers, func(i, j int) bool {
		return movers[i].Quote.USD.PercentChange24 < movers[j].Quote.USD.PercentChange24
	})
	return clip(movers, limit), nil
}

func clip(movers []models.CoinMover, limit int) []models.CoinMover {
	if limit > 0 && limit < len(movers) {
		return movers[:limit]
	}
	return movers
}
