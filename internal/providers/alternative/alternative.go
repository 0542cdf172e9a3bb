package alternative

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/freealert/freealert/internal/models"
	"github.com/freealert/freealert/internal/utils/request"
)

const defaultBaseURL = "https://api.alternative.me"

// Client talks to the alternative.me Fear & Greed index.
type Client struct {
	baseURL    string
	httpClient *resty.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: request.New(15 * time.Second),
	}
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	resp, err := c.httpClient.R().SetContext(ctx).Get(c.baseURL + "/fng/?limit=1&format=json")
	if err != nil {
		return nil, models.NewUpstreamError("alternative.me", fmt.Errorf("failed to execute request: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, models.NewUpstreamError("alternative.me", fmt.Errorf("unexpected status code: %d", resp.StatusCode()))
	}
	return resp.Body(), nil
}

// Raw returns the provider payload verbatim for the passthrough endpoint.
func (c *Client) Raw(ctx context.Context) ([]byte, error) {
	return c.fetch(ctx)
}

// Latest returns the newest fear/greed reading as an integer plus its
// classification.
func (c *Client) Latest(ctx context.Context) (models.SentimentReading, error) {
	body, err := c.fetch(ctx)
	if err != nil {
		return models.SentimentReading{}, err
	}

	var payload models.SentimentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.SentimentReading{}, models.NewUpstreamError("alternative.me", fmt.Errorf("failed to decode response: %w", err))
	}
	if len(payload.Data) == 0 {
		return models.SentimentReading{}, models.NewUpstreamError("alternative.me", fmt.Errorf("empty index data"))
	}

	value, err := strconv.Atoi(payload.Data[0].Value)
	if err != nil {
		return models.SentimentReading{}, models.NewUpstreamError("alternative.me", fmt.Errorf("non-numeric index value %q", payload.Data[0].Value))
	}

	return models.SentimentReading{
		Value:          value,
		Classification: payload.Data[0].Classification,
	}, nil
}
