package models

import "time"

// MarketCoin 单个币种的市场快照 (one ranked coin from the markets provider)
type MarketCoin struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	CurrentPrice   float64 `json:"current_price"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
	Volume24h      float64 `json:"total_volume"`
	MarketCap      float64 `json:"market_cap,omitempty"`
}

// NewMarketCoin validates the provider payload before anything downstream
// sees it. A coin with a negative price or volume, or an empty symbol, is a
// broken upstream row and must never be partially constructed.
func NewMarketCoin(id, name, symbol string, price, change24h, volume, marketCap float64) (*MarketCoin, error) {
	if symbol == "" {
		return nil, &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if price < 0 {
		return nil, &ValidationError{Field: "current_price", Reason: "must not be negative"}
	}
	if volume < 0 {
		return nil, &ValidationError{Field: "total_volume", Reason: "must not be negative"}
	}
	return &MarketCoin{
		ID:             id,
		Name:           name,
		Symbol:         symbol,
		CurrentPrice:   price,
		PriceChange24h: change24h,
		Volume24h:      volume,
		MarketCap:      marketCap,
	}, nil
}

// GlobalSnapshot 一次性读取的全局市场状态 (one point-in-time aggregate read)
type GlobalSnapshot struct {
	ActiveCryptocurrencies int     `json:"active_cryptocurrencies"`
	TotalMarketCapUSD      float64 `json:"total_market_cap_usd"`
	TotalVolumeUSD         float64 `json:"total_volume_usd"`
	BTCDominancePercent    float64 `json:"btc_dominance_percent"`
	ETHDominancePercent    float64 `json:"eth_dominance_percent"`
	MarketCapChange24hUSD  float64 `json:"market_cap_change_percentage_24h_usd"`
}

// SentimentReading latest fear/greed index value. 0 = extreme fear, 100 = extreme greed.
type SentimentReading struct {
	Value          int    `json:"value"`
	Classification string `json:"value_classification"`
}

// SentimentPayload is the sentiment provider's response kept verbatim for
// the passthrough endpoint.
type SentimentPayload struct {
	Data []struct {
		Value           string `json:"value"`
		Classification  string `json:"value_classification"`
		Timestamp       string `json:"timestamp"`
		TimeUntilUpdate string `json:"time_until_update,omitempty"`
	} `json:"data"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// CapitulationSignals 由行情快照归约出的五个标量信号 (derived, ephemeral)
type CapitulationSignals struct {
	PriceDropSeverity  float64 `json:"price_drop_severity"` // avg 24h % change over the top 20 coins
	VolumeSpike        float64 `json:"volume_spike"`        // current / baseline volume, 1 when no baseline
	FearGreedLevel     int     `json:"fear_greed_level"`
	BTCDominanceChange float64 `json:"btc_dominance_change"` // delta vs previous reading, 0 when no previous
	SevereDropCount    int     `json:"severe_drop_count"`    // coins with 24h change <= -15%
}

// Level 恐慌程度分级
type Level string

const (
	LevelNone     Level = "None"
	LevelModerate Level = "Moderate"
	LevelSevere   Level = "Severe"
	LevelExtreme  Level = "Extreme"
)

// LevelForScore maps a bounded score onto its discrete level.
func LevelForScore(score int) Level {
	switch {
	case score >= 70:
		return LevelExtreme
	case score >= 50:
		return LevelSevere
	case score >= 30:
		return LevelModerate
	default:
		return LevelNone
	}
}

// Breakdown per-category sub-scores. Price is capped at 40 (+10 bonus),
// volume and fear at 25, dominance at 10.
type Breakdown struct {
	PriceScore     int `json:"priceScore"`
	VolumeScore    int `json:"volumeScore"`
	FearScore      int `json:"fearScore"`
	DominanceScore int `json:"dominanceScore"`
}

// CapitulationResult 评分结果: bounded score, level, active signal texts, breakdown.
// Score == min(100, sum of breakdown fields) holds for every result.
type CapitulationResult struct {
	Score     int       `json:"score"`
	Level     Level     `json:"level"`
	Signals   []string  `json:"signals"`
	Breakdown Breakdown `json:"breakdown"`
}

// Ticker24h Binance 风格的 24 小时行情统计
type Ticker24h struct {
	Symbol             string  `json:"symbol"`
	PriceChange        float64 `json:"priceChange"`
	PriceChangePercent float64 `json:"priceChangePercent"`
	LastPrice          float64 `json:"lastPrice"`
	OpenPrice          float64 `json:"openPrice"`
	HighPrice          float64 `json:"highPrice"`
	LowPrice           float64 `json:"lowPrice"`
	Volume             float64 `json:"volume"`
	QuoteVolume        float64 `json:"quoteVolume"`
	TradeCount         int64   `json:"tradeCount"`
	CloseTime          int64   `json:"closeTime,omitempty"`
}

// Candle 单根日线
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// OrderBook aggregated depth, price levels as [price, quantity].
type OrderBook struct {
	Bids [][2]float64 `json:"bids"`
	Asks [][2]float64 `json:"asks"`
}

// CoinMover one entry of the gainers/losers listing, kept in the quote shape
// the dashboard consumes.
type CoinMover struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
	Quote  struct {
		USD struct {
			Price           float64 `json:"price"`
			PercentChange24 float64 `json:"percent_change_24h"`
		} `json:"USD"`
	} `json:"quote"`
}

// Dominance 2-decimal dominance percentages for the dashboard widget.
type Dominance struct {
	BTCDominance float64 `json:"btcDominance"`
	ETHDominance float64 `json:"ethDominance"`
}
