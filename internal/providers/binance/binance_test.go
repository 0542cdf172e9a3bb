package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freealert/freealert/internal/models"
)

const tickerObject = `{
	"symbol":"BTCUSDT",
	"priceChange":"-2500.10",
	"priceChangePercent":"-2.6",
	"lastPrice":"95000.00",
	"openPrice":"97500.10",
	"highPrice":"98000.00",
	"lowPrice":"94000.00",
	"volume":"12345.6",
	"quoteVolume":"1180000000.5",
	"openTime":1756425600000,
	"closeTime":1756512000000,
	"firstId":1,"lastId":2,
	"count":987654
}`

func TestClient_Ticker24h(t *testing.T) {
	t.Run("parses the stats", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
			assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
			fmt.Fprint(w, tickerObject)
		}))
		defer srv.Close()

		got, err := NewClient(srv.URL).Ticker24h(context.Background(), "BTCUSDT")
		require.NoError(t, err)

		assert.Equal(t, "BTCUSDT", got.Symbol)
		assert.Equal(t, -2.6, got.PriceChangePercent)
		assert.Equal(t, 95000.0, got.LastPrice)
		assert.Equal(t, int64(987654), got.TradeCount)
		assert.Equal(t, int64(1756512000000), got.CloseTime)
	})

	t.Run("invalid symbol is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Ticker24h(context.Background(), "NOPEUSDT")

		var notFound *models.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("other API errors stay upstream errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			fmt.Fprint(w, `{"code":-1003,"msg":"Too many requests."}`)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Ticker24h(context.Background(), "BTCUSDT")

		var upstream *models.UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, "binance", upstream.Provider)
	})
}

func TestClient_AllTickers24h(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("symbol"))
		fmt.Fprintf(w, "[%s]", tickerObject)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).AllTickers24h(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "BTCUSDT", got[0].Symbol)
}

func TestClient_DailyCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `[
			[1756425600000,"97000.0","98000.0","96000.0","97500.0","100.5",1756511999999,"9800000.0",1000,"50.0","4900000.0","0"],
			[1756512000000,"97500.0","97800.0","94000.0","95000.0","250.0",1756598399999,"23750000.0",2000,"120.0","11400000.0","0"]
		]`)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).DailyCandles(context.Background(), "BTCUSDT", 2)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 97500.0, got[0].Close)
	assert.Equal(t, 95000.0, got[1].Close)
	assert.Equal(t, 250.0, got[1].Volume)
	assert.Equal(t, int64(1756512000), got[1].OpenTime.Unix())
}

func TestClient_DailyCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			[1756425600000,"1","1","1","10.0","1",1756511999999,"1",1,"1","1","0"],
			[1756512000000,"1","1","1","20.0","1",1756598399999,"1",1,"1","1","0"]
		]`)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).DailyCloses(context.Background(), "BTCUSDT", 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 20}, got)
}

func TestClient_OrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/depth", r.URL.Path)
		fmt.Fprint(w, `{"lastUpdateId":1,"bids":[["94999.0","1.5"],["94998.0","2.0"]],"asks":[["95001.0","3.0"]]}`)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).OrderBook(context.Background(), "BTCUSDT", 100)
	require.NoError(t, err)

	require.Len(t, got.Bids, 2)
	require.Len(t, got.Asks, 1)
	assert.Equal(t, [2]float64{94999, 1.5}, got.Bids[0])
	assert.Equal(t, [2]float64{95001, 3}, got.Asks[0])
}

func TestPair(t *testing.T) {
	assert.Equal(t, "BTCUSDT", Pair("btc"))
	assert.Equal(t, "ETHUSDT", Pair("ETH"))
}
