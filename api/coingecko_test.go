package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Cache:   NewCache(time.Minute),
		Limiter: NewRateLimiter(25, time.Minute),
		Logger:  zerolog.Nop(),
	})
	return client, server
}

func TestPing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		w.Write([]byte(`{"gecko_says":"(V3) To the Moon!"}`))
	})

	pong, err := client.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "(V3) To the Moon!", pong.GeckoSays)
}

func TestCoinsMarkets(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "market_cap_desc", r.URL.Query().Get("order"))
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":65000,
			 "market_cap":1280000000000,"market_cap_rank":1,"total_volume":32000000000,
			 "price_change_24h":1200.5,"price_change_percentage_24h":1.88}
		]`))
	})

	coins, err := client.CoinsMarkets(context.Background(), "usd", 50, 1)
	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.Equal(t, "bitcoin", coins[0].ID)
	assert.Equal(t, 65000.0, coins[0].CurrentPrice)
	assert.Equal(t, 1, coins[0].MarketCapRank)
	assert.InDelta(t, 1.88, coins[0].PriceChangePerc24h, 1e-9)
}

func TestCacheHitAvoidsSecondRequest(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"gecko_says":"hi"}`))
	})

	_, err := client.Ping(context.Background())
	require.NoError(t, err)
	_, err = client.Ping(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, requests, "second call should be served from cache")
	assert.Equal(t, 1, client.CacheStats().Hits)
}

func TestLimiterDenialReturnsErrRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Cache:   NewCache(time.Minute),
		Limiter: NewRateLimiter(1, time.Minute),
		Logger:  zerolog.Nop(),
	})

	_, err := client.Global(context.Background())
	require.NoError(t, err)

	// Different endpoint so the cache cannot answer it.
	_, err = client.Trending(context.Background())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestUpstream429(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Ping(context.Background())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Ping(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestStatusError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"server exploded"}`))
	})

	_, err := client.Ping(context.Background())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "server exploded")
}

func TestErrorResponsesAreNotCached(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"gecko_says":"recovered"}`))
	})

	_, err := client.Ping(context.Background())
	require.Error(t, err)

	pong, err := client.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "recovered", pong.GeckoSays)
	assert.Equal(t, 2, requests)
}

func TestUnreachable(t *testing.T) {
	client := NewClient(ClientConfig{
		BaseURL: "http://127.0.0.1:1",
		Cache:   NewCache(time.Minute),
		Limiter: NewRateLimiter(25, time.Minute),
		Logger:  zerolog.Nop(),
	})

	_, err := client.Ping(context.Background())

	var unreachable *UnreachableError
	assert.ErrorAs(t, err, &unreachable)
	assert.False(t, errors.Is(err, ErrRateLimited))
}

func TestDemoKeyHeader(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("x-cg-demo-api-key")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		DemoKey: "CG-test-key",
		Cache:   NewCache(time.Minute),
		Limiter: NewRateLimiter(25, time.Minute),
		Logger:  zerolog.Nop(),
	})

	_, err := client.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "CG-test-key", gotHeader)
	assert.Equal(t, "demo", client.KeyTier())
}

func TestMarketChartClosingPrices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		w.Write([]byte(`{
			"prices":[[1717200000000,65000],[1717286400000,66000],[1717372800000,64500]],
			"market_caps":[],
			"total_volumes":[]
		}`))
	})

	chart, err := client.MarketChart(context.Background(), "bitcoin", "usd", 30)
	require.NoError(t, err)
	assert.Equal(t, []float64{65000, 66000, 64500}, chart.ClosingPrices())
}

func TestGlobalUnwrapsData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{
			"active_cryptocurrencies":13000,
			"markets":1100,
			"total_market_cap":{"usd":2500000000000},
			"market_cap_percentage":{"btc":52.1,"eth":17.3},
			"market_cap_change_percentage_24h_usd":-0.8
		}}`))
	})

	global, err := client.Global(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 13000, global.ActiveCryptocurrencies)
	assert.InDelta(t, 52.1, global.MarketCapPercentage["btc"], 1e-9)
	assert.InDelta(t, -0.8, global.MarketCapChange24hUSD, 1e-9)
}

func TestOHLCParsesBars(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1717200000000,64000,66000,63500,65000]]`))
	})

	bars, err := client.OHLC(context.Background(), "bitcoin", "usd", 7)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 64000.0, bars[0].Open)
	assert.Equal(t, 66000.0, bars[0].High)
	assert.Equal(t, 63500.0, bars[0].Low)
	assert.Equal(t, 65000.0, bars[0].Close)
}
