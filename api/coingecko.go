package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public CoinGecko v3 API.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	userAgent = "Optifolio/1.0"
)

// Client is a CoinGecko API client. Every call goes through the injected
// cache and rate limiter; a cache miss costs exactly one outbound request
// and no call is ever retried automatically.
type Client struct {
	baseURL    string
	httpClient *http.Client
	demoKey    string
	proKey     string
	cache      *Cache
	limiter    *RateLimiter
	log        zerolog.Logger
}

// ClientConfig carries the client's dependencies. Cache and Limiter are
// required; keys are optional (unauthenticated use is allowed but tightly
// rate limited upstream).
type ClientConfig struct {
	BaseURL string
	DemoKey string
	ProKey  string
	Cache   *Cache
	Limiter *RateLimiter
	Logger  zerolog.Logger
}

// NewClient creates a CoinGecko client from the given configuration.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		demoKey: cfg.DemoKey,
		proKey:  cfg.ProKey,
		cache:   cfg.Cache,
		limiter: cfg.Limiter,
		log:     cfg.Logger,
	}
}

// KeyTier reports which API key tier is configured: "demo", "pro" or
// "none". The demo key wins when both are set.
func (c *Client) KeyTier() string {
	switch {
	case c.demoKey != "":
		return "demo"
	case c.proKey != "":
		return "pro"
	default:
		return "none"
	}
}

// CacheStats exposes the underlying cache counters.
func (c *Client) CacheStats() CacheStats {
	return c.cache.Stats()
}

// LimiterStats exposes the underlying limiter counters.
func (c *Client) LimiterStats() RateLimiterStats {
	return c.limiter.Stats()
}

// get fetches an endpoint through the cache and limiter. The returned
// payload is raw JSON; callers decode into their own types.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}

	if payload, ok := c.cache.Get(endpoint, params); ok {
		c.log.Debug().Str("endpoint", endpoint).Msg("cache hit")
		return payload, nil
	}

	if !c.limiter.Admit() {
		c.log.Warn().Str("endpoint", endpoint).Msg("local rate limit reached")
		return nil, fmt.Errorf("local limiter denied %s: %w", endpoint, ErrRateLimited)
	}

	fullURL := c.baseURL + "/" + endpoint
	if encoded := params.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.demoKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.demoKey)
	} else if c.proKey != "" {
		req.Header.Set("x-cg-pro-api-key", c.proKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("endpoint", endpoint).Msg("request failed")
		return nil, &UnreachableError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnreachableError{Endpoint: endpoint, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through
	case resp.StatusCode == http.StatusTooManyRequests:
		c.log.Warn().Str("endpoint", endpoint).Str("retry_after", resp.Header.Get("Retry-After")).Msg("upstream rate limit hit")
		return nil, fmt.Errorf("%s: %w", endpoint, ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", endpoint, ErrUnauthorized)
	default:
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	c.cache.Set(endpoint, params, json.RawMessage(body))

	c.log.Debug().
		Str("endpoint", endpoint).
		Dur("duration", time.Since(start)).
		Int("bytes", len(body)).
		Msg("request completed")

	return json.RawMessage(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Pong is the /ping response.
type Pong struct {
	GeckoSays string `json:"gecko_says"`
}

// Ping performs a lightweight health check against the API.
func (c *Client) Ping(ctx context.Context) (*Pong, error) {
	payload, err := c.get(ctx, "ping", nil)
	if err != nil {
		return nil, err
	}

	var pong Pong
	if err := json.Unmarshal(payload, &pong); err != nil {
		return nil, fmt.Errorf("decode ping: %w", err)
	}
	return &pong, nil
}

// SimplePrice is one currency's entry in a /simple/price response.
type SimplePrice struct {
	USD          float64 `json:"usd"`
	USDMarketCap float64 `json:"usd_market_cap"`
	USD24hVol    float64 `json:"usd_24h_vol"`
	USD24hChange float64 `json:"usd_24h_change"`
}

// SimplePrices fetches current prices for the given coin ids in USD,
// including market cap, volume and 24h change.
func (c *Client) SimplePrices(ctx context.Context, ids []string) (map[string]SimplePrice, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_market_cap", "true")
	params.Set("include_24hr_vol", "true")
	params.Set("include_24hr_change", "true")

	payload, err := c.get(ctx, "simple/price", params)
	if err != nil {
		return nil, err
	}

	var prices map[string]SimplePrice
	if err := json.Unmarshal(payload, &prices); err != nil {
		return nil, fmt.Errorf("decode simple/price: %w", err)
	}
	return prices, nil
}

// MarketCoin is one row of a /coins/markets response.
type MarketCoin struct {
	ID                 string  `json:"id"`
	Symbol             string  `json:"symbol"`
	Name               string  `json:"name"`
	CurrentPrice       float64 `json:"current_price"`
	MarketCap          float64 `json:"market_cap"`
	MarketCapRank      int     `json:"market_cap_rank"`
	TotalVolume        float64 `json:"total_volume"`
	PriceChange24h     float64 `json:"price_change_24h"`
	PriceChangePerc24h float64 `json:"price_change_percentage_24h"`
	LastUpdated        string  `json:"last_updated"`
}

// CoinsMarkets fetches a page of market data ordered by market cap
// descending.
func (c *Client) CoinsMarkets(ctx context.Context, vsCurrency string, perPage, page int) ([]MarketCoin, error) {
	params := url.Values{}
	params.Set("vs_currency", vsCurrency)
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")

	payload, err := c.get(ctx, "coins/markets", params)
	if err != nil {
		return nil, err
	}

	var coins []MarketCoin
	if err := json.Unmarshal(payload, &coins); err != nil {
		return nil, fmt.Errorf("decode coins/markets: %w", err)
	}
	return coins, nil
}

// CoinDetail is the subset of /coins/{id} the dashboard uses.
type CoinDetail struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	MarketData struct {
		CurrentPrice      map[string]float64 `json:"current_price"`
		MarketCap         map[string]float64 `json:"market_cap"`
		TotalVolume       map[string]float64 `json:"total_volume"`
		PriceChange24h    float64            `json:"price_change_percentage_24h"`
		CirculatingSupply float64            `json:"circulating_supply"`
		TotalSupply       float64            `json:"total_supply"`
		MaxSupply         float64            `json:"max_supply"`
	} `json:"market_data"`
}

// Coin fetches detailed data for one coin id.
func (c *Client) Coin(ctx context.Context, id string) (*CoinDetail, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")
	params.Set("sparkline", "false")

	payload, err := c.get(ctx, "coins/"+id, params)
	if err != nil {
		return nil, err
	}

	var detail CoinDetail
	if err := json.Unmarshal(payload, &detail); err != nil {
		return nil, fmt.Errorf("decode coins/%s: %w", id, err)
	}
	return &detail, nil
}

// MarketChart is a /coins/{id}/market_chart response. Each point is a
// [timestamp_ms, value] pair.
type MarketChart struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// ClosingPrices flattens the price series into plain values.
func (mc *MarketChart) ClosingPrices() []float64 {
	prices := make([]float64, 0, len(mc.Prices))
	for _, point := range mc.Prices {
		if len(point) == 2 {
			prices = append(prices, point[1])
		}
	}
	return prices
}

// MarketChart fetches a daily price history for the coin.
func (c *Client) MarketChart(ctx context.Context, id, vsCurrency string, days int) (*MarketChart, error) {
	params := url.Values{}
	params.Set("vs_currency", vsCurrency)
	params.Set("days", strconv.Itoa(days))

	payload, err := c.get(ctx, "coins/"+id+"/market_chart", params)
	if err != nil {
		return nil, err
	}

	var chart MarketChart
	if err := json.Unmarshal(payload, &chart); err != nil {
		return nil, fmt.Errorf("decode market_chart: %w", err)
	}
	return &chart, nil
}

// OHLCBar is one candle from /coins/{id}/ohlc.
type OHLCBar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// OHLC fetches candle data for the coin.
func (c *Client) OHLC(ctx context.Context, id, vsCurrency string, days int) ([]OHLCBar, error) {
	params := url.Values{}
	params.Set("vs_currency", vsCurrency)
	params.Set("days", strconv.Itoa(days))

	payload, err := c.get(ctx, "coins/"+id+"/ohlc", params)
	if err != nil {
		return nil, err
	}

	var raw [][]float64
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode ohlc: %w", err)
	}

	bars := make([]OHLCBar, 0, len(raw))
	for _, row := range raw {
		if len(row) != 5 {
			continue
		}
		bars = append(bars, OHLCBar{
			Timestamp: time.UnixMilli(int64(row[0])),
			Open:      row[1],
			High:      row[2],
			Low:       row[3],
			Close:     row[4],
		})
	}
	return bars, nil
}

// TrendingCoin is one entry of a /search/trending response.
type TrendingCoin struct {
	Item struct {
		ID            string  `json:"id"`
		Symbol        string  `json:"symbol"`
		Name          string  `json:"name"`
		MarketCapRank int     `json:"market_cap_rank"`
		PriceBTC      float64 `json:"price_btc"`
		Score         int     `json:"score"`
	} `json:"item"`
}

// TrendingResult is a /search/trending response.
type TrendingResult struct {
	Coins []TrendingCoin `json:"coins"`
}

// Trending fetches the currently trending coins.
func (c *Client) Trending(ctx context.Context) (*TrendingResult, error) {
	payload, err := c.get(ctx, "search/trending", nil)
	if err != nil {
		return nil, err
	}

	var trending TrendingResult
	if err := json.Unmarshal(payload, &trending); err != nil {
		return nil, fmt.Errorf("decode search/trending: %w", err)
	}
	return &trending, nil
}

// GlobalData is the payload of a /global response.
type GlobalData struct {
	ActiveCryptocurrencies int                `json:"active_cryptocurrencies"`
	Markets                int                `json:"markets"`
	TotalMarketCap         map[string]float64 `json:"total_market_cap"`
	TotalVolume            map[string]float64 `json:"total_volume"`
	MarketCapPercentage    map[string]float64 `json:"market_cap_percentage"`
	MarketCapChange24hUSD  float64            `json:"market_cap_change_percentage_24h_usd"`
}

// Global fetches global market statistics.
func (c *Client) Global(ctx context.Context) (*GlobalData, error) {
	payload, err := c.get(ctx, "global", nil)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Data GlobalData `json:"data"`
	}
	if err := json.Unmarshal(payload, &wrapper); err != nil {
		return nil, fmt.Errorf("decode global: %w", err)
	}
	return &wrapper.Data, nil
}

// DeFiData is the payload of a /global/decentralized_finance_defi
// response. The upstream returns several numeric fields as strings.
type DeFiData struct {
	DefiMarketCap string  `json:"defi_market_cap"`
	Defi24hVolume string  `json:"trading_volume_24h"`
	DefiDominance string  `json:"defi_dominance"`
	TopCoinName   string  `json:"top_coin_name"`
	TopCoinShare  float64 `json:"top_coin_defi_dominance"`
}

// MarketCapUSD parses the string-typed market cap, returning 0 when the
// upstream sends something unparsable.
func (d *DeFiData) MarketCapUSD() float64 {
	v, err := strconv.ParseFloat(d.DefiMarketCap, 64)
	if err != nil {
		return 0
	}
	return v
}

// DeFiGlobal fetches global DeFi market statistics.
func (c *Client) DeFiGlobal(ctx context.Context) (*DeFiData, error) {
	payload, err := c.get(ctx, "global/decentralized_finance_defi", nil)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Data DeFiData `json:"data"`
	}
	if err := json.Unmarshal(payload, &wrapper); err != nil {
		return nil, fmt.Errorf("decode defi global: %w", err)
	}
	return &wrapper.Data, nil
}

// Category is one row of a /coins/categories response.
type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	MarketCap   float64 `json:"market_cap"`
	Change24h   float64 `json:"market_cap_change_24h"`
	Volume24h   float64 `json:"volume_24h"`
	Description string  `json:"content"`
}

// Categories fetches coin categories ordered by market cap.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	payload, err := c.get(ctx, "coins/categories", nil)
	if err != nil {
		return nil, err
	}

	var categories []Category
	if err := json.Unmarshal(payload, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

// TreasuryHolding is one company in a public treasury response.
type TreasuryHolding struct {
	Name               string  `json:"name"`
	Symbol             string  `json:"symbol"`
	Country            string  `json:"country"`
	TotalHoldings      float64 `json:"total_holdings"`
	TotalValueUSD      float64 `json:"total_current_value_usd"`
	PercentTotalSupply float64 `json:"percentage_of_total_supply"`
}

// TreasuryResult is a /companies/public_treasury/{id} response.
type TreasuryResult struct {
	TotalHoldings     float64           `json:"total_holdings"`
	TotalValueUSD     float64           `json:"total_value_usd"`
	MarketCapDominace float64           `json:"market_cap_dominance"`
	Companies         []TreasuryHolding `json:"companies"`
}

// CompanyTreasury fetches public company treasury holdings for a coin
// (bitcoin or ethereum).
func (c *Client) CompanyTreasury(ctx context.Context, coinID string) (*TreasuryResult, error) {
	payload, err := c.get(ctx, "companies/public_treasury/"+coinID, nil)
	if err != nil {
		return nil, err
	}

	var result TreasuryResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode treasury: %w", err)
	}
	return &result, nil
}

// CoinByContract resolves a token by its contract address on a platform
// (e.g. "ethereum").
func (c *Client) CoinByContract(ctx context.Context, platform, address string) (*CoinDetail, error) {
	payload, err := c.get(ctx, "coins/"+platform+"/contract/"+address, nil)
	if err != nil {
		return nil, err
	}

	var detail CoinDetail
	if err := json.Unmarshal(payload, &detail); err != nil {
		return nil, fmt.Errorf("decode contract coin: %w", err)
	}
	return &detail, nil
}
