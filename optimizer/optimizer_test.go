package optimizer

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatHistory(price float64, n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price
	}
	return prices
}

func testCandidates() []Candidate {
	return []Candidate{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 65000, MarketCap: 8e11, PriceChange24h: 2.0, History: flatHistory(65000, 30)},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: 3200, MarketCap: 3e11, PriceChange24h: -1.0, History: flatHistory(3200, 30)},
		{ID: "tether", Symbol: "usdt", Name: "Tether", CurrentPrice: 1, MarketCap: 9e10, PriceChange24h: 0.0, History: flatHistory(1, 30)},
	}
}

func portfolioSum(result *Result) float64 {
	sum := 0.0
	for _, e := range result.Portfolio {
		sum += e.Percentage
	}
	return sum
}

func entryByID(t *testing.T, result *Result, id string) Entry {
	t.Helper()
	for _, e := range result.Portfolio {
		if e.AssetID == id {
			return e
		}
	}
	t.Fatalf("asset %s not in portfolio", id)
	return Entry{}
}

func TestLowRiskReservesStablecoinSlice(t *testing.T) {
	opt := New(nil, zerolog.Nop())

	result, err := opt.Optimize(testCandidates(), Request{
		RiskProfile:      RiskLow,
		InvestmentAmount: 10000,
		Sectors:          []string{"Layer 1", "Stablecoins"},
	})
	require.NoError(t, err)
	require.Len(t, result.Portfolio, 3)

	tether := entryByID(t, result, "tether")
	bitcoin := entryByID(t, result, "bitcoin")
	ethereum := entryByID(t, result, "ethereum")

	assert.Greater(t, tether.Percentage, 0.0, "stablecoin slice must be reserved")
	assert.GreaterOrEqual(t, bitcoin.Percentage, ethereum.Percentage)
	assert.InDelta(t, 100.0, portfolioSum(result), 1e-6)
}

func TestAllProfilesSumToHundred(t *testing.T) {
	candidates := []Candidate{
		{ID: "bitcoin", MarketCap: 8e11, History: flatHistory(65000, 30)},
		{ID: "ethereum", MarketCap: 3e11, History: flatHistory(3200, 30)},
		{ID: "solana", MarketCap: 7e10, History: flatHistory(150, 30)},
		{ID: "cardano", MarketCap: 2e10, History: flatHistory(0.5, 30)},
		{ID: "polkadot", MarketCap: 1e10, History: flatHistory(7, 30)},
		{ID: "tether", MarketCap: 9e10, History: flatHistory(1, 30)},
	}

	for _, profile := range []RiskProfile{RiskLow, RiskMedium, RiskHigh} {
		opt := New(nil, zerolog.Nop())
		result, err := opt.Optimize(candidates, Request{
			RiskProfile:      profile,
			InvestmentAmount: 5000,
			Sectors:          []string{"Layer 1", "Stablecoins"},
		})
		require.NoError(t, err, "profile %s", profile)
		assert.InDelta(t, 100.0, portfolioSum(result), 1e-6, "profile %s", profile)

		for _, entry := range result.Portfolio {
			assert.GreaterOrEqual(t, entry.Percentage, 0.0)
			assert.InDelta(t, 5000*entry.Percentage/100, entry.AllocationUSD, 1e-6)
		}
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	opt := New(nil, zerolog.Nop())
	req := Request{RiskProfile: RiskMedium, InvestmentAmount: 10000, Sectors: []string{"Layer 1"}}

	first, err := opt.Optimize(testCandidates(), req)
	require.NoError(t, err)
	second, err := opt.Optimize(testCandidates(), req)
	require.NoError(t, err)

	require.Len(t, second.Portfolio, len(first.Portfolio))
	for i := range first.Portfolio {
		assert.Equal(t, first.Portfolio[i].AssetID, second.Portfolio[i].AssetID)
		assert.InDelta(t, first.Portfolio[i].Percentage, second.Portfolio[i].Percentage, 1e-12)
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestSectorFilterFallsBackToTopMarketCap(t *testing.T) {
	opt := New(nil, zerolog.Nop())

	result, err := opt.Optimize(testCandidates(), Request{
		RiskProfile:      RiskHigh,
		InvestmentAmount: 1000,
		Sectors:          []string{"Gaming"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Portfolio, "empty sector match should fall back to unfiltered candidates")
	assert.InDelta(t, 100.0, portfolioSum(result), 1e-6)
}

func TestVolatilityFilterSkippedWhenEmpty(t *testing.T) {
	// Sawtooth history far above every profile threshold.
	wild := make([]float64, 30)
	for i := range wild {
		if i%2 == 0 {
			wild[i] = 100
		} else {
			wild[i] = 200
		}
	}

	candidates := []Candidate{
		{ID: "bitcoin", MarketCap: 8e11, History: wild},
		{ID: "ethereum", MarketCap: 3e11, History: wild},
	}

	opt := New(nil, zerolog.Nop())
	result, err := opt.Optimize(candidates, Request{
		RiskProfile:      RiskLow,
		InvestmentAmount: 1000,
		Sectors:          []string{"Layer 1"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Portfolio)
}

func TestOptimizeRejectsBadInput(t *testing.T) {
	opt := New(nil, zerolog.Nop())

	_, err := opt.Optimize(nil, Request{RiskProfile: RiskLow, InvestmentAmount: 100})
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = opt.Optimize(testCandidates(), Request{RiskProfile: "extreme", InvestmentAmount: 100})
	assert.Error(t, err)

	_, err = opt.Optimize(testCandidates(), Request{RiskProfile: RiskLow, InvestmentAmount: 0})
	assert.Error(t, err)
}

func TestVolatility(t *testing.T) {
	assert.Equal(t, 0.5, Volatility(nil), "no history defaults to high volatility")
	assert.Equal(t, 0.5, Volatility([]float64{100}), "single point defaults to high volatility")
	assert.Equal(t, 0.0, Volatility(flatHistory(100, 10)), "flat series has zero volatility")

	rising := []float64{100, 110, 121}
	assert.InDelta(t, 0.0, Volatility(rising), 1e-9, "constant-return series has zero stddev")
}

func TestMaxAssetsLimit(t *testing.T) {
	candidates := make([]Candidate, 0, 8)
	for _, id := range []string{"bitcoin", "ethereum", "solana", "cardano", "polkadot", "avalanche-2", "cosmos", "algorand"} {
		candidates = append(candidates, Candidate{ID: id, MarketCap: float64(len(candidates)+1) * 1e10, History: flatHistory(10, 30)})
	}

	opt := New(nil, zerolog.Nop())
	result, err := opt.Optimize(candidates, Request{
		RiskProfile:      RiskHigh,
		InvestmentAmount: 1000,
		Sectors:          []string{"Layer 1"},
		MaxAssets:        2,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Portfolio), 2)
}
