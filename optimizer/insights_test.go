package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeMoods(t *testing.T) {
	allUp := []Candidate{
		{ID: "a", PriceChange24h: 2.5},
		{ID: "b", PriceChange24h: 0.3},
		{ID: "c", PriceChange24h: 7.1},
	}
	s := Summarize(allUp)
	assert.Equal(t, MoodBullish, s.Mood)
	assert.Equal(t, 3, s.Positive)
	assert.InDelta(t, 1.0, s.Score, 1e-9)

	allDown := []Candidate{
		{ID: "a", PriceChange24h: -2.5},
		{ID: "b", PriceChange24h: -0.3},
	}
	s = Summarize(allDown)
	assert.Equal(t, MoodBearish, s.Mood)
	assert.Equal(t, 2, s.Negative)

	mixed := []Candidate{
		{ID: "a", PriceChange24h: 1.0},
		{ID: "b", PriceChange24h: -1.0},
		{ID: "c", PriceChange24h: 0.0},
		{ID: "d", PriceChange24h: 0.0},
	}
	s = Summarize(mixed)
	assert.Equal(t, MoodNeutral, s.Mood)
	assert.Equal(t, 2, s.Neutral)
	assert.InDelta(t, 0.0, s.Score, 1e-9)

	s = Summarize(nil)
	assert.Equal(t, MoodNeutral, s.Mood)
	assert.Zero(t, s.Score)
}

func TestAnalyzeTrendIsDeterministic(t *testing.T) {
	prices := []float64{100, 101, 102, 103, 110, 112, 114, 116}
	volumes := []float64{10, 10, 10, 10, 20, 20, 20, 20}

	first := AnalyzeTrend(prices, volumes)
	second := AnalyzeTrend(prices, volumes)

	assert.Equal(t, first, second, "identical input must yield identical output")
	assert.Equal(t, "upward", first.PriceTrend)
	assert.Equal(t, "increasing", first.VolumeTrend)
	assert.Equal(t, MoodBullish, first.Momentum)
	assert.GreaterOrEqual(t, first.Confidence, 0.4)
	assert.LessOrEqual(t, first.Confidence, 0.9)
}

func TestAnalyzeTrendBearish(t *testing.T) {
	prices := []float64{116, 114, 112, 110, 103, 102, 101, 100}
	volumes := []float64{20, 20, 20, 20, 10, 10, 10, 10}

	report := AnalyzeTrend(prices, volumes)
	assert.Equal(t, "downward", report.PriceTrend)
	assert.Equal(t, "decreasing", report.VolumeTrend)
	assert.Equal(t, MoodBearish, report.Momentum)
}

func TestAnalyzeTrendShortSeries(t *testing.T) {
	report := AnalyzeTrend([]float64{100}, nil)
	assert.Equal(t, MoodNeutral, report.Momentum)
	assert.Equal(t, 0.4, report.Confidence)
}

func TestAssessRisk(t *testing.T) {
	result := &Result{
		Portfolio: []Entry{
			{AssetID: "tether", Percentage: 44.4, Volatility: 0.01},
			{AssetID: "bitcoin", Percentage: 33.3, Volatility: 0.05},
			{AssetID: "ethereum", Percentage: 22.3, Volatility: 0.08},
		},
	}

	report := AssessRisk(result, DefaultSectorTable())
	assert.Equal(t, "medium", report.Level, "44%% max allocation with low volatility stays off the low tier")
	assert.InDelta(t, (0.01+0.05+0.08)/3, report.AvgVolatility, 1e-9)
	assert.Equal(t, 3, report.AssetCount)
	assert.Equal(t, 2, report.SectorCount)
	assert.Contains(t, report.Considerations, "Consider adding more assets for better diversification")
	assert.Contains(t, report.Considerations, "Consider reducing concentration in your largest holding")
}

func TestAssessRiskEmpty(t *testing.T) {
	report := AssessRisk(&Result{}, DefaultSectorTable())
	assert.Equal(t, "unknown", report.Level)
}

func TestPredictPrice(t *testing.T) {
	// Short MA well above the last tick, so the projection points up.
	prices := []float64{100, 100, 100, 100, 100, 120, 120, 120, 120, 110}

	pred, ok := PredictPrice(prices)
	assert.True(t, ok)
	assert.Equal(t, "up", pred.Direction)
	assert.GreaterOrEqual(t, pred.Confidence, 0.3)
	assert.LessOrEqual(t, pred.Confidence, 0.8)

	again, _ := PredictPrice(prices)
	assert.Equal(t, pred, again)

	_, ok = PredictPrice([]float64{1, 2, 3})
	assert.False(t, ok, "need at least ten points")
}
