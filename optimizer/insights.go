package optimizer

import "math"

// Mood is the three-way market sentiment label.
type Mood string

const (
	MoodBullish Mood = "bullish"
	MoodBearish Mood = "bearish"
	MoodNeutral Mood = "neutral"
)

// Sentiment summarizes the 24h movers in a market snapshot.
type Sentiment struct {
	Score      float64
	Positive   int
	Negative   int
	Neutral    int
	Mood       Mood
	Confidence float64
}

// Summarize computes market sentiment from 24h price changes. Pure
// function; the score is (positive - negative) / total.
func Summarize(candidates []Candidate) Sentiment {
	s := Sentiment{Mood: MoodNeutral}
	if len(candidates) == 0 {
		return s
	}

	for _, c := range candidates {
		switch {
		case c.PriceChange24h > 0:
			s.Positive++
		case c.PriceChange24h < 0:
			s.Negative++
		default:
			s.Neutral++
		}
	}

	s.Score = float64(s.Positive-s.Negative) / float64(len(candidates))
	s.Confidence = math.Abs(s.Score)

	switch {
	case s.Score > 0.1:
		s.Mood = MoodBullish
	case s.Score < -0.1:
		s.Mood = MoodBearish
	}
	return s
}

// RiskReport describes how spread-out and volatile a portfolio is.
type RiskReport struct {
	Level          string
	AvgVolatility  float64
	MaxAllocation  float64
	Concentration  float64
	AssetCount     int
	SectorCount    int
	Considerations []string
}

// AssessRisk evaluates a finished portfolio. Concentration is the
// standard deviation of the allocation percentages; an equal-weight
// portfolio scores zero.
func AssessRisk(result *Result, sectors SectorTable) RiskReport {
	report := RiskReport{AssetCount: len(result.Portfolio)}
	if len(result.Portfolio) == 0 {
		report.Level = "unknown"
		return report
	}

	percentages := make([]float64, 0, len(result.Portfolio))
	volSum := 0.0
	coveredSectors := make(map[string]bool)
	for _, entry := range result.Portfolio {
		percentages = append(percentages, entry.Percentage)
		volSum += entry.Volatility
		if entry.Percentage > report.MaxAllocation {
			report.MaxAllocation = entry.Percentage
		}
		for _, name := range sectors.Names() {
			if sectors.Member(name, entry.AssetID) {
				coveredSectors[name] = true
			}
		}
	}

	report.AvgVolatility = volSum / float64(len(result.Portfolio))
	report.Concentration = stddev(percentages)
	report.SectorCount = len(coveredSectors)

	switch {
	case report.AvgVolatility <= 0.15 && report.MaxAllocation <= 45:
		report.Level = "low"
	case report.AvgVolatility <= 0.30:
		report.Level = "medium"
	default:
		report.Level = "high"
	}

	if report.AssetCount < 5 {
		report.Considerations = append(report.Considerations, "Consider adding more assets for better diversification")
	}
	if report.SectorCount < 3 {
		report.Considerations = append(report.Considerations, "Diversify across more sectors to reduce concentration risk")
	}
	if report.MaxAllocation > 30 {
		report.Considerations = append(report.Considerations, "Consider reducing concentration in your largest holding")
	}
	return report
}

// TrendReport describes the direction of a price/volume series.
type TrendReport struct {
	PriceTrend     string
	VolumeTrend    string
	Momentum       Mood
	Confidence     float64
	Recommendation string
}

// AnalyzeTrend compares the recent part of the series against the older
// part. Confidence is derived from the size of the move relative to the
// older mean, clamped to [0.4, 0.9], so identical inputs always produce
// the same value.
func AnalyzeTrend(prices, volumes []float64) TrendReport {
	report := TrendReport{PriceTrend: "flat", VolumeTrend: "flat", Momentum: MoodNeutral, Confidence: 0.4}
	if len(prices) < 2 {
		return report
	}

	half := len(prices) / 2
	older := mean(prices[:half])
	recent := mean(prices[half:])
	if recent > older {
		report.PriceTrend = "upward"
	} else if recent < older {
		report.PriceTrend = "downward"
	}

	if len(volumes) >= 2 {
		vhalf := len(volumes) / 2
		if mean(volumes[vhalf:]) > mean(volumes[:vhalf]) {
			report.VolumeTrend = "increasing"
		} else {
			report.VolumeTrend = "decreasing"
		}
	}

	if older > 0 {
		strength := math.Abs(recent-older) / older
		report.Confidence = clamp(0.4+strength, 0.4, 0.9)
	}

	switch {
	case report.PriceTrend == "upward" && report.VolumeTrend == "increasing":
		report.Momentum = MoodBullish
		report.Recommendation = "Strong bullish momentum - consider growth assets"
	case report.PriceTrend == "downward" && report.VolumeTrend == "decreasing":
		report.Momentum = MoodBearish
		report.Recommendation = "Bearish trend - consider defensive positioning"
	default:
		report.Recommendation = "Mixed signals - maintain balanced allocation"
	}
	return report
}

// PricePrediction is a moving-average projection of the next price.
type PricePrediction struct {
	Predicted     float64
	ChangePercent float64
	Direction     string
	Confidence    float64
}

// PredictPrice projects the trend of a short moving average against a
// long one. Confidence follows trend strength, clamped to [0.3, 0.8].
func PredictPrice(prices []float64) (PricePrediction, bool) {
	if len(prices) < 10 {
		return PricePrediction{}, false
	}

	shortMA := mean(prices[len(prices)-5:])
	longMA := mean(prices[len(prices)-10:])
	current := prices[len(prices)-1]

	predicted := shortMA + (shortMA-longMA)*0.1

	pred := PricePrediction{
		Predicted:  predicted,
		Direction:  "down",
		Confidence: 0.3,
	}
	if predicted > current {
		pred.Direction = "up"
	}
	if current > 0 {
		pred.ChangePercent = (predicted - current) / current * 100
	}
	if longMA > 0 {
		strength := math.Abs(shortMA-longMA) / longMA
		pred.Confidence = clamp(strength, 0.3, 0.8)
	}
	return pred, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
