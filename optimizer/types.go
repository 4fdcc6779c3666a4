package optimizer

import (
	"time"

	"github.com/google/uuid"
)

// RiskProfile selects which volatility threshold and weighting rule the
// optimizer applies.
type RiskProfile string

const (
	RiskLow    RiskProfile = "low"
	RiskMedium RiskProfile = "medium"
	RiskHigh   RiskProfile = "high"
)

// ValidRiskProfile reports whether p is one of the supported profiles.
func ValidRiskProfile(p RiskProfile) bool {
	switch p {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// riskConfig holds the per-profile tuning knobs.
type riskConfig struct {
	VolatilityThreshold float64
	MaxSingleAsset      float64
	StablecoinMin       float64
}

var riskProfiles = map[RiskProfile]riskConfig{
	RiskLow:    {VolatilityThreshold: 0.15, MaxSingleAsset: 0.40, StablecoinMin: 0.30},
	RiskMedium: {VolatilityThreshold: 0.25, MaxSingleAsset: 0.50, StablecoinMin: 0.10},
	RiskHigh:   {VolatilityThreshold: 0.40, MaxSingleAsset: 0.70, StablecoinMin: 0.00},
}

// Candidate is an asset under consideration, market data plus an
// optional recent price history used for the volatility proxy.
type Candidate struct {
	ID             string
	Symbol         string
	Name           string
	CurrentPrice   float64
	MarketCap      float64
	TotalVolume    float64
	PriceChange24h float64
	History        []float64
}

// Request is one optimization run's input.
type Request struct {
	RiskProfile      RiskProfile
	InvestmentAmount float64
	Sectors          []string
	MaxAssets        int
}

// Entry is one asset's slice of the resulting portfolio.
type Entry struct {
	AssetID       string
	Symbol        string
	Name          string
	CurrentPrice  float64
	AllocationUSD float64
	Percentage    float64
	MarketCap     float64
	Change24h     float64
	Volatility    float64
}

// Result is a completed optimization run. Each run replaces the
// previous one; results are never merged.
type Result struct {
	RunID       uuid.UUID
	Portfolio   []Entry
	TotalValue  float64
	RiskProfile RiskProfile
	Sectors     []string
	Timestamp   time.Time
}
