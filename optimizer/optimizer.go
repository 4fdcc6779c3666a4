package optimizer

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxAssets caps the portfolio size when the request leaves it
	// unset.
	DefaultMaxAssets = 10

	// fallbackTopN is how many top-market-cap candidates to use when the
	// sector filter matches nothing.
	fallbackTopN = 20

	// defaultVolatility is assumed when a candidate has fewer than two
	// history points. Deliberately high so unknown assets only survive
	// the high-risk filter.
	defaultVolatility = 0.5
)

// ErrNoCandidates is returned when the optimizer is given an empty
// candidate list.
var ErrNoCandidates = errors.New("optimizer: no candidates")

// Optimizer turns market data into a weighted portfolio using fixed
// per-risk-profile rules. It is a pure computation; all market data is
// supplied by the caller.
type Optimizer struct {
	sectors SectorTable
	log     zerolog.Logger
}

// New creates an Optimizer over the given sector table.
func New(sectors SectorTable, log zerolog.Logger) *Optimizer {
	if sectors == nil {
		sectors = DefaultSectorTable()
	}
	return &Optimizer{sectors: sectors, log: log}
}

// Optimize produces an allocation for the request. Identical candidates
// and an identical request always yield identical weights; only the run
// id and timestamp differ between calls.
func (o *Optimizer) Optimize(candidates []Candidate, req Request) (*Result, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if !ValidRiskProfile(req.RiskProfile) {
		return nil, fmt.Errorf("optimizer: unknown risk profile %q", req.RiskProfile)
	}
	if req.InvestmentAmount <= 0 {
		return nil, fmt.Errorf("optimizer: investment amount must be positive, got %v", req.InvestmentAmount)
	}

	maxAssets := req.MaxAssets
	if maxAssets <= 0 {
		maxAssets = DefaultMaxAssets
	}

	// Sector filter, with an unfiltered top-N fallback when nothing
	// matches.
	pool := o.sectors.filterBySectors(candidates, req.Sectors)
	if len(pool) == 0 {
		o.log.Warn().Strs("sectors", req.Sectors).Msg("no assets matched selected sectors, using top market cap coins")
		pool = topByMarketCap(candidates, fallbackTopN)
	}

	// Volatility filter per profile threshold; skipped entirely when it
	// would empty the pool.
	cfg := riskProfiles[req.RiskProfile]
	volatilities := make(map[string]float64, len(pool))
	for _, c := range pool {
		volatilities[c.ID] = Volatility(c.History)
	}

	var calm []Candidate
	for _, c := range pool {
		if volatilities[c.ID] <= cfg.VolatilityThreshold {
			calm = append(calm, c)
		}
	}
	if len(calm) == 0 {
		o.log.Warn().Str("risk_profile", string(req.RiskProfile)).Msg("no assets meet volatility criteria, keeping all")
		calm = pool
	}

	selected := topByMarketCap(calm, maxAssets)
	weights := o.assignWeights(selected, req.RiskProfile)
	normalize(weights)

	result := &Result{
		RunID:       uuid.New(),
		RiskProfile: req.RiskProfile,
		Sectors:     req.Sectors,
		TotalValue:  req.InvestmentAmount,
		Timestamp:   time.Now(),
	}

	for _, c := range selected {
		weight, ok := weights[c.ID]
		if !ok || weight <= 0 {
			continue
		}
		result.Portfolio = append(result.Portfolio, Entry{
			AssetID:       c.ID,
			Symbol:        c.Symbol,
			Name:          c.Name,
			CurrentPrice:  c.CurrentPrice,
			AllocationUSD: req.InvestmentAmount * weight,
			Percentage:    weight * 100,
			MarketCap:     c.MarketCap,
			Change24h:     c.PriceChange24h,
			Volatility:    volatilities[c.ID],
		})
	}

	o.log.Info().
		Str("run_id", result.RunID.String()).
		Str("risk_profile", string(req.RiskProfile)).
		Int("assets", len(result.Portfolio)).
		Float64("amount", req.InvestmentAmount).
		Msg("portfolio optimized")

	return result, nil
}

// assignWeights applies the fixed per-profile weighting rule. Weights
// may not sum to 1 here; the caller normalizes.
func (o *Optimizer) assignWeights(assets []Candidate, profile RiskProfile) map[string]float64 {
	weights := make(map[string]float64)

	switch profile {
	case RiskLow:
		// Reserve a stablecoin slice, then blue chips, then an equal
		// split over a few diversifiers.
		for _, a := range assets {
			if o.sectors.Member("Stablecoins", a.ID) {
				weights[a.ID] = 0.40
				break
			}
		}
		blueChip := 0.30
		for _, a := range assets {
			if a.ID == "bitcoin" || a.ID == "ethereum" {
				if _, taken := weights[a.ID]; !taken {
					weights[a.ID] = blueChip
					blueChip -= 0.10
				}
			}
		}
		var remainder []Candidate
		for _, a := range assets {
			if _, taken := weights[a.ID]; !taken {
				remainder = append(remainder, a)
			}
		}
		if len(remainder) > 0 {
			assigned := 0.0
			for _, w := range weights {
				assigned += w
			}
			n := len(remainder)
			if n > 3 {
				n = 3
			}
			share := (1 - assigned) / float64(n)
			for _, a := range remainder[:n] {
				weights[a.ID] = share
			}
		}

	case RiskMedium:
		for i, a := range assets {
			if i >= 5 {
				break
			}
			w := 0.25 - float64(i)*0.05
			if w > 0 {
				weights[a.ID] = w
			}
		}

	case RiskHigh:
		for i, a := range assets {
			if i >= 4 {
				break
			}
			w := 0.40 - float64(i)*0.10
			if w > 0 {
				weights[a.ID] = w
			}
		}
	}

	return weights
}

// topByMarketCap returns up to n candidates sorted by market cap
// descending. Ties break on id so the order is stable across runs.
func topByMarketCap(candidates []Candidate, n int) []Candidate {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].MarketCap != sorted[j].MarketCap {
			return sorted[i].MarketCap > sorted[j].MarketCap
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// normalize rescales weights in place so they sum to exactly 1.
func normalize(weights map[string]float64) {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return
	}
	for id := range weights {
		weights[id] /= total
	}
}

// Volatility is the standard deviation of period-over-period returns of
// the price series. Fewer than two points gets the high default.
func Volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return defaultVolatility
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) == 0 {
		return defaultVolatility
	}
	return stddev(returns)
}
