package optimizer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SectorTable maps sector names to the coin ids belonging to them. The
// membership is hand-curated, not derived from market data.
type SectorTable map[string][]string

// DefaultSectorTable returns the built-in sector membership.
func DefaultSectorTable() SectorTable {
	return SectorTable{
		"DeFi":           {"aave", "uniswap", "compound", "maker", "curve-dao-token", "synthetix", "yearn-finance", "balancer"},
		"Layer 1":        {"bitcoin", "ethereum", "solana", "cardano", "polkadot", "avalanche-2", "cosmos", "algorand"},
		"Layer 2":        {"matic-network", "arbitrum", "optimism", "base", "polygon", "loopring"},
		"Stablecoins":    {"tether", "usd-coin", "dai", "binance-usd", "true-usd", "frax"},
		"AI":             {"fetch-ai", "ocean-protocol", "singularitynet", "artificial-intelligence", "cortex", "numerai"},
		"Meme":           {"dogecoin", "shiba-inu", "pepe", "floki", "bonk", "dogwifhat"},
		"Gaming":         {"axie-infinity", "the-sandbox", "decentraland", "enjin-coin", "gala", "illuvium"},
		"Infrastructure": {"chainlink", "filecoin", "the-graph", "helium", "render-token", "akash-network"},
	}
}

// LoadSectorTable reads a sector table from a YAML file, falling back to
// the built-in table when the file does not exist.
func LoadSectorTable(path string) (SectorTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSectorTable(), nil
		}
		return nil, fmt.Errorf("read sector table: %w", err)
	}

	var table SectorTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse sector table: %w", err)
	}
	if len(table) == 0 {
		return DefaultSectorTable(), nil
	}
	return table, nil
}

// Names returns the sector names in no particular order.
func (t SectorTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	return names
}

// Member reports whether the coin belongs to the named sector.
func (t SectorTable) Member(sector, coinID string) bool {
	for _, id := range t[sector] {
		if id == coinID {
			return true
		}
	}
	return false
}

// filterBySectors keeps candidates belonging to any of the selected
// sectors, preserving input order. A candidate in two selected sectors
// appears once.
func (t SectorTable) filterBySectors(candidates []Candidate, sectors []string) []Candidate {
	seen := make(map[string]bool)
	var filtered []Candidate
	for _, c := range candidates {
		if seen[c.ID] {
			continue
		}
		for _, sector := range sectors {
			if t.Member(sector, c.ID) {
				filtered = append(filtered, c)
				seen[c.ID] = true
				break
			}
		}
	}
	return filtered
}
