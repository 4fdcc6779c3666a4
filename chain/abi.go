package chain

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// fallbackABI covers the three contract methods the dashboard uses. It
// is used when no build-artifact metadata file is available.
const fallbackABI = `[
  {
    "inputs": [
      {"internalType": "string[]", "name": "assetIds", "type": "string[]"},
      {"internalType": "uint256[]", "name": "allocations", "type": "uint256[]"},
      {"internalType": "uint256", "name": "totalInvestment", "type": "uint256"},
      {"internalType": "string", "name": "riskProfile", "type": "string"},
      {"internalType": "string[]", "name": "sectors", "type": "string[]"}
    ],
    "name": "storePortfolio",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "user", "type": "address"},
      {"internalType": "uint256", "name": "portfolioIndex", "type": "uint256"}
    ],
    "name": "getPortfolio",
    "outputs": [
      {"internalType": "string[]", "name": "assetIds", "type": "string[]"},
      {"internalType": "uint256[]", "name": "allocations", "type": "uint256[]"},
      {"internalType": "uint256", "name": "totalInvestment", "type": "uint256"},
      {"internalType": "uint256", "name": "timestamp", "type": "uint256"},
      {"internalType": "string", "name": "riskProfile", "type": "string"},
      {"internalType": "string[]", "name": "sectors", "type": "string[]"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "getUserPortfolioCount",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

// loadABI parses the contract ABI from a solc metadata file, falling
// back to the built-in ABI when the path is empty or the file is
// missing.
func loadABI(metadataPath string) (abi.ABI, error) {
	if metadataPath != "" {
		data, err := os.ReadFile(metadataPath)
		if err == nil {
			var metadata struct {
				Output struct {
					ABI json.RawMessage `json:"abi"`
				} `json:"output"`
			}
			if err := json.Unmarshal(data, &metadata); err != nil {
				return abi.ABI{}, fmt.Errorf("parse contract metadata: %w", err)
			}
			parsed, err := abi.JSON(strings.NewReader(string(metadata.Output.ABI)))
			if err != nil {
				return abi.ABI{}, fmt.Errorf("parse contract abi: %w", err)
			}
			return parsed, nil
		}
		if !os.IsNotExist(err) {
			return abi.ABI{}, fmt.Errorf("read contract metadata: %w", err)
		}
	}

	return abi.JSON(strings.NewReader(fallbackABI))
}
