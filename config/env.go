package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Env is the process configuration, read from the environment with an
// optional .env overlay.
type Env struct {
	CoinGeckoDemoKey string
	CoinGeckoProKey  string
	EthereumRPCURL   string
	ContractAddress  string
	PrivateKey       string
	Debug            bool

	CacheTTL        time.Duration
	RateLimitCalls  int
	RateLimitWindow time.Duration
}

// LoadEnv reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment
// variables win over it.
func LoadEnv() Env {
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load()

	return Env{
		CoinGeckoDemoKey: os.Getenv("COINGECKO_DEMO_API_KEY"),
		CoinGeckoProKey:  os.Getenv("COINGECKO_PRO_API_KEY"),
		EthereumRPCURL:   os.Getenv("ETHEREUM_RPC_URL"),
		ContractAddress:  os.Getenv("CONTRACT_ADDRESS"),
		PrivateKey:       os.Getenv("PRIVATE_KEY"),
		Debug:            os.Getenv("OPTIFOLIO_DEBUG") != "",

		CacheTTL:        5 * time.Minute,
		RateLimitCalls:  25,
		RateLimitWindow: time.Minute,
	}
}
