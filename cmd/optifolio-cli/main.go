// optifolio-cli runs the optimizer pipeline without the interactive
// dashboard, for scripting and quick checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"optifolio/api"
	"optifolio/chain"
	"optifolio/config"
	"optifolio/optimizer"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	riskProfile string
	amount      float64
	sectors     []string
	maxAssets   int
	asJSON      bool
)

func main() {
	root := &cobra.Command{
		Use:   "optifolio-cli",
		Short: "Crypto portfolio optimizer command line",
	}

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Generate a portfolio allocation",
		RunE:  runOptimize,
	}
	optimizeCmd.Flags().StringVar(&riskProfile, "risk", "medium", "risk profile: low, medium or high")
	optimizeCmd.Flags().Float64Var(&amount, "amount", 10000, "investment amount in USD")
	optimizeCmd.Flags().StringSliceVar(&sectors, "sectors", []string{"DeFi", "Layer 1"}, "sectors to include")
	optimizeCmd.Flags().IntVar(&maxAssets, "max-assets", 10, "maximum number of assets")
	optimizeCmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a table")

	marketsCmd := &cobra.Command{
		Use:   "markets",
		Short: "Show the top coins by market cap",
		RunE:  runMarkets,
	}
	marketsCmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a table")

	sentimentCmd := &cobra.Command{
		Use:   "sentiment",
		Short: "Show market sentiment from 24h movers",
		RunE:  runSentiment,
	}

	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Optimize and store the allocation on-chain",
		RunE:  runStore,
	}
	storeCmd.Flags().StringVar(&riskProfile, "risk", "medium", "risk profile: low, medium or high")
	storeCmd.Flags().Float64Var(&amount, "amount", 10000, "investment amount in USD")
	storeCmd.Flags().StringSliceVar(&sectors, "sectors", []string{"DeFi", "Layer 1"}, "sectors to include")
	storeCmd.Flags().IntVar(&maxAssets, "max-assets", 10, "maximum number of assets")

	root.AddCommand(optimizeCmd, marketsCmd, sentimentCmd, storeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient(logger zerolog.Logger) (*api.Client, config.Env) {
	env := config.LoadEnv()
	client := api.NewClient(api.ClientConfig{
		DemoKey: env.CoinGeckoDemoKey,
		ProKey:  env.CoinGeckoProKey,
		Cache:   api.NewCache(env.CacheTTL),
		Limiter: api.NewRateLimiter(env.RateLimitCalls, env.RateLimitWindow),
		Logger:  logger,
	})
	return client, env
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()
}

func loadSectorTable() optimizer.SectorTable {
	dir, err := config.Dir()
	if err != nil {
		return optimizer.DefaultSectorTable()
	}
	table, err := optimizer.LoadSectorTable(filepath.Join(dir, "sectors.yaml"))
	if err != nil {
		return optimizer.DefaultSectorTable()
	}
	return table
}

func optimizeOnce(ctx context.Context, client *api.Client, logger zerolog.Logger) (*optimizer.Result, optimizer.SectorTable, error) {
	coins, err := client.CoinsMarkets(ctx, "usd", 200, 1)
	if err != nil {
		return nil, nil, err
	}

	table := loadSectorTable()
	candidates := make([]optimizer.Candidate, 0, len(coins))
	for _, coin := range coins {
		candidates = append(candidates, optimizer.Candidate{
			ID:             coin.ID,
			Symbol:         coin.Symbol,
			Name:           coin.Name,
			CurrentPrice:   coin.CurrentPrice,
			MarketCap:      coin.MarketCap,
			TotalVolume:    coin.TotalVolume,
			PriceChange24h: coin.PriceChangePerc24h,
		})
	}

	fetched := 0
	for i := range candidates {
		if fetched >= 15 {
			break
		}
		inSector := false
		for _, sector := range sectors {
			if table.Member(sector, candidates[i].ID) {
				inSector = true
				break
			}
		}
		if !inSector {
			continue
		}
		chart, err := client.MarketChart(ctx, candidates[i].ID, "usd", 30)
		if err != nil {
			continue
		}
		candidates[i].History = chart.ClosingPrices()
		fetched++
	}

	opt := optimizer.New(table, logger)
	result, err := opt.Optimize(candidates, optimizer.Request{
		RiskProfile:      optimizer.RiskProfile(riskProfile),
		InvestmentAmount: amount,
		Sectors:          sectors,
		MaxAssets:        maxAssets,
	})
	return result, table, err
}

func runOptimize(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	client, _ := newClient(logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	result, table, err := optimizeOnce(ctx, client, logger)
	if err != nil {
		return err
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	fmt.Printf("Portfolio %s (%s risk, $%.0f)\n\n", result.RunID, result.RiskProfile, result.TotalValue)
	fmt.Printf("%-14s %8s %12s %14s\n", "ASSET", "ALLOC", "AMOUNT", "PRICE")
	for _, entry := range result.Portfolio {
		fmt.Printf("%-14s %7.2f%% %11.2f$ %13.4f$\n",
			entry.AssetID, entry.Percentage, entry.AllocationUSD, entry.CurrentPrice)
	}

	report := optimizer.AssessRisk(result, table)
	fmt.Printf("\nRisk level: %s (avg volatility %.3f, %d sectors)\n",
		report.Level, report.AvgVolatility, report.SectorCount)
	return nil
}

func runMarkets(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	client, _ := newClient(logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	coins, err := client.CoinsMarkets(ctx, "usd", 25, 1)
	if err != nil {
		return err
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(coins)
	}

	fmt.Printf("%-5s %-10s %-24s %14s %9s %14s\n", "RANK", "SYMBOL", "NAME", "PRICE", "24H", "MARKET CAP")
	for _, coin := range coins {
		fmt.Printf("%-5d %-10s %-24s %13.4f$ %8.2f%% %14.0f$\n",
			coin.MarketCapRank, strings.ToUpper(coin.Symbol), coin.Name,
			coin.CurrentPrice, coin.PriceChangePerc24h, coin.MarketCap)
	}
	return nil
}

func runSentiment(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	client, _ := newClient(logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	coins, err := client.CoinsMarkets(ctx, "usd", 50, 1)
	if err != nil {
		return err
	}

	candidates := make([]optimizer.Candidate, 0, len(coins))
	for _, coin := range coins {
		candidates = append(candidates, optimizer.Candidate{
			ID:             coin.ID,
			PriceChange24h: coin.PriceChangePerc24h,
		})
	}

	s := optimizer.Summarize(candidates)
	fmt.Printf("Mood: %s\nScore: %.2f\nPositive: %d  Negative: %d  Flat: %d\n",
		s.Mood, s.Score, s.Positive, s.Negative, s.Neutral)
	return nil
}

func runStore(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	client, env := newClient(logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	result, _, err := optimizeOnce(ctx, client, logger)
	if err != nil {
		return err
	}

	store, err := chain.NewPortfolioStore(chain.Config{
		RPCURL:          env.EthereumRPCURL,
		ContractAddress: env.ContractAddress,
		PrivateKey:      env.PrivateKey,
	}, logger)
	if err != nil {
		return err
	}

	allocation := make(map[string]float64, len(result.Portfolio))
	for _, entry := range result.Portfolio {
		allocation[entry.AssetID] = entry.Percentage
	}

	hash, err := store.StorePortfolio(ctx, allocation, result.TotalValue, string(result.RiskProfile), result.Sectors)
	if err != nil {
		return err
	}

	if store.DemoMode() {
		fmt.Printf("Simulated transaction (demo mode): %s\n", hash.Hex())
	} else {
		fmt.Printf("Stored on-chain: %s\n", hash.Hex())
	}
	return nil
}
