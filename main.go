package main

import (
	"fmt"
	"os"
	"path/filepath"

	"optifolio/api"
	"optifolio/chain"
	"optifolio/config"
	"optifolio/models"
	"optifolio/optimizer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

func main() {
	env := config.LoadEnv()

	logger, closer, err := config.NewLogger(env.Debug)
	if err != nil {
		fmt.Printf("Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	cache := api.NewCache(env.CacheTTL)
	limiter := api.NewRateLimiter(env.RateLimitCalls, env.RateLimitWindow)
	client := api.NewClient(api.ClientConfig{
		DemoKey: env.CoinGeckoDemoKey,
		ProKey:  env.CoinGeckoProKey,
		Cache:   cache,
		Limiter: limiter,
		Logger:  logger,
	})

	sectors := loadSectors(logger)
	settings, err := config.LoadSettings()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load settings, using defaults")
	}

	store, err := chain.NewPortfolioStore(chain.Config{
		RPCURL:          env.EthereumRPCURL,
		ContractAddress: env.ContractAddress,
		PrivateKey:      env.PrivateKey,
	}, logger)
	if err != nil {
		fmt.Printf("Error setting up blockchain client: %v\n", err)
		os.Exit(1)
	}

	model := models.NewAppModel(models.Deps{
		Client:    client,
		Optimizer: optimizer.New(sectors, logger),
		Assistant: optimizer.NewAssistant(),
		Store:     store,
		Sectors:   sectors,
		Settings:  settings,
		Log:       logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}

// loadSectors reads an optional sectors.yaml override from the config
// directory, falling back to the built-in table.
func loadSectors(logger zerolog.Logger) optimizer.SectorTable {
	dir, err := config.Dir()
	if err != nil {
		return optimizer.DefaultSectorTable()
	}
	table, err := optimizer.LoadSectorTable(filepath.Join(dir, "sectors.yaml"))
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load sector table override, using defaults")
		return optimizer.DefaultSectorTable()
	}
	return table
}
