package models

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"optifolio/api"
	"optifolio/chain"
	"optifolio/config"
	"optifolio/optimizer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// App states
const (
	StateMenu = iota
	StateConfigure
	StatePortfolio
	StateMarket
	StateInsights
	StateAssistant
	StateStore
	StateDiagnostics
	StateHelp
)

// Configure form fields, top to bottom.
const (
	fieldRiskProfile = iota
	fieldAmount
	fieldMaxAssets
	fieldSectorsStart // sector toggles occupy the remaining rows
)

const historyDays = 30

// maxHistoryFetches caps how many per-asset history calls one
// optimization run may issue, keeping a run within the rate budget.
const maxHistoryFetches = 15

type AppModel struct {
	State   int
	Choices []string
	Cursor  int
	Width   int
	Height  int
	Error   string
	Loading bool

	Client    *api.Client
	Optimizer *optimizer.Optimizer
	Assistant *optimizer.Assistant
	Store     *chain.PortfolioStore
	Sectors   optimizer.SectorTable
	Log       zerolog.Logger

	Settings    config.Settings
	sectorNames []string

	// Configure form state
	ConfigCursor int
	AmountInput  string

	// Latest optimization run and its derived insights
	Result          *optimizer.Result
	RiskReport      optimizer.RiskReport
	Recommendations []string

	// Market overview state
	Market *MarketOverview

	// Assistant transcript
	ChatInput   string
	ChatHistory []ChatTurn

	// Blockchain submission state
	StoreResult  string
	StoreError   string
	StorePending bool

	// Diagnostics
	PingOK      bool
	PingChecked bool
}

type ChatTurn struct {
	Question string
	Answer   string
}

// MarketOverview aggregates the independent market lookups fetched
// concurrently on entering the market view.
type MarketOverview struct {
	Coins       []api.MarketCoin
	Global      *api.GlobalData
	DeFi        *api.DeFiData
	Trending    *api.TrendingResult
	Sentiment   optimizer.Sentiment
	Trend       optimizer.TrendReport
	LastUpdated time.Time
}

// Deps carries the constructor-injected dependencies so tests can
// substitute fakes without touching globals.
type Deps struct {
	Client    *api.Client
	Optimizer *optimizer.Optimizer
	Assistant *optimizer.Assistant
	Store     *chain.PortfolioStore
	Sectors   optimizer.SectorTable
	Settings  config.Settings
	Log       zerolog.Logger
}

func NewAppModel(deps Deps) *AppModel {
	sectorNames := deps.Sectors.Names()
	sortStrings(sectorNames)

	return &AppModel{
		State: StateMenu,
		Choices: []string{
			"⚙ Configure Portfolio",
			"🚀 Generate Portfolio",
			"📊 Market Overview",
			"🧠 Insights",
			"💬 Assistant",
			"⛓ Store On-Chain",
			"🩺 Diagnostics",
			"❓ Help",
			"🚪 Exit",
		},
		Client:      deps.Client,
		Optimizer:   deps.Optimizer,
		Assistant:   deps.Assistant,
		Store:       deps.Store,
		Sectors:     deps.Sectors,
		Settings:    deps.Settings,
		sectorNames: sectorNames,
		AmountInput: fmt.Sprintf("%.0f", deps.Settings.InvestmentAmount),
		Log:         deps.Log,
	}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// GeneratePortfolio runs one optimization pass: market snapshot, price
// histories for the shortlisted candidates, then the allocation rules.
// Failed history fetches leave the candidate with no history, which the
// optimizer treats as high volatility.
func (m *AppModel) GeneratePortfolio() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	coins, err := m.Client.CoinsMarkets(ctx, "usd", 200, 1)
	if err != nil {
		return err
	}

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

	// Fetch histories only for candidates in the selected sectors, up
	// to the per-run budget.
	fetched := 0
	for i := range candidates {
		if fetched >= maxHistoryFetches {
			break
		}
		inSector := false
		for _, sector := range m.Settings.Sectors {
			if m.Sectors.Member(sector, candidates[i].ID) {
				inSector = true
				break
			}
		}
		if !inSector {
			continue
		}

		chart, err := m.Client.MarketChart(ctx, candidates[i].ID, "usd", historyDays)
		if err != nil {
			if errors.Is(err, api.ErrRateLimited) {
				m.Log.Warn().Str("coin", candidates[i].ID).Msg("rate limited fetching history, stopping early")
				break
			}
			m.Log.Warn().Err(err).Str("coin", candidates[i].ID).Msg("history fetch failed")
			continue
		}
		candidates[i].History = chart.ClosingPrices()
		fetched++
	}

	result, err := m.Optimizer.Optimize(candidates, optimizer.Request{
		RiskProfile:      optimizer.RiskProfile(m.Settings.RiskProfile),
		InvestmentAmount: m.Settings.InvestmentAmount,
		Sectors:          m.Settings.Sectors,
		MaxAssets:        m.Settings.MaxAssets,
	})
	if err != nil {
		return err
	}

	m.Result = result
	m.RiskReport = optimizer.AssessRisk(result, m.Sectors)
	sentiment := optimizer.Summarize(candidates)
	m.Recommendations = m.Assistant.Recommendations(result, sentiment, m.Sectors)
	return nil
}

// LoadMarketOverview fans out the independent market lookups and joins
// the results. Each call fails independently; partial data is kept.
func (m *AppModel) LoadMarketOverview() (*MarketOverview, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	overview := &MarketOverview{LastUpdated: time.Now()}
	var errCoins, errGlobal, errTrending, errDefi error

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		overview.Coins, errCoins = m.Client.CoinsMarkets(ctx, "usd", 50, 1)
	}()
	go func() {
		defer wg.Done()
		overview.Global, errGlobal = m.Client.Global(ctx)
	}()
	go func() {
		defer wg.Done()
		overview.Trending, errTrending = m.Client.Trending(ctx)
	}()
	go func() {
		defer wg.Done()
		overview.DeFi, errDefi = m.Client.DeFiGlobal(ctx)
	}()
	wg.Wait()

	if errCoins != nil {
		// Without the coin list there is nothing to show.
		return nil, errCoins
	}
	for _, err := range []error{errGlobal, errTrending, errDefi} {
		if err != nil {
			m.Log.Warn().Err(err).Msg("partial market overview")
		}
	}

	candidates := make([]optimizer.Candidate, 0, len(overview.Coins))
	prices := make([]float64, 0, len(overview.Coins))
	volumes := make([]float64, 0, len(overview.Coins))
	for _, coin := range overview.Coins {
		candidates = append(candidates, optimizer.Candidate{
			ID:             coin.ID,
			PriceChange24h: coin.PriceChangePerc24h,
		})
		prices = append(prices, coin.CurrentPrice)
		volumes = append(volumes, coin.TotalVolume)
	}
	overview.Sentiment = optimizer.Summarize(candidates)
	overview.Trend = optimizer.AnalyzeTrend(prices, volumes)

	return overview, nil
}

// SubmitPortfolio writes the last optimization result to the storage
// contract (or the demo path when unconfigured).
func (m *AppModel) SubmitPortfolio() (string, error) {
	if m.Result == nil || len(m.Result.Portfolio) == 0 {
		return "", fmt.Errorf("no portfolio to store, generate one first")
	}

	allocation := make(map[string]float64, len(m.Result.Portfolio))
	for _, entry := range m.Result.Portfolio {
		allocation[entry.AssetID] = entry.Percentage
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	hash, err := m.Store.StorePortfolio(ctx, allocation, m.Result.TotalValue, string(m.Result.RiskProfile), m.Result.Sectors)
	if err != nil {
		return "", err
	}
	return hash.Hex(), nil
}

// Bubble Tea interface methods
func (m *AppModel) Init() tea.Cmd {
	return m.pingCmd()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tickMsg:
		if m.State == StateMarket && !m.Loading {
			m.Loading = true
			return m, tea.Batch(m.loadMarketCmd(), tickEvery(time.Minute))
		}
		return m, tickEvery(time.Minute)

	case portfolioGeneratedMsg:
		m.Loading = false
		if msg.err != nil {
			m.Error = friendlyError(msg.err)
		} else {
			m.Error = ""
			m.State = StatePortfolio
		}
		return m, nil

	case marketLoadedMsg:
		m.Loading = false
		if msg.err != nil {
			m.Error = friendlyError(msg.err)
		} else {
			m.Error = ""
			m.Market = msg.overview
		}
		return m, nil

	case storeCompletedMsg:
		m.StorePending = false
		if msg.err != nil {
			m.StoreError = friendlyError(msg.err)
		} else {
			m.StoreError = ""
			m.StoreResult = msg.txHash
		}
		return m, nil

	case pingMsg:
		m.PingChecked = true
		m.PingOK = msg.err == nil
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m *AppModel) View() string {
	switch m.State {
	case StateMenu:
		return m.menuView()
	case StateConfigure:
		return m.configureView()
	case StatePortfolio:
		return m.portfolioView()
	case StateMarket:
		return m.marketView()
	case StateInsights:
		return m.insightsView()
	case StateAssistant:
		return m.assistantView()
	case StateStore:
		return m.storeView()
	case StateDiagnostics:
		return m.diagnosticsView()
	case StateHelp:
		return m.helpView()
	default:
		return m.menuView()
	}
}

// friendlyError maps the client error taxonomy to a message suitable
// for an inline warning. The session never terminates on a failed call.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, api.ErrRateLimited):
		return "Rate limited. Wait a moment before trying again."
	case errors.Is(err, api.ErrUnauthorized):
		return "API key rejected. Check COINGECKO_DEMO_API_KEY or COINGECKO_PRO_API_KEY."
	}

	var unreachable *api.UnreachableError
	if errors.As(err, &unreachable) {
		return "Network unreachable. Check your connection."
	}
	var status *api.StatusError
	if errors.As(err, &status) {
		return fmt.Sprintf("Upstream error (HTTP %d). Try again later.", status.StatusCode)
	}
	return err.Error()
}

// Message types for Bubble Tea
type tickMsg time.Time
type portfolioGeneratedMsg struct{ err error }
type marketLoadedMsg struct {
	overview *MarketOverview
	err      error
}
type storeCompletedMsg struct {
	txHash string
	err    error
}
type pingMsg struct{ err error }

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *AppModel) generatePortfolioCmd() tea.Cmd {
	return func() tea.Msg {
		return portfolioGeneratedMsg{err: m.GeneratePortfolio()}
	}
}

func (m *AppModel) loadMarketCmd() tea.Cmd {
	return func() tea.Msg {
		overview, err := m.LoadMarketOverview()
		return marketLoadedMsg{overview: overview, err: err}
	}
}

func (m *AppModel) storePortfolioCmd() tea.Cmd {
	return func() tea.Msg {
		hash, err := m.SubmitPortfolio()
		return storeCompletedMsg{txHash: hash, err: err}
	}
}

func (m *AppModel) pingCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := m.Client.Ping(ctx)
		return pingMsg{err: err}
	}
}
