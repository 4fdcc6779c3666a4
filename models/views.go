package models

import (
	"fmt"
	"strings"

	"optifolio/ui"
)

func (m *AppModel) menuView() string {
	title := ui.TitleStyle.Render("🚀 OPTIFOLIO — PORTFOLIO OPTIMIZER")

	var content strings.Builder

	if m.Error != "" {
		content.WriteString(ui.NegativeStyle.Render("❌ "+m.Error) + "\n\n")
	}

	for i, choice := range m.Choices {
		cursor := "  "
		style := ui.UnselectedStyle
		if m.Cursor == i {
			cursor = "▶ "
			style = ui.SelectedStyle
		}
		content.WriteString(cursor + style.Render(choice) + "\n")
	}

	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("Risk: %s   Amount: %s   Sectors: %s\n",
		strings.ToUpper(m.Settings.RiskProfile),
		ui.FormatCompact(m.Settings.InvestmentAmount),
		strings.Join(m.Settings.Sectors, ", ")))

	footer := ui.InfoStyle.Render("↑/↓ navigate • enter select • q quit")
	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) configureView() string {
	title := ui.HeaderStyle.Render("⚙ CONFIGURE PORTFOLIO")

	var content strings.Builder

	if m.Error != "" {
		content.WriteString(ui.NegativeStyle.Render("❌ "+m.Error) + "\n\n")
	}

	rows := []string{
		fmt.Sprintf("Risk Profile:   ◀ %s ▶", strings.ToUpper(m.Settings.RiskProfile)),
		fmt.Sprintf("Amount (USD):   %s│", m.AmountInput),
		fmt.Sprintf("Max Assets:     ◀ %d ▶", m.Settings.MaxAssets),
	}
	for _, name := range m.sectorNames {
		rows = append(rows, m.sectorLabel(name))
	}

	for i, row := range rows {
		if i == fieldSectorsStart {
			content.WriteString("\nSectors (space to toggle):\n")
		}
		if i == m.ConfigCursor {
			content.WriteString("▶ " + ui.SelectedStyle.Render(row) + "\n")
		} else {
			content.WriteString("  " + ui.UnselectedStyle.Render(row) + "\n")
		}
	}

	content.WriteString("\n")
	switch m.Settings.RiskProfile {
	case "low":
		content.WriteString("Conservative approach with stablecoins and blue-chip assets. Lower volatility, steady returns.\n")
	case "medium":
		content.WriteString("Balanced allocation across different sectors. Moderate risk with growth potential.\n")
	case "high":
		content.WriteString("Aggressive strategy focusing on high-growth assets. Higher volatility, higher potential returns.\n")
	}

	footer := ui.InfoStyle.Render("↑/↓ field • ◀/▶ adjust • space toggle sector • enter generate • esc save & back")
	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) portfolioView() string {
	title := ui.HeaderStyle.Render("📊 OPTIMIZED PORTFOLIO")

	var content strings.Builder

	if m.Error != "" {
		content.WriteString(ui.NegativeStyle.Render("❌ "+m.Error) + "\n\n")
	}

	if m.Loading {
		content.WriteString(ui.LoadingStyle.Render("🔄 Optimizing portfolio...") + "\n")
		content.WriteString("Fetching market data and price histories. This can take a moment.\n")
	} else if m.Result == nil {
		content.WriteString("No portfolio yet. Press g to generate one.\n")
	} else {
		content.WriteString(fmt.Sprintf("Run %s • %s risk • %s\n",
			m.Result.RunID.String()[:8],
			strings.ToUpper(string(m.Result.RiskProfile)),
			m.Result.Timestamp.Format("15:04:05")))
		content.WriteString(fmt.Sprintf("Total Investment: %s\n\n", ui.FormatCompact(m.Result.TotalValue)))

		content.WriteString("Asset          Alloc %                         Amount       Price         24h\n")
		content.WriteString("──────────────────────────────────────────────────────────────────────────────\n")
		for _, entry := range m.Result.Portfolio {
			content.WriteString(fmt.Sprintf("%-12s  %5.1f%% %s  %-10s  %-12s  %s\n",
				strings.ToUpper(entry.Symbol),
				entry.Percentage,
				ui.AllocationBar(entry.Percentage, 20),
				ui.FormatCompact(entry.AllocationUSD),
				ui.FormatPrice(entry.CurrentPrice),
				ui.FormatPercentage(entry.Change24h)))
		}

		content.WriteString("\n🛡 RISK ASSESSMENT\n")
		content.WriteString(fmt.Sprintf("Level: %s   Avg Volatility: %.3f   Largest Position: %.1f%%   Sectors: %d\n",
			strings.ToUpper(m.RiskReport.Level),
			m.RiskReport.AvgVolatility,
			m.RiskReport.MaxAllocation,
			m.RiskReport.SectorCount))
		for _, note := range m.RiskReport.Considerations {
			content.WriteString("• " + note + "\n")
		}

		if len(m.Recommendations) > 0 {
			content.WriteString("\n💡 RECOMMENDATIONS\n")
			for _, rec := range m.Recommendations {
				content.WriteString("• " + rec + "\n")
			}
		}
	}

	footer := ui.InfoStyle.Render("g regenerate • s store on-chain • c copy run id • esc back")
	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) marketView() string {
	title := ui.HeaderStyle.Render("📈 MARKET OVERVIEW")

	var content strings.Builder

	if m.Error != "" {
		content.WriteString(ui.NegativeStyle.Render("❌ "+m.Error) + "\n\n")
	}

	if m.Loading && m.Market == nil {
		content.WriteString(ui.LoadingStyle.Render("🔄 Loading market data...") + "\n")
	} else if m.Market == nil {
		content.WriteString("No market data loaded yet.\n")
	} else {
		if m.Market.Global != nil {
			g := m.Market.Global
			content.WriteString("🌍 GLOBAL\n")
			content.WriteString(fmt.Sprintf("Market Cap: %s (%s 24h)   Volume: %s   BTC Dominance: %.1f%%\n",
				ui.FormatCompact(g.TotalMarketCap["usd"]),
				ui.FormatPercentage(g.MarketCapChange24hUSD),
				ui.FormatCompact(g.TotalVolume["usd"]),
				g.MarketCapPercentage["btc"]))
		}
		if m.Market.DeFi != nil {
			content.WriteString(fmt.Sprintf("DeFi Market Cap: %s   Top DeFi Coin: %s\n",
				ui.FormatCompact(m.Market.DeFi.MarketCapUSD()),
				m.Market.DeFi.TopCoinName))
		}

		content.WriteString(fmt.Sprintf("\nSentiment: %s  (score %.2f, %d up / %d down)   Trend: %s, confidence %.0f%%\n",
			ui.FormatMood(string(m.Market.Sentiment.Mood)),
			m.Market.Sentiment.Score,
			m.Market.Sentiment.Positive,
			m.Market.Sentiment.Negative,
			m.Market.Trend.PriceTrend,
			m.Market.Trend.Confidence*100))

		content.WriteString("\nAsset          Price           24h         Market Cap     Volume\n")
		content.WriteString("──────────────────────────────────────────────────────────────────\n")
		max := 15
		if len(m.Market.Coins) < max {
			max = len(m.Market.Coins)
		}
		for _, coin := range m.Market.Coins[:max] {
			content.WriteString(fmt.Sprintf("%-12s  %-14s  %-10s  %-12s  %s\n",
				strings.ToUpper(coin.Symbol),
				ui.FormatPrice(coin.CurrentPrice),
				ui.FormatPercentage(coin.PriceChangePerc24h),
				ui.FormatCompact(coin.MarketCap),
				ui.FormatCompact(coin.TotalVolume)))
		}

		if m.Market.Trending != nil && len(m.Market.Trending.Coins) > 0 {
			content.WriteString("\n🔥 TRENDING: ")
			names := make([]string, 0, len(m.Market.Trending.Coins))
			for i, tc := range m.Market.Trending.Coins {
				if i >= 7 {
					break
				}
				names = append(names, tc.Item.Name)
			}
			content.WriteString(strings.Join(names, " • ") + "\n")
		}

		content.WriteString(fmt.Sprintf("\nLast updated: %s\n", m.Market.LastUpdated.Format("15:04:05")))
	}

	footer := ui.InfoStyle.Render("r refresh • esc back")
	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) insightsView() string {
	title := ui.HeaderStyle.Render("🧠 INSIGHTS")

	var content strings.Builder

	if m.Market == nil && m.Result == nil {
		content.WriteString("Load the market overview or generate a portfolio first.\n")
	}

	if m.Market != nil {
		s := m.Market.Sentiment
		content.WriteString("📊 MARKET SENTIMENT\n")
		content.WriteString(fmt.Sprintf("Mood: %s   Score: %.2f   Confidence: %.0f%%\n",
			ui.FormatMood(string(s.Mood)), s.Score, s.Confidence*100))
		content.WriteString(fmt.Sprintf("Positive movers: %d   Negative movers: %d   Flat: %d\n\n",
			s.Positive, s.Negative, s.Neutral))

		t := m.Market.Trend
		content.WriteString("📉 TREND ANALYSIS\n")
		content.WriteString(fmt.Sprintf("Price trend: %s   Volume trend: %s   Momentum: %s\n",
			t.PriceTrend, t.VolumeTrend, ui.FormatMood(string(t.Momentum))))
		content.WriteString(fmt.Sprintf("Confidence: %.0f%%\n", t.Confidence*100))
		if t.Recommendation != "" {
			content.WriteString("→ " + t.Recommendation + "\n")
		}
		content.WriteString("\n")
	}

	if m.Result != nil {
		content.WriteString("🛡 PORTFOLIO RISK\n")
		content.WriteString(fmt.Sprintf("Level: %s   Avg Volatility: %.3f   Concentration: %.1f\n",
			strings.ToUpper(m.RiskReport.Level), m.RiskReport.AvgVolatility, m.RiskReport.Concentration))
		for _, note := range m.RiskReport.Considerations {
			content.WriteString("• " + note + "\n")
		}
	}

	footer := ui.InfoStyle.Render("esc back")
	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) assistantView() string {
	title := ui.HeaderStyle.Render("💬 ASSISTANT")

	var content strings.Builder

	if len(m.ChatHistory) == 0 {
		content.WriteString("Ask about portfolio generation, risk, the market, or optimization tips.\n\n")
	}

	// Show the last few turns so the view fits a terminal.
	start := 0
	if len(m.ChatHistory) > 4 {
		start = len(m.ChatHistory) - 4
	}
	for _, turn := range m.ChatHistory[start:] {
		content.WriteString(ui.SelectedStyle.Render("You: "+turn.Question) + "\n")
		content.WriteString(turn.Answer + "\n\n")
	}

	content.WriteString(ui.InputStyle.Render(m.ChatInput+"│") + "\n")

	footer := ui.InfoStyle.Render("enter send • ctrl+v paste • esc back")
	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) storeView() string {
	title := ui.HeaderStyle.Render("⛓ STORE ON-CHAIN")

	var content strings.Builder

	if m.Store.DemoMode() {
		content.WriteString(ui.LoadingStyle.Render("⚠ DEMO MODE") + "\n")
		content.WriteString("No RPC endpoint or signing key configured. Submissions are simulated\n")
		content.WriteString("locally and nothing is broadcast. Set ETHEREUM_RPC_URL, CONTRACT_ADDRESS\n")
		content.WriteString("and PRIVATE_KEY to store portfolios for real.\n\n")
	}

	if m.Result == nil {
		content.WriteString("No portfolio to store. Generate one first.\n")
	} else {
		content.WriteString(fmt.Sprintf("Portfolio run %s, %d assets, %s at %s risk.\n\n",
			m.Result.RunID.String()[:8],
			len(m.Result.Portfolio),
			ui.FormatCompact(m.Result.TotalValue),
			strings.ToUpper(string(m.Result.RiskProfile))))

		for _, entry := range m.Result.Portfolio {
			content.WriteString(fmt.Sprintf("  %-12s %5.1f%%\n", entry.AssetID, entry.Percentage))
		}
		content.WriteString("\n")
	}

	if m.StorePending {
		content.WriteString(ui.LoadingStyle.Render("🔄 Submitting transaction...") + "\n")
	}
	if m.StoreError != "" {
		content.WriteString(ui.NegativeStyle.Render("❌ "+m.StoreError) + "\n")
	}
	if m.StoreResult != "" {
		label := "Transaction"
		if m.Store.DemoMode() {
			label = "Simulated transaction (demo)"
		}
		content.WriteString(ui.PositiveStyle.Render("✅ "+label+": "+m.StoreResult) + "\n")
	}

	footer := ui.InfoStyle.Render("enter submit • c copy tx hash • esc back")
	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) diagnosticsView() string {
	title := ui.HeaderStyle.Render("🩺 DIAGNOSTICS")

	var content strings.Builder

	apiStatus := "checking..."
	if m.PingChecked {
		if m.PingOK {
			apiStatus = ui.PositiveStyle.Render("reachable")
		} else {
			apiStatus = ui.NegativeStyle.Render("unreachable")
		}
	}
	content.WriteString(fmt.Sprintf("CoinGecko API:  %s   Key tier: %s\n\n", apiStatus, m.Client.KeyTier()))

	cs := m.Client.CacheStats()
	content.WriteString("🗃 RESPONSE CACHE\n")
	content.WriteString(fmt.Sprintf("Entries: %d   Hits: %d   Misses: %d   Evictions: %d\n\n",
		cs.Entries, cs.Hits, cs.Misses, cs.Evictions))

	ls := m.Client.LimiterStats()
	content.WriteString("⏱ RATE LIMITER\n")
	content.WriteString(fmt.Sprintf("Window usage: %d/%d (%d remaining)   Granted: %d   Denied: %d\n\n",
		ls.InWindow, ls.MaxCalls, ls.Remaining, ls.Granted, ls.Denied))

	content.WriteString("⛓ BLOCKCHAIN\n")
	if m.Store.DemoMode() {
		content.WriteString("Demo mode (no RPC endpoint or signing key)\n")
	} else {
		content.WriteString(fmt.Sprintf("Signer: %s\n", m.Store.From().Hex()))
	}

	footer := ui.InfoStyle.Render("esc back")
	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) helpView() string {
	title := ui.HeaderStyle.Render("❓ HELP")

	var content strings.Builder
	content.WriteString("Optifolio builds a suggested crypto allocation from live market data.\n\n")
	content.WriteString("1. Configure a risk profile, investment amount and sectors.\n")
	content.WriteString("2. Generate: market data is fetched (cached 5 minutes, max 25 calls/min),\n")
	content.WriteString("   volatile assets are filtered per your risk profile, and weights are\n")
	content.WriteString("   assigned by market cap rank.\n")
	content.WriteString("3. Optionally store the allocation on-chain via the storage contract.\n\n")
	content.WriteString("KEYS\n")
	content.WriteString("↑/↓ or j/k   navigate\n")
	content.WriteString("enter        select / submit\n")
	content.WriteString("esc          back to menu\n")
	content.WriteString("f5           refresh market data\n")
	content.WriteString("q / ctrl+c   quit\n\n")
	content.WriteString("ENVIRONMENT\n")
	content.WriteString("COINGECKO_DEMO_API_KEY / COINGECKO_PRO_API_KEY   API key (optional)\n")
	content.WriteString("ETHEREUM_RPC_URL, CONTRACT_ADDRESS, PRIVATE_KEY  on-chain storage\n")
	content.WriteString("OPTIFOLIO_DEBUG                                  verbose log file\n")

	footer := ui.InfoStyle.Render("esc back")
	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}
