package optimizer

import "strings"

// Assistant is the keyword-matched helper behind the chat view. There is
// no model: each rule maps trigger words to a canned reply, checked in
// order.
type Assistant struct {
	rules []chatRule
}

type chatRule struct {
	keywords []string
	reply    string
}

// NewAssistant builds the assistant with its canned rule table.
func NewAssistant() *Assistant {
	return &Assistant{
		rules: []chatRule{
			{
				keywords: []string{"help", "assist", "guide"},
				reply: "I can help you optimize your portfolio! Here are some options:\n" +
					"• Generate a new portfolio based on your risk profile\n" +
					"• Analyze your current portfolio performance\n" +
					"• Get market insights and trends\n" +
					"• Receive investment recommendations",
			},
			{
				keywords: []string{"risk", "safety", "conservative"},
				reply: "Let me break down the risk profiles:\n" +
					"• Low: Conservative with stablecoins and blue-chip cryptocurrencies. Lower volatility, steady returns.\n" +
					"• Medium: Balanced allocation across different sectors. Moderate risk with growth potential.\n" +
					"• High: Aggressive strategy focusing on high-growth assets. Higher volatility, higher potential returns.",
			},
			{
				keywords: []string{"market", "trend", "analysis"},
				reply: "Here's what the market view offers:\n" +
					"• Real-time price movements\n" +
					"• Sector performance trends\n" +
					"• Sentiment analysis\n" +
					"• Risk-adjusted recommendations",
			},
			{
				keywords: []string{"optimize", "improve", "better"},
				reply: "Portfolio optimization tips:\n" +
					"• Diversify across multiple sectors\n" +
					"• Consider market cap distribution\n" +
					"• Monitor volatility and correlation\n" +
					"• Rebalance based on market conditions",
			},
		},
	}
}

// Reply returns the canned response for the first rule whose keyword
// appears in the query, or a fallback listing what can be asked.
func (a *Assistant) Reply(query string) string {
	lower := strings.ToLower(query)
	for _, rule := range a.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.reply
			}
		}
	}
	return "I'm here to help with your portfolio! Try asking about:\n" +
		"• Portfolio generation\n" +
		"• Risk assessment\n" +
		"• Market analysis\n" +
		"• Optimization tips"
}

// Recommendations derives rule-based suggestions from a portfolio and
// the current market sentiment.
func (a *Assistant) Recommendations(result *Result, sentiment Sentiment, sectors SectorTable) []string {
	var recs []string

	if result != nil && len(result.Portfolio) > 0 {
		if len(result.Portfolio) < 5 {
			recs = append(recs, "Consider adding more assets for better diversification")
		}

		covered := make(map[string]bool)
		maxAllocation := 0.0
		for _, entry := range result.Portfolio {
			if entry.Percentage > maxAllocation {
				maxAllocation = entry.Percentage
			}
			for _, name := range sectors.Names() {
				if sectors.Member(name, entry.AssetID) {
					covered[name] = true
				}
			}
		}
		if len(covered) < 3 {
			recs = append(recs, "Diversify across more sectors to reduce concentration risk")
		}
		if maxAllocation > 30 {
			recs = append(recs, "Consider reducing concentration in your largest holding")
		}
	}

	switch sentiment.Mood {
	case MoodBearish:
		recs = append(recs, "Market sentiment is bearish - consider defensive assets")
	case MoodBullish:
		recs = append(recs, "Market sentiment is bullish - growth opportunities available")
	}

	recs = append(recs, "Monitor your portfolio regularly and rebalance as needed")
	return recs
}
