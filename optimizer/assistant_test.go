package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssistantReplies(t *testing.T) {
	a := NewAssistant()

	assert.Contains(t, a.Reply("can you HELP me?"), "optimize your portfolio")
	assert.Contains(t, a.Reply("how risky is this"), "risk profiles")
	assert.Contains(t, a.Reply("what's the market doing"), "price movements")
	assert.Contains(t, a.Reply("how do I improve my returns"), "Diversify across multiple sectors")
}

func TestAssistantFallback(t *testing.T) {
	a := NewAssistant()
	reply := a.Reply("what is the meaning of life")
	assert.Contains(t, reply, "Try asking about")
}

func TestAssistantRecommendations(t *testing.T) {
	a := NewAssistant()
	sectors := DefaultSectorTable()

	result := &Result{
		Portfolio: []Entry{
			{AssetID: "bitcoin", Percentage: 60},
			{AssetID: "ethereum", Percentage: 40},
		},
	}
	recs := a.Recommendations(result, Sentiment{Mood: MoodBearish}, sectors)

	assert.Contains(t, recs, "Consider adding more assets for better diversification")
	assert.Contains(t, recs, "Consider reducing concentration in your largest holding")
	assert.Contains(t, recs, "Market sentiment is bearish - consider defensive assets")

	recs = a.Recommendations(nil, Sentiment{Mood: MoodBullish}, sectors)
	assert.Contains(t, recs, "Market sentiment is bullish - growth opportunities available")
	assert.NotEmpty(t, recs)
}
