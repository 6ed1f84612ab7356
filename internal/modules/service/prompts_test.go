package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastewire/tastewire/internal/gateway/qloo"
)

func TestBuildInsightsPrompt_Deterministic(t *testing.T) {
	brief := testBrief()
	cultural := SynthesizeCulturalData(brief)

	sys1, user1 := BuildInsightsPrompt(brief, cultural, DeepBudget)
	sys2, user2 := BuildInsightsPrompt(brief, cultural, DeepBudget)

	assert.Equal(t, sys1, sys2)
	assert.Equal(t, user1, user2)
}

func TestBuildInsightsPrompt_CarriesBriefAndBudget(t *testing.T) {
	brief := testBrief()
	_, user := BuildInsightsPrompt(brief, SynthesizeCulturalData(brief), DeepBudget)

	assert.Contains(t, user, brief.Description)
	assert.Contains(t, user, "music, fashion")
	assert.Contains(t, user, "3-4 audience_personas")
	assert.Contains(t, user, "4-5 cultural_trends")
	assert.Contains(t, user, "6-8 content_suggestions")
}

func TestBuildInsightsPrompt_LiveBudgetCountsDiffer(t *testing.T) {
	brief := testBrief()
	_, user := BuildInsightsPrompt(brief, SynthesizeCulturalData(brief), LiveBudget)

	assert.Contains(t, user, "3-3 audience_personas")
	assert.Contains(t, user, "4-4 content_suggestions")
}

func TestBuildInsightsPrompt_TruncatesLargeCulturalPayload(t *testing.T) {
	big := map[string]string{}
	for i := 0; i < 2000; i++ {
		big[strings.Repeat("k", 8)+string(rune('a'+i%26))+string(rune('0'+i%10))] = strings.Repeat("cultural payload filler ", 4)
	}
	raw, err := json.Marshal(big)
	require.NoError(t, err)

	cultural := &qloo.CulturalData{Raw: raw}
	_, user := BuildInsightsPrompt(testBrief(), cultural, DeepBudget)

	assert.Less(t, CountTokens(user), culturalPayloadTokenBudget+600,
		"cultural payload must be capped before prompt assembly")
}

func TestBuildMarketFitPrompt_CarriesAllFields(t *testing.T) {
	in := testMarketFitInput()
	system, user := BuildMarketFitPrompt(in)

	assert.Contains(t, system, "overall_fit_score")
	assert.Contains(t, user, in.Description)
	assert.Contains(t, user, in.TargetMarket)
	assert.Contains(t, user, in.BusinessModel)
}

func TestCountTokens_NonZeroForText(t *testing.T) {
	assert.Greater(t, CountTokens("cultural intelligence for marketing teams"), 0)
}
