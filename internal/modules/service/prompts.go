package service

import (
	"fmt"
	"strings"

	"github.com/tiktoken-go/tokenizer"

	"github.com/tastewire/tastewire/internal/gateway/qloo"
)

const insightsSystemPrompt = `You are a marketing strategist with deep knowledge of cultural trends and audience behavior. Respond with a single JSON object and nothing else. The object must contain exactly these keys: "audience_personas", "cultural_trends", "content_suggestions". Every persona needs "name", "description", "characteristics" (array), and "demographics" with "age_range", "interests" (array), "platforms" (array). Every trend needs "title", "description", "confidence" (whole number 0-100), "impact", "timeline". Every suggestion needs "title", "description", "platforms" (array), "content_type", "copy", "engagement_potential". Arrays must always be present, even when empty.`

const marketFitSystemPrompt = `You are a market analyst. Respond with a single JSON object and nothing else. The object must contain "overall_fit_score" (number 0-100), "segments" (array of market segment objects), "competitive_landscape", "opportunities", "risk_assessment", "launch_strategy", and "cultural_insights".`

// culturalPayloadTokenBudget caps how much of the taste-graph payload gets
// embedded in a prompt, leaving room for instructions and the completion.
const culturalPayloadTokenBudget = 1200

// BuildInsightsPrompt renders the user prompt for the deep and live
// orchestrators. Pure: same brief, cultural data, and budget produce the same
// prompt text.
func BuildInsightsPrompt(brief InsightBrief, cultural *qloo.CulturalData, budget Budget) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate marketing insights for the following project.\n\n")
	if brief.Title != "" {
		fmt.Fprintf(&b, "Project: %s\n", brief.Title)
	}
	fmt.Fprintf(&b, "Description: %s\n", brief.Description)
	if brief.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", brief.Industry)
	}
	if len(brief.Domains) > 0 {
		fmt.Fprintf(&b, "Cultural domains: %s\n", strings.Join(brief.Domains, ", "))
	}
	if len(brief.GeoTargets) > 0 {
		fmt.Fprintf(&b, "Geographical targets: %s\n", strings.Join(brief.GeoTargets, ", "))
	}

	if cultural != nil && len(cultural.Raw) > 0 {
		fmt.Fprintf(&b, "\nCultural-graph data for grounding (JSON):\n%s\n",
			truncateToTokens(string(cultural.Raw), culturalPayloadTokenBudget))
	}

	fmt.Fprintf(&b, "\nProduce %d-%d audience_personas, %d-%d cultural_trends, and %d-%d content_suggestions.\n",
		budget.PersonasMin, budget.PersonasMax,
		budget.TrendsMin, budget.TrendsMax,
		budget.SuggestionsMin, budget.SuggestionsMax)

	return insightsSystemPrompt, b.String()
}

// MarketFitInput is the market-fit request after binding.
type MarketFitInput struct {
	Description   string `json:"description"`
	Industry      string `json:"industry"`
	TargetMarket  string `json:"targetMarket"`
	BusinessModel string `json:"businessModel"`
}

// BuildMarketFitPrompt renders the single-call market-fit prompt.
func BuildMarketFitPrompt(in MarketFitInput) (system, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Assess product-market fit.\n\n")
	fmt.Fprintf(&b, "Product: %s\n", in.Description)
	fmt.Fprintf(&b, "Industry: %s\n", in.Industry)
	fmt.Fprintf(&b, "Target market: %s\n", in.TargetMarket)
	fmt.Fprintf(&b, "Business model: %s\n", in.BusinessModel)
	b.WriteString("\nInclude per-segment fit scores, key competitors, top opportunities, main risks, a phased launch strategy, and cultural insights.\n")
	return marketFitSystemPrompt, b.String()
}

// CountTokens reports the cl100k token count of s; 0 when the tokenizer is
// unavailable. Used for logging prompt sizes against the budget.
func CountTokens(s string) int {
	enc, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return 0
	}
	n, err := enc.Count(s)
	if err != nil {
		return 0
	}
	return n
}

// truncateToTokens trims s to at most maxTokens cl100k tokens. Falls back to
// a byte-length heuristic if the tokenizer cannot be loaded.
func truncateToTokens(s string, maxTokens int) string {
	enc, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		if len(s) > maxTokens*4 {
			return s[:maxTokens*4]
		}
		return s
	}
	ids, _, err := enc.Encode(s)
	if err != nil || len(ids) <= maxTokens {
		return s
	}
	out, err := enc.Decode(ids[:maxTokens])
	if err != nil {
		return s[:min(len(s), maxTokens*4)]
	}
	return out
}
