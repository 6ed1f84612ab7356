package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/tastewire/tastewire/internal/gateway/qloo"
	"github.com/tastewire/tastewire/internal/modules/model"
)

// InsightBrief is the request-shaped input every orchestrator reduces to
// before prompting or synthesizing. One brief type keeps the real and
// fallback schemas from drifting apart.
type InsightBrief struct {
	Title       string
	Description string
	Industry    string
	Domains     []string
	GeoTargets  []string
}

// Budget bounds one generation. Deep reports are larger and slower; live
// discovery trades size for latency.
type Budget struct {
	PersonasMin, PersonasMax       int
	TrendsMin, TrendsMax           int
	SuggestionsMin, SuggestionsMax int
	MaxTokens                      int
	Temperature                    float64
}

var (
	DeepBudget = Budget{
		PersonasMin: 3, PersonasMax: 4,
		TrendsMin: 4, TrendsMax: 5,
		SuggestionsMin: 6, SuggestionsMax: 8,
		MaxTokens:   3000,
		Temperature: 0.7,
	}
	LiveBudget = Budget{
		PersonasMin: 3, PersonasMax: 3,
		TrendsMin: 3, TrendsMax: 3,
		SuggestionsMin: 4, SuggestionsMax: 4,
		MaxTokens:   1500,
		Temperature: 0.7,
	}
)

// SynthesizeCulturalData builds a deterministic stand-in for a Cultural-Graph
// payload, used when the gateway is unconfigured or transiently down after
// retries. No randomness: identical briefs produce identical payloads.
func SynthesizeCulturalData(brief InsightBrief) *qloo.CulturalData {
	domains := brief.Domains
	if len(domains) == 0 {
		domains = []string{"lifestyle"}
	}

	entities := make([]qloo.Entity, 0, len(domains))
	tags := make([]qloo.Tag, 0, len(domains))
	for i, d := range domains {
		entities = append(entities, qloo.Entity{
			EntityID:   fmt.Sprintf("synthetic:entity:%d", i),
			Name:       fmt.Sprintf("%s community", d),
			Type:       "urn:entity:interest",
			Popularity: 0.5,
		})
		tags = append(tags, qloo.Tag{
			ID:   fmt.Sprintf("synthetic:tag:%d", i),
			Name: d,
			Type: "urn:tag:interest",
		})
	}

	data := &qloo.CulturalData{Entities: entities, Tags: tags}
	raw, _ := sonic.Marshal(map[string]any{
		"synthetic": true,
		"results":   map[string]any{"entities": entities, "tags": tags},
	})
	data.Raw = json.RawMessage(raw)
	return data
}

// SynthesizeInsights is the shared deterministic fallback generator: a pure
// function of the brief, the available cultural data, and the budget. It is
// substituted in full whenever model output fails validation; valid and
// invalid items are never merged.
func SynthesizeInsights(brief InsightBrief, cultural *qloo.CulturalData, budget Budget) *InsightSet {
	subject := brief.Title
	if subject == "" {
		subject = firstSentence(brief.Description)
	}
	industry := brief.Industry
	if industry == "" {
		industry = "consumer"
	}

	domains := brief.Domains
	if len(domains) == 0 {
		domains = []string{"lifestyle", "social media", "music"}
	}
	geos := brief.GeoTargets
	if len(geos) == 0 {
		geos = []string{"global"}
	}

	affinities := domainAffinities(domains, cultural)

	personaTemplates := []struct {
		name, ageRange, desc string
		platforms            []string
	}{
		{"The Cultural Explorer", "25-34", "actively seeks out new experiences and shares discoveries with a close-knit online community", []string{"Instagram", "TikTok"}},
		{"The Conscious Consumer", "28-40", "researches brands thoroughly and favors those aligned with personal values", []string{"Instagram", "YouTube"}},
		{"The Trend Amplifier", "18-27", "adopts emerging trends early and drives word-of-mouth within peer groups", []string{"TikTok", "X"}},
		{"The Established Enthusiast", "35-50", "deeply invested in a few interest areas with high purchasing power", []string{"Facebook", "YouTube"}},
	}

	personas := make(model.PersonaList, 0, budget.PersonasMin)
	for i := 0; i < budget.PersonasMin && i < len(personaTemplates); i++ {
		tpl := personaTemplates[i]
		personas = append(personas, model.Persona{
			Name:        tpl.name,
			Description: fmt.Sprintf("%s for %s: %s.", tpl.name, subject, tpl.desc),
			Characteristics: []string{
				"values authenticity over polish",
				fmt.Sprintf("engaged with %s", strings.Join(domains, ", ")),
				"responds to community-driven campaigns",
			},
			Demographics: model.Demographics{
				AgeRange:  tpl.ageRange,
				Interests: domains,
				Platforms: tpl.platforms,
			},
			CulturalAffinities: domains,
			BehavioralPatterns: []string{
				"discovers products through social recommendations",
				"compares options before committing",
			},
			AffinityScores: affinities,
		})
	}

	trendTemplates := []struct {
		title, desc, impact, timeline string
		confidence                    int
	}{
		{"Community-led discovery", "audiences increasingly trust peer communities over brand channels for %s recommendations", "high", "6-12 months", 78},
		{"Values-based purchasing", "purchase decisions in the %s space are weighted toward brands with visible values", "high", "12-24 months", 74},
		{"Short-form video dominance", "short-form video remains the primary discovery surface for %s audiences", "medium", "ongoing", 82},
		{"Micro-niche identity", "consumers assemble identity from small overlapping niches rather than broad demographics", "medium", "12-18 months", 70},
		{"Experience over ownership", "spending shifts toward experiences and memberships adjacent to %s", "medium", "18-36 months", 66},
	}

	trends := make(model.TrendList, 0, budget.TrendsMin)
	for i := 0; i < budget.TrendsMin && i < len(trendTemplates); i++ {
		tpl := trendTemplates[i]
		desc := tpl.desc
		if strings.Contains(desc, "%s") {
			desc = fmt.Sprintf(desc, industry)
		}
		trends = append(trends, model.Trend{
			Title:          tpl.title,
			Description:    desc,
			Confidence:     tpl.confidence,
			Impact:         tpl.impact,
			Timeline:       tpl.timeline,
			QlooConnection: qlooConnection(cultural),
		})
	}

	suggestionTemplates := []struct {
		title, desc, contentType, engagement string
		platforms                            []string
	}{
		{"Behind-the-scenes series", "show how %s comes together, foregrounding the people involved", "video", "high", []string{"TikTok", "Instagram"}},
		{"Community spotlight", "feature real members of the audience and their relationship with %s", "ugc", "high", []string{"Instagram"}},
		{"Values explainer", "one clear post on what %s stands for and why", "carousel", "medium", []string{"Instagram", "LinkedIn"}},
		{"Trend-jack template", "a reusable format for joining relevant cultural moments around %s", "video", "high", []string{"TikTok"}},
		{"Founder Q&A", "an ask-me-anything session about %s", "live", "medium", []string{"Instagram", "YouTube"}},
		{"Collaboration teaser", "tease a collaboration with a voice the audience already trusts in %s", "image", "medium", []string{"Instagram", "X"}},
		{"Data story", "turn one surprising audience insight about %s into a shareable graphic", "infographic", "medium", []string{"LinkedIn", "X"}},
		{"Seasonal moment", "tie %s to the next seasonal peak relevant to the audience", "video", "medium", []string{"TikTok", "Instagram"}},
	}

	suggestions := make(model.ContentSuggestionList, 0, budget.SuggestionsMin)
	for i := 0; i < budget.SuggestionsMin && i < len(suggestionTemplates); i++ {
		tpl := suggestionTemplates[i]
		suggestions = append(suggestions, model.ContentSuggestion{
			Title:               tpl.title,
			Description:         fmt.Sprintf(tpl.desc, subject),
			Platforms:           tpl.platforms,
			ContentType:         tpl.contentType,
			Copy:                fmt.Sprintf("%s — made for people who care about %s.", subject, strings.Join(domains, " and ")),
			EngagementPotential: tpl.engagement,
			CulturalTiming:      "align with peak activity windows for " + geos[0],
		})
	}

	return &InsightSet{
		AudiencePersonas:   personas,
		CulturalTrends:     trends,
		ContentSuggestions: suggestions,
	}
}

func domainAffinities(domains []string, cultural *qloo.CulturalData) map[string]float64 {
	scores := make(map[string]float64, len(domains))
	for i, d := range domains {
		// deterministic spread in (0,1], highest first
		scores[d] = 0.9 - 0.1*float64(i%5)
	}
	if cultural != nil {
		for _, e := range cultural.Entities {
			if e.Popularity > 0 {
				scores[e.Name] = e.Popularity
			}
		}
	}
	return scores
}

func qlooConnection(cultural *qloo.CulturalData) string {
	if cultural == nil || len(cultural.Entities) == 0 {
		return ""
	}
	names := make([]string, 0, 3)
	for i, e := range cultural.Entities {
		if i == 3 {
			break
		}
		names = append(names, e.Name)
	}
	return "related taste-graph entities: " + strings.Join(names, ", ")
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".!?\n"); i > 0 {
		return s[:i]
	}
	if len(s) > 80 {
		return s[:80]
	}
	return s
}
