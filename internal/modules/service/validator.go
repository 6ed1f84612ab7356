package service

import (
	"encoding/json"
	"fmt"

	"github.com/tastewire/tastewire/internal/modules/model"
)

// InsightSet is one parsed-and-validated generation: the only shape the rest
// of the code handles. Raw model output is validated exactly once, here.
type InsightSet struct {
	AudiencePersonas   model.PersonaList           `json:"audience_personas"`
	CulturalTrends     model.TrendList             `json:"cultural_trends"`
	ContentSuggestions model.ContentSuggestionList `json:"content_suggestions"`
}

// ValidationResult lists everything wrong with a candidate. A single error
// invalidates the whole batch: there is no partial repair and no merging of
// valid items with fallback items.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Candidate mirror types. Pointer slices distinguish an absent array from an
// empty one (absent is invalid, empty is fine); json.Number keeps fractional
// confidence values detectable.
type personaCandidate struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Characteristics *[]string `json:"characteristics"`
	Demographics    *struct {
		AgeRange  string    `json:"age_range"`
		Interests *[]string `json:"interests"`
		Platforms *[]string `json:"platforms"`
	} `json:"demographics"`
	CulturalAffinities []string           `json:"cultural_affinities"`
	BehavioralPatterns []string           `json:"behavioral_patterns"`
	AffinityScores     map[string]float64 `json:"affinity_scores"`
}

type trendCandidate struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Confidence     json.Number `json:"confidence"`
	Impact         string      `json:"impact"`
	Timeline       string      `json:"timeline"`
	QlooConnection string      `json:"qloo_connection"`
}

type suggestionCandidate struct {
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Platforms           *[]string `json:"platforms"`
	ContentType         string    `json:"content_type"`
	Copy                string    `json:"copy"`
	EngagementPotential string    `json:"engagement_potential"`
	CulturalTiming      string    `json:"cultural_timing"`
}

type insightsCandidate struct {
	AudiencePersonas   *[]personaCandidate    `json:"audience_personas"`
	CulturalTrends     *[]trendCandidate      `json:"cultural_trends"`
	ContentSuggestions *[]suggestionCandidate `json:"content_suggestions"`
}

// ParseAndValidateInsights checks raw (already fence-stripped) model output
// against the insight contract. On success it returns the typed set; on any
// failure the set is nil and Errors explains why.
func ParseAndValidateInsights(raw []byte) (*InsightSet, ValidationResult) {
	var cand insightsCandidate
	if err := json.Unmarshal(raw, &cand); err != nil {
		return nil, ValidationResult{Valid: false, Errors: []string{fmt.Sprintf("response is not valid JSON: %v", err)}}
	}

	var errs []string

	if cand.AudiencePersonas == nil {
		errs = append(errs, "audience_personas: missing or not an array")
	}
	if cand.CulturalTrends == nil {
		errs = append(errs, "cultural_trends: missing or not an array")
	}
	if cand.ContentSuggestions == nil {
		errs = append(errs, "content_suggestions: missing or not an array")
	}

	if cand.AudiencePersonas != nil {
		for i, p := range *cand.AudiencePersonas {
			errs = append(errs, validatePersona(i, p)...)
		}
	}
	if cand.CulturalTrends != nil {
		for i, t := range *cand.CulturalTrends {
			errs = append(errs, validateTrend(i, t)...)
		}
	}
	if cand.ContentSuggestions != nil {
		for i, s := range *cand.ContentSuggestions {
			errs = append(errs, validateSuggestion(i, s)...)
		}
	}

	if len(errs) > 0 {
		return nil, ValidationResult{Valid: false, Errors: errs}
	}

	set := &InsightSet{
		AudiencePersonas:   make(model.PersonaList, 0, len(*cand.AudiencePersonas)),
		CulturalTrends:     make(model.TrendList, 0, len(*cand.CulturalTrends)),
		ContentSuggestions: make(model.ContentSuggestionList, 0, len(*cand.ContentSuggestions)),
	}
	for _, p := range *cand.AudiencePersonas {
		set.AudiencePersonas = append(set.AudiencePersonas, model.Persona{
			Name:            p.Name,
			Description:     p.Description,
			Characteristics: *p.Characteristics,
			Demographics: model.Demographics{
				AgeRange:  p.Demographics.AgeRange,
				Interests: *p.Demographics.Interests,
				Platforms: *p.Demographics.Platforms,
			},
			CulturalAffinities: p.CulturalAffinities,
			BehavioralPatterns: p.BehavioralPatterns,
			AffinityScores:     p.AffinityScores,
		})
	}
	for _, t := range *cand.CulturalTrends {
		conf, _ := t.Confidence.Int64()
		set.CulturalTrends = append(set.CulturalTrends, model.Trend{
			Title:          t.Title,
			Description:    t.Description,
			Confidence:     int(conf),
			Impact:         t.Impact,
			Timeline:       t.Timeline,
			QlooConnection: t.QlooConnection,
		})
	}
	for _, s := range *cand.ContentSuggestions {
		set.ContentSuggestions = append(set.ContentSuggestions, model.ContentSuggestion{
			Title:               s.Title,
			Description:         s.Description,
			Platforms:           *s.Platforms,
			ContentType:         s.ContentType,
			Copy:                s.Copy,
			EngagementPotential: s.EngagementPotential,
			CulturalTiming:      s.CulturalTiming,
		})
	}
	return set, ValidationResult{Valid: true}
}

func validatePersona(i int, p personaCandidate) []string {
	var errs []string
	if p.Name == "" {
		errs = append(errs, fmt.Sprintf("audience_personas[%d]: missing name", i))
	}
	if p.Description == "" {
		errs = append(errs, fmt.Sprintf("audience_personas[%d]: missing description", i))
	}
	if p.Characteristics == nil {
		errs = append(errs, fmt.Sprintf("audience_personas[%d]: characteristics missing or not an array", i))
	}
	if p.Demographics == nil {
		errs = append(errs, fmt.Sprintf("audience_personas[%d]: missing demographics", i))
	} else {
		if p.Demographics.AgeRange == "" {
			errs = append(errs, fmt.Sprintf("audience_personas[%d]: missing demographics.age_range", i))
		}
		if p.Demographics.Interests == nil {
			errs = append(errs, fmt.Sprintf("audience_personas[%d]: demographics.interests missing or not an array", i))
		}
		if p.Demographics.Platforms == nil {
			errs = append(errs, fmt.Sprintf("audience_personas[%d]: demographics.platforms missing or not an array", i))
		}
	}
	return errs
}

func validateTrend(i int, t trendCandidate) []string {
	var errs []string
	if t.Title == "" {
		errs = append(errs, fmt.Sprintf("cultural_trends[%d]: missing title", i))
	}
	if t.Description == "" {
		errs = append(errs, fmt.Sprintf("cultural_trends[%d]: missing description", i))
	}
	if t.Confidence == "" {
		errs = append(errs, fmt.Sprintf("cultural_trends[%d]: missing confidence", i))
	} else if conf, err := t.Confidence.Int64(); err != nil {
		// fractional confidence (e.g. 0.85) is rejected, not rounded
		errs = append(errs, fmt.Sprintf("cultural_trends[%d]: confidence must be a whole number, got %s", i, t.Confidence))
	} else if conf < 0 || conf > 100 {
		errs = append(errs, fmt.Sprintf("cultural_trends[%d]: confidence %d out of range [0,100]", i, conf))
	}
	return errs
}

func validateSuggestion(i int, s suggestionCandidate) []string {
	var errs []string
	if s.Title == "" {
		errs = append(errs, fmt.Sprintf("content_suggestions[%d]: missing title", i))
	}
	if s.Description == "" {
		errs = append(errs, fmt.Sprintf("content_suggestions[%d]: missing description", i))
	}
	if s.Platforms == nil {
		errs = append(errs, fmt.Sprintf("content_suggestions[%d]: platforms missing or not an array", i))
	}
	return errs
}
