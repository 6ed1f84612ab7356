package service

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/gateway/qloo"
	"github.com/tastewire/tastewire/internal/gateway/upstream"
	"github.com/tastewire/tastewire/internal/modules/model"
	"github.com/tastewire/tastewire/internal/pkg/retry"
)

// DiscoveryService is the live orchestrator: no persistence, no caching,
// smaller budgets, always-fresh cultural data.
type DiscoveryService interface {
	Discover(ctx context.Context, in LiveDiscoveryInput) (*LiveInsights, error)
}

type LiveDiscoveryInput struct {
	Description     string   `json:"description"`
	Industry        string   `json:"industry,omitempty"`
	CulturalDomains []string `json:"cultural_domains,omitempty"`
	GeoTargets      []string `json:"geographic_targets,omitempty"`
	AgeRange        []int    `json:"age_range,omitempty"`
}

// LiveInsights is returned to the caller and never stored.
type LiveInsights struct {
	AudiencePersonas   model.PersonaList           `json:"audience_personas"`
	CulturalTrends     model.TrendList             `json:"cultural_trends"`
	ContentSuggestions model.ContentSuggestionList `json:"content_suggestions"`
	QlooData           json.RawMessage             `json:"qloo_data,omitempty"`
	Warning            string                      `json:"-"`
}

type discoveryService struct {
	insightGenerator
}

func NewDiscoveryService(culture CulturalGateway, llm LLMGateway, cfg *config.Config, log *zap.Logger) DiscoveryService {
	return &discoveryService{
		insightGenerator: insightGenerator{culture: culture, llm: llm, cfg: cfg, log: log},
	}
}

func (s *discoveryService) Discover(ctx context.Context, in LiveDiscoveryInput) (*LiveInsights, error) {
	brief := InsightBrief{
		Description: in.Description,
		Industry:    in.Industry,
		Domains:     in.CulturalDomains,
		GeoTargets:  in.GeoTargets,
	}

	cultural, err := s.fetchCulturalFresh(ctx, in, brief)
	if err != nil {
		return nil, err
	}

	set, warning, err := s.generateSet(ctx, brief, cultural, LiveBudget)
	if err != nil {
		return nil, err
	}

	return &LiveInsights{
		AudiencePersonas:   set.AudiencePersonas,
		CulturalTrends:     set.CulturalTrends,
		ContentSuggestions: set.ContentSuggestions,
		QlooData:           cultural.Raw,
		Warning:            warning,
	}, nil
}

// fetchCulturalFresh always calls upstream (no cache). Tag names are resolved
// to upstream identifiers first; names with zero matches are dropped, never
// fatal.
func (s *discoveryService) fetchCulturalFresh(ctx context.Context, in LiveDiscoveryInput, brief InsightBrief) (*qloo.CulturalData, error) {
	if !s.culture.Enabled() {
		s.log.Info("cultural gateway not configured, synthesizing cultural data")
		return SynthesizeCulturalData(brief), nil
	}

	var req qloo.SearchInsightsInput
	req.Filter.Type = "urn:entity:brand"
	req.Filter.Locations = in.GeoTargets
	req.Take = 8
	if len(in.AgeRange) == 2 {
		req.Signal.AgeRange = in.AgeRange
	}

	for _, name := range in.CulturalDomains {
		tags, err := retry.Do(ctx, s.retryPolicy(), "qloo.resolve_tags", func(ctx context.Context) ([]qloo.Tag, error) {
			return s.culture.ResolveTags(ctx, "urn:tag:interest", name)
		})
		if err != nil {
			var ue *upstream.Error
			if errors.As(err, &ue) && ue.Kind == upstream.KindTransient {
				s.log.Warn("tag resolution unavailable, dropping tag", zap.String("tag", name), zap.Error(err))
				continue
			}
			return nil, err
		}
		if len(tags) == 0 {
			s.log.Debug("tag resolved to nothing, dropping", zap.String("tag", name))
			continue
		}
		req.Signal.TagIDs = append(req.Signal.TagIDs, tags[0].ID)
	}

	data, err := retry.Do(ctx, s.retryPolicy(), "qloo.search_insights", func(ctx context.Context) (*qloo.CulturalData, error) {
		return s.culture.SearchInsights(ctx, req)
	})
	if err != nil {
		var ue *upstream.Error
		if errors.As(err, &ue) && ue.Kind == upstream.KindTransient {
			s.log.Warn("cultural gateway unavailable after retries, synthesizing cultural data", zap.Error(err))
			return SynthesizeCulturalData(brief), nil
		}
		return nil, err
	}
	return data, nil
}
