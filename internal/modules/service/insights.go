package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"go.uber.org/zap"

	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/gateway/qloo"
	"github.com/tastewire/tastewire/internal/gateway/upstream"
	"github.com/tastewire/tastewire/internal/modules/model"
	"github.com/tastewire/tastewire/internal/modules/repo"
	"github.com/tastewire/tastewire/internal/pkg/reqhash"
	"github.com/tastewire/tastewire/internal/pkg/retry"
)

// CulturalGateway is the Cultural-Graph client surface the orchestrators use.
type CulturalGateway interface {
	Enabled() bool
	TasteInsights(ctx context.Context, in qloo.TasteInsightsInput) (*qloo.CulturalData, error)
	SearchInsights(ctx context.Context, in qloo.SearchInsightsInput) (*qloo.CulturalData, error)
	ResolveTags(ctx context.Context, tagType, query string) ([]qloo.Tag, error)
}

// LLMGateway is the completion client surface.
type LLMGateway interface {
	Enabled() bool
	Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error)
}

// EventPublisher decouples orchestrators from the broker; *mq.Publisher
// satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, exchangeName, routingKey string, body any) error
}

type InsightsService interface {
	Generate(ctx context.Context, ownerID, projectID uuid.UUID) (*GenerateOutput, error)
	Latest(ctx context.Context, ownerID, projectID uuid.UUID) (*model.InsightsResult, error)
}

type GenerateOutput struct {
	Result  *model.InsightsResult `json:"result"`
	Warning string                `json:"warning,omitempty"`
}

// InsightsGeneratedEvent is published after a deep generation persists.
type InsightsGeneratedEvent struct {
	ProjectID uuid.UUID `json:"project_id"`
	ResultID  uuid.UUID `json:"result_id"`
	Fallback  bool      `json:"fallback"`
}

type insightsService struct {
	insightGenerator

	projects  repo.ProjectRepo
	insights  repo.InsightsRepo
	cache     repo.CultureCacheRepo
	publisher EventPublisher
}

func NewInsightsService(
	projects repo.ProjectRepo,
	insights repo.InsightsRepo,
	cache repo.CultureCacheRepo,
	culture CulturalGateway,
	llm LLMGateway,
	publisher EventPublisher,
	cfg *config.Config,
	log *zap.Logger,
) InsightsService {
	return &insightsService{
		insightGenerator: insightGenerator{culture: culture, llm: llm, cfg: cfg, log: log},
		projects:         projects,
		insights:         insights,
		cache:            cache,
		publisher:        publisher,
	}
}

// Generate runs the deep pipeline: cache-aware Cultural-Graph fetch, prompt,
// LLM call, validation with full fallback substitution, persistence, event
// publish. Persistence failure is the only hard failure after generation
// succeeds; the result would otherwise be lost.
func (s *insightsService) Generate(ctx context.Context, ownerID, projectID uuid.UUID) (*GenerateOutput, error) {
	p, err := s.projects.GetOwned(ctx, ownerID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("load project: %w", err)
	}

	brief := InsightBrief{
		Title:       p.Title,
		Description: p.Description,
		Industry:    p.Industry,
		Domains:     p.CulturalDomains,
		GeoTargets:  p.GeoTargets,
	}

	cultural, err := s.fetchCulturalCached(ctx, brief, projectID)
	if err != nil {
		return nil, err
	}

	set, warning, err := s.generateSet(ctx, brief, cultural, DeepBudget)
	if err != nil {
		return nil, err
	}

	result := &model.InsightsResult{
		ProjectID:          p.ID,
		AudiencePersonas:   set.AudiencePersonas,
		CulturalTrends:     set.CulturalTrends,
		ContentSuggestions: set.ContentSuggestions,
		QlooData:           datatypes.JSON(cultural.Raw),
		Fallback:           warning != "",
	}
	if err := s.insights.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("persist insights: %w", err)
	}

	if s.publisher != nil {
		if pubErr := s.publisher.PublishJSON(ctx, s.cfg.RabbitMQ.ExchangeName, s.cfg.RabbitMQ.RoutingKeyGenerated, InsightsGeneratedEvent{
			ProjectID: result.ProjectID,
			ResultID:  result.ID,
			Fallback:  result.Fallback,
		}); pubErr != nil {
			s.log.Error("failed to publish insights event", zap.Error(pubErr), zap.String("project_id", p.ID.String()))
		}
	}

	return &GenerateOutput{Result: result, Warning: warning}, nil
}

func (s *insightsService) Latest(ctx context.Context, ownerID, projectID uuid.UUID) (*model.InsightsResult, error) {
	if _, err := s.projects.GetOwned(ctx, ownerID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	res, err := s.insights.LatestByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

// fetchCulturalCached consults the cache first. Cache-layer errors degrade to
// a miss; a miss triggers the upstream call with the retry policy, and only
// real upstream responses are written back.
func (s *insightsService) fetchCulturalCached(ctx context.Context, brief InsightBrief, projectID uuid.UUID) (*qloo.CulturalData, error) {
	hash := reqhash.Key(brief.Description, brief.Industry, brief.Domains, brief.GeoTargets)

	entry, err := s.cache.Lookup(ctx, hash)
	if err != nil {
		s.log.Warn("cultural cache lookup failed, treating as miss", zap.Error(err), zap.String("request_hash", hash))
	}
	if entry != nil {
		data, perr := qloo.ParseCulturalData(entry.Payload)
		if perr == nil {
			s.log.Debug("cultural cache hit", zap.String("request_hash", hash))
			return data, nil
		}
		s.log.Warn("cultural cache entry unreadable, treating as miss", zap.Error(perr))
	}

	if !s.culture.Enabled() {
		s.log.Info("cultural gateway not configured, synthesizing cultural data")
		return SynthesizeCulturalData(brief), nil
	}

	data, err := retry.Do(ctx, s.retryPolicy(), "qloo.taste_insights", func(ctx context.Context) (*qloo.CulturalData, error) {
		return s.culture.TasteInsights(ctx, qloo.TasteInsightsInput{
			Description: brief.Description,
			Industry:    brief.Industry,
			Categories:  brief.Domains,
			Locations:   brief.GeoTargets,
			Take:        10,
		})
	})
	if err != nil {
		var ue *upstream.Error
		if errors.As(err, &ue) && ue.Kind == upstream.KindTransient {
			// availability over correctness for the cultural dependency only
			s.log.Warn("cultural gateway unavailable after retries, synthesizing cultural data", zap.Error(err))
			return SynthesizeCulturalData(brief), nil
		}
		return nil, err
	}

	if storeErr := s.cache.Store(ctx, &model.CulturalCacheEntry{
		RequestHash: hash,
		ProjectID:   projectID,
		Payload:     data.Raw,
	}); storeErr != nil {
		s.log.Warn("cultural cache store failed", zap.Error(storeErr), zap.String("request_hash", hash))
	}
	return data, nil
}
