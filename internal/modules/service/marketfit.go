package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/gateway/llm"
	"github.com/tastewire/tastewire/internal/gateway/upstream"
	"github.com/tastewire/tastewire/internal/pkg/retry"
)

// MarketFitService runs the strict analysis path: one completion, no cache,
// no fallback. Upstream failures surface to the caller unchanged.
type MarketFitService interface {
	Analyze(ctx context.Context, in MarketFitInput) (*MarketFitReport, error)
}

// MarketFitReport keeps the model output largely opaque; only the two fields
// every report must carry are typed.
type MarketFitReport struct {
	OverallFitScore float64           `json:"overall_fit_score"`
	Segments        []json.RawMessage `json:"segments"`
	Opportunities   json.RawMessage   `json:"opportunities,omitempty"`
	Risks           json.RawMessage   `json:"risks,omitempty"`
	Recommendations json.RawMessage   `json:"recommendations,omitempty"`
	Raw             json.RawMessage   `json:"-"`
}

type marketFitService struct {
	llm LLMGateway
	cfg *config.Config
	log *zap.Logger
}

func NewMarketFitService(gw LLMGateway, cfg *config.Config, log *zap.Logger) MarketFitService {
	return &marketFitService{llm: gw, cfg: cfg, log: log}
}

func (s *marketFitService) retryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: s.cfg.Insights.MaxRetries,
		BaseDelay:   s.cfg.RetryDelay(),
		Log:         s.log,
	}
}

const marketFitMaxTokens = 2500

func (s *marketFitService) Analyze(ctx context.Context, in MarketFitInput) (*MarketFitReport, error) {
	if !s.llm.Enabled() {
		return nil, &upstream.Error{
			Provider: upstream.ProviderOpenAI,
			Kind:     upstream.KindCredential,
			Message:  "language model is not configured",
		}
	}

	system, user := BuildMarketFitPrompt(in)
	content, err := retry.Do(ctx, s.retryPolicy(), "openai.market_fit", func(ctx context.Context) (string, error) {
		return s.llm.Complete(ctx, system, user, marketFitMaxTokens, 0.5)
	})
	if err != nil {
		return nil, err
	}

	report, err := parseMarketFitReport(llm.StripCodeFences(content))
	if err != nil {
		s.log.Warn("market fit output unusable", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrOutputShape, err)
	}
	return report, nil
}

// parseMarketFitReport validates only that the report is JSON and carries a
// fit score and at least one segment. Everything else passes through as-is.
func parseMarketFitReport(raw string) (*MarketFitReport, error) {
	var candidate struct {
		OverallFitScore *float64           `json:"overall_fit_score"`
		Segments        *[]json.RawMessage `json:"segments"`
		Opportunities   json.RawMessage    `json:"opportunities"`
		Risks           json.RawMessage    `json:"risks"`
		Recommendations json.RawMessage    `json:"recommendations"`
	}
	if err := sonic.UnmarshalString(raw, &candidate); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if candidate.OverallFitScore == nil {
		return nil, fmt.Errorf("missing overall_fit_score")
	}
	if candidate.Segments == nil || len(*candidate.Segments) == 0 {
		return nil, fmt.Errorf("missing segments")
	}
	return &MarketFitReport{
		OverallFitScore: *candidate.OverallFitScore,
		Segments:        *candidate.Segments,
		Opportunities:   candidate.Opportunities,
		Risks:           candidate.Risks,
		Recommendations: candidate.Recommendations,
		Raw:             json.RawMessage(raw),
	}, nil
}
