package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/gateway/llm"
	"github.com/tastewire/tastewire/internal/gateway/qloo"
	"github.com/tastewire/tastewire/internal/gateway/upstream"
	"github.com/tastewire/tastewire/internal/pkg/retry"
)

// insightGenerator is the gateway-facing half of insight generation, shared
// by the deep and live orchestrators. It owns the LLM conversation and the
// fallback synthesis; persistence and caching stay with the embedding
// service.
type insightGenerator struct {
	culture CulturalGateway
	llm     LLMGateway
	cfg     *config.Config
	log     *zap.Logger
}

func (g *insightGenerator) retryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: g.cfg.Insights.MaxRetries,
		BaseDelay:   g.cfg.RetryDelay(),
		Log:         g.log,
	}
}

// shapeAttempts bounds LLM calls per generation: the initial call plus one
// retry when output fails to parse or validate.
const shapeAttempts = 2

// generateSet turns a brief plus cultural data into a validated InsightSet.
// The returned warning is non-empty exactly when deterministic synthesis
// replaced model output; the request still succeeds.
func (g *insightGenerator) generateSet(ctx context.Context, brief InsightBrief, cultural *qloo.CulturalData, budget Budget) (*InsightSet, string, error) {
	if !g.llm.Enabled() {
		g.log.Info("llm gateway not configured, synthesizing insights")
		return SynthesizeInsights(brief, cultural, budget), "language model unavailable; insights were generated deterministically", nil
	}

	system, user := BuildInsightsPrompt(brief, cultural, budget)
	g.log.Debug("insights prompt built",
		zap.Int("prompt_tokens", CountTokens(system)+CountTokens(user)),
		zap.Int("max_tokens", budget.MaxTokens))

	for attempt := 1; attempt <= shapeAttempts; attempt++ {
		content, err := retry.Do(ctx, g.retryPolicy(), "openai.chat_completions", func(ctx context.Context) (string, error) {
			return g.llm.Complete(ctx, system, user, budget.MaxTokens, budget.Temperature)
		})
		if err != nil {
			var ue *upstream.Error
			if errors.As(err, &ue) && ue.Kind == upstream.KindTransient {
				g.log.Warn("llm unavailable after retries, synthesizing insights", zap.Error(err))
				return SynthesizeInsights(brief, cultural, budget), "language model unavailable; insights were generated deterministically", nil
			}
			return nil, "", err
		}

		set, vres := ParseAndValidateInsights([]byte(llm.StripCodeFences(content)))
		if vres.Valid {
			return set, "", nil
		}
		g.log.Warn("llm output failed validation",
			zap.Int("shape_attempt", attempt),
			zap.Strings("validation_errors", vres.Errors))
	}

	return SynthesizeInsights(brief, cultural, budget),
		"model output failed validation; insights were replaced with deterministic fallback content", nil
}
