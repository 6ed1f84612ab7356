// Package llm wraps the OpenAI chat-completions API behind a single-attempt
// client. SDK-level retries are disabled so the shared retry executor owns
// the backoff schedule.
package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/gateway/upstream"
)

type Client struct {
	api     openai.Client
	model   string
	enabled bool
	log     *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAI.APIKey),
		option.WithMaxRetries(0),
	}
	return &Client{
		api:     openai.NewClient(opts...),
		model:   cfg.OpenAI.Model,
		enabled: cfg.OpenAI.APIKey != "",
		log:     log,
	}
}

// Enabled reports whether an API key was configured. Disabled clients are
// never called; orchestrators go straight to deterministic synthesis.
func (c *Client) Enabled() bool { return c.enabled }

// Complete runs one system+user chat completion and returns the assistant
// message content verbatim. Errors are mapped into the upstream taxonomy.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.log.Warn("openai request failed",
				zap.Int("status_code", apiErr.StatusCode),
				zap.String("model", c.model))
			return "", upstream.Classify(upstream.ProviderOpenAI, apiErr.StatusCode, apiErr.Message)
		}
		return "", upstream.ClassifyNetwork(upstream.ProviderOpenAI, err)
	}

	if len(resp.Choices) == 0 {
		return "", &upstream.Error{Provider: upstream.ProviderOpenAI, Kind: upstream.KindTransient, Message: "empty choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// StripCodeFences removes a surrounding markdown fence so the content can be
// parsed as JSON whether the model fenced it or not.
func StripCodeFences(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	out = strings.TrimPrefix(out, "```")
	// drop a language hint like "json" on the fence line
	if i := strings.Index(out, "\n"); i >= 0 {
		first := strings.TrimSpace(out[:i])
		if first == "json" || first == "" {
			out = out[i+1:]
		}
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}
