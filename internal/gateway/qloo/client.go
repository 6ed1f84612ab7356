// Package qloo is the typed client for the Cultural-Graph API. It performs
// single attempts only; retry policy is owned by the orchestrators.
package qloo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/gateway/upstream"
)

// Entity is one taste-graph node returned by the insights endpoints.
type Entity struct {
	EntityID   string  `json:"entity_id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Popularity float64 `json:"popularity,omitempty"`
}

// Tag is an upstream taxonomy identifier. Live discovery resolves free-form
// tag names to these before the main insights call.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// CulturalData is the parsed slice of an insights response plus the raw body.
// The raw body is what gets cached and persisted alongside generated results;
// the parsed fields feed prompt construction.
type CulturalData struct {
	Entities []Entity        `json:"entities"`
	Tags     []Tag           `json:"tags"`
	Raw      json.RawMessage `json:"-"`
}

type insightsEnvelope struct {
	Results struct {
		Entities []Entity `json:"entities"`
		Tags     []Tag    `json:"tags"`
	} `json:"results"`
}

// ParseCulturalData re-parses a stored raw insights payload (e.g. a cache
// hit) into the same shape a live call returns.
func ParseCulturalData(raw json.RawMessage) (*CulturalData, error) {
	var envelope insightsEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal cached insights payload: %w", err)
	}
	return &CulturalData{
		Entities: envelope.Results.Entities,
		Tags:     envelope.Results.Tags,
		Raw:      raw,
	}, nil
}

// TasteInsightsInput shapes the deep-report request (v1).
type TasteInsightsInput struct {
	Description string   `json:"description"`
	Industry    string   `json:"industry,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Locations   []string `json:"locations,omitempty"`
	Take        int      `json:"take,omitempty"`
}

// SearchInsightsInput shapes the live-discovery request (v2), carrying
// already-resolved tag identifiers as signals.
type SearchInsightsInput struct {
	Signal struct {
		TagIDs   []string `json:"interests.tags,omitempty"`
		AgeRange []int    `json:"demographics.age,omitempty"`
	} `json:"signal"`
	Filter struct {
		Type      string   `json:"type"`
		Locations []string `json:"location.query,omitempty"`
	} `json:"filter"`
	Take int `json:"take,omitempty"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.Qloo.BaseURL,
		apiKey:  cfg.Qloo.APIKey,
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// Enabled reports whether an API key was configured. A disabled client means
// orchestrators synthesize cultural data locally instead of calling out.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// TasteInsights fetches the full taste-graph payload backing a deep report.
func (c *Client) TasteInsights(ctx context.Context, in TasteInsightsInput) (*CulturalData, error) {
	return c.postInsights(ctx, c.baseURL+"/v1/taste/insights", in)
}

// SearchInsights fetches a fresh, smaller payload for live discovery. Never
// cached: interactive requests always see current data.
func (c *Client) SearchInsights(ctx context.Context, in SearchInsightsInput) (*CulturalData, error) {
	return c.postInsights(ctx, c.baseURL+"/v2/insights", in)
}

// ResolveTags maps a free-form tag name to upstream identifiers. An empty
// result is not an error; callers drop unresolvable tags silently.
func (c *Client) ResolveTags(ctx context.Context, tagType, query string) ([]Tag, error) {
	endpoint := fmt.Sprintf("%s/v2/tags?type=%s&query=%s",
		c.baseURL, url.QueryEscape(tagType), url.QueryEscape(query))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result struct {
		Results struct {
			Tags []Tag `json:"tags"`
		} `json:"results"`
	}
	if err := sonic.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal tags response: %w", err)
	}
	return result.Results.Tags, nil
}

func (c *Client) postInsights(ctx context.Context, endpoint string, in any) (*CulturalData, error) {
	body, err := sonic.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var envelope insightsEnvelope
	if err := sonic.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal insights response: %w", err)
	}

	return &CulturalData{
		Entities: envelope.Results.Entities,
		Tags:     envelope.Results.Tags,
		Raw:      json.RawMessage(respBody),
	}, nil
}

func (c *Client) do(httpReq *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, upstream.ClassifyNetwork(upstream.ProviderQloo, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstream.ClassifyNetwork(upstream.ProviderQloo, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("qloo request failed",
			zap.String("endpoint", httpReq.URL.Path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", truncate(string(respBody), 512)))
		return nil, upstream.Classify(upstream.ProviderQloo, resp.StatusCode, truncate(string(respBody), 256))
	}
	return respBody, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
