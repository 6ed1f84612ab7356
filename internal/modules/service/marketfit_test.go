package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tastewire/tastewire/internal/gateway/upstream"
)

const validMarketFitJSON = `{
  "overall_fit_score": 72,
  "segments": [
    {"name": "Early adopters", "fit": "strong"},
    {"name": "Budget buyers", "fit": "weak"}
  ],
  "opportunities": ["expand into adjacent categories"],
  "risks": ["low switching costs"],
  "recommendations": ["start with a niche launch"]
}`

func testMarketFitInput() MarketFitInput {
	return MarketFitInput{
		Description:   "AI-assisted meal planning app",
		Industry:      "consumer software",
		TargetMarket:  "busy urban professionals",
		BusinessModel: "freemium subscription",
	}
}

func TestMarketFitService_Analyze_HappyPath(t *testing.T) {
	gw := new(MockLLMGateway)
	gw.On("Enabled").Return(true)
	gw.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(validMarketFitJSON, nil)

	svc := NewMarketFitService(gw, testConfig(), zap.NewNop())

	report, err := svc.Analyze(context.Background(), testMarketFitInput())
	require.NoError(t, err)
	assert.Equal(t, float64(72), report.OverallFitScore)
	assert.Len(t, report.Segments, 2)
	assert.NotEmpty(t, report.Recommendations)
}

func TestMarketFitService_Analyze_FencedOutputAccepted(t *testing.T) {
	gw := new(MockLLMGateway)
	gw.On("Enabled").Return(true)
	gw.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("```json\n"+validMarketFitJSON+"\n```", nil)

	svc := NewMarketFitService(gw, testConfig(), zap.NewNop())

	report, err := svc.Analyze(context.Background(), testMarketFitInput())
	require.NoError(t, err)
	assert.Equal(t, float64(72), report.OverallFitScore)
}

func TestMarketFitService_Analyze_NoFallbackOnBadShape(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"not JSON", "the market looks promising overall"},
		{"missing overall_fit_score", `{"segments": [{"name": "A"}]}`},
		{"missing segments", `{"overall_fit_score": 70}`},
		{"empty segments", `{"overall_fit_score": 70, "segments": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockLLMGateway)
			gw.On("Enabled").Return(true)
			gw.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(tt.output, nil)

			svc := NewMarketFitService(gw, testConfig(), zap.NewNop())

			report, err := svc.Analyze(context.Background(), testMarketFitInput())
			assert.Nil(t, report)
			assert.ErrorIs(t, err, ErrOutputShape)
			// single pass: no shape retry and no fallback
			gw.AssertNumberOfCalls(t, "Complete", 1)
		})
	}
}

func TestMarketFitService_Analyze_TransientErrorSurfacesAfterRetries(t *testing.T) {
	gw := new(MockLLMGateway)
	gw.On("Enabled").Return(true)
	gw.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", &upstream.Error{Provider: upstream.ProviderOpenAI, StatusCode: 500, Kind: upstream.KindTransient})

	svc := NewMarketFitService(gw, testConfig(), zap.NewNop())

	_, err := svc.Analyze(context.Background(), testMarketFitInput())
	var ue *upstream.Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, upstream.KindTransient, ue.Kind)
	gw.AssertNumberOfCalls(t, "Complete", 3)
}

func TestMarketFitService_Analyze_DisabledGatewayIsCredentialError(t *testing.T) {
	gw := new(MockLLMGateway)
	gw.On("Enabled").Return(false)

	svc := NewMarketFitService(gw, testConfig(), zap.NewNop())

	_, err := svc.Analyze(context.Background(), testMarketFitInput())
	var ue *upstream.Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, upstream.KindCredential, ue.Kind)
	gw.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
