package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/gateway/qloo"
	"github.com/tastewire/tastewire/internal/gateway/upstream"
	"github.com/tastewire/tastewire/internal/modules/model"
)

type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProjectRepo) GetOwned(ctx context.Context, ownerID, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, ownerID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectRepo) Update(ctx context.Context, p *model.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProjectRepo) DeleteOwned(ctx context.Context, ownerID, projectID uuid.UUID) error {
	return m.Called(ctx, ownerID, projectID).Error(0)
}

type MockInsightsRepo struct {
	mock.Mock
}

func (m *MockInsightsRepo) Create(ctx context.Context, res *model.InsightsResult) error {
	return m.Called(ctx, res).Error(0)
}

func (m *MockInsightsRepo) LatestByProject(ctx context.Context, projectID uuid.UUID) (*model.InsightsResult, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InsightsResult), args.Error(1)
}

func (m *MockInsightsRepo) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]model.InsightsResult, error) {
	args := m.Called(ctx, projectID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InsightsResult), args.Error(1)
}

type MockCultureCacheRepo struct {
	mock.Mock
}

func (m *MockCultureCacheRepo) Lookup(ctx context.Context, requestHash string) (*model.CulturalCacheEntry, error) {
	args := m.Called(ctx, requestHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CulturalCacheEntry), args.Error(1)
}

func (m *MockCultureCacheRepo) Store(ctx context.Context, entry *model.CulturalCacheEntry) error {
	return m.Called(ctx, entry).Error(0)
}

type MockCulturalGateway struct {
	mock.Mock
}

func (m *MockCulturalGateway) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockCulturalGateway) TasteInsights(ctx context.Context, in qloo.TasteInsightsInput) (*qloo.CulturalData, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*qloo.CulturalData), args.Error(1)
}

func (m *MockCulturalGateway) SearchInsights(ctx context.Context, in qloo.SearchInsightsInput) (*qloo.CulturalData, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*qloo.CulturalData), args.Error(1)
}

func (m *MockCulturalGateway) ResolveTags(ctx context.Context, tagType, query string) ([]qloo.Tag, error) {
	args := m.Called(ctx, tagType, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]qloo.Tag), args.Error(1)
}

type MockLLMGateway struct {
	mock.Mock
}

func (m *MockLLMGateway) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockLLMGateway) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	args := m.Called(ctx, system, user, maxTokens, temperature)
	return args.String(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishJSON(ctx context.Context, exchangeName, routingKey string, body any) error {
	return m.Called(ctx, exchangeName, routingKey, body).Error(0)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Insights.CacheTTLMinutes = 30
	cfg.Insights.MaxRetries = 3
	cfg.Insights.RetryDelayMS = 0 // keep tests off the wall clock
	cfg.RabbitMQ.ExchangeName = "tastewire.insights"
	cfg.RabbitMQ.RoutingKeyGenerated = "insights.generated"
	return cfg
}

func testCulturalData() *qloo.CulturalData {
	return &qloo.CulturalData{
		Entities: []qloo.Entity{{Name: "Vinyl Revival Records", Type: "urn:entity:brand"}},
		Tags:     []qloo.Tag{{ID: "urn:tag:interest:music", Name: "music"}},
		Raw:      json.RawMessage(`{"results":{"entities":[{"name":"Vinyl Revival Records"}]}}`),
	}
}

func newTestInsightsService(
	projects *MockProjectRepo,
	insights *MockInsightsRepo,
	cache *MockCultureCacheRepo,
	culture *MockCulturalGateway,
	gw *MockLLMGateway,
	publisher *MockEventPublisher,
) InsightsService {
	var pub EventPublisher
	if publisher != nil {
		pub = publisher
	}
	return NewInsightsService(projects, insights, cache, culture, gw, pub, testConfig(), zap.NewNop())
}

func TestInsightsService_Generate_HappyPath(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()
	project := &model.Project{
		ID:          projectID,
		OwnerID:     ownerID,
		Title:       "Indie Vinyl Club",
		Description: "Subscription box for indie vinyl collectors",
		Industry:    "music",
	}

	projects := new(MockProjectRepo)
	insights := new(MockInsightsRepo)
	cache := new(MockCultureCacheRepo)
	culture := new(MockCulturalGateway)
	gw := new(MockLLMGateway)
	publisher := new(MockEventPublisher)

	projects.On("GetOwned", mock.Anything, ownerID, projectID).Return(project, nil)
	cache.On("Lookup", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)
	culture.On("Enabled").Return(true)
	culture.On("TasteInsights", mock.Anything, mock.Anything).Return(testCulturalData(), nil)
	cache.On("Store", mock.Anything, mock.Anything).Return(nil)
	gw.On("Enabled").Return(true)
	gw.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(validInsightsJSON, nil).Once()
	insights.On("Create", mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishJSON", mock.Anything, "tastewire.insights", "insights.generated", mock.Anything).Return(nil)

	svc := newTestInsightsService(projects, insights, cache, culture, gw, publisher)

	out, err := svc.Generate(context.Background(), ownerID, projectID)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Empty(t, out.Warning)
	assert.False(t, out.Result.Fallback)
	require.Len(t, out.Result.AudiencePersonas, 1)
	assert.Equal(t, "Urban Trendsetter", out.Result.AudiencePersonas[0].Name)

	gw.AssertNumberOfCalls(t, "Complete", 1)
	insights.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestInsightsService_Generate_ProjectNotOwned(t *testing.T) {
	projects := new(MockProjectRepo)
	projects.On("GetOwned", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound)

	svc := newTestInsightsService(projects, new(MockInsightsRepo), new(MockCultureCacheRepo),
		new(MockCulturalGateway), new(MockLLMGateway), nil)

	_, err := svc.Generate(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestInsightsService_Generate_CacheHitSkipsUpstream(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()
	project := &model.Project{ID: projectID, OwnerID: ownerID, Title: "T", Description: "D"}

	projects := new(MockProjectRepo)
	insights := new(MockInsightsRepo)
	cache := new(MockCultureCacheRepo)
	culture := new(MockCulturalGateway)
	gw := new(MockLLMGateway)

	projects.On("GetOwned", mock.Anything, ownerID, projectID).Return(project, nil)
	cache.On("Lookup", mock.Anything, mock.AnythingOfType("string")).Return(&model.CulturalCacheEntry{
		RequestHash: "h",
		ProjectID:   projectID,
		Payload:     json.RawMessage(`{"results":{"entities":[{"name":"Cached Brand"}],"tags":[]}}`),
	}, nil)
	gw.On("Enabled").Return(true)
	gw.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(validInsightsJSON, nil)
	insights.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestInsightsService(projects, insights, cache, culture, gw, nil)

	out, err := svc.Generate(context.Background(), ownerID, projectID)
	require.NoError(t, err)
	assert.Empty(t, out.Warning)

	culture.AssertNotCalled(t, "TasteInsights", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestInsightsService_Generate_InvalidOutputFallsBackWithWarning(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()
	project := &model.Project{ID: projectID, OwnerID: ownerID, Title: "T", Description: "D"}

	projects := new(MockProjectRepo)
	insights := new(MockInsightsRepo)
	cache := new(MockCultureCacheRepo)
	culture := new(MockCulturalGateway)
	gw := new(MockLLMGateway)

	projects.On("GetOwned", mock.Anything, ownerID, projectID).Return(project, nil)
	cache.On("Lookup", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)
	culture.On("Enabled").Return(true)
	culture.On("TasteInsights", mock.Anything, mock.Anything).Return(testCulturalData(), nil)
	cache.On("Store", mock.Anything, mock.Anything).Return(nil)
	gw.On("Enabled").Return(true)
	// missing cultural_trends on both shape attempts
	gw.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(`{"audience_personas": [], "content_suggestions": []}`, nil)
	insights.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestInsightsService(projects, insights, cache, culture, gw, nil)

	out, err := svc.Generate(context.Background(), ownerID, projectID)
	require.NoError(t, err)
	assert.Contains(t, out.Warning, "fallback")
	assert.True(t, out.Result.Fallback)
	// fallback is full substitution, never a partial merge
	assert.NotEmpty(t, out.Result.AudiencePersonas)
	assert.NotEmpty(t, out.Result.CulturalTrends)
	assert.NotEmpty(t, out.Result.ContentSuggestions)

	gw.AssertNumberOfCalls(t, "Complete", 2)
}

func TestInsightsService_Generate_CulturalOutageSynthesizes(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()
	project := &model.Project{ID: projectID, OwnerID: ownerID, Title: "T", Description: "D"}

	projects := new(MockProjectRepo)
	insights := new(MockInsightsRepo)
	cache := new(MockCultureCacheRepo)
	culture := new(MockCulturalGateway)
	gw := new(MockLLMGateway)

	projects.On("GetOwned", mock.Anything, ownerID, projectID).Return(project, nil)
	cache.On("Lookup", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)
	culture.On("Enabled").Return(true)
	culture.On("TasteInsights", mock.Anything, mock.Anything).
		Return(nil, &upstream.Error{Provider: upstream.ProviderQloo, StatusCode: 503, Kind: upstream.KindTransient})
	gw.On("Enabled").Return(true)
	gw.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(validInsightsJSON, nil)
	insights.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestInsightsService(projects, insights, cache, culture, gw, nil)

	out, err := svc.Generate(context.Background(), ownerID, projectID)
	require.NoError(t, err)
	assert.Empty(t, out.Warning)

	culture.AssertNumberOfCalls(t, "TasteInsights", 3)
	cache.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestInsightsService_Generate_CulturalCredentialErrorSurfaces(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()
	project := &model.Project{ID: projectID, OwnerID: ownerID, Title: "T", Description: "D"}

	projects := new(MockProjectRepo)
	cache := new(MockCultureCacheRepo)
	culture := new(MockCulturalGateway)

	projects.On("GetOwned", mock.Anything, ownerID, projectID).Return(project, nil)
	cache.On("Lookup", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)
	culture.On("Enabled").Return(true)
	culture.On("TasteInsights", mock.Anything, mock.Anything).
		Return(nil, &upstream.Error{Provider: upstream.ProviderQloo, StatusCode: 401, Kind: upstream.KindCredential})

	svc := newTestInsightsService(projects, new(MockInsightsRepo), cache, culture, new(MockLLMGateway), nil)

	_, err := svc.Generate(context.Background(), ownerID, projectID)
	var ue *upstream.Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, upstream.KindCredential, ue.Kind)
	assert.Equal(t, upstream.ProviderQloo, ue.Provider)

	culture.AssertNumberOfCalls(t, "TasteInsights", 1)
}

func TestInsightsService_Generate_PersistenceFailureIsHard(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()
	project := &model.Project{ID: projectID, OwnerID: ownerID, Title: "T", Description: "D"}

	projects := new(MockProjectRepo)
	insights := new(MockInsightsRepo)
	cache := new(MockCultureCacheRepo)
	culture := new(MockCulturalGateway)
	gw := new(MockLLMGateway)

	projects.On("GetOwned", mock.Anything, ownerID, projectID).Return(project, nil)
	cache.On("Lookup", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)
	culture.On("Enabled").Return(false)
	gw.On("Enabled").Return(true)
	gw.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(validInsightsJSON, nil)
	insights.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	svc := newTestInsightsService(projects, insights, cache, culture, gw, nil)

	_, err := svc.Generate(context.Background(), ownerID, projectID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist insights")
}

func TestInsightsService_Generate_CacheErrorsDegradeToMiss(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()
	project := &model.Project{ID: projectID, OwnerID: ownerID, Title: "T", Description: "D"}

	projects := new(MockProjectRepo)
	insights := new(MockInsightsRepo)
	cache := new(MockCultureCacheRepo)
	culture := new(MockCulturalGateway)
	gw := new(MockLLMGateway)

	projects.On("GetOwned", mock.Anything, ownerID, projectID).Return(project, nil)
	cache.On("Lookup", mock.Anything, mock.AnythingOfType("string")).Return(nil, errors.New("redis down"))
	culture.On("Enabled").Return(true)
	culture.On("TasteInsights", mock.Anything, mock.Anything).Return(testCulturalData(), nil)
	cache.On("Store", mock.Anything, mock.Anything).Return(errors.New("redis still down"))
	gw.On("Enabled").Return(true)
	gw.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(validInsightsJSON, nil)
	insights.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestInsightsService(projects, insights, cache, culture, gw, nil)

	out, err := svc.Generate(context.Background(), ownerID, projectID)
	require.NoError(t, err)
	assert.Empty(t, out.Warning)
}

func TestInsightsService_Latest_NoResultIsNilNil(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()

	projects := new(MockProjectRepo)
	insights := new(MockInsightsRepo)

	projects.On("GetOwned", mock.Anything, ownerID, projectID).
		Return(&model.Project{ID: projectID, OwnerID: ownerID}, nil)
	insights.On("LatestByProject", mock.Anything, projectID).Return(nil, gorm.ErrRecordNotFound)

	svc := newTestInsightsService(projects, insights, new(MockCultureCacheRepo),
		new(MockCulturalGateway), new(MockLLMGateway), nil)

	res, err := svc.Latest(context.Background(), ownerID, projectID)
	require.NoError(t, err)
	assert.Nil(t, res)
}
