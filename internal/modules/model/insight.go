package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Demographics describes the audience slice a persona belongs to.
type Demographics struct {
	AgeRange  string   `json:"age_range"`
	Interests []string `json:"interests"`
	Platforms []string `json:"platforms"`
}

// Persona is one AI-generated audience profile.
type Persona struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Characteristics   []string           `json:"characteristics"`
	Demographics      Demographics       `json:"demographics"`
	CulturalAffinities []string          `json:"cultural_affinities,omitempty"`
	BehavioralPatterns []string          `json:"behavioral_patterns,omitempty"`
	AffinityScores    map[string]float64 `json:"affinity_scores,omitempty"`
}

// Trend is one cultural trend relevant to the project. Confidence is a whole
// number 0-100, never a fraction.
type Trend struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Confidence     int    `json:"confidence"`
	Impact         string `json:"impact"`
	Timeline       string `json:"timeline"`
	QlooConnection string `json:"qloo_connection,omitempty"`
}

// ContentSuggestion is one ready-to-adapt piece of campaign content.
type ContentSuggestion struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Platforms           []string `json:"platforms"`
	ContentType         string   `json:"content_type"`
	Copy                string   `json:"copy"`
	EngagementPotential string   `json:"engagement_potential"`
	CulturalTiming      string   `json:"cultural_timing,omitempty"`
}

// InsightsResult is one full generation for a project. Rows are append-only:
// "latest" is the most recently created row, and nothing mutates a result
// after it is written.
type InsightsResult struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index:ix_insights_project_id;index:ix_insights_project_created,priority:1" json:"project_id"`

	AudiencePersonas   PersonaList           `gorm:"type:jsonb;not null;serializer:json" json:"audience_personas"`
	CulturalTrends     TrendList             `gorm:"type:jsonb;not null;serializer:json" json:"cultural_trends"`
	ContentSuggestions ContentSuggestionList `gorm:"type:jsonb;not null;serializer:json" json:"content_suggestions"`

	// Raw Cultural-Graph payload the generation was grounded on.
	QlooData datatypes.JSON `gorm:"type:jsonb" json:"qloo_data,omitempty"`

	// Fallback marks results produced by deterministic synthesis after the
	// model output failed validation.
	Fallback bool `gorm:"not null;default:false" json:"fallback,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:ix_insights_project_created,priority:2,sort:desc" json:"created_at"`

	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (InsightsResult) TableName() string { return "insights_results" }

type PersonaList []Persona
type TrendList []Trend
type ContentSuggestionList []ContentSuggestion

func scanJSON(value interface{}, dst interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value")
	}
	return json.Unmarshal(b, dst)
}

func (l *PersonaList) Scan(value interface{}) error { return scanJSON(value, l) }
func (l PersonaList) Value() (driver.Value, error)  { return json.Marshal(l) }

func (l *TrendList) Scan(value interface{}) error { return scanJSON(value, l) }
func (l TrendList) Value() (driver.Value, error)  { return json.Marshal(l) }

func (l *ContentSuggestionList) Scan(value interface{}) error { return scanJSON(value, l) }
func (l ContentSuggestionList) Value() (driver.Value, error)  { return json.Marshal(l) }
