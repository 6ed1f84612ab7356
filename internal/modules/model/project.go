package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Project describes a product/audience a user wants insights for. Identity is
// immutable; the descriptive fields are patchable. Deleting a project cascades
// to its insight results.
type Project struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index:ix_projects_owner_id" json:"owner_id"`

	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Industry    string `gorm:"type:text" json:"industry,omitempty"`

	CulturalDomains datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"cultural_domains"`
	GeoTargets      datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"geographical_targets"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Owner *User `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Project <-> InsightsResult
	Insights []InsightsResult `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Project) TableName() string { return "projects" }
