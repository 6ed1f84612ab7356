package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastewire/tastewire/internal/modules/model"
)

// InsightsRepo persists generation results. Rows are append-only; there is no
// update path by design.
type InsightsRepo interface {
	Create(ctx context.Context, res *model.InsightsResult) error
	LatestByProject(ctx context.Context, projectID uuid.UUID) (*model.InsightsResult, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]model.InsightsResult, error)
}

type insightsRepo struct{ db *gorm.DB }

func NewInsightsRepo(db *gorm.DB) InsightsRepo {
	return &insightsRepo{db: db}
}

func (r *insightsRepo) Create(ctx context.Context, res *model.InsightsResult) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *insightsRepo) LatestByProject(ctx context.Context, projectID uuid.UUID) (*model.InsightsResult, error) {
	var res model.InsightsResult
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *insightsRepo) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]model.InsightsResult, error) {
	var items []model.InsightsResult
	return items, r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
}
