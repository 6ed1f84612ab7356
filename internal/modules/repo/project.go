package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastewire/tastewire/internal/modules/model"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project) error
	// GetOwned returns gorm.ErrRecordNotFound both for absent projects and
	// for projects owned by someone else; callers cannot tell the two apart.
	GetOwned(ctx context.Context, ownerID, projectID uuid.UUID) (*model.Project, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	DeleteOwned(ctx context.Context, ownerID, projectID uuid.UUID) error
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) GetOwned(ctx context.Context, ownerID, projectID uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", projectID, ownerID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error) {
	var items []model.Project
	return items, r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&items).Error
}

func (r *projectRepo) Update(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *projectRepo) DeleteOwned(ctx context.Context, ownerID, projectID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", projectID, ownerID).
		Delete(&model.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
