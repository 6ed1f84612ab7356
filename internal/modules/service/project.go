package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tastewire/tastewire/internal/modules/model"
	"github.com/tastewire/tastewire/internal/modules/repo"
)

type ProjectService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in CreateProjectInput) (*model.Project, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error)
	Get(ctx context.Context, ownerID, projectID uuid.UUID) (*model.Project, error)
	Patch(ctx context.Context, ownerID, projectID uuid.UUID, in PatchProjectInput) (*model.Project, error)
	Delete(ctx context.Context, ownerID, projectID uuid.UUID) error
}

type CreateProjectInput struct {
	Title           string   `json:"title" binding:"required,max=200"`
	Description     string   `json:"description" binding:"required"`
	Industry        string   `json:"industry,omitempty"`
	CulturalDomains []string `json:"cultural_domains,omitempty"`
	GeoTargets      []string `json:"geographic_targets,omitempty"`
}

// PatchProjectInput uses pointers so absent fields are left untouched.
type PatchProjectInput struct {
	Title           *string   `json:"title,omitempty" binding:"omitempty,max=200"`
	Description     *string   `json:"description,omitempty"`
	Industry        *string   `json:"industry,omitempty"`
	CulturalDomains *[]string `json:"cultural_domains,omitempty"`
	GeoTargets      *[]string `json:"geographic_targets,omitempty"`
}

type projectService struct {
	projects repo.ProjectRepo
}

func NewProjectService(projects repo.ProjectRepo) ProjectService {
	return &projectService{projects: projects}
}

func (s *projectService) Create(ctx context.Context, ownerID uuid.UUID, in CreateProjectInput) (*model.Project, error) {
	project := &model.Project{
		OwnerID:         ownerID,
		Title:           in.Title,
		Description:     in.Description,
		Industry:        in.Industry,
		CulturalDomains: datatypes.JSONSlice[string](in.CulturalDomains),
		GeoTargets:      datatypes.JSONSlice[string](in.GeoTargets),
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error) {
	return s.projects.ListByOwner(ctx, ownerID)
}

func (s *projectService) Get(ctx context.Context, ownerID, projectID uuid.UUID) (*model.Project, error) {
	project, err := s.projects.GetOwned(ctx, ownerID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *projectService) Patch(ctx context.Context, ownerID, projectID uuid.UUID, in PatchProjectInput) (*model.Project, error) {
	project, err := s.Get(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		project.Title = *in.Title
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Industry != nil {
		project.Industry = *in.Industry
	}
	if in.CulturalDomains != nil {
		project.CulturalDomains = datatypes.JSONSlice[string](*in.CulturalDomains)
	}
	if in.GeoTargets != nil {
		project.GeoTargets = datatypes.JSONSlice[string](*in.GeoTargets)
	}
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, ownerID, projectID uuid.UUID) error {
	if err := s.projects.DeleteOwned(ctx, ownerID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}
	return nil
}
