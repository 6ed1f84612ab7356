package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tastewire/tastewire/internal/modules/model"
)

func TestProjectService_Create(t *testing.T) {
	ownerID := uuid.New()

	projects := new(MockProjectRepo)
	projects.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
		return p.OwnerID == ownerID && p.Title == "Launch"
	})).Return(nil)

	svc := NewProjectService(projects)

	project, err := svc.Create(context.Background(), ownerID, CreateProjectInput{
		Title:           "Launch",
		Description:     "New brand launch",
		Industry:        "fashion",
		CulturalDomains: []string{"music"},
		GeoTargets:      []string{"US"},
	})

	require.NoError(t, err)
	assert.Equal(t, ownerID, project.OwnerID)
	assert.Equal(t, []string{"music"}, []string(project.CulturalDomains))
	projects.AssertExpectations(t)
}

func TestProjectService_Get_NotFound(t *testing.T) {
	projects := new(MockProjectRepo)
	projects.On("GetOwned", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound)

	svc := NewProjectService(projects)

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_Patch_OnlyProvidedFieldsChange(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()
	existing := &model.Project{
		ID:          projectID,
		OwnerID:     ownerID,
		Title:       "Old title",
		Description: "Old description",
		Industry:    "fashion",
	}

	projects := new(MockProjectRepo)
	projects.On("GetOwned", mock.Anything, ownerID, projectID).Return(existing, nil)
	projects.On("Update", mock.Anything, mock.Anything).Return(nil)

	svc := NewProjectService(projects)

	newTitle := "New title"
	project, err := svc.Patch(context.Background(), ownerID, projectID, PatchProjectInput{Title: &newTitle})

	require.NoError(t, err)
	assert.Equal(t, "New title", project.Title)
	assert.Equal(t, "Old description", project.Description)
	assert.Equal(t, "fashion", project.Industry)
}

func TestProjectService_Delete_NotFound(t *testing.T) {
	projects := new(MockProjectRepo)
	projects.On("DeleteOwned", mock.Anything, mock.Anything, mock.Anything).
		Return(gorm.ErrRecordNotFound)

	svc := NewProjectService(projects)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
