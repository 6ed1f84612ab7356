package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastewire/tastewire/internal/middleware"
	"github.com/tastewire/tastewire/internal/modules/serializer"
	"github.com/tastewire/tastewire/internal/modules/service"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(svc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// Create godoc
//
//	@Summary		Create project
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			request	body	service.CreateProjectInput	true	"Project fields"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Failure		400	{object}	serializer.ErrorResponse
//	@Router			/project [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var in service.CreateProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, serializer.Err("title and description are required", err))
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.Err("Unauthorized", nil))
		return
	}

	project, err := h.svc.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.Err("Failed to create project", err))
		return
	}
	c.JSON(http.StatusOK, serializer.OK(project))
}

// List godoc
//
//	@Summary		List projects
//	@Tags			project
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Project}
//	@Router			/project [get]
func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.Err("Unauthorized", nil))
		return
	}

	projects, err := h.svc.List(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.Err("Failed to list projects", err))
		return
	}
	c.JSON(http.StatusOK, serializer.OK(projects))
}

// Get godoc
//
//	@Summary		Get project
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Failure		404	{object}	serializer.ErrorResponse
//	@Router			/project/{project_id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.Err("invalid project_id", err))
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.Err("Unauthorized", nil))
		return
	}

	project, err := h.svc.Get(c.Request.Context(), user.ID, projectID)
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, serializer.Err(msg, err))
		return
	}
	c.JSON(http.StatusOK, serializer.OK(project))
}

// Patch godoc
//
//	@Summary		Update project
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"
//	@Param			request		body	service.PatchProjectInput	true	"Fields to change"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Failure		404	{object}	serializer.ErrorResponse
//	@Router			/project/{project_id} [patch]
func (h *ProjectHandler) Patch(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.Err("invalid project_id", err))
		return
	}

	var in service.PatchProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, serializer.Err("invalid request body", err))
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.Err("Unauthorized", nil))
		return
	}

	project, err := h.svc.Patch(c.Request.Context(), user.ID, projectID, in)
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, serializer.Err(msg, err))
		return
	}
	c.JSON(http.StatusOK, serializer.OK(project))
}

// Delete godoc
//
//	@Summary		Delete project
//	@Description	Delete a project and its persisted insights
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Failure		404	{object}	serializer.ErrorResponse
//	@Router			/project/{project_id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.Err("invalid project_id", err))
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.Err("Unauthorized", nil))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), user.ID, projectID); err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, serializer.Err(msg, err))
		return
	}
	c.JSON(http.StatusOK, serializer.OK(nil))
}
