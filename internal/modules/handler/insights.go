package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastewire/tastewire/internal/middleware"
	"github.com/tastewire/tastewire/internal/modules/serializer"
	"github.com/tastewire/tastewire/internal/modules/service"
)

type InsightsHandler struct {
	svc service.InsightsService
}

func NewInsightsHandler(svc service.InsightsService) *InsightsHandler {
	return &InsightsHandler{svc: svc}
}

type GenerateInsightsReq struct {
	ProjectID uuid.UUID `json:"project_id" binding:"required"`
}

// Generate godoc
//
//	@Summary		Generate insights
//	@Description	Run the deep insight pipeline for a project: cultural data (cached 30 min), model synthesis, validation with deterministic fallback, persistence
//	@Tags			insights
//	@Accept			json
//	@Produce		json
//	@Param			request	body	GenerateInsightsReq	true	"Project to analyze"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.InsightsResult}
//	@Failure		400	{object}	serializer.ErrorResponse
//	@Failure		404	{object}	serializer.ErrorResponse
//	@Failure		429	{object}	serializer.ErrorResponse
//	@Router			/insights/generate [post]
func (h *InsightsHandler) Generate(c *gin.Context) {
	var req GenerateInsightsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.Err("project_id is required", err))
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.Err("Unauthorized", nil))
		return
	}

	out, err := h.svc.Generate(c.Request.Context(), user.ID, req.ProjectID)
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, serializer.Err(msg, err))
		return
	}

	if out.Warning != "" {
		c.JSON(http.StatusOK, serializer.OKWithWarning(out.Result, out.Warning))
		return
	}
	c.JSON(http.StatusOK, serializer.OK(out.Result))
}

// Latest godoc
//
//	@Summary		Latest insights
//	@Description	Fetch the most recent persisted insights result for a project
//	@Tags			insights
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.InsightsResult}
//	@Failure		404	{object}	serializer.ErrorResponse
//	@Router			/project/{project_id}/insights [get]
func (h *InsightsHandler) Latest(c *gin.Context) {
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

	result, err := h.svc.Latest(c.Request.Context(), user.ID, projectID)
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, serializer.Err(msg, err))
		return
	}
	c.JSON(http.StatusOK, serializer.OK(result))
}
