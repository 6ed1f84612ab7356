package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastewire/tastewire/internal/modules/serializer"
	"github.com/tastewire/tastewire/internal/modules/service"
)

type DiscoveryHandler struct {
	svc service.DiscoveryService
}

func NewDiscoveryHandler(svc service.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{svc: svc}
}

type LiveDiscoveryReq struct {
	Description     string   `json:"description" binding:"required"`
	Industry        string   `json:"industry"`
	CulturalDomains []string `json:"cultural_domains"`
	GeoTargets      []string `json:"geographic_targets"`
	AgeRange        []int    `json:"age_range" binding:"omitempty,age_range"`
}

// Live godoc
//
//	@Summary		Live discovery
//	@Description	Run a lighter, uncached insight pass against ad-hoc input; nothing is persisted
//	@Tags			insights
//	@Accept			json
//	@Produce		json
//	@Param			request	body	LiveDiscoveryReq	true	"Ad-hoc brief"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.LiveInsights}
//	@Failure		400	{object}	serializer.ErrorResponse
//	@Router			/insights/live [post]
func (h *DiscoveryHandler) Live(c *gin.Context) {
	var req LiveDiscoveryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.Err("description is required", err))
		return
	}

	out, err := h.svc.Discover(c.Request.Context(), service.LiveDiscoveryInput{
		Description:     req.Description,
		Industry:        req.Industry,
		CulturalDomains: req.CulturalDomains,
		GeoTargets:      req.GeoTargets,
		AgeRange:        req.AgeRange,
	})
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, serializer.Err(msg, err))
		return
	}

	if out.Warning != "" {
		c.JSON(http.StatusOK, serializer.OKWithWarning(out, out.Warning))
		return
	}
	c.JSON(http.StatusOK, serializer.OK(out))
}
