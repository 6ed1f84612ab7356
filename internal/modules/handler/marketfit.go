package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastewire/tastewire/internal/gateway/upstream"
	"github.com/tastewire/tastewire/internal/modules/serializer"
	"github.com/tastewire/tastewire/internal/modules/service"
)

type MarketFitHandler struct {
	svc service.MarketFitService
}

func NewMarketFitHandler(svc service.MarketFitService) *MarketFitHandler {
	return &MarketFitHandler{svc: svc}
}

type MarketFitReq struct {
	Description   string `json:"description" binding:"required"`
	Industry      string `json:"industry" binding:"required"`
	TargetMarket  string `json:"targetMarket" binding:"required"`
	BusinessModel string `json:"businessModel" binding:"required"`
}

// Analyze godoc
//
//	@Summary		Market fit analysis
//	@Description	Run a single-pass market fit analysis; the report is returned as-is with no fallback
//	@Tags			insights
//	@Accept			json
//	@Produce		json
//	@Param			request	body	MarketFitReq	true	"Business to analyze"
//	@Security		BearerAuth
//	@Success		200	{object}	service.MarketFitReport
//	@Failure		400	{object}	serializer.ErrorResponse
//	@Failure		500	{object}	serializer.ErrorResponse
//	@Router			/insights/market-fit [post]
func (h *MarketFitHandler) Analyze(c *gin.Context) {
	var req MarketFitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ErrWithDetails("Missing required fields", err))
		return
	}

	report, err := h.svc.Analyze(c.Request.Context(), service.MarketFitInput{
		Description:   req.Description,
		Industry:      req.Industry,
		TargetMarket:  req.TargetMarket,
		BusinessModel: req.BusinessModel,
	})
	if err != nil {
		var ue *upstream.Error
		if errors.As(err, &ue) && ue.Kind == upstream.KindCredential {
			c.JSON(http.StatusUnauthorized, serializer.ErrWithDetails("OpenAI authentication failed", err))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.ErrWithDetails("Market fit analysis failed", err))
		return
	}

	// Raw report body, no success envelope.
	c.JSON(http.StatusOK, report)
}
