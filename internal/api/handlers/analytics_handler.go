package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/havers0n/my-awesome-project-sub004/internal/service"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

type analysisRequest struct {
	ProductIDs []string   `json:"product_ids"`
	From       *time.Time `json:"from"`
	To         *time.Time `json:"to"`
}

type xyzRequest struct {
	analysisRequest
	BucketHours int `json:"bucket_hours"`
}

type forecastRequest struct {
	ProductID     string   `json:"product_id" binding:"required"`
	HorizonDays   int      `json:"horizon_days" binding:"required,gt=0"`
	PriceOverride *float64 `json:"price_override"`
}

func (h *AnalyticsHandler) RunAbc(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.service.RunAbcAnalysis(c.Request.Context(), req.ProductIDs, req.window())
	if err != nil {
		respondAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) RunXyz(c *gin.Context) {
	var req xyzRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.BucketHours < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bucket_hours must be positive"})
		return
	}

	result, err := h.service.RunXyzAnalysis(c.Request.Context(), req.ProductIDs, req.window(), req.BucketHours)
	if err != nil {
		respondAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.PriceOverride != nil && *req.PriceOverride < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_override must not be negative"})
		return
	}

	result, err := h.service.Forecast(c.Request.Context(), req.ProductID, req.HorizonDays, req.PriceOverride)
	if err != nil {
		respondAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (r analysisRequest) window() domain.TimeRange {
	var window domain.TimeRange
	if r.From != nil {
		window.From = *r.From
	}
	if r.To != nil {
		window.To = *r.To
	}
	return window
}

func respondAnalyticsError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed", "details": err.Error()})
}
