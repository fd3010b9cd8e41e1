package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/havers0n/my-awesome-project-sub004/internal/service"
)

type LedgerHandler struct {
	service *service.LedgerService
}

func NewLedgerHandler(service *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

type appendEntryRequest struct {
	EntryType string     `json:"entry_type" binding:"required"`
	Change    int        `json:"change"`
	Timestamp *time.Time `json:"timestamp"`
}

func (h *LedgerHandler) AppendEntry(c *gin.Context) {
	productID := c.Param("productId")

	var req appendEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	var ts time.Time
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	entryType := domain.EntryType(strings.ToLower(strings.TrimSpace(req.EntryType)))
	entry, err := h.service.AppendEntry(c.Request.Context(), productID, entryType, req.Change, ts)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	state, err := h.service.GetCurrentState(c.Request.Context(), productID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entry":    entry,
		"quantity": state.Quantity,
		"status":   state.Status,
	})
}

func (h *LedgerHandler) GetState(c *gin.Context) {
	productID := c.Param("productId")

	state, err := h.service.GetCurrentState(c.Request.Context(), productID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *LedgerHandler) GetHistory(c *gin.Context) {
	productID := c.Param("productId")
	from, to, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.service.GetHistory(c.Request.Context(), productID, from, to)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"entries":    entries,
		"total":      len(entries),
	})
}

func (h *LedgerHandler) GetOutOfStockReport(c *gin.Context) {
	productID := c.Param("productId")
	from, to, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intervals, err := h.service.GetOutOfStockReport(c.Request.Context(), productID, from, to)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"intervals":  intervals,
		"total":      len(intervals),
	})
}

func (h *LedgerHandler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// parseWindow reads optional from/to RFC3339 query params. Missing params are
// open-ended bounds.
func parseWindow(c *gin.Context) (from, to time.Time, err error) {
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'from' timestamp, expected RFC3339")
		}
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'to' timestamp, expected RFC3339")
		}
	}
	return from, to, nil
}

func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, domain.ErrInvalidEntryType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAppendFailed):
		c.JSON(http.StatusConflict, gin.H{"error": "append failed after retries, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}
