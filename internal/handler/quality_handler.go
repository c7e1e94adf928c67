package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/service"
	"github.com/gin-gonic/gin"
)

type QualityHandler struct {
	svc *service.QualityService
}

func NewQualityHandler(svc *service.QualityService) *QualityHandler {
	return &QualityHandler{svc: svc}
}

func windowDays(c *gin.Context) int {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	return days
}

// Summary returns yield, scrap rate and rework rate for the window.
// GET /api/v1/quality/summary?days=30
func (h *QualityHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), GetTenantID(c), windowDays(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary)
}

// Breakdown groups scrap by the requested dimension.
// GET /api/v1/quality/scrap-breakdown?group_by=reason&days=30
func (h *QualityHandler) Breakdown(c *gin.Context) {
	buckets, err := h.svc.Breakdown(c.Request.Context(), GetTenantID(c), windowDays(c), c.DefaultQuery("group_by", "reason"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"items": buckets})
}

// Pareto ranks scrap reasons with cumulative percentages.
// GET /api/v1/quality/pareto?top_n=10&days=30
func (h *QualityHandler) Pareto(c *gin.Context) {
	topN, _ := strconv.Atoi(c.DefaultQuery("top_n", "10"))
	entries, err := h.svc.Pareto(c.Request.Context(), GetTenantID(c), windowDays(c), topN)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"items": entries})
}

// Trend buckets production by day or ISO week.
// GET /api/v1/quality/trend?interval=day&days=30
func (h *QualityHandler) Trend(c *gin.Context) {
	buckets, err := h.svc.Trend(c.Request.Context(), GetTenantID(c), windowDays(c), c.DefaultQuery("interval", "day"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"items": buckets})
}

// Score returns the composite quality score.
// GET /api/v1/quality/score?days=30
func (h *QualityHandler) Score(c *gin.Context) {
	score, err := h.svc.Score(c.Request.Context(), GetTenantID(c), windowDays(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, score)
}

// Export streams the quality report workbook.
// GET /api/v1/quality/export?days=30
func (h *QualityHandler) Export(c *gin.Context) {
	f, filename, err := h.svc.ExportQualityReport(c.Request.Context(), GetTenantID(c), windowDays(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
