package handler

import (
	"net/http"

	"github.com/therone18/SmartParking/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(as *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: as}
}

// GET /api/v1/summary/slot-utilization (admin)
func (h *AnalyticsHandler) SlotUtilizationSummary(c *gin.Context) {
	entries, err := h.analyticsService.SlotUtilizationSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tính thống kê sử dụng slot", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GET /api/v1/summary/slot-utilization/overall (admin)
func (h *AnalyticsHandler) OverallUtilization(c *gin.Context) {
	overall, err := h.analyticsService.OverallUtilization(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tính thống kê tổng thể", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, overall)
}

// GET /api/v1/summary/daily (admin)
func (h *AnalyticsHandler) DailySummary(c *gin.Context) {
	summary, err := h.analyticsService.DailySummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tính thống kê theo ngày", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GET /api/v1/summary/slot-active (admin)
func (h *AnalyticsHandler) ActiveSummary(c *gin.Context) {
	total, perLocation, err := h.analyticsService.ActiveSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi đếm reservation đang active", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_slots": total, "by_location": perLocation})
}

// GET /api/v1/summary/slot-overdue (admin)
func (h *AnalyticsHandler) OverdueSummary(c *gin.Context) {
	total, perLocation, err := h.analyticsService.OverdueSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi đếm reservation quá hạn", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"overdue_slots": total, "by_location": perLocation})
}
