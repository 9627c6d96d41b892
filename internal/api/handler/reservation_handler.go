package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/therone18/SmartParking/internal/api/middleware"
	"github.com/therone18/SmartParking/internal/domain"
	"github.com/therone18/SmartParking/internal/repository"
	"github.com/therone18/SmartParking/internal/service"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	reservationService *service.ReservationService
	receiptDir         string
}

func NewReservationHandler(rs *service.ReservationService, receiptDir string) *ReservationHandler {
	return &ReservationHandler{reservationService: rs, receiptDir: receiptDir}
}

func (h *ReservationHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy reservation"})
	case errors.Is(err, service.ErrNotOwner), errors.Is(err, service.ErrStatusNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSlotUnavailable),
		errors.Is(err, service.ErrSlotLocked),
		errors.Is(err, service.ErrReceiptRequired),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrApprovalNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicateEntry):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi xử lý reservation", "details": err.Error()})
	}
}

// POST /api/v1/reservations
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Chưa xác thực"})
		return
	}

	var dto domain.CreateReservationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.reservationService.CreateReservation(c.Request.Context(), caller.ID, dto)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/v1/reservations/me
func (h *ReservationHandler) ListMyReservations(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Chưa xác thực"})
		return
	}

	reservations, err := h.reservationService.ListMyReservations(c.Request.Context(), caller.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách reservation"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// GET /api/v1/reservations (admin)
func (h *ReservationHandler) ListAllReservations(c *gin.Context) {
	reservations, err := h.reservationService.ListAllReservations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách reservation"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// GET /api/v1/reservations/:id
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Chưa xác thực"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation ID không hợp lệ"})
		return
	}

	res, err := h.reservationService.GetReservation(c.Request.Context(), id, caller)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/v1/reservations/:id/check-in
func (h *ReservationHandler) CheckIn(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Chưa xác thực"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation ID không hợp lệ"})
		return
	}

	res, err := h.reservationService.CheckIn(c.Request.Context(), id, caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã check-in", "checked_in_at": res.LastParkIn})
}

// POST /api/v1/reservations/:id/check-out
func (h *ReservationHandler) CheckOut(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Chưa xác thực"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation ID không hợp lệ"})
		return
	}

	res, err := h.reservationService.CheckOut(c.Request.Context(), id, caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Check-out thành công", "checked_out_at": res.LastParkOut})
}

// PUT /api/v1/reservations/:id/status
func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Chưa xác thực"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation ID không hợp lệ"})
		return
	}

	var dto domain.UpdateReservationStatusDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.reservationService.UpdateStatus(c.Request.Context(), id, caller, dto.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Đã cập nhật trạng thái thành '%s'.", res.Status),
		"status":  res.Status,
	})
}

// PATCH /api/v1/reservations/:id/receipt
// Nhận một file duy nhất dưới field "receipt"; không kiểm tra định dạng,
// chỉ yêu cầu file phải có mặt.
func (h *ReservationHandler) UploadReceipt(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Chưa xác thực"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation ID không hợp lệ"})
		return
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chưa upload biên lai"})
		return
	}

	if err := os.MkdirAll(h.receiptDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu biên lai", "details": err.Error()})
		return
	}
	filename := fmt.Sprintf("receipt_%d_%d%s", id, time.Now().UnixNano(), filepath.Ext(file.Filename))
	dst := filepath.Join(h.receiptDir, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu biên lai", "details": err.Error()})
		return
	}

	if _, err := h.reservationService.UploadReceipt(c.Request.Context(), id, caller.ID, dst); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Upload biên lai thành công"})
}

// POST /api/v1/reservations/:id/approve (admin)
func (h *ReservationHandler) ApproveReservation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation ID không hợp lệ"})
		return
	}

	res, err := h.reservationService.ApproveReservation(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DELETE /api/v1/reservations/:id
// Deprecated: alias của PUT /reservations/:id/status với status = "Cancelled".
// Không xóa cứng bản ghi, giữ lại lịch sử.
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Chưa xác thực"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation ID không hợp lệ"})
		return
	}

	if err := h.reservationService.CancelReservation(c.Request.Context(), id, caller); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã hủy reservation, slot được trả về trạng thái trống."})
}
