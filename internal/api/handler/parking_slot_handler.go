package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/therone18/SmartParking/internal/domain"
	"github.com/therone18/SmartParking/internal/repository"
	"github.com/therone18/SmartParking/internal/service"

	"github.com/gin-gonic/gin"
)

type ParkingSlotHandler struct {
	parkingService *service.ParkingService
}

func NewParkingSlotHandler(ps *service.ParkingService) *ParkingSlotHandler {
	return &ParkingSlotHandler{parkingService: ps}
}

// POST /api/v1/locations/:id/slots (admin)
func (h *ParkingSlotHandler) CreateSlot(c *gin.Context) {
	locationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location ID không hợp lệ"})
		return
	}

	var dto domain.ParkingSlotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dto.LocationID = locationID

	slot, err := h.parkingService.CreateSlot(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo chỗ đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// GET /api/v1/locations/:id/slots
func (h *ParkingSlotHandler) GetSlotsByLocation(c *gin.Context) {
	locationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location ID không hợp lệ"})
		return
	}

	slots, err := h.parkingService.GetSlotsByLocationID(c.Request.Context(), locationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách chỗ đỗ xe"})
		return
	}
	c.JSON(http.StatusOK, slots)
}

// PUT /api/v1/slots/:slot_id (admin)
func (h *ParkingSlotHandler) UpdateSlot(c *gin.Context) {
	slotID, err := strconv.Atoi(c.Param("slot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slot ID không hợp lệ"})
		return
	}

	var dto domain.ParkingSlotUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.parkingService.UpdateSlot(c.Request.Context(), slotID, dto)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ xe để cập nhật"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật chỗ đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, slot)
}

// DELETE /api/v1/slots/:slot_id (admin)
func (h *ParkingSlotHandler) DeleteSlot(c *gin.Context) {
	slotID, err := strconv.Atoi(c.Param("slot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slot ID không hợp lệ"})
		return
	}

	err = h.parkingService.DeleteSlot(c.Request.Context(), slotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ xe để xóa"})
			return
		}
		if errors.Is(err, service.ErrSlotHasReservations) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa chỗ đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// POST /api/v1/slots/:slot_id/lock (admin)
func (h *ParkingSlotHandler) LockSlot(c *gin.Context) {
	h.setLocked(c, true)
}

// POST /api/v1/slots/:slot_id/unlock (admin)
func (h *ParkingSlotHandler) UnlockSlot(c *gin.Context) {
	h.setLocked(c, false)
}

func (h *ParkingSlotHandler) setLocked(c *gin.Context, locked bool) {
	slotID, err := strconv.Atoi(c.Param("slot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slot ID không hợp lệ"})
		return
	}

	var slot *domain.ParkingSlot
	var action string
	if locked {
		slot, err = h.parkingService.LockSlot(c.Request.Context(), slotID)
		action = "khóa"
	} else {
		slot, err = h.parkingService.UnlockSlot(c.Request.Context(), slotID)
		action = "mở khóa"
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ xe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể " + action + " chỗ đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Đã %s slot %s.", action, slot.SlotToken),
		"slot":    slot,
	})
}
