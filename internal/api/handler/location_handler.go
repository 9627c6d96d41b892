package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/therone18/SmartParking/internal/domain"
	"github.com/therone18/SmartParking/internal/repository"
	"github.com/therone18/SmartParking/internal/service"

	"github.com/gin-gonic/gin"
)

type ParkingLocationHandler struct {
	parkingService *service.ParkingService
	authService    *service.AuthService
}

func NewParkingLocationHandler(ps *service.ParkingService, as *service.AuthService) *ParkingLocationHandler {
	return &ParkingLocationHandler{parkingService: ps, authService: as}
}

// POST /api/v1/locations
func (h *ParkingLocationHandler) CreateLocation(c *gin.Context) {
	var dto domain.ParkingLocationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loc, err := h.parkingService.CreateLocation(c.Request.Context(), dto)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo bãi đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, loc)
}

// GET /locations
func (h *ParkingLocationHandler) GetAllLocations(c *gin.Context) {
	locations, err := h.parkingService.GetAllLocations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách bãi đỗ xe"})
		return
	}
	c.JSON(http.StatusOK, locations)
}

// GET /locations/:id
func (h *ParkingLocationHandler) GetLocationByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location ID không hợp lệ"})
		return
	}

	loc, err := h.parkingService.GetLocationByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bãi đỗ xe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin bãi đỗ xe"})
		return
	}
	c.JSON(http.StatusOK, loc)
}

// GET /locations/search?q=
func (h *ParkingLocationHandler) SearchLocations(c *gin.Context) {
	query := c.Query("q")
	locations, err := h.parkingService.SearchLocations(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tìm kiếm bãi đỗ xe"})
		return
	}
	c.JSON(http.StatusOK, locations)
}

// DELETE /api/v1/locations/:id
func (h *ParkingLocationHandler) DeleteLocation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location ID không hợp lệ"})
		return
	}

	err = h.parkingService.DeleteLocation(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bãi đỗ xe để xóa"})
			return
		}
		if errors.Is(err, service.ErrLocationHasSlots) || errors.Is(err, service.ErrLocationHasReservations) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa bãi đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã xóa bãi đỗ xe"})
}

// GET /api/v1/locations/:id/reservations (admin)
func (h *ParkingLocationHandler) GetLocationReservations(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location ID không hợp lệ"})
		return
	}

	reservations, err := h.parkingService.GetLocationReservations(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bãi đỗ xe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách reservation"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// GET /api/v1/locations/:id/users (admin): các user từng đặt chỗ tại bãi này
func (h *ParkingLocationHandler) GetLocationUsers(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location ID không hợp lệ"})
		return
	}

	users, err := h.authService.ListUsersByLocation(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách người dùng"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GET /api/v1/locations/dashboard (admin): toàn bộ bãi đỗ kèm slot
func (h *ParkingLocationHandler) GetLocationDashboard(c *gin.Context) {
	locations, err := h.parkingService.GetAllLocations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy dashboard bãi đỗ xe"})
		return
	}
	c.JSON(http.StatusOK, locations)
}
