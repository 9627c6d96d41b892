package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/therone18/SmartParking/internal/repository"
	"github.com/therone18/SmartParking/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminUserHandler gom các thao tác quản lý tài khoản chỉ dành cho admin.
type AdminUserHandler struct {
	authService *service.AuthService
}

func NewAdminUserHandler(as *service.AuthService) *AdminUserHandler {
	return &AdminUserHandler{authService: as}
}

// GET /api/v1/users (admin)
func (h *AdminUserHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách người dùng"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// POST /api/v1/users/:id/deactivate (admin)
func (h *AdminUserHandler) DeactivateUser(c *gin.Context) {
	h.setActive(c, false, "Đã vô hiệu hóa tài khoản.")
}

// POST /api/v1/users/:id/reactivate (admin)
func (h *AdminUserHandler) ReactivateUser(c *gin.Context) {
	h.setActive(c, true, "Đã kích hoạt lại tài khoản.")
}

func (h *AdminUserHandler) setActive(c *gin.Context, active bool, message string) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID không hợp lệ"})
		return
	}

	if active {
		err = h.authService.ReactivateUser(c.Request.Context(), id)
	} else {
		err = h.authService.DeactivateUser(c.Request.Context(), id)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái tài khoản", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
