package repository

import (
	"context"
	"errors"
	"time"

	"github.com/therone18/SmartParking/internal/domain"
)

var ErrNotFound = errors.New("không tìm thấy bản ghi")
var ErrDuplicateEntry = errors.New("bản ghi đã tồn tại")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	// FindByReservationLocation trả về các user có ít nhất một reservation tại bãi đỗ.
	FindByReservationLocation(ctx context.Context, locationID int) ([]domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error)
	SetActive(ctx context.Context, id int, active bool) error
}

type ParkingLocationRepository interface {
	Create(ctx context.Context, loc *domain.ParkingLocation) (*domain.ParkingLocation, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingLocation, error)
	FindAll(ctx context.Context) ([]domain.ParkingLocation, error)
	Search(ctx context.Context, query string) ([]domain.ParkingLocation, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int) error
}

type ParkingSlotRepository interface {
	Create(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingSlot, error)
	FindByLocationID(ctx context.Context, locationID int) ([]domain.ParkingSlot, error)
	Update(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error)
	// UpdateAvailability chỉ ghi cờ is_available, dùng cho side effect của reservation.
	UpdateAvailability(ctx context.Context, id int, available bool) error
	// UpdateLocked chỉ ghi cờ locked (admin override), không đụng tới is_available.
	UpdateLocked(ctx context.Context, id int, locked bool) error
	Count(ctx context.Context) (int, error)
	CountByLocationID(ctx context.Context, locationID int) (int, error)
	Delete(ctx context.Context, id int) error
}

type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	FindByID(ctx context.Context, id int) (*domain.Reservation, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Reservation, error)
	FindByLocationID(ctx context.Context, locationID int) ([]domain.Reservation, error)
	FindAll(ctx context.Context) ([]domain.Reservation, error)
	Update(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	CountBySlotID(ctx context.Context, slotID int) (int, error)
	// MarkOverdue chuyển mọi reservation quá hạn (end_time < now, chưa check-out,
	// chưa Overdue) sang trạng thái Overdue. Trả về số bản ghi đã chuyển.
	MarkOverdue(ctx context.Context, now time.Time) (int, error)

	// Các truy vấn thống kê (chỉ đọc).
	CountByStatus(ctx context.Context, statuses ...domain.ReservationStatus) (int, error)
	CountByStatusPerLocation(ctx context.Context, status domain.ReservationStatus) ([]domain.StatusCountEntry, error)
	CountStartedOnDay(ctx context.Context, locationID int, day time.Time) (int, error)
	DailyStatusCounts(ctx context.Context, since time.Time) ([]domain.DailyReservationCount, error)
}
