package domain

import (
	"gopkg.in/guregu/null.v4"
	"time"
)

type ReservationStatus string

const (
	StatusPending    ReservationStatus = "Pending"
	StatusProcessing ReservationStatus = "Processing"
	StatusReserved   ReservationStatus = "Reserved"
	StatusActive     ReservationStatus = "Active"
	StatusOverdue    ReservationStatus = "Overdue"
	StatusCheckedOut ReservationStatus = "Checked-out"
	StatusCancelled  ReservationStatus = "Cancelled"
	StatusComplete   ReservationStatus = "Complete"
)

// AllowedStatusUpdates là các trạng thái hợp lệ cho API cập nhật trạng thái.
// Staff được đặt bất kỳ giá trị nào trong danh sách; chủ reservation chỉ được "Cancelled".
var AllowedStatusUpdates = []ReservationStatus{
	StatusActive, StatusReserved, StatusOverdue, StatusCancelled, StatusComplete,
}

// TerminalStatuses giải phóng slot khi reservation chuyển vào.
var TerminalStatuses = []ReservationStatus{StatusCancelled, StatusComplete}

type Reservation struct {
	ID          int               `json:"id"`
	UserID      int               `json:"user_id"`
	SlotID      int               `json:"slot_id"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	LastParkIn  null.Time         `json:"last_park_in"`
	LastParkOut null.Time         `json:"last_park_out"`
	Status      ReservationStatus `json:"status"`
	ReceiptPath null.String       `json:"receipt"`
	VehicleMake string            `json:"vehicle_make"`
	VehicleModel string           `json:"vehicle_model"`
	PlateNumber string            `json:"plate_number"`
	VehicleType string            `json:"vehicle_type"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	Location *ParkingLocation `json:"location,omitempty"` // Không map vào DB, dùng để trả về API
	Slot     *ParkingSlot     `json:"slot,omitempty"`     // Không map vào DB
	UserName string           `json:"user_full_name,omitempty"`
}

type CreateReservationDTO struct {
	SlotID       int       `json:"slot_id" binding:"required"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
	VehicleMake  string    `json:"vehicle_make" binding:"required,max=50"`
	VehicleModel string    `json:"vehicle_model" binding:"required,max=50"`
	PlateNumber  string    `json:"plate_number" binding:"required,max=20"`
	VehicleType  string    `json:"vehicle_type" binding:"required,max=20"`
}

type UpdateReservationStatusDTO struct {
	Status string `json:"status"`
}
