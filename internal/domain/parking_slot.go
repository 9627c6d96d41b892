package domain

import "time"

type ParkingSlot struct {
	ID              int       `json:"id"`
	LocationID      int       `json:"location_id"`
	SlotToken       string    `json:"slot_token"` // UUID sinh tự động, không theo thứ tự
	FloorzoneNumber string    `json:"floorzone_number,omitempty"`
	IsAvailable     bool      `json:"is_available"`
	Locked          bool      `json:"locked"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ParkingSlotDTO struct {
	LocationID      int    `json:"location_id"`
	FloorzoneNumber string `json:"floorzone_number"`
}

type ParkingSlotUpdateDTO struct {
	LocationID      int    `json:"location_id"`
	FloorzoneNumber string `json:"floorzone_number"`
	IsAvailable     *bool  `json:"is_available"`
}
