package domain

import (
	"gopkg.in/guregu/null.v4"
	"time"
)

type ParkingLocation struct {
	ID            int         `json:"id"`
	Name          string      `json:"name" binding:"required"`
	Address       string      `json:"address,omitempty"`
	GoogleMapsURL null.String `json:"google_maps_url"`
	Latitude      null.Float  `json:"latitude"`
	Longitude     null.Float  `json:"longitude"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Slots []ParkingSlot `json:"slots,omitempty"` // Không map vào DB, dùng để trả về API
}

type ParkingLocationDTO struct {
	Name          string   `json:"name" binding:"required"`
	Address       string   `json:"address"`
	GoogleMapsURL string   `json:"google_maps_url"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}
