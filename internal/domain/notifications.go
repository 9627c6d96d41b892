package domain

import "time"

// SlotAvailabilityNotification được đẩy qua WebSocket cho admin dashboard
// mỗi khi cờ is_available của một slot thay đổi.
type SlotAvailabilityNotification struct {
	Type        string    `json:"type"` // Luôn là "slot_availability"
	SlotID      int       `json:"slot_id"`
	IsAvailable bool      `json:"is_available"`
	Timestamp   time.Time `json:"timestamp"`
}
