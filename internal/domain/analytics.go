package domain

import "time"

// SlotUtilizationEntry là thống kê sử dụng slot theo ngày cho một bãi đỗ.
type SlotUtilizationEntry struct {
	LocationID      int     `json:"location_id"`
	LocationName    string  `json:"location_name"`
	Date            string  `json:"date"` // YYYY-MM-DD
	TotalSlots      int     `json:"total_slots"`
	Reservations    int     `json:"reservations"`
	UtilizationRate float64 `json:"utilization_rate"` // Ví dụ: 0.75 cho 75%
}

type OverallUtilization struct {
	TotalLocations     int     `json:"total_locations"`
	TotalSlots         int     `json:"total_slots"`
	ActiveReservations int     `json:"active_reservations"`
	UtilizationRate    float64 `json:"utilization_rate"`
}

type DailySummaryEntry struct {
	Date              string         `json:"date"`
	TotalReservations int            `json:"total_reservations"`
	ByStatus          map[string]int `json:"by_status"`
}

type StatusCountEntry struct {
	LocationID   int    `json:"location_id"`
	LocationName string `json:"location_name"`
	Count        int    `json:"count"`
}

// DailyReservationCount là một dòng kết quả thô từ repository:
// số reservation bắt đầu trong một ngày, theo location và status.
type DailyReservationCount struct {
	LocationID int
	Day        time.Time
	Status     ReservationStatus
	Count      int
}
