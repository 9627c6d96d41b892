package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/therone18/SmartParking/internal/domain"
	"github.com/therone18/SmartParking/internal/repository"
)

// AnalyticsService chỉ đọc: mọi con số là snapshot tại thời điểm truy vấn.
type AnalyticsService struct {
	locationRepo    repository.ParkingLocationRepository
	slotRepo        repository.ParkingSlotRepository
	reservationRepo repository.ReservationRepository
	nowFn           func() time.Time
}

func NewAnalyticsService(
	locationRepo repository.ParkingLocationRepository,
	slotRepo repository.ParkingSlotRepository,
	reservationRepo repository.ReservationRepository,
) *AnalyticsService {
	return &AnalyticsService{
		locationRepo:    locationRepo,
		slotRepo:        slotRepo,
		reservationRepo: reservationRepo,
		nowFn:           time.Now,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SlotUtilizationSummary tính tỷ lệ sử dụng slot theo ngày cho từng bãi đỗ
// trong 7 ngày gần nhất, từ ngày cũ đến ngày mới.
// Bãi không có slot nào thì utilization = 0, không bao giờ chia cho 0.
func (s *AnalyticsService) SlotUtilizationSummary(ctx context.Context) ([]domain.SlotUtilizationEntry, error) {
	locations, err := s.locationRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	today := s.nowFn().UTC().Truncate(24 * time.Hour)
	entries := []domain.SlotUtilizationEntry{}

	for _, loc := range locations {
		totalSlots, err := s.slotRepo.CountByLocationID(ctx, loc.ID)
		if err != nil {
			return nil, fmt.Errorf("lỗi khi đếm slot của bãi %d: %w", loc.ID, err)
		}

		for i := 6; i >= 0; i-- {
			day := today.AddDate(0, 0, -i)
			reservations, err := s.reservationRepo.CountStartedOnDay(ctx, loc.ID, day)
			if err != nil {
				return nil, fmt.Errorf("lỗi khi đếm reservation ngày %s của bãi %d: %w", day.Format("2006-01-02"), loc.ID, err)
			}

			utilization := 0.0
			if totalSlots > 0 {
				utilization = float64(reservations) / float64(totalSlots)
			}

			entries = append(entries, domain.SlotUtilizationEntry{
				LocationID:      loc.ID,
				LocationName:    loc.Name,
				Date:            day.Format("2006-01-02"),
				TotalSlots:      totalSlots,
				Reservations:    reservations,
				UtilizationRate: round2(utilization),
			})
		}
	}
	return entries, nil
}

// OverallUtilization: số reservation đang Reserved/Active chia cho tổng số slot toàn hệ thống.
func (s *AnalyticsService) OverallUtilization(ctx context.Context) (*domain.OverallUtilization, error) {
	totalLocations, err := s.locationRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalSlots, err := s.slotRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	activeReservations, err := s.reservationRepo.CountByStatus(ctx, domain.StatusReserved, domain.StatusActive)
	if err != nil {
		return nil, err
	}

	rate := 0.0
	if totalSlots > 0 {
		rate = float64(activeReservations) / float64(totalSlots)
	}

	return &domain.OverallUtilization{
		TotalLocations:     totalLocations,
		TotalSlots:         totalSlots,
		ActiveReservations: activeReservations,
		UtilizationRate:    round2(rate),
	}, nil
}

// DailySummary: số reservation mỗi ngày trong 7 ngày gần nhất, kèm phân rã theo status,
// từ ngày cũ đến ngày mới. Ngày không có reservation vẫn xuất hiện với count = 0.
func (s *AnalyticsService) DailySummary(ctx context.Context) ([]domain.DailySummaryEntry, error) {
	today := s.nowFn().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -6)

	counts, err := s.reservationRepo.DailyStatusCounts(ctx, since)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*domain.DailySummaryEntry)
	summary := make([]domain.DailySummaryEntry, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		summary = append(summary, domain.DailySummaryEntry{
			Date:     day,
			ByStatus: map[string]int{},
		})
		byDay[day] = &summary[len(summary)-1]
	}

	for _, c := range counts {
		entry, ok := byDay[c.Day.Format("2006-01-02")]
		if !ok {
			continue
		}
		entry.TotalReservations += c.Count
		entry.ByStatus[string(c.Status)] += c.Count
	}
	return summary, nil
}

// ActiveSummary: tổng số reservation đang Active, kèm phân rã theo bãi đỗ.
func (s *AnalyticsService) ActiveSummary(ctx context.Context) (int, []domain.StatusCountEntry, error) {
	return s.statusSummary(ctx, domain.StatusActive)
}

// OverdueSummary: tổng số reservation đang Overdue, kèm phân rã theo bãi đỗ.
func (s *AnalyticsService) OverdueSummary(ctx context.Context) (int, []domain.StatusCountEntry, error) {
	return s.statusSummary(ctx, domain.StatusOverdue)
}

func (s *AnalyticsService) statusSummary(ctx context.Context, status domain.ReservationStatus) (int, []domain.StatusCountEntry, error) {
	total, err := s.reservationRepo.CountByStatus(ctx, status)
	if err != nil {
		return 0, nil, err
	}
	perLocation, err := s.reservationRepo.CountByStatusPerLocation(ctx, status)
	if err != nil {
		return 0, nil, err
	}
	return total, perLocation, nil
}
