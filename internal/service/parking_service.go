package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/therone18/SmartParking/internal/domain"
	"github.com/therone18/SmartParking/internal/repository"

	"github.com/google/uuid"
)

var ErrLocationHasSlots = errors.New("không thể xóa bãi đỗ vì vẫn còn chỗ đỗ liên kết")
var ErrLocationHasReservations = errors.New("không thể xóa bãi đỗ vì có chỗ đỗ đang có reservation")
var ErrSlotHasReservations = errors.New("không thể xóa chỗ đỗ vì đã có reservation tham chiếu tới nó")

type ParkingService struct {
	locationRepo    repository.ParkingLocationRepository
	slotRepo        repository.ParkingSlotRepository
	reservationRepo repository.ReservationRepository
}

func NewParkingService(
	locationRepo repository.ParkingLocationRepository,
	slotRepo repository.ParkingSlotRepository,
	reservationRepo repository.ReservationRepository,
) *ParkingService {
	return &ParkingService{
		locationRepo:    locationRepo,
		slotRepo:        slotRepo,
		reservationRepo: reservationRepo,
	}
}

// --- ParkingLocation ---

func (s *ParkingService) CreateLocation(ctx context.Context, dto domain.ParkingLocationDTO) (*domain.ParkingLocation, error) {
	loc := &domain.ParkingLocation{
		Name:    dto.Name,
		Address: dto.Address,
	}
	if dto.GoogleMapsURL != "" {
		loc.GoogleMapsURL.SetValid(dto.GoogleMapsURL)
	}
	if dto.Latitude != nil {
		loc.Latitude.SetValid(*dto.Latitude)
	}
	if dto.Longitude != nil {
		loc.Longitude.SetValid(*dto.Longitude)
	}
	return s.locationRepo.Create(ctx, loc)
}

// GetLocationByID trả về bãi đỗ kèm danh sách slot của nó.
func (s *ParkingService) GetLocationByID(ctx context.Context, id int) (*domain.ParkingLocation, error) {
	loc, err := s.locationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	slots, err := s.slotRepo.FindByLocationID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lỗi khi lấy danh sách chỗ đỗ của bãi %d: %w", id, err)
	}
	loc.Slots = slots
	return loc, nil
}

func (s *ParkingService) GetAllLocations(ctx context.Context) ([]domain.ParkingLocation, error) {
	locations, err := s.locationRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range locations {
		slots, err := s.slotRepo.FindByLocationID(ctx, locations[i].ID)
		if err != nil {
			return nil, fmt.Errorf("lỗi khi lấy danh sách chỗ đỗ của bãi %d: %w", locations[i].ID, err)
		}
		locations[i].Slots = slots
	}
	return locations, nil
}

func (s *ParkingService) SearchLocations(ctx context.Context, query string) ([]domain.ParkingLocation, error) {
	if query == "" {
		return s.locationRepo.FindAll(ctx)
	}
	return s.locationRepo.Search(ctx, query)
}

func (s *ParkingService) DeleteLocation(ctx context.Context, id int) error {
	slots, err := s.slotRepo.FindByLocationID(ctx, id)
	if err != nil {
		return fmt.Errorf("lỗi khi kiểm tra các chỗ đỗ của bãi %d: %w", id, err)
	}
	for _, slot := range slots {
		count, err := s.reservationRepo.CountBySlotID(ctx, slot.ID)
		if err != nil {
			return fmt.Errorf("lỗi khi kiểm tra reservation của slot %d: %w", slot.ID, err)
		}
		if count > 0 {
			return ErrLocationHasReservations
		}
	}
	if len(slots) > 0 {
		return ErrLocationHasSlots
	}
	return s.locationRepo.Delete(ctx, id)
}

// GetLocationReservations trả về mọi reservation thuộc các slot của một bãi đỗ (admin).
func (s *ParkingService) GetLocationReservations(ctx context.Context, locationID int) ([]domain.Reservation, error) {
	if _, err := s.locationRepo.FindByID(ctx, locationID); err != nil {
		return nil, err
	}
	return s.reservationRepo.FindByLocationID(ctx, locationID)
}

// --- ParkingSlot ---

func (s *ParkingService) CreateSlot(ctx context.Context, dto domain.ParkingSlotDTO) (*domain.ParkingSlot, error) {
	// Kiểm tra location có tồn tại không
	if _, err := s.locationRepo.FindByID(ctx, dto.LocationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: bãi đỗ xe với ID %d không tồn tại", repository.ErrNotFound, dto.LocationID)
		}
		return nil, fmt.Errorf("lỗi khi kiểm tra bãi đỗ xe: %w", err)
	}

	slot := &domain.ParkingSlot{
		LocationID:      dto.LocationID,
		SlotToken:       uuid.NewString(), // Token ngẫu nhiên, không theo thứ tự
		FloorzoneNumber: dto.FloorzoneNumber,
		IsAvailable:     true,
		Locked:          false,
	}
	return s.slotRepo.Create(ctx, slot)
}

func (s *ParkingService) GetSlotByID(ctx context.Context, slotID int) (*domain.ParkingSlot, error) {
	return s.slotRepo.FindByID(ctx, slotID)
}

func (s *ParkingService) GetSlotsByLocationID(ctx context.Context, locationID int) ([]domain.ParkingSlot, error) {
	return s.slotRepo.FindByLocationID(ctx, locationID)
}

func (s *ParkingService) UpdateSlot(ctx context.Context, slotID int, dto domain.ParkingSlotUpdateDTO) (*domain.ParkingSlot, error) {
	slot, err := s.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		return nil, err
	}

	if dto.LocationID != 0 && dto.LocationID != slot.LocationID {
		if _, err := s.locationRepo.FindByID(ctx, dto.LocationID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: bãi đỗ xe mới với ID %d không tồn tại", repository.ErrNotFound, dto.LocationID)
			}
			return nil, fmt.Errorf("lỗi khi kiểm tra bãi đỗ xe mới: %w", err)
		}
		slot.LocationID = dto.LocationID
	}
	if dto.FloorzoneNumber != "" {
		slot.FloorzoneNumber = dto.FloorzoneNumber
	}
	if dto.IsAvailable != nil {
		slot.IsAvailable = *dto.IsAvailable
	}

	return s.slotRepo.Update(ctx, slot)
}

// DeleteSlot chỉ cho phép xóa khi không còn reservation nào tham chiếu tới slot,
// bất kể trạng thái của chúng.
func (s *ParkingService) DeleteSlot(ctx context.Context, slotID int) error {
	if _, err := s.slotRepo.FindByID(ctx, slotID); err != nil {
		return err
	}
	count, err := s.reservationRepo.CountBySlotID(ctx, slotID)
	if err != nil {
		return fmt.Errorf("lỗi khi kiểm tra reservation của slot %d: %w", slotID, err)
	}
	if count > 0 {
		return ErrSlotHasReservations
	}
	return s.slotRepo.Delete(ctx, slotID)
}

// LockSlot đặt cờ locked (admin override). Không đụng tới is_available.
func (s *ParkingService) LockSlot(ctx context.Context, slotID int) (*domain.ParkingSlot, error) {
	if err := s.slotRepo.UpdateLocked(ctx, slotID, true); err != nil {
		return nil, err
	}
	return s.slotRepo.FindByID(ctx, slotID)
}

func (s *ParkingService) UnlockSlot(ctx context.Context, slotID int) (*domain.ParkingSlot, error) {
	if err := s.slotRepo.UpdateLocked(ctx, slotID, false); err != nil {
		return nil, err
	}
	return s.slotRepo.FindByID(ctx, slotID)
}
