package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/therone18/SmartParking/internal/domain"
	"github.com/therone18/SmartParking/internal/repository"
)

var ErrSlotUnavailable = errors.New("chỗ đỗ đã được đặt, không còn trống")
var ErrSlotLocked = errors.New("chỗ đỗ đang bị admin khóa")
var ErrNotOwner = errors.New("không có quyền thao tác trên reservation này")
var ErrReceiptRequired = errors.New("chưa có file biên lai")
var ErrApprovalNotAllowed = errors.New("không thể duyệt reservation")
var ErrInvalidStatus = errors.New("trạng thái không hợp lệ")
var ErrStatusNotAllowed = errors.New("bạn chỉ được phép hủy reservation của mình")

// AvailabilityNotifier nhận thông báo mỗi khi cờ is_available của một slot thay đổi.
// WebSocket hub của admin dashboard implement interface này.
type AvailabilityNotifier interface {
	NotifySlotAvailability(slotID int, available bool)
}

type ReservationService struct {
	reservationRepo repository.ReservationRepository
	slotRepo        repository.ParkingSlotRepository
	notifier        AvailabilityNotifier
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	slotRepo repository.ParkingSlotRepository,
	notifier AvailabilityNotifier,
) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		slotRepo:        slotRepo,
		notifier:        notifier,
	}
}

func (s *ReservationService) setSlotAvailability(ctx context.Context, slotID int, available bool) error {
	if err := s.slotRepo.UpdateAvailability(ctx, slotID, available); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifySlotAvailability(slotID, available)
	}
	return nil
}

// CreateReservation tạo reservation mới với trạng thái Pending và đánh dấu slot hết trống.
// Việc kiểm tra is_available và ghi lại là hai bước tuần tự, không có khóa:
// hai request tạo cùng lúc trên một slot có thể cùng vượt qua bước kiểm tra.
func (s *ReservationService) CreateReservation(ctx context.Context, userID int, dto domain.CreateReservationDTO) (*domain.Reservation, error) {
	slot, err := s.slotRepo.FindByID(ctx, dto.SlotID)
	if err != nil {
		return nil, err
	}
	if slot.Locked {
		return nil, ErrSlotLocked
	}
	if !slot.IsAvailable {
		return nil, ErrSlotUnavailable
	}

	res := &domain.Reservation{
		UserID:       userID,
		SlotID:       dto.SlotID,
		StartTime:    dto.StartTime,
		EndTime:      dto.EndTime,
		Status:       domain.StatusPending,
		VehicleMake:  dto.VehicleMake,
		VehicleModel: dto.VehicleModel,
		PlateNumber:  dto.PlateNumber,
		VehicleType:  dto.VehicleType,
	}
	created, err := s.reservationRepo.Create(ctx, res)
	if err != nil {
		return nil, err
	}

	if err := s.setSlotAvailability(ctx, dto.SlotID, false); err != nil {
		return nil, fmt.Errorf("lỗi khi đánh dấu slot %d hết trống: %w", dto.SlotID, err)
	}
	return s.reservationRepo.FindByID(ctx, created.ID)
}

// GetReservation cho chủ reservation hoặc staff xem chi tiết.
func (s *ReservationService) GetReservation(ctx context.Context, id int, caller *domain.User) (*domain.Reservation, error) {
	res, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != caller.ID && !caller.IsStaff() {
		return nil, ErrNotOwner
	}
	return res, nil
}

func (s *ReservationService) ListMyReservations(ctx context.Context, userID int) ([]domain.Reservation, error) {
	return s.reservationRepo.FindByUserID(ctx, userID)
}

func (s *ReservationService) ListAllReservations(ctx context.Context) ([]domain.Reservation, error) {
	return s.reservationRepo.FindAll(ctx)
}

// CheckIn ghi lại thời điểm xe vào. Không thay đổi status.
func (s *ReservationService) CheckIn(ctx context.Context, id int, callerID int) (*domain.Reservation, error) {
	res, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != callerID {
		return nil, ErrNotOwner
	}
	res.LastParkIn.SetValid(time.Now().UTC())
	return s.reservationRepo.Update(ctx, res)
}

// CheckOut ghi lại thời điểm xe ra và trả slot về trạng thái trống.
// Gọi lặp lại chỉ cập nhật lại timestamp; slot vẫn trống.
func (s *ReservationService) CheckOut(ctx context.Context, id int, callerID int) (*domain.Reservation, error) {
	res, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != callerID {
		return nil, ErrNotOwner
	}
	res.LastParkOut.SetValid(time.Now().UTC())
	updated, err := s.reservationRepo.Update(ctx, res)
	if err != nil {
		return nil, err
	}
	if err := s.setSlotAvailability(ctx, res.SlotID, true); err != nil {
		return nil, fmt.Errorf("lỗi khi trả slot %d về trạng thái trống: %w", res.SlotID, err)
	}
	return updated, nil
}

// UpdateStatus áp dụng luật phân quyền bất đối xứng của API cập nhật trạng thái:
// staff được đặt mọi giá trị trong AllowedStatusUpdates, chủ reservation chỉ được "Cancelled".
func (s *ReservationService) UpdateStatus(ctx context.Context, id int, caller *domain.User, newStatus string) (*domain.Reservation, error) {
	res, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != caller.ID && !caller.IsStaff() {
		return nil, ErrNotOwner
	}

	if newStatus == "" {
		return nil, fmt.Errorf("%w: thiếu trường status", ErrInvalidStatus)
	}
	valid := false
	allowedNames := make([]string, len(domain.AllowedStatusUpdates))
	for i, st := range domain.AllowedStatusUpdates {
		allowedNames[i] = string(st)
		if string(st) == newStatus {
			valid = true
		}
	}
	if !valid {
		return nil, fmt.Errorf("%w: '%s'. Các giá trị hợp lệ: %s", ErrInvalidStatus, newStatus, strings.Join(allowedNames, ", "))
	}
	if !caller.IsStaff() && newStatus != string(domain.StatusCancelled) {
		return nil, ErrStatusNotAllowed
	}

	res.Status = domain.ReservationStatus(newStatus)
	updated, err := s.reservationRepo.Update(ctx, res)
	if err != nil {
		return nil, err
	}

	// Chuyển vào trạng thái kết thúc thì trả slot về trạng thái trống
	for _, terminal := range domain.TerminalStatuses {
		if updated.Status == terminal {
			if err := s.setSlotAvailability(ctx, res.SlotID, true); err != nil {
				return nil, fmt.Errorf("lỗi khi trả slot %d về trạng thái trống: %w", res.SlotID, err)
			}
			break
		}
	}
	return updated, nil
}

// UploadReceipt gắn tham chiếu biên lai và ép trạng thái về Processing.
func (s *ReservationService) UploadReceipt(ctx context.Context, id int, callerID int, receiptPath string) (*domain.Reservation, error) {
	res, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != callerID {
		return nil, ErrNotOwner
	}
	if receiptPath == "" {
		return nil, ErrReceiptRequired
	}
	res.ReceiptPath.SetValid(receiptPath)
	res.Status = domain.StatusProcessing
	return s.reservationRepo.Update(ctx, res)
}

// ApproveReservation chỉ hợp lệ khi status đúng bằng Processing VÀ đã có biên lai.
// Mọi trường hợp khác bị từ chối và không có gì thay đổi.
func (s *ReservationService) ApproveReservation(ctx context.Context, id int) (*domain.Reservation, error) {
	res, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != domain.StatusProcessing {
		return nil, fmt.Errorf("%w: chỉ reservation ở trạng thái 'Processing' mới được duyệt (hiện tại: '%s')", ErrApprovalNotAllowed, res.Status)
	}
	if !res.ReceiptPath.Valid || res.ReceiptPath.String == "" {
		return nil, fmt.Errorf("%w: chưa có biên lai đính kèm", ErrApprovalNotAllowed)
	}
	res.Status = domain.StatusReserved
	return s.reservationRepo.Update(ctx, res)
}

// CancelReservation là alias (deprecated) cho đường DELETE cũ: thay vì xóa cứng,
// chuyển status sang Cancelled và trả slot về trạng thái trống, giữ lại lịch sử.
func (s *ReservationService) CancelReservation(ctx context.Context, id int, caller *domain.User) error {
	res, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if res.UserID != caller.ID && !caller.IsStaff() {
		return ErrNotOwner
	}
	res.Status = domain.StatusCancelled
	if _, err := s.reservationRepo.Update(ctx, res); err != nil {
		return err
	}
	if err := s.setSlotAvailability(ctx, res.SlotID, true); err != nil {
		return fmt.Errorf("lỗi khi trả slot %d về trạng thái trống: %w", res.SlotID, err)
	}
	return nil
}

// SweepOverdue chuyển mọi reservation đã quá end_time mà chưa check-out sang Overdue.
// Không đụng tới is_available: xe được coi là vẫn đang đỗ trong slot.
func (s *ReservationService) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	count, err := s.reservationRepo.MarkOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Printf("Đã chuyển %d reservation quá hạn sang trạng thái Overdue", count)
	}
	return count, nil
}
