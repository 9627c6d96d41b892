package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therone18/SmartParking/internal/domain"
	"github.com/therone18/SmartParking/internal/repository"
)

func newReservationFixture() (*ReservationService, *fakeReservationRepo, *fakeSlotRepo, *fakeNotifier) {
	resRepo := newFakeReservationRepo()
	slotRepo := newFakeSlotRepo()
	notifier := &fakeNotifier{}
	svc := NewReservationService(resRepo, slotRepo, notifier)
	return svc, resRepo, slotRepo, notifier
}

func makeDTO(slotID int, plate string) domain.CreateReservationDTO {
	now := time.Now().UTC()
	return domain.CreateReservationDTO{
		SlotID:       slotID,
		StartTime:    now,
		EndTime:      now.Add(2 * time.Hour),
		VehicleMake:  "Toyota",
		VehicleModel: "Vios",
		PlateNumber:  plate,
		VehicleType:  "car",
	}
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()
	svc, _, slotRepo, notifier := newReservationFixture()
	slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, SlotToken: "tok-1", IsAvailable: true})

	res, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, res.Status)
	assert.Equal(t, 7, res.UserID)
	assert.False(t, slotRepo.slots[slot.ID].IsAvailable, "slot phải hết trống sau khi đặt")
	require.Len(t, notifier.events, 1)
	assert.Equal(t, slotEvent{slotID: slot.ID, available: false}, notifier.events[0])

	// Slot đã hết trống, đặt tiếp phải bị từ chối.
	_, err = svc.CreateReservation(ctx, 8, makeDTO(slot.ID, "51A-99999"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCreateReservationLockedSlot(t *testing.T) {
	ctx := context.Background()
	svc, _, slotRepo, _ := newReservationFixture()
	slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, SlotToken: "tok-1", IsAvailable: true, Locked: true})

	_, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
	assert.ErrorIs(t, err, ErrSlotLocked)
	assert.True(t, slotRepo.slots[slot.ID].IsAvailable, "slot bị khóa không được thay đổi trạng thái trống")
}

func TestCreateReservationSlotNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newReservationFixture()

	_, err := svc.CreateReservation(ctx, 7, makeDTO(42, "51A-12345"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetReservationOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, slotRepo, _ := newReservationFixture()
	slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})

	created, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
	require.NoError(t, err)

	owner := &domain.User{ID: 7, Role: "user"}
	stranger := &domain.User{ID: 8, Role: "user"}
	admin := &domain.User{ID: 9, Role: "admin"}

	_, err = svc.GetReservation(ctx, created.ID, owner)
	assert.NoError(t, err)

	_, err = svc.GetReservation(ctx, created.ID, stranger)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.GetReservation(ctx, created.ID, admin)
	assert.NoError(t, err)
}

func TestCheckInDoesNotTouchSlot(t *testing.T) {
	ctx := context.Background()
	svc, _, slotRepo, notifier := newReservationFixture()
	slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})

	created, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
	require.NoError(t, err)
	eventsBefore := len(notifier.events)

	updated, err := svc.CheckIn(ctx, created.ID, 7)
	require.NoError(t, err)
	assert.True(t, updated.LastParkIn.Valid)
	assert.Equal(t, created.Status, updated.Status, "check-in không đổi status")
	assert.False(t, slotRepo.slots[slot.ID].IsAvailable)
	assert.Len(t, notifier.events, eventsBefore)

	_, err = svc.CheckIn(ctx, created.ID, 8)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestCheckOutFreesSlotAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, slotRepo, notifier := newReservationFixture()
	slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})

	created, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
	require.NoError(t, err)
	require.False(t, slotRepo.slots[slot.ID].IsAvailable)

	first, err := svc.CheckOut(ctx, created.ID, 7)
	require.NoError(t, err)
	assert.True(t, first.LastParkOut.Valid)
	assert.True(t, slotRepo.slots[slot.ID].IsAvailable, "check-out phải trả slot về trạng thái trống")
	require.Len(t, notifier.events, 2)
	assert.Equal(t, slotEvent{slotID: slot.ID, available: true}, notifier.events[1])

	// Check-out lần hai chỉ ghi lại timestamp, slot vẫn trống.
	second, err := svc.CheckOut(ctx, created.ID, 7)
	require.NoError(t, err)
	assert.True(t, second.LastParkOut.Valid)
	assert.False(t, second.LastParkOut.Time.Before(first.LastParkOut.Time))
	assert.True(t, slotRepo.slots[slot.ID].IsAvailable)

	_, err = svc.CheckOut(ctx, created.ID, 8)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUploadReceiptMovesToProcessing(t *testing.T) {
	ctx := context.Background()
	svc, _, slotRepo, _ := newReservationFixture()
	slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})

	created, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
	require.NoError(t, err)

	updated, err := svc.UploadReceipt(ctx, created.ID, 7, "uploads/receipts/receipt_1.png")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status)
	assert.Equal(t, "uploads/receipts/receipt_1.png", updated.ReceiptPath.String)

	_, err = svc.UploadReceipt(ctx, created.ID, 8, "uploads/receipts/x.png")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.UploadReceipt(ctx, created.ID, 7, "")
	assert.ErrorIs(t, err, ErrReceiptRequired)
}

func TestApproveReservation(t *testing.T) {
	ctx := context.Background()
	svc, resRepo, slotRepo, _ := newReservationFixture()
	slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})

	created, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
	require.NoError(t, err)

	// Chưa upload biên lai, vẫn đang Pending: không được duyệt, không có gì thay đổi.
	_, err = svc.ApproveReservation(ctx, created.ID)
	assert.ErrorIs(t, err, ErrApprovalNotAllowed)
	assert.Equal(t, domain.StatusPending, resRepo.reservations[created.ID].Status)

	_, err = svc.UploadReceipt(ctx, created.ID, 7, "uploads/receipts/receipt_1.png")
	require.NoError(t, err)

	approved, err := svc.ApproveReservation(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReserved, approved.Status)

	// Đã rời khỏi Processing: duyệt lần hai bị từ chối.
	_, err = svc.ApproveReservation(ctx, created.ID)
	assert.ErrorIs(t, err, ErrApprovalNotAllowed)
	assert.Equal(t, domain.StatusReserved, resRepo.reservations[created.ID].Status)
}

func TestApproveReservationProcessingWithoutReceipt(t *testing.T) {
	ctx := context.Background()
	svc, resRepo, slotRepo, _ := newReservationFixture()
	slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})

	created, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
	require.NoError(t, err)

	// Ép status về Processing mà không có biên lai (trạng thái dữ liệu bất thường).
	res := resRepo.reservations[created.ID]
	res.Status = domain.StatusProcessing

	_, err = svc.ApproveReservation(ctx, created.ID)
	assert.ErrorIs(t, err, ErrApprovalNotAllowed)
	assert.Equal(t, domain.StatusProcessing, resRepo.reservations[created.ID].Status)
}

func TestUpdateStatusByStaff(t *testing.T) {
	ctx := context.Background()
	admin := &domain.User{ID: 99, Role: "admin"}

	for _, status := range domain.AllowedStatusUpdates {
		t.Run(string(status), func(t *testing.T) {
			svc, _, slotRepo, _ := newReservationFixture()
			slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})
			created, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
			require.NoError(t, err)

			updated, err := svc.UpdateStatus(ctx, created.ID, admin, string(status))
			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)

			// Cancelled và Complete trả slot về trạng thái trống, các status khác thì không.
			terminal := status == domain.StatusCancelled || status == domain.StatusComplete
			assert.Equal(t, terminal, slotRepo.slots[slot.ID].IsAvailable)
		})
	}
}

func TestUpdateStatusByOwner(t *testing.T) {
	ctx := context.Background()
	svc, _, slotRepo, _ := newReservationFixture()
	slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})
	created, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
	require.NoError(t, err)

	owner := &domain.User{ID: 7, Role: "user"}

	// Chủ reservation không được đặt các status quản trị.
	_, err = svc.UpdateStatus(ctx, created.ID, owner, string(domain.StatusActive))
	assert.ErrorIs(t, err, ErrStatusNotAllowed)

	// Nhưng được tự hủy.
	updated, err := svc.UpdateStatus(ctx, created.ID, owner, string(domain.StatusCancelled))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.True(t, slotRepo.slots[slot.ID].IsAvailable)
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	ctx := context.Background()
	svc, _, slotRepo, _ := newReservationFixture()
	slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})
	created, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
	require.NoError(t, err)

	admin := &domain.User{ID: 99, Role: "admin"}

	// Pending không nằm trong danh sách hợp lệ của API cập nhật status.
	_, err = svc.UpdateStatus(ctx, created.ID, admin, "Pending")
	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.Contains(t, err.Error(), "Active, Reserved, Overdue, Cancelled, Complete")

	_, err = svc.UpdateStatus(ctx, created.ID, admin, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	stranger := &domain.User{ID: 8, Role: "user"}
	_, err = svc.UpdateStatus(ctx, created.ID, stranger, string(domain.StatusCancelled))
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestCancelReservationAlias(t *testing.T) {
	ctx := context.Background()
	svc, resRepo, slotRepo, _ := newReservationFixture()
	slot := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})
	created, err := svc.CreateReservation(ctx, 7, makeDTO(slot.ID, "51A-12345"))
	require.NoError(t, err)

	stranger := &domain.User{ID: 8, Role: "user"}
	err = svc.CancelReservation(ctx, created.ID, stranger)
	assert.ErrorIs(t, err, ErrNotOwner)

	owner := &domain.User{ID: 7, Role: "user"}
	err = svc.CancelReservation(ctx, created.ID, owner)
	require.NoError(t, err)

	// Soft-cancel: bản ghi vẫn còn, chỉ đổi status và trả slot.
	assert.Equal(t, domain.StatusCancelled, resRepo.reservations[created.ID].Status)
	assert.True(t, slotRepo.slots[slot.ID].IsAvailable)
}

func TestSweepOverdue(t *testing.T) {
	ctx := context.Background()
	svc, resRepo, slotRepo, notifier := newReservationFixture()
	slot1 := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})
	slot2 := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})
	slot3 := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})

	expired, err := svc.CreateReservation(ctx, 7, makeDTO(slot1.ID, "51A-00001"))
	require.NoError(t, err)
	checkedOut, err := svc.CreateReservation(ctx, 7, makeDTO(slot2.ID, "51A-00002"))
	require.NoError(t, err)
	current, err := svc.CreateReservation(ctx, 7, makeDTO(slot3.ID, "51A-00003"))
	require.NoError(t, err)

	now := time.Now().UTC()
	resRepo.reservations[expired.ID].EndTime = now.Add(-time.Hour)
	resRepo.reservations[checkedOut.ID].EndTime = now.Add(-time.Hour)
	resRepo.reservations[checkedOut.ID].LastParkOut.SetValid(now.Add(-30 * time.Minute))
	resRepo.reservations[current.ID].EndTime = now.Add(time.Hour)

	eventsBefore := len(notifier.events)

	count, err := svc.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Equal(t, domain.StatusOverdue, resRepo.reservations[expired.ID].Status)
	assert.Equal(t, domain.StatusPending, resRepo.reservations[checkedOut.ID].Status, "đã check-out thì không bị đánh Overdue")
	assert.Equal(t, domain.StatusPending, resRepo.reservations[current.ID].Status)

	// Sweep không đụng tới is_available: xe vẫn đang đỗ trong slot.
	assert.False(t, slotRepo.slots[slot1.ID].IsAvailable)
	assert.Len(t, notifier.events, eventsBefore)

	// Chạy lại với cùng thời điểm: không có gì để chuyển thêm.
	count, err = svc.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDuplicatePlateNumber(t *testing.T) {
	ctx := context.Background()
	svc, _, slotRepo, _ := newReservationFixture()
	slot1 := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})
	slot2 := slotRepo.add(domain.ParkingSlot{LocationID: 1, IsAvailable: true})

	_, err := svc.CreateReservation(ctx, 7, makeDTO(slot1.ID, "51A-12345"))
	require.NoError(t, err)

	_, err = svc.CreateReservation(ctx, 8, makeDTO(slot2.ID, "51A-12345"))
	assert.True(t, errors.Is(err, repository.ErrDuplicateEntry))
	assert.True(t, slotRepo.slots[slot2.ID].IsAvailable, "tạo thất bại thì slot thứ hai vẫn trống")
}
