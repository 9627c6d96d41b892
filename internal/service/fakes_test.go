package service

import (
	"context"
	"sort"
	"time"

	"github.com/therone18/SmartParking/internal/domain"
	"github.com/therone18/SmartParking/internal/repository"
)

// Các fake repository in-memory dùng chung cho test của package service.

type fakeUserRepo struct {
	users  map[int]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*domain.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, repository.ErrDuplicateEntry
		}
	}
	u := *user
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = &u
	out := u
	return &out, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) FindByReservationLocation(_ context.Context, _ int) ([]domain.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *domain.User) (*domain.User, error) {
	existing, ok := r.users[user.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.Email = user.Email
	existing.UpdatedAt = time.Now().UTC()
	out := *existing
	return &out, nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id int, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = active
	return nil
}

type fakeLocationRepo struct {
	locations map[int]*domain.ParkingLocation
	nextID    int
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: map[int]*domain.ParkingLocation{}, nextID: 1}
}

func (r *fakeLocationRepo) Create(_ context.Context, loc *domain.ParkingLocation) (*domain.ParkingLocation, error) {
	l := *loc
	l.ID = r.nextID
	r.nextID++
	r.locations[l.ID] = &l
	out := l
	return &out, nil
}

func (r *fakeLocationRepo) FindByID(_ context.Context, id int) (*domain.ParkingLocation, error) {
	l, ok := r.locations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *l
	return &out, nil
}

func (r *fakeLocationRepo) FindAll(_ context.Context) ([]domain.ParkingLocation, error) {
	out := make([]domain.ParkingLocation, 0, len(r.locations))
	for _, l := range r.locations {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLocationRepo) Search(_ context.Context, _ string) ([]domain.ParkingLocation, error) {
	return nil, nil
}

func (r *fakeLocationRepo) Count(_ context.Context) (int, error) {
	return len(r.locations), nil
}

func (r *fakeLocationRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.locations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.locations, id)
	return nil
}

type fakeSlotRepo struct {
	slots  map[int]*domain.ParkingSlot
	nextID int
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: map[int]*domain.ParkingSlot{}, nextID: 1}
}

func (r *fakeSlotRepo) add(slot domain.ParkingSlot) *domain.ParkingSlot {
	slot.ID = r.nextID
	r.nextID++
	r.slots[slot.ID] = &slot
	return r.slots[slot.ID]
}

func (r *fakeSlotRepo) Create(_ context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error) {
	s := *slot
	s.ID = r.nextID
	r.nextID++
	r.slots[s.ID] = &s
	out := s
	return &out, nil
}

func (r *fakeSlotRepo) FindByID(_ context.Context, id int) (*domain.ParkingSlot, error) {
	s, ok := r.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *s
	return &out, nil
}

func (r *fakeSlotRepo) FindByLocationID(_ context.Context, locationID int) ([]domain.ParkingSlot, error) {
	out := []domain.ParkingSlot{}
	for _, s := range r.slots {
		if s.LocationID == locationID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSlotRepo) Update(_ context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error) {
	if _, ok := r.slots[slot.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	s := *slot
	r.slots[s.ID] = &s
	out := s
	return &out, nil
}

func (r *fakeSlotRepo) UpdateAvailability(_ context.Context, id int, available bool) error {
	s, ok := r.slots[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsAvailable = available
	return nil
}

func (r *fakeSlotRepo) UpdateLocked(_ context.Context, id int, locked bool) error {
	s, ok := r.slots[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Locked = locked
	return nil
}

func (r *fakeSlotRepo) Count(_ context.Context) (int, error) {
	return len(r.slots), nil
}

func (r *fakeSlotRepo) CountByLocationID(_ context.Context, locationID int) (int, error) {
	count := 0
	for _, s := range r.slots {
		if s.LocationID == locationID {
			count++
		}
	}
	return count, nil
}

func (r *fakeSlotRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.slots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.slots, id)
	return nil
}

type fakeReservationRepo struct {
	reservations map[int]*domain.Reservation
	// locationOf ánh xạ slot_id -> location_id cho các truy vấn thống kê.
	locationOf map[int]int
	nextID     int
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{
		reservations: map[int]*domain.Reservation{},
		locationOf:   map[int]int{},
		nextID:       1,
	}
}

func (r *fakeReservationRepo) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	for _, existing := range r.reservations {
		if existing.PlateNumber == res.PlateNumber {
			return nil, repository.ErrDuplicateEntry
		}
	}
	rv := *res
	rv.ID = r.nextID
	r.nextID++
	rv.CreatedAt = time.Now().UTC()
	rv.UpdatedAt = rv.CreatedAt
	r.reservations[rv.ID] = &rv
	out := rv
	return &out, nil
}

func (r *fakeReservationRepo) FindByID(_ context.Context, id int) (*domain.Reservation, error) {
	res, ok := r.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *res
	return &out, nil
}

func (r *fakeReservationRepo) FindByUserID(_ context.Context, userID int) ([]domain.Reservation, error) {
	out := []domain.Reservation{}
	for _, res := range r.reservations {
		if res.UserID == userID {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeReservationRepo) FindByLocationID(_ context.Context, locationID int) ([]domain.Reservation, error) {
	out := []domain.Reservation{}
	for _, res := range r.reservations {
		if r.locationOf[res.SlotID] == locationID {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeReservationRepo) FindAll(_ context.Context) ([]domain.Reservation, error) {
	out := make([]domain.Reservation, 0, len(r.reservations))
	for _, res := range r.reservations {
		out = append(out, *res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeReservationRepo) Update(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	if _, ok := r.reservations[res.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	rv := *res
	rv.UpdatedAt = time.Now().UTC()
	r.reservations[rv.ID] = &rv
	out := rv
	return &out, nil
}

func (r *fakeReservationRepo) CountBySlotID(_ context.Context, slotID int) (int, error) {
	count := 0
	for _, res := range r.reservations {
		if res.SlotID == slotID {
			count++
		}
	}
	return count, nil
}

func (r *fakeReservationRepo) MarkOverdue(_ context.Context, now time.Time) (int, error) {
	count := 0
	for _, res := range r.reservations {
		if res.EndTime.Before(now) && !res.LastParkOut.Valid && res.Status != domain.StatusOverdue {
			res.Status = domain.StatusOverdue
			count++
		}
	}
	return count, nil
}

func (r *fakeReservationRepo) CountByStatus(_ context.Context, statuses ...domain.ReservationStatus) (int, error) {
	count := 0
	for _, res := range r.reservations {
		for _, st := range statuses {
			if res.Status == st {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *fakeReservationRepo) CountByStatusPerLocation(_ context.Context, status domain.ReservationStatus) ([]domain.StatusCountEntry, error) {
	byLocation := map[int]int{}
	for _, res := range r.reservations {
		if res.Status == status {
			byLocation[r.locationOf[res.SlotID]]++
		}
	}
	out := []domain.StatusCountEntry{}
	for locID, count := range byLocation {
		out = append(out, domain.StatusCountEntry{LocationID: locID, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, nil
}

func (r *fakeReservationRepo) CountStartedOnDay(_ context.Context, locationID int, day time.Time) (int, error) {
	count := 0
	for _, res := range r.reservations {
		if r.locationOf[res.SlotID] != locationID {
			continue
		}
		if res.StartTime.UTC().Truncate(24 * time.Hour).Equal(day) {
			count++
		}
	}
	return count, nil
}

func (r *fakeReservationRepo) DailyStatusCounts(_ context.Context, since time.Time) ([]domain.DailyReservationCount, error) {
	type key struct {
		day    time.Time
		status domain.ReservationStatus
	}
	grouped := map[key]int{}
	for _, res := range r.reservations {
		day := res.StartTime.UTC().Truncate(24 * time.Hour)
		if day.Before(since) {
			continue
		}
		grouped[key{day, res.Status}]++
	}
	out := []domain.DailyReservationCount{}
	for k, count := range grouped {
		out = append(out, domain.DailyReservationCount{Day: k.day, Status: k.status, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

// fakeNotifier ghi lại các thông báo availability để test kiểm tra.
type fakeNotifier struct {
	events []slotEvent
}

type slotEvent struct {
	slotID    int
	available bool
}

func (n *fakeNotifier) NotifySlotAvailability(slotID int, available bool) {
	n.events = append(n.events, slotEvent{slotID: slotID, available: available})
}
