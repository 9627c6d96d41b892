package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/therone18/SmartParking/internal/domain"
	"github.com/therone18/SmartParking/internal/repository"

	"github.com/lib/pq"
)

type pgReservationRepository struct {
	db *sql.DB
}

func NewPgReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &pgReservationRepository{db: db}
}

// Các cột join với slot, location và user để trả về chi tiết lồng nhau trong API.
const reservationSelect = `
	SELECT r.id, r.user_id, r.slot_id, r.start_time, r.end_time, r.last_park_in, r.last_park_out,
	       r.status, r.receipt_path, r.vehicle_make, r.vehicle_model, r.plate_number, r.vehicle_type,
	       r.created_at, r.updated_at,
	       s.location_id, s.slot_token, s.floorzone_number, s.is_available, s.locked,
	       l.name, l.address,
	       TRIM(CONCAT(u.first_name, ' ', u.last_name)), u.username
	FROM reservations r
	JOIN parking_slots s ON s.id = r.slot_id
	JOIN parking_locations l ON l.id = s.location_id
	JOIN users u ON u.id = r.user_id`

func (r *pgReservationRepository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	query := `INSERT INTO reservations
	           (user_id, slot_id, start_time, end_time, status, vehicle_make, vehicle_model, plate_number, vehicle_type, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		res.UserID, res.SlotID, res.StartTime, res.EndTime, res.Status,
		res.VehicleMake, res.VehicleModel, res.PlateNumber, res.VehicleType,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "reservations_plate_number_key" {
				return nil, fmt.Errorf("%w: biển số '%s' đã có reservation", repository.ErrDuplicateEntry, res.PlateNumber)
			}
		}
		return nil, fmt.Errorf("ReservationRepository.Create: %w", err)
	}
	res.CreatedAt = res.CreatedAt.In(time.UTC)
	res.UpdatedAt = res.UpdatedAt.In(time.UTC)
	return res, nil
}

func (r *pgReservationRepository) scanRow(scanner interface{ Scan(...interface{}) error }) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	slot := &domain.ParkingSlot{}
	loc := &domain.ParkingLocation{}
	var floorzone sql.NullString
	var fullName, username string

	err := scanner.Scan(
		&res.ID, &res.UserID, &res.SlotID, &res.StartTime, &res.EndTime, &res.LastParkIn, &res.LastParkOut,
		&res.Status, &res.ReceiptPath, &res.VehicleMake, &res.VehicleModel, &res.PlateNumber, &res.VehicleType,
		&res.CreatedAt, &res.UpdatedAt,
		&slot.LocationID, &slot.SlotToken, &floorzone, &slot.IsAvailable, &slot.Locked,
		&loc.Name, &loc.Address,
		&fullName, &username,
	)
	if err != nil {
		return nil, err
	}
	if floorzone.Valid {
		slot.FloorzoneNumber = floorzone.String
	}
	slot.ID = res.SlotID
	loc.ID = slot.LocationID
	res.Slot = slot
	res.Location = loc
	if fullName != "" {
		res.UserName = fullName
	} else {
		res.UserName = username
	}
	res.StartTime = res.StartTime.In(time.UTC)
	res.EndTime = res.EndTime.In(time.UTC)
	res.CreatedAt = res.CreatedAt.In(time.UTC)
	res.UpdatedAt = res.UpdatedAt.In(time.UTC)
	return res, nil
}

func (r *pgReservationRepository) FindByID(ctx context.Context, id int) (*domain.Reservation, error) {
	row := r.db.QueryRowContext(ctx, reservationSelect+` WHERE r.id = $1`, id)
	res, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindByID: %w", err)
	}
	return res, nil
}

func (r *pgReservationRepository) queryReservations(ctx context.Context, query string, args ...interface{}) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository (query): %w", err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		res, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("ReservationRepository (scanning row): %w", err)
		}
		reservations = append(reservations, *res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ReservationRepository (rows error): %w", err)
	}
	return reservations, nil
}

func (r *pgReservationRepository) FindByUserID(ctx context.Context, userID int) ([]domain.Reservation, error) {
	return r.queryReservations(ctx, reservationSelect+` WHERE r.user_id = $1 ORDER BY r.created_at DESC`, userID)
}

func (r *pgReservationRepository) FindByLocationID(ctx context.Context, locationID int) ([]domain.Reservation, error) {
	return r.queryReservations(ctx, reservationSelect+` WHERE s.location_id = $1 ORDER BY r.created_at DESC`, locationID)
}

func (r *pgReservationRepository) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	return r.queryReservations(ctx, reservationSelect+` ORDER BY r.created_at DESC`)
}

func (r *pgReservationRepository) Update(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	query := `UPDATE reservations
	           SET start_time = $1, end_time = $2, last_park_in = $3, last_park_out = $4,
	               status = $5, receipt_path = $6, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $7
	           RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		res.StartTime, res.EndTime, res.LastParkIn, res.LastParkOut,
		res.Status, res.ReceiptPath, res.ID,
	).Scan(&res.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.Update: %w", err)
	}
	res.UpdatedAt = res.UpdatedAt.In(time.UTC)
	return res, nil
}

func (r *pgReservationRepository) CountBySlotID(ctx context.Context, slotID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE slot_id = $1`, slotID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.CountBySlotID: %w", err)
	}
	return count, nil
}

func (r *pgReservationRepository) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	// UPDATE duy nhất nên chạy lặp lại hoặc chạy song song đều an toàn:
	// lần chạy không có bản ghi thỏa điều kiện là no-op.
	query := `UPDATE reservations
	           SET status = $1, updated_at = CURRENT_TIMESTAMP
	           WHERE end_time < $2 AND last_park_out IS NULL AND status <> $1`
	result, err := r.db.ExecContext(ctx, query, domain.StatusOverdue, now)
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.MarkOverdue: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.MarkOverdue (checking rows affected): %w", err)
	}
	return int(rowsAffected), nil
}

func (r *pgReservationRepository) CountByStatus(ctx context.Context, statuses ...domain.ReservationStatus) (int, error) {
	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE status = ANY($1)`, pq.Array(statusStrings),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.CountByStatus: %w", err)
	}
	return count, nil
}

func (r *pgReservationRepository) CountByStatusPerLocation(ctx context.Context, status domain.ReservationStatus) ([]domain.StatusCountEntry, error) {
	query := `SELECT l.id, l.name, COUNT(r.id)
	           FROM parking_locations l
	           JOIN parking_slots s ON s.location_id = l.id
	           JOIN reservations r ON r.slot_id = s.id AND r.status = $1
	           GROUP BY l.id, l.name
	           ORDER BY l.name`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.CountByStatusPerLocation: %w", err)
	}
	defer rows.Close()

	var entries []domain.StatusCountEntry
	for rows.Next() {
		var e domain.StatusCountEntry
		if err := rows.Scan(&e.LocationID, &e.LocationName, &e.Count); err != nil {
			return nil, fmt.Errorf("ReservationRepository.CountByStatusPerLocation (scanning row): %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ReservationRepository.CountByStatusPerLocation (rows error): %w", err)
	}
	return entries, nil
}

func (r *pgReservationRepository) CountStartedOnDay(ctx context.Context, locationID int, day time.Time) (int, error) {
	query := `SELECT COUNT(*)
	           FROM reservations r
	           JOIN parking_slots s ON s.id = r.slot_id
	           WHERE s.location_id = $1 AND DATE(r.start_time AT TIME ZONE 'UTC') = $2`
	var count int
	err := r.db.QueryRowContext(ctx, query, locationID, day.UTC().Format("2006-01-02")).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.CountStartedOnDay: %w", err)
	}
	return count, nil
}

func (r *pgReservationRepository) DailyStatusCounts(ctx context.Context, since time.Time) ([]domain.DailyReservationCount, error) {
	query := `SELECT s.location_id, DATE(r.start_time AT TIME ZONE 'UTC'), r.status, COUNT(*)
	           FROM reservations r
	           JOIN parking_slots s ON s.id = r.slot_id
	           WHERE r.start_time >= $1
	           GROUP BY s.location_id, DATE(r.start_time AT TIME ZONE 'UTC'), r.status
	           ORDER BY DATE(r.start_time AT TIME ZONE 'UTC')`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.DailyStatusCounts: %w", err)
	}
	defer rows.Close()

	var counts []domain.DailyReservationCount
	for rows.Next() {
		var c domain.DailyReservationCount
		if err := rows.Scan(&c.LocationID, &c.Day, &c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("ReservationRepository.DailyStatusCounts (scanning row): %w", err)
		}
		c.Day = c.Day.In(time.UTC)
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ReservationRepository.DailyStatusCounts (rows error): %w", err)
	}
	return counts, nil
}
