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

type pgParkingSlotRepository struct {
	db *sql.DB
}

func NewPgParkingSlotRepository(db *sql.DB) repository.ParkingSlotRepository {
	return &pgParkingSlotRepository{db: db}
}

func (r *pgParkingSlotRepository) Create(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error) {
	query := `INSERT INTO parking_slots (location_id, slot_token, floorzone_number, is_available, locked, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		slot.LocationID, slot.SlotToken,
		sql.NullString{String: slot.FloorzoneNumber, Valid: slot.FloorzoneNumber != ""},
		slot.IsAvailable, slot.Locked,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "parking_slots_slot_token_key" {
				return nil, fmt.Errorf("%w: slot token '%s' đã tồn tại", repository.ErrDuplicateEntry, slot.SlotToken)
			}
		}
		return nil, fmt.Errorf("ParkingSlotRepository.Create: %w", err)
	}
	slot.CreatedAt = slot.CreatedAt.In(time.UTC)
	slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
	return slot, nil
}

func (r *pgParkingSlotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSlot, error) {
	slot := &domain.ParkingSlot{}
	query := `SELECT id, location_id, slot_token, floorzone_number, is_available, locked, created_at, updated_at
	           FROM parking_slots WHERE id = $1`
	var floorzone sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&slot.ID, &slot.LocationID, &slot.SlotToken, &floorzone,
		&slot.IsAvailable, &slot.Locked, &slot.CreatedAt, &slot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSlotRepository.FindByID: %w", err)
	}
	if floorzone.Valid {
		slot.FloorzoneNumber = floorzone.String
	}
	slot.CreatedAt = slot.CreatedAt.In(time.UTC)
	slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
	return slot, nil
}

func (r *pgParkingSlotRepository) FindByLocationID(ctx context.Context, locationID int) ([]domain.ParkingSlot, error) {
	query := `SELECT id, location_id, slot_token, floorzone_number, is_available, locked, created_at, updated_at
	           FROM parking_slots WHERE location_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, locationID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSlotRepository.FindByLocationID: %w", err)
	}
	defer rows.Close()

	var slots []domain.ParkingSlot
	for rows.Next() {
		var slot domain.ParkingSlot
		var floorzone sql.NullString
		if err := rows.Scan(
			&slot.ID, &slot.LocationID, &slot.SlotToken, &floorzone,
			&slot.IsAvailable, &slot.Locked, &slot.CreatedAt, &slot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ParkingSlotRepository.FindByLocationID (scanning row): %w", err)
		}
		if floorzone.Valid {
			slot.FloorzoneNumber = floorzone.String
		}
		slot.CreatedAt = slot.CreatedAt.In(time.UTC)
		slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
		slots = append(slots, slot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSlotRepository.FindByLocationID (rows error): %w", err)
	}
	return slots, nil
}

func (r *pgParkingSlotRepository) Update(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error) {
	query := `UPDATE parking_slots
               SET location_id = $1, floorzone_number = $2, is_available = $3, locked = $4, updated_at = CURRENT_TIMESTAMP
               WHERE id = $5
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		slot.LocationID,
		sql.NullString{String: slot.FloorzoneNumber, Valid: slot.FloorzoneNumber != ""},
		slot.IsAvailable, slot.Locked, slot.ID,
	).Scan(&slot.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSlotRepository.Update: %w", err)
	}
	slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
	return slot, nil
}

func (r *pgParkingSlotRepository) UpdateAvailability(ctx context.Context, id int, available bool) error {
	query := `UPDATE parking_slots SET is_available = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, available, id)
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.UpdateAvailability: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.UpdateAvailability (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgParkingSlotRepository) UpdateLocked(ctx context.Context, id int, locked bool) error {
	query := `UPDATE parking_slots SET locked = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, locked, id)
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.UpdateLocked: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.UpdateLocked (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgParkingSlotRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_slots`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ParkingSlotRepository.Count: %w", err)
	}
	return count, nil
}

func (r *pgParkingSlotRepository) CountByLocationID(ctx context.Context, locationID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_slots WHERE location_id = $1`, locationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ParkingSlotRepository.CountByLocationID: %w", err)
	}
	return count, nil
}

func (r *pgParkingSlotRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parking_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
