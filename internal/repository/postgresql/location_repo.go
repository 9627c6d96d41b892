package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/therone18/SmartParking/internal/domain"
	"github.com/therone18/SmartParking/internal/repository"
)

type pgParkingLocationRepository struct {
	db *sql.DB
}

func NewPgParkingLocationRepository(db *sql.DB) repository.ParkingLocationRepository {
	return &pgParkingLocationRepository{db: db}
}

func (r *pgParkingLocationRepository) Create(ctx context.Context, loc *domain.ParkingLocation) (*domain.ParkingLocation, error) {
	query := `INSERT INTO parking_locations (name, address, google_maps_url, latitude, longitude, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		loc.Name, loc.Address, loc.GoogleMapsURL, loc.Latitude, loc.Longitude,
	).Scan(&loc.ID, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("ParkingLocationRepository.Create: %w", err)
	}
	loc.CreatedAt = loc.CreatedAt.In(time.UTC)
	loc.UpdatedAt = loc.UpdatedAt.In(time.UTC)
	return loc, nil
}

func (r *pgParkingLocationRepository) FindByID(ctx context.Context, id int) (*domain.ParkingLocation, error) {
	loc := &domain.ParkingLocation{}
	query := `SELECT id, name, address, google_maps_url, latitude, longitude, created_at, updated_at
	           FROM parking_locations WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&loc.ID, &loc.Name, &loc.Address, &loc.GoogleMapsURL, &loc.Latitude, &loc.Longitude,
		&loc.CreatedAt, &loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingLocationRepository.FindByID: %w", err)
	}
	loc.CreatedAt = loc.CreatedAt.In(time.UTC)
	loc.UpdatedAt = loc.UpdatedAt.In(time.UTC)
	return loc, nil
}

func (r *pgParkingLocationRepository) FindAll(ctx context.Context) ([]domain.ParkingLocation, error) {
	query := `SELECT id, name, address, google_maps_url, latitude, longitude, created_at, updated_at
	           FROM parking_locations ORDER BY name`
	return r.queryLocations(ctx, query)
}

func (r *pgParkingLocationRepository) Search(ctx context.Context, q string) ([]domain.ParkingLocation, error) {
	query := `SELECT id, name, address, google_maps_url, latitude, longitude, created_at, updated_at
	           FROM parking_locations WHERE name ILIKE '%' || $1 || '%' ORDER BY name`
	return r.queryLocations(ctx, query, q)
}

func (r *pgParkingLocationRepository) queryLocations(ctx context.Context, query string, args ...interface{}) ([]domain.ParkingLocation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ParkingLocationRepository (query): %w", err)
	}
	defer rows.Close()

	var locations []domain.ParkingLocation
	for rows.Next() {
		var loc domain.ParkingLocation
		if err := rows.Scan(
			&loc.ID, &loc.Name, &loc.Address, &loc.GoogleMapsURL, &loc.Latitude, &loc.Longitude,
			&loc.CreatedAt, &loc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ParkingLocationRepository (scanning row): %w", err)
		}
		loc.CreatedAt = loc.CreatedAt.In(time.UTC)
		loc.UpdatedAt = loc.UpdatedAt.In(time.UTC)
		locations = append(locations, loc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingLocationRepository (rows error): %w", err)
	}
	return locations, nil
}

func (r *pgParkingLocationRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_locations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ParkingLocationRepository.Count: %w", err)
	}
	return count, nil
}

func (r *pgParkingLocationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parking_locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ParkingLocationRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingLocationRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
