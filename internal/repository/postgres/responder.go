// Package postgres реализует хранилища поверх PostgreSQL (pgx).
// Условные переходы (доступность, статус) выполняются одним UPDATE ... WHERE с проверкой текущего значения.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

type ResponderRepository struct {
	db *pgxpool.Pool
}

func NewResponderRepository(db *pgxpool.Pool) service.ResponderRepository {
	return &ResponderRepository{db: db}
}

const responderColumns = `id, name, role, availability, location_lat, location_lng`

// Create создает новую запись о спасателе в бд
func (r *ResponderRepository) Create(ctx context.Context, responder *models.Responder) error {
	query := `
		INSERT INTO responders (name, role, availability, location_lat, location_lng)
		VALUES ($1, $2, $3, $4, $5) RETURNING id;
	`
	lat, lng := locationArgs(responder.Location)
	err := r.db.QueryRow(ctx, query,
		responder.Name,
		string(responder.Role),
		responder.Availability,
		lat,
		lng,
	).Scan(&responder.ID)
	if err != nil {
		return fmt.Errorf("failed to create responder: %w", err)
	}
	return nil
}

// GetByID возвращает спасателя по id
func (r *ResponderRepository) GetByID(ctx context.Context, id int64) (*models.Responder, error) {
	query := `SELECT ` + responderColumns + ` FROM responders WHERE id = $1;`
	responder, err := scanResponder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("responder with id %d: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get responder by id: %w", err)
	}
	return responder, nil
}

func (r *ResponderRepository) List(ctx context.Context) ([]*models.Responder, error) {
	query := `SELECT ` + responderColumns + ` FROM responders ORDER BY id;`
	return r.list(ctx, query)
}

func (r *ResponderRepository) ListAvailable(ctx context.Context) ([]*models.Responder, error) {
	query := `SELECT ` + responderColumns + ` FROM responders WHERE availability ORDER BY id;`
	return r.list(ctx, query)
}

// UpdateLocation перезаписывает координаты и возвращает обновленную запись
func (r *ResponderRepository) UpdateLocation(ctx context.Context, id int64, location models.Location) (*models.Responder, error) {
	query := `
		UPDATE responders SET
			location_lat = $1,
			location_lng = $2,
			updated_at = NOW()
		WHERE id = $3
		RETURNING ` + responderColumns + `;
	`
	responder, err := scanResponder(r.db.QueryRow(ctx, query, location.Latitude, location.Longitude, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("responder with id %d not found for update: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update responder location: %w", err)
	}
	return responder, nil
}

// SetAvailability меняет доступность только если текущее значение равно expected
func (r *ResponderRepository) SetAvailability(ctx context.Context, id int64, expected, value bool) error {
	query := `
		UPDATE responders SET
			availability = $1,
			updated_at = NOW()
		WHERE id = $2 AND availability = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, value, id, expected)
	if err != nil {
		return fmt.Errorf("failed to update responder availability: %w", err)
	}

	// Ни одной строки: либо спасателя нет, либо доступность уже другая
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM responders WHERE id = $1);`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check responder existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("responder with id %d: %w", id, service.ErrNotFound)
		}
		return fmt.Errorf("responder %d availability is not %t: %w", id, expected, service.ErrConflict)
	}
	return nil
}

func (r *ResponderRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM responders;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count responders: %w", err)
	}
	return count, nil
}

func (r *ResponderRepository) list(ctx context.Context, query string) ([]*models.Responder, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list responders: %w", err)
	}
	defer rows.Close()

	responders := make([]*models.Responder, 0)
	for rows.Next() {
		responder, err := scanResponder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan responder row: %w", err)
		}
		responders = append(responders, responder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return responders, nil
}

func scanResponder(row pgx.Row) (*models.Responder, error) {
	var (
		responder models.Responder
		role      string
		lat, lng  *float64
	)
	if err := row.Scan(&responder.ID, &responder.Name, &role, &responder.Availability, &lat, &lng); err != nil {
		return nil, err
	}
	responder.Role = models.Role(role)
	if lat != nil && lng != nil {
		responder.Location = &models.Location{Latitude: *lat, Longitude: *lng}
	}
	return &responder, nil
}

func locationArgs(location *models.Location) (lat, lng *float64) {
	if location == nil {
		return nil, nil
	}
	return &location.Latitude, &location.Longitude
}
