package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch_system/internal/cache"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/sirupsen/logrus"
)

type ReportRepository struct {
	db     *pgxpool.Pool
	cache  cache.ReportCache
	logger *logrus.Logger
}

// NewReportRepository создает хранилище отчетов. Чтение по id идет через cache, запись статуса его инвалидирует.
func NewReportRepository(db *pgxpool.Pool, reportCache cache.ReportCache, logger *logrus.Logger) service.ReportRepository {
	return &ReportRepository{
		db:     db,
		cache:  reportCache,
		logger: logger,
	}
}

const reportColumns = `id, type, description, location_lat, location_lng, reporter_id, status, created_at`

// Create создает новую запись об отчете в бд
func (r *ReportRepository) Create(ctx context.Context, report *models.EmergencyReport) error {
	query := `
		INSERT INTO reports (type, description, location_lat, location_lng, reporter_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;
	`
	err := r.db.QueryRow(ctx, query,
		string(report.Type),
		report.Description,
		report.Location.Latitude,
		report.Location.Longitude,
		report.ReporterID,
		report.Status.String(),
		report.Timestamp,
	).Scan(&report.ID)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetByID возвращает отчет по id, сначала проверяя кеш
func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*models.EmergencyReport, error) {
	cached, err := r.cache.Get(ctx, id)
	if err != nil {
		r.logger.WithError(err).WithField("report_id", id).Warn("Failed to get report from cache, falling back to DB")
	}
	if cached != nil {
		return cached, nil
	}
	return r.GetByIDFresh(ctx, id)
}

// GetByIDFresh читает отчет из бд и перезаписывает кеш прочитанным значением.
// Запись поверх кеша вытесняет устаревший статус, который мог положить параллельный читатель.
func (r *ReportRepository) GetByIDFresh(ctx context.Context, id int64) (*models.EmergencyReport, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1;`
	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report with id %d: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get report by id: %w", err)
	}

	if err := r.cache.Set(ctx, report); err != nil {
		r.logger.WithError(err).WithField("report_id", id).Warn("Failed to set report cache")
	}
	return report, nil
}

// ListByReporter возвращает отчеты заявителя в порядке поступления
func (r *ReportRepository) ListByReporter(ctx context.Context, reporterID string) ([]*models.EmergencyReport, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE reporter_id = $1 ORDER BY id;`
	rows, err := r.db.Query(ctx, query, reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.EmergencyReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return reports, nil
}

// UpdateStatus меняет статус только если текущий равен from
func (r *ReportRepository) UpdateStatus(ctx context.Context, id int64, from, to models.Status) error {
	query := `UPDATE reports SET status = $1 WHERE id = $2 AND status = $3;`
	cmdTag, err := r.db.Exec(ctx, query, to.String(), id, from.String())
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}

	if err := r.cache.Invalidate(ctx, id); err != nil {
		r.logger.WithError(err).WithField("report_id", id).Warn("Failed to invalidate report cache")
	}

	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1);`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check report existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("report with id %d not found for update: %w", id, service.ErrNotFound)
		}
		return fmt.Errorf("report %d status is not %s: %w", id, from, service.ErrConflict)
	}
	return nil
}

func scanReport(row pgx.Row) (*models.EmergencyReport, error) {
	var (
		report models.EmergencyReport
		typ    string
		status string
	)
	err := row.Scan(
		&report.ID,
		&typ,
		&report.Description,
		&report.Location.Latitude,
		&report.Location.Longitude,
		&report.ReporterID,
		&status,
		&report.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	report.Type = models.EmergencyType(typ)
	parsed, ok := models.ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown status %q stored for report %d", status, report.ID)
	}
	report.Status = parsed
	report.Timestamp = report.Timestamp.UTC()
	return &report, nil
}
