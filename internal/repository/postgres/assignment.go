package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

// Имена частичных уникальных индексов из миграции 000001
const (
	activeReportIndex    = "uq_assignments_active_report"
	activeResponderIndex = "uq_assignments_active_responder"
)

type AssignmentRepository struct {
	db *pgxpool.Pool
}

func NewAssignmentRepository(db *pgxpool.Pool) service.AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, report_id, responder_id, eta_minutes, created_at, sync_status, terminated_at, termination_reason`

// Create создает назначение. Второе активное назначение отклоняется уникальными индексами.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	query := `
		INSERT INTO assignments (report_id, responder_id, eta_minutes, created_at, sync_status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id;
	`
	err := r.db.QueryRow(ctx, query,
		assignment.ReportID,
		assignment.ResponderID,
		assignment.ETAMinutes,
		assignment.CreatedAt,
		string(assignment.SyncStatus),
	).Scan(&assignment.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case activeReportIndex:
				return fmt.Errorf("report %d has an active assignment: %w", assignment.ReportID, service.ErrAlreadyAssigned)
			case activeResponderIndex:
				return fmt.Errorf("responder %d has an active assignment: %w", assignment.ResponderID, service.ErrConflict)
			}
		}
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1;`
	return r.getOne(ctx, fmt.Sprintf("assignment with id %d", id), query, id)
}

func (r *AssignmentRepository) GetActiveByReport(ctx context.Context, reportID int64) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE report_id = $1 AND terminated_at IS NULL;`
	return r.getOne(ctx, fmt.Sprintf("active assignment for report %d", reportID), query, reportID)
}

func (r *AssignmentRepository) GetLatestByReport(ctx context.Context, reportID int64) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE report_id = $1 ORDER BY id DESC LIMIT 1;`
	return r.getOne(ctx, fmt.Sprintf("assignment for report %d", reportID), query, reportID)
}

func (r *AssignmentRepository) GetActiveByResponder(ctx context.Context, responderID int64) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE responder_id = $1 AND terminated_at IS NULL;`
	return r.getOne(ctx, fmt.Sprintf("active assignment for responder %d", responderID), query, responderID)
}

func (r *AssignmentRepository) UpdateETA(ctx context.Context, id int64, etaMinutes int) error {
	query := `UPDATE assignments SET eta_minutes = $1 WHERE id = $2 AND terminated_at IS NULL;`
	cmdTag, err := r.db.Exec(ctx, query, etaMinutes, id)
	if err != nil {
		return fmt.Errorf("failed to update assignment eta: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.missingOrTerminated(ctx, id)
	}
	return nil
}

// Terminate закрывает активное назначение
func (r *AssignmentRepository) Terminate(ctx context.Context, id int64, reason string, at time.Time) error {
	query := `
		UPDATE assignments SET
			terminated_at = $1,
			termination_reason = $2
		WHERE id = $3 AND terminated_at IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query, at, reason, id)
	if err != nil {
		return fmt.Errorf("failed to terminate assignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.missingOrTerminated(ctx, id)
	}
	return nil
}

// MarkSynced отмечает доставку события; разрешено и для завершенных назначений
func (r *AssignmentRepository) MarkSynced(ctx context.Context, id int64) error {
	query := `UPDATE assignments SET sync_status = $1 WHERE id = $2;`
	cmdTag, err := r.db.Exec(ctx, query, string(models.SyncSynced), id)
	if err != nil {
		return fmt.Errorf("failed to mark assignment synced: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("assignment with id %d: %w", id, service.ErrNotFound)
	}
	return nil
}

func (r *AssignmentRepository) getOne(ctx context.Context, what, query string, arg int64) (*models.Assignment, error) {
	var (
		a          models.Assignment
		syncStatus string
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&a.ID,
		&a.ReportID,
		&a.ResponderID,
		&a.ETAMinutes,
		&a.CreatedAt,
		&syncStatus,
		&a.TerminatedAt,
		&a.TerminationReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", what, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	a.SyncStatus = models.SyncStatus(syncStatus)
	a.CreatedAt = a.CreatedAt.UTC()
	if a.TerminatedAt != nil {
		t := a.TerminatedAt.UTC()
		a.TerminatedAt = &t
	}
	return &a, nil
}

func (r *AssignmentRepository) missingOrTerminated(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("assignment %d is terminated: %w", id, service.ErrConflict)
}
