package service

import (
	"context"
	"time"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

// ResponderRepository определяет контракт хранилища спасателей
type ResponderRepository interface {
	Create(ctx context.Context, responder *models.Responder) error
	GetByID(ctx context.Context, id int64) (*models.Responder, error)
	List(ctx context.Context) ([]*models.Responder, error)
	ListAvailable(ctx context.Context) ([]*models.Responder, error)
	UpdateLocation(ctx context.Context, id int64, location models.Location) (*models.Responder, error)
	// SetAvailability атомарно меняет доступность, если текущее значение равно expected, иначе ErrConflict
	SetAvailability(ctx context.Context, id int64, expected, value bool) error
	Count(ctx context.Context) (int, error)
}

// ReportRepository определяет контракт хранилища отчетов
type ReportRepository interface {
	Create(ctx context.Context, report *models.EmergencyReport) error
	GetByID(ctx context.Context, id int64) (*models.EmergencyReport, error)
	// GetByIDFresh читает отчет мимо кеша. Проверки переходов статуса опираются только на него.
	GetByIDFresh(ctx context.Context, id int64) (*models.EmergencyReport, error)
	ListByReporter(ctx context.Context, reporterID string) ([]*models.EmergencyReport, error)
	// UpdateStatus атомарно меняет статус from → to, иначе ErrConflict
	UpdateStatus(ctx context.Context, id int64, from, to models.Status) error
}

// AssignmentRepository определяет контракт хранилища назначений.
// Create отклоняет второе активное назначение на отчет (ErrAlreadyAssigned) и на спасателя (ErrConflict).
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id int64) (*models.Assignment, error)
	GetActiveByReport(ctx context.Context, reportID int64) (*models.Assignment, error)
	GetLatestByReport(ctx context.Context, reportID int64) (*models.Assignment, error)
	GetActiveByResponder(ctx context.Context, responderID int64) (*models.Assignment, error)
	UpdateETA(ctx context.Context, id int64, etaMinutes int) error
	Terminate(ctx context.Context, id int64, reason string, at time.Time) error
	MarkSynced(ctx context.Context, id int64) error
}

// LocationListener вызывается после обновления координат спасателя
type LocationListener func(ctx context.Context, responder *models.Responder)

// ResponderService - реестр спасателей
type ResponderService interface {
	RegisterResponder(ctx context.Context, responder *models.Responder) error
	GetResponder(ctx context.Context, id int64) (*models.Responder, error)
	ListResponders(ctx context.Context) ([]*models.Responder, error)
	ListAvailable(ctx context.Context, roles []models.Role) ([]*models.Responder, error)
	UpdateLocation(ctx context.Context, id int64, lat, lng float64) (*models.Responder, error)
	Reserve(ctx context.Context, id int64) error
	Release(ctx context.Context, id int64) error
	OnLocationChange(listener LocationListener)
}

// ReportService определяет контракт приема и чтения отчетов о происшествиях
type ReportService interface {
	CreateReport(ctx context.Context, report *models.EmergencyReport) error
	GetReport(ctx context.Context, id int64) (*models.EmergencyReport, error)
	ListByReporter(ctx context.Context, reporterID string) ([]*models.EmergencyReport, error)
}

// StatusTracker продвигает отчет по жизненному циклу
type StatusTracker interface {
	Advance(ctx context.Context, reportID int64, target models.Status) (*models.EmergencyReport, error)
}

// AssignResult - результат назначения. Created=false означает, что вернули уже существующее назначение.
type AssignResult struct {
	Assignment *models.Assignment
	Responder  *models.Responder
	Created    bool
}

// AssignmentService определяет контракт движка назначений
type AssignmentService interface {
	Assign(ctx context.Context, reportID int64) (*AssignResult, error)
	CreateAssignment(ctx context.Context, reportID int64) (*AssignResult, error)
	Release(ctx context.Context, assignmentID int64, reason string) (*models.Assignment, error)
}

// QueryService - фасад только для чтения
type QueryService interface {
	GetAssignmentByEmergency(ctx context.Context, reportID int64) (*models.Assignment, error)
	GetAssignment(ctx context.Context, id int64) (*models.Assignment, error)
	GetReport(ctx context.Context, id int64) (*models.EmergencyReport, error)
	GetReportsByReporter(ctx context.Context, reporterID string) ([]*models.EmergencyReport, error)
	GetResponder(ctx context.Context, id int64) (*models.Responder, error)
	GetAllResponders(ctx context.Context) ([]*models.Responder, error)
}
