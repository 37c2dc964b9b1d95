package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

type queryService struct {
	responders  ResponderRepository
	reports     ReportRepository
	assignments AssignmentRepository
}

// NewQueryService создает фасад чтения поверх хранилищ.
// Каждый вызов видит согласованный снимок одной записи, но не сериализуется с писателями.
func NewQueryService(responders ResponderRepository, reports ReportRepository, assignments AssignmentRepository) QueryService {
	return &queryService{
		responders:  responders,
		reports:     reports,
		assignments: assignments,
	}
}

// GetAssignmentByEmergency возвращает активное назначение отчета, а если его нет - последнее завершенное
func (q *queryService) GetAssignmentByEmergency(ctx context.Context, reportID int64) (*models.Assignment, error) {
	active, err := q.assignments.GetActiveByReport(ctx, reportID)
	if err == nil {
		return active, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("service: could not get assignment for report %d: %w", reportID, err)
	}

	latest, err := q.assignments.GetLatestByReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get assignment for report %d: %w", reportID, err)
	}
	return latest, nil
}

func (q *queryService) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	a, err := q.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get assignment %d: %w", id, err)
	}
	return a, nil
}

func (q *queryService) GetReport(ctx context.Context, id int64) (*models.EmergencyReport, error) {
	r, err := q.reports.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get report %d: %w", id, err)
	}
	return r, nil
}

func (q *queryService) GetReportsByReporter(ctx context.Context, reporterID string) ([]*models.EmergencyReport, error) {
	reports, err := q.reports.ListByReporter(ctx, strings.TrimSpace(reporterID))
	if err != nil {
		return nil, fmt.Errorf("service: could not list reports: %w", err)
	}
	return reports, nil
}

func (q *queryService) GetResponder(ctx context.Context, id int64) (*models.Responder, error) {
	r, err := q.responders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get responder %d: %w", id, err)
	}
	return r, nil
}

func (q *queryService) GetAllResponders(ctx context.Context) ([]*models.Responder, error) {
	responders, err := q.responders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list responders: %w", err)
	}
	return responders, nil
}
