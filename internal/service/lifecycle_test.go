package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/repository/memory"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/shenikar/emergency_dispatch_system/internal/service/mocks"
	"github.com/shenikar/emergency_dispatch_system/internal/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// flakyAssignments отказывает в Terminate заданное число раз
type flakyAssignments struct {
	service.AssignmentRepository
	mu                sync.Mutex
	terminateFailures int
}

func (f *flakyAssignments) Terminate(ctx context.Context, id int64, reason string, at time.Time) error {
	f.mu.Lock()
	if f.terminateFailures > 0 {
		f.terminateFailures--
		f.mu.Unlock()
		return errors.New("db down")
	}
	f.mu.Unlock()
	return f.AssignmentRepository.Terminate(ctx, id, reason, at)
}

// staleReports отдает через GetByID зафиксированный статус, как кеш с устаревшей записью
type staleReports struct {
	service.ReportRepository
	mu     sync.Mutex
	stale  bool
	status models.Status
}

func (s *staleReports) freeze(status models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
	s.status = status
}

func (s *staleReports) GetByID(ctx context.Context, id int64) (*models.EmergencyReport, error) {
	report, err := s.ReportRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale {
		report.Status = s.status
	}
	return report, nil
}

func TestAdvance_ForwardPathReleasesResponder(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)
	ctx := context.Background()
	a := d.responder(t, "A", models.RoleFirefighter, 40.01, -74.0)
	report := d.report(t, models.EmergencyFire, 40.0, -74.0)
	res, err := d.engine.Assign(ctx, report.ID)
	require.NoError(t, err)

	// Действие
	for _, status := range []models.Status{models.StatusEnRoute, models.StatusArrived, models.StatusCompleted} {
		got, err := d.tracker.Advance(ctx, report.ID, status)
		require.NoError(t, err, "advance to %s", status)
		assert.Equal(t, status, got.Status)
	}

	// Проверки
	responder, err := d.registry.GetResponder(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, responder.Availability)

	finished, err := d.query.GetAssignment(ctx, res.Assignment.ID)
	require.NoError(t, err)
	assert.False(t, finished.Active())
	assert.Equal(t, "Completed", finished.TerminationReason)
	require.NotNil(t, finished.TerminatedAt)

	d.checkAvailabilityInvariant(t)
}

func TestAdvance_RejectsSkippedStep(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)
	ctx := context.Background()
	report := d.report(t, models.EmergencyMedical, 40.0, -74.0)

	// Действие
	_, err := d.tracker.Advance(ctx, report.ID, models.StatusArrived)

	// Проверки
	require.ErrorIs(t, err, service.ErrInvalidTransition)

	got, err := d.reports.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceived, got.Status)
}

func TestAdvance_TerminalIsFinal(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)
	ctx := context.Background()
	report := d.report(t, models.EmergencyTraffic, 40.0, -74.0)
	_, err := d.tracker.Advance(ctx, report.ID, models.StatusCancelled)
	require.NoError(t, err)

	// Действие и проверки
	for _, status := range []models.Status{
		models.StatusReceived, models.StatusAssigned, models.StatusEnRoute,
		models.StatusArrived, models.StatusCompleted, models.StatusCancelled,
	} {
		_, err := d.tracker.Advance(ctx, report.ID, status)
		assert.ErrorIs(t, err, service.ErrInvalidTransition, "Cancelled -> %s", status)
	}
}

func TestAdvance_CancelWithoutAssignment(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)
	ctx := context.Background()
	report := d.report(t, models.EmergencyCrime, 40.0, -74.0)

	// Действие
	got, err := d.tracker.Advance(ctx, report.ID, models.StatusCancelled)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestAdvance_UnknownReport(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)

	// Действие
	_, err := d.tracker.Advance(context.Background(), 7, models.StatusAssigned)

	// Проверки
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAdvance_RepositoryConflictSurfaces(t *testing.T) {
	// Подготовка
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReportRepository(ctrl)
	ctx := context.Background()

	// Ожидания
	repo.EXPECT().
		GetByIDFresh(ctx, int64(3)).
		Return(&models.EmergencyReport{ID: 3, Status: models.StatusAssigned}, nil).
		Times(1)
	repo.EXPECT().
		UpdateStatus(ctx, int64(3), models.StatusAssigned, models.StatusEnRoute).
		Return(fmt.Errorf("stale: %w", service.ErrConflict)).
		Times(1)

	tracker := service.NewLifecycleTracker(repo, webhook.NopPublisher{}, nil, newTestLogger())

	// Действие
	_, err := tracker.Advance(ctx, 3, models.StatusEnRoute)

	// Проверки
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestAdvance_FailedFinalizeRestoresStatus(t *testing.T) {
	// Подготовка
	assignments := &flakyAssignments{
		AssignmentRepository: memory.NewAssignmentRepository(),
		terminateFailures:    1,
	}
	d := newDispatchWith(t, nil, memory.NewReportRepository(), assignments)
	ctx := context.Background()
	a := d.responder(t, "A", models.RoleFirefighter, 40.01, -74.0)
	report := d.report(t, models.EmergencyFire, 40.0, -74.0)
	res, err := d.engine.Assign(ctx, report.ID)
	require.NoError(t, err)

	// Действие
	_, err = d.tracker.Advance(ctx, report.ID, models.StatusCancelled)

	// Проверки
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	// 1. Отчет не остался терминальным при живом назначении
	got, err := d.reports.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, got.Status)

	active, err := d.query.GetAssignmentByEmergency(ctx, report.ID)
	require.NoError(t, err)
	assert.True(t, active.Active())
	assert.Equal(t, res.Assignment.ID, active.ID)

	responder, err := d.registry.GetResponder(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, responder.Availability)
	d.checkAvailabilityInvariant(t)

	// 2. Повтор перехода завершает отмену
	cancelled, err := d.tracker.Advance(ctx, report.ID, models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	responder, err = d.registry.GetResponder(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, responder.Availability)
	d.checkAvailabilityInvariant(t)
}

func TestRelease_FailedFinalizeKeepsAssignmentActive(t *testing.T) {
	// Подготовка
	assignments := &flakyAssignments{AssignmentRepository: memory.NewAssignmentRepository()}
	d := newDispatchWith(t, nil, memory.NewReportRepository(), assignments)
	ctx := context.Background()
	d.responder(t, "A", models.RoleFirefighter, 40.01, -74.0)
	report := d.report(t, models.EmergencyFire, 40.0, -74.0)
	res, err := d.engine.Assign(ctx, report.ID)
	require.NoError(t, err)
	assignments.mu.Lock()
	assignments.terminateFailures = 1
	assignments.mu.Unlock()

	// Действие
	_, err = d.engine.Release(ctx, res.Assignment.ID, "")

	// Проверки
	require.Error(t, err)

	got, err := d.reports.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, got.Status)
	d.checkAvailabilityInvariant(t)

	released, err := d.engine.Release(ctx, res.Assignment.ID, "")
	require.NoError(t, err)
	assert.False(t, released.Active())
	d.checkAvailabilityInvariant(t)
}

func TestAdvance_IgnoresStaleCachedStatus(t *testing.T) {
	// Подготовка
	reports := &staleReports{ReportRepository: memory.NewReportRepository()}
	d := newDispatchWith(t, nil, reports, memory.NewAssignmentRepository())
	ctx := context.Background()
	d.responder(t, "A", models.RoleFirefighter, 40.01, -74.0)
	report := d.report(t, models.EmergencyFire, 40.0, -74.0)
	_, err := d.engine.Assign(ctx, report.ID)
	require.NoError(t, err)
	_, err = d.tracker.Advance(ctx, report.ID, models.StatusEnRoute)
	require.NoError(t, err)

	// Кешированное чтение застряло на Assigned
	reports.freeze(models.StatusAssigned)
	cached, err := d.reports.GetReport(ctx, report.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAssigned, cached.Status)

	// Действие
	arrived, err := d.tracker.Advance(ctx, report.ID, models.StatusArrived)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.StatusArrived, arrived.Status)

	completed, err := d.tracker.Advance(ctx, report.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	d.checkAvailabilityInvariant(t)
}
