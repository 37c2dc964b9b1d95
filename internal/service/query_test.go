package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/shenikar/emergency_dispatch_system/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestQuery_ReadsThroughStores(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)
	ctx := context.Background()
	a := d.responder(t, "A", models.RoleFirefighter, 40.01, -74.0)
	d.responder(t, "B", models.RoleFirefighter, 41.0, -75.0)
	report := d.report(t, models.EmergencyFire, 40.0, -74.0)
	res, err := d.engine.Assign(ctx, report.ID)
	require.NoError(t, err)

	// Действие
	byEmergency, err := d.query.GetAssignmentByEmergency(ctx, report.ID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, res.Assignment, byEmergency)

	gotReport, err := d.query.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, gotReport.Status)

	byReporter, err := d.query.GetReportsByReporter(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, byReporter, 1)
	assert.Equal(t, report.ID, byReporter[0].ID)

	responder, err := d.query.GetResponder(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, responder.Availability)

	all, err := d.query.GetAllResponders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestQuery_NotFound(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)
	ctx := context.Background()

	// Действие и проверки
	_, err := d.query.GetAssignmentByEmergency(ctx, 1)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = d.query.GetAssignment(ctx, 1)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = d.query.GetReport(ctx, 1)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = d.query.GetResponder(ctx, 1)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestQuery_AssignmentLookupErrorIsNotMaskedAsMissing(t *testing.T) {
	// Подготовка
	ctrl := gomock.NewController(t)
	assignments := mocks.NewMockAssignmentRepository(ctrl)
	dbErr := errors.New("timeout")
	query := service.NewQueryService(mocks.NewMockResponderRepository(ctrl), mocks.NewMockReportRepository(ctrl), assignments)

	// Ожидания
	assignments.EXPECT().GetActiveByReport(gomock.Any(), int64(5)).Return(nil, dbErr).Times(1)

	// Действие
	_, err := query.GetAssignmentByEmergency(context.Background(), 5)

	// Проверки
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, service.ErrNotFound)
}

func TestQuery_ReportsByReporterTrimsID(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)
	ctx := context.Background()
	first := d.report(t, models.EmergencyFire, 40.0, -74.0)
	second := d.report(t, models.EmergencyMedical, 41.0, -74.0)

	// Действие
	got, err := d.query.GetReportsByReporter(ctx, "  r1\t")

	// Проверки
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
}
