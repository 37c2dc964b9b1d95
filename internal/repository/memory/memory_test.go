package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponderRepository_SetAvailabilityIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewResponderRepository()
	responder := &models.Responder{Name: "A", Role: models.RoleParamedic, Availability: true}
	require.NoError(t, repo.Create(ctx, responder))

	require.NoError(t, repo.SetAvailability(ctx, responder.ID, true, false))
	err := repo.SetAvailability(ctx, responder.ID, true, false)
	assert.ErrorIs(t, err, service.ErrConflict)

	err = repo.SetAvailability(ctx, 999, true, false)
	assert.ErrorIs(t, err, service.ErrNotFound)

	available, err := repo.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestResponderRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewResponderRepository()
	responder := &models.Responder{Name: "A", Role: models.RoleOfficer, Availability: true}
	require.NoError(t, repo.Create(ctx, responder))

	got, err := repo.GetByID(ctx, responder.ID)
	require.NoError(t, err)
	got.Name = "mutated"
	got.Availability = false

	again, err := repo.GetByID(ctx, responder.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
	assert.True(t, again.Availability)
	assert.Nil(t, again.Location)

	updated, err := repo.UpdateLocation(ctx, responder.ID, models.Location{Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	assert.Equal(t, &models.Location{Latitude: 1, Longitude: 2}, updated.Location)
}

func TestReportRepository_ListByReporterInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository()
	for _, reporter := range []string{"r1", "r2", "r1", "r1"} {
		require.NoError(t, repo.Create(ctx, &models.EmergencyReport{ReporterID: reporter, Status: models.StatusReceived}))
	}

	reports, err := repo.ListByReporter(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, []int64{1, 3, 4}, []int64{reports[0].ID, reports[1].ID, reports[2].ID})

	none, err := repo.ListByReporter(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReportRepository_UpdateStatusChecksCurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository()
	report := &models.EmergencyReport{ReporterID: "r1", Status: models.StatusReceived}
	require.NoError(t, repo.Create(ctx, report))

	require.NoError(t, repo.UpdateStatus(ctx, report.ID, models.StatusReceived, models.StatusAssigned))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, report.ID, models.StatusReceived, models.StatusAssigned), service.ErrConflict)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 42, models.StatusReceived, models.StatusAssigned), service.ErrNotFound)
}

func TestAssignmentRepository_ActiveUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewAssignmentRepository()

	first := &models.Assignment{ReportID: 1, ResponderID: 10, ETAMinutes: 5}
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, &models.Assignment{ReportID: 1, ResponderID: 11})
	assert.ErrorIs(t, err, service.ErrAlreadyAssigned)

	err = repo.Create(ctx, &models.Assignment{ReportID: 2, ResponderID: 10})
	assert.ErrorIs(t, err, service.ErrConflict)

	require.NoError(t, repo.Terminate(ctx, first.ID, "Completed", time.Now()))
	assert.ErrorIs(t, repo.Terminate(ctx, first.ID, "again", time.Now()), service.ErrConflict)
	assert.ErrorIs(t, repo.UpdateETA(ctx, first.ID, 3), service.ErrConflict)

	_, err = repo.GetActiveByReport(ctx, 1)
	assert.ErrorIs(t, err, service.ErrNotFound)
	latest, err := repo.GetLatestByReport(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)
	assert.False(t, latest.Active())
	assert.Equal(t, "Completed", latest.TerminationReason)

	second := &models.Assignment{ReportID: 1, ResponderID: 10}
	require.NoError(t, repo.Create(ctx, second))
	active, err := repo.GetActiveByResponder(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
}

func TestAssignmentRepository_MarkSynced(t *testing.T) {
	ctx := context.Background()
	repo := NewAssignmentRepository()
	a := &models.Assignment{ReportID: 1, ResponderID: 1, SyncStatus: models.SyncPending}
	require.NoError(t, repo.Create(ctx, a))

	require.NoError(t, repo.MarkSynced(ctx, a.ID))
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, got.SyncStatus)

	assert.ErrorIs(t, repo.MarkSynced(ctx, 77), service.ErrNotFound)
}
