package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/repository/memory"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/shenikar/emergency_dispatch_system/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRegisterResponder_Validation(t *testing.T) {
	tests := []struct {
		name      string
		responder models.Responder
		wantErr   error
	}{
		{
			name:      "valid without location",
			responder: models.Responder{Name: "Medic 1", Role: "paramedic", Availability: true},
		},
		{
			name:      "empty name",
			responder: models.Responder{Name: "   ", Role: models.RoleOfficer},
			wantErr:   service.ErrValidation,
		},
		{
			name:      "unknown role",
			responder: models.Responder{Name: "Pilot", Role: "Pilot"},
			wantErr:   service.ErrValidation,
		},
		{
			name: "latitude out of range",
			responder: models.Responder{Name: "Engine 7", Role: models.RoleFirefighter,
				Location: &models.Location{Latitude: 91, Longitude: 0}},
			wantErr: service.ErrInvalidCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Подготовка
			registry := service.NewResponderService(memory.NewResponderRepository(), newTestLogger())
			responder := tt.responder

			// Действие
			err := registry.RegisterResponder(context.Background(), &responder)

			// Проверки
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, responder.ID)
			assert.Equal(t, models.RoleParamedic, responder.Role)
		})
	}
}

func TestRegisterResponder_AlwaysAvailable(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)
	ctx := context.Background()
	busy := &models.Responder{
		Name:         "Engine 9",
		Role:         models.RoleFirefighter,
		Availability: false,
		Location:     &models.Location{Latitude: 40.01, Longitude: -74.0},
	}

	// Действие
	err := d.registry.RegisterResponder(ctx, busy)

	// Проверки
	require.NoError(t, err)
	assert.True(t, busy.Availability)

	stored, err := d.registry.GetResponder(ctx, busy.ID)
	require.NoError(t, err)
	assert.True(t, stored.Availability)
	d.checkAvailabilityInvariant(t)

	// Спасатель без назначения участвует в подборе
	report := d.report(t, models.EmergencyFire, 40.0, -74.0)
	res, err := d.engine.Assign(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, busy.ID, res.Assignment.ResponderID)
	d.checkAvailabilityInvariant(t)
}

func TestUpdateLocation_InvalidCoordinatesLeaveResponderUntouched(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)
	ctx := context.Background()
	a := d.responder(t, "A", models.RoleOfficer, 40.0, -74.0)

	// Действие
	_, err := d.registry.UpdateLocation(ctx, a.ID, 10, 181)

	// Проверки
	require.ErrorIs(t, err, service.ErrInvalidCoordinates)

	got, err := d.registry.GetResponder(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.Location{Latitude: 40.0, Longitude: -74.0}, got.Location)
}

func TestUpdateLocation_UnknownResponder(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)

	// Действие
	_, err := d.registry.UpdateLocation(context.Background(), 42, 1, 1)

	// Проверки
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateLocation_NotifiesListeners(t *testing.T) {
	// Подготовка
	registry := service.NewResponderService(memory.NewResponderRepository(), newTestLogger())
	ctx := context.Background()
	r := &models.Responder{Name: "Unit", Role: models.RoleOfficer}
	require.NoError(t, registry.RegisterResponder(ctx, r))

	// Ожидания
	var seen []*models.Responder
	registry.OnLocationChange(func(_ context.Context, moved *models.Responder) {
		seen = append(seen, moved)
	})

	// Действие
	updated, err := registry.UpdateLocation(ctx, r.ID, 1.5, 2.5)

	// Проверки
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, updated, seen[0])
	assert.Equal(t, &models.Location{Latitude: 1.5, Longitude: 2.5}, seen[0].Location)
}

func TestReserveRelease_CompareAndSwap(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)
	ctx := context.Background()
	a := d.responder(t, "A", models.RoleOfficer, 40.0, -74.0)

	// Действие и проверки
	require.NoError(t, d.registry.Reserve(ctx, a.ID))
	assert.ErrorIs(t, d.registry.Reserve(ctx, a.ID), service.ErrConflict)

	require.NoError(t, d.registry.Release(ctx, a.ID))
	assert.ErrorIs(t, d.registry.Release(ctx, a.ID), service.ErrConflict)

	assert.ErrorIs(t, d.registry.Reserve(ctx, 999), service.ErrNotFound)
}

func TestListAvailable_FiltersByRole(t *testing.T) {
	// Подготовка
	d := newDispatch(t, nil)
	ctx := context.Background()
	medic := d.responder(t, "medic", models.RoleParamedic, 1, 1)
	officer := d.responder(t, "officer", models.RoleOfficer, 1, 1)
	busy := d.responder(t, "busy", models.RoleOfficer, 1, 1)
	require.NoError(t, d.registry.Reserve(ctx, busy.ID))

	// Действие
	all, err := d.registry.ListAvailable(ctx, nil)

	// Проверки
	require.NoError(t, err)
	assert.Len(t, all, 2)

	officers, err := d.registry.ListAvailable(ctx, []models.Role{models.RoleOfficer})
	require.NoError(t, err)
	require.Len(t, officers, 1)
	assert.Equal(t, officer.ID, officers[0].ID)

	both, err := d.registry.ListAvailable(ctx, []models.Role{models.RoleOfficer, models.RoleParamedic})
	require.NoError(t, err)
	require.Len(t, both, 2)
	ids := []int64{both[0].ID, both[1].ID}
	assert.ElementsMatch(t, []int64{medic.ID, officer.ID}, ids)
}

func TestListResponders_RepositoryError(t *testing.T) {
	// Подготовка
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockResponderRepository(ctrl)
	dbErr := errors.New("connection reset")
	registry := service.NewResponderService(repo, newTestLogger())

	// Ожидания
	repo.EXPECT().List(gomock.Any()).Return(nil, dbErr).Times(1)

	// Действие
	_, err := registry.ListResponders(context.Background())

	// Проверки
	assert.ErrorIs(t, err, dbErr)
}
