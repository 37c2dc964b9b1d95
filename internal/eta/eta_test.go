package eta

import (
	"testing"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_FloorAtOneMinute(t *testing.T) {
	calc := NewCalculator(DefaultSpeedKmH)

	minutes, err := calc.Estimate(&models.Location{}, models.Location{})

	require.NoError(t, err)
	assert.Equal(t, 1, minutes)
}

func TestEstimate_LocationUnavailable(t *testing.T) {
	calc := NewCalculator(DefaultSpeedKmH)

	_, err := calc.Estimate(nil, models.Location{Latitude: 40, Longitude: -74})

	assert.ErrorIs(t, err, ErrLocationUnavailable)
}

func TestEstimate_RoundsUp(t *testing.T) {
	calc := NewCalculator(60) // 1 км в минуту

	// 0.01 градуса широты ≈ 1.11 км
	minutes, err := calc.Estimate(&models.Location{Latitude: 40.01, Longitude: -74}, models.Location{Latitude: 40, Longitude: -74})

	require.NoError(t, err)
	assert.Equal(t, 2, minutes)
}

func TestEstimate_MonotonicInDistance(t *testing.T) {
	calc := NewCalculator(DefaultSpeedKmH)
	target := models.Location{Latitude: 40, Longitude: -74}

	prevDistance, prevETA := -1.0, 0
	for step := 0; step <= 200; step++ {
		from := &models.Location{Latitude: 40 + float64(step)*0.005, Longitude: -74}
		minutes, err := calc.Estimate(from, target)
		require.NoError(t, err)

		distance := DistanceKm(*from, target)
		assert.GreaterOrEqual(t, distance, prevDistance)
		assert.GreaterOrEqual(t, minutes, prevETA, "step %d", step)
		prevDistance, prevETA = distance, minutes
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := models.Location{Latitude: -1.2921, Longitude: 36.8219}
	b := models.Location{Latitude: -4.0435, Longitude: 39.6682}

	assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9)
	// Найроби - Момбаса около 440 км по прямой
	assert.InDelta(t, 440, DistanceKm(a, b), 15)
}

func TestNewCalculator_DefaultSpeed(t *testing.T) {
	assert.Equal(t, DefaultSpeedKmH, NewCalculator(0).speedKmH)
	assert.Equal(t, DefaultSpeedKmH, NewCalculator(-5).speedKmH)
}
