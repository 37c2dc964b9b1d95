package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReportCache_GetSetInvalidate(t *testing.T) {
	c := NewMemoryReportCache(time.Minute)
	ctx := context.Background()

	miss, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, miss)

	report := &models.EmergencyReport{ID: 1, Type: models.EmergencyFire, ReporterID: "r1", Status: models.StatusReceived}
	require.NoError(t, c.Set(ctx, report))

	// Изменение исходного отчета не должно попадать в кеш
	report.Status = models.StatusAssigned

	hit, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, models.StatusReceived, hit.Status)

	require.NoError(t, c.Invalidate(ctx, 1))
	gone, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestMemoryReportCache_Expires(t *testing.T) {
	c := NewMemoryReportCache(10 * time.Millisecond)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, &models.EmergencyReport{ID: 2}))

	assert.Eventually(t, func() bool {
		got, err := c.Get(ctx, 2)
		return err == nil && got == nil
	}, time.Second, 5*time.Millisecond)
}

func TestReportKey(t *testing.T) {
	assert.Equal(t, "report:101", reportKey(101))
}
