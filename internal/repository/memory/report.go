package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

type ReportRepository struct {
	mu         sync.RWMutex
	nextID     int64
	items      map[int64]*models.EmergencyReport
	byReporter map[string][]int64
}

// NewReportRepository создает пустое хранилище отчетов
func NewReportRepository() service.ReportRepository {
	return &ReportRepository{
		items:      make(map[int64]*models.EmergencyReport),
		byReporter: make(map[string][]int64),
	}
}

func (r *ReportRepository) Create(_ context.Context, report *models.EmergencyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	report.ID = r.nextID
	r.items[report.ID] = report.Clone()
	r.byReporter[report.ReporterID] = append(r.byReporter[report.ReporterID], report.ID)
	return nil
}

func (r *ReportRepository) GetByID(_ context.Context, id int64) (*models.EmergencyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("report with id %d: %w", id, service.ErrNotFound)
	}
	return report.Clone(), nil
}

// GetByIDFresh совпадает с GetByID: кеша в памяти нет
func (r *ReportRepository) GetByIDFresh(ctx context.Context, id int64) (*models.EmergencyReport, error) {
	return r.GetByID(ctx, id)
}

// ListByReporter возвращает отчеты в порядке вставки
func (r *ReportRepository) ListByReporter(_ context.Context, reporterID string) ([]*models.EmergencyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byReporter[reporterID]
	out := make([]*models.EmergencyReport, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}

func (r *ReportRepository) UpdateStatus(_ context.Context, id int64, from, to models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return fmt.Errorf("report with id %d not found for update: %w", id, service.ErrNotFound)
	}
	if current.Status != from {
		return fmt.Errorf("report %d status is %s, expected %s: %w", id, current.Status, from, service.ErrConflict)
	}
	updated := current.Clone()
	updated.Status = to
	r.items[id] = updated
	return nil
}
