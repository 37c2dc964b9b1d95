package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

type AssignmentRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]*models.Assignment
	// индексы активных назначений обеспечивают уникальность отчета и спасателя
	activeByReport    map[int64]int64
	activeByResponder map[int64]int64
	latestByReport    map[int64]int64
}

// NewAssignmentRepository создает пустое хранилище назначений
func NewAssignmentRepository() service.AssignmentRepository {
	return &AssignmentRepository{
		items:             make(map[int64]*models.Assignment),
		activeByReport:    make(map[int64]int64),
		activeByResponder: make(map[int64]int64),
		latestByReport:    make(map[int64]int64),
	}
}

func (r *AssignmentRepository) Create(_ context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.activeByReport[assignment.ReportID]; ok {
		return fmt.Errorf("report %d has active assignment %d: %w", assignment.ReportID, id, service.ErrAlreadyAssigned)
	}
	if id, ok := r.activeByResponder[assignment.ResponderID]; ok {
		return fmt.Errorf("responder %d has active assignment %d: %w", assignment.ResponderID, id, service.ErrConflict)
	}

	r.nextID++
	assignment.ID = r.nextID
	r.items[assignment.ID] = assignment.Clone()
	r.activeByReport[assignment.ReportID] = assignment.ID
	r.activeByResponder[assignment.ResponderID] = assignment.ID
	r.latestByReport[assignment.ReportID] = assignment.ID
	return nil
}

func (r *AssignmentRepository) GetByID(_ context.Context, id int64) (*models.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(id)
}

func (r *AssignmentRepository) GetActiveByReport(_ context.Context, reportID int64) (*models.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.activeByReport[reportID]
	if !ok {
		return nil, fmt.Errorf("active assignment for report %d: %w", reportID, service.ErrNotFound)
	}
	return r.get(id)
}

func (r *AssignmentRepository) GetLatestByReport(_ context.Context, reportID int64) (*models.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.latestByReport[reportID]
	if !ok {
		return nil, fmt.Errorf("assignment for report %d: %w", reportID, service.ErrNotFound)
	}
	return r.get(id)
}

func (r *AssignmentRepository) GetActiveByResponder(_ context.Context, responderID int64) (*models.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.activeByResponder[responderID]
	if !ok {
		return nil, fmt.Errorf("active assignment for responder %d: %w", responderID, service.ErrNotFound)
	}
	return r.get(id)
}

func (r *AssignmentRepository) UpdateETA(_ context.Context, id int64, etaMinutes int) error {
	return r.mutateActive(id, func(a *models.Assignment) {
		a.ETAMinutes = etaMinutes
	})
}

func (r *AssignmentRepository) Terminate(_ context.Context, id int64, reason string, at time.Time) error {
	return r.mutateActive(id, func(a *models.Assignment) {
		a.TerminatedAt = &at
		a.TerminationReason = reason
		delete(r.activeByReport, a.ReportID)
		delete(r.activeByResponder, a.ResponderID)
	})
}

// MarkSynced допустим и для завершенного назначения: это отметка доставки, а не изменение диспетчеризации
func (r *AssignmentRepository) MarkSynced(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return fmt.Errorf("assignment with id %d: %w", id, service.ErrNotFound)
	}
	updated := current.Clone()
	updated.SyncStatus = models.SyncSynced
	r.items[id] = updated
	return nil
}

func (r *AssignmentRepository) mutateActive(id int64, mutate func(*models.Assignment)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return fmt.Errorf("assignment with id %d: %w", id, service.ErrNotFound)
	}
	if !current.Active() {
		return fmt.Errorf("assignment %d is terminated: %w", id, service.ErrConflict)
	}
	updated := current.Clone()
	mutate(updated)
	r.items[id] = updated
	return nil
}

func (r *AssignmentRepository) get(id int64) (*models.Assignment, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("assignment with id %d: %w", id, service.ErrNotFound)
	}
	return a.Clone(), nil
}
