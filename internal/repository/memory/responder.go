// Package memory хранит спасателей, отчеты и назначения в памяти процесса.
// Каждая запись заменяется целиком под мьютексом, поэтому читатель никогда не видит ее наполовину записанной.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

type ResponderRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]*models.Responder
}

// NewResponderRepository создает пустое хранилище спасателей
func NewResponderRepository() service.ResponderRepository {
	return &ResponderRepository{
		items: make(map[int64]*models.Responder),
	}
}

func (r *ResponderRepository) Create(_ context.Context, responder *models.Responder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	responder.ID = r.nextID
	r.items[responder.ID] = responder.Clone()
	return nil
}

func (r *ResponderRepository) GetByID(_ context.Context, id int64) (*models.Responder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	responder, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("responder with id %d: %w", id, service.ErrNotFound)
	}
	return responder.Clone(), nil
}

func (r *ResponderRepository) List(_ context.Context) ([]*models.Responder, error) {
	return r.snapshot(func(*models.Responder) bool { return true }), nil
}

func (r *ResponderRepository) ListAvailable(_ context.Context) ([]*models.Responder, error) {
	return r.snapshot(func(x *models.Responder) bool { return x.Availability }), nil
}

func (r *ResponderRepository) UpdateLocation(_ context.Context, id int64, location models.Location) (*models.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("responder with id %d not found for update: %w", id, service.ErrNotFound)
	}
	updated := current.Clone()
	updated.Location = &location
	r.items[id] = updated
	return updated.Clone(), nil
}

func (r *ResponderRepository) SetAvailability(_ context.Context, id int64, expected, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return fmt.Errorf("responder with id %d: %w", id, service.ErrNotFound)
	}
	if current.Availability != expected {
		return fmt.Errorf("responder %d availability is %t: %w", id, current.Availability, service.ErrConflict)
	}
	updated := current.Clone()
	updated.Availability = value
	r.items[id] = updated
	return nil
}

func (r *ResponderRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

// snapshot возвращает копии подходящих записей, упорядоченные по id
func (r *ResponderRepository) snapshot(keep func(*models.Responder) bool) []*models.Responder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Responder, 0, len(r.items))
	for _, responder := range r.items {
		if keep(responder) {
			out = append(out, responder.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
