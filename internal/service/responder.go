package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shenikar/emergency_dispatch_system/internal/locker"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

type responderService struct {
	repo   ResponderRepository
	locks  *locker.KeyedMutex
	logger *logrus.Logger

	mu        sync.RWMutex
	listeners []LocationListener
}

// NewResponderService создает реестр спасателей.
// Резервирование, освобождение и смена координат одного спасателя сериализуются блокировкой по его id.
func NewResponderService(repo ResponderRepository, logger *logrus.Logger) ResponderService {
	return &responderService{
		repo:   repo,
		locks:  locker.New(),
		logger: logger,
	}
}

// RegisterResponder добавляет спасателя в реестр.
// Новый спасатель всегда свободен: занятость возникает только через назначение.
func (s *responderService) RegisterResponder(ctx context.Context, responder *models.Responder) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "responder",
		"method":  "RegisterResponder",
		"name":    responder.Name,
	})

	responder.Name = strings.TrimSpace(responder.Name)
	if responder.Name == "" {
		return fmt.Errorf("service: responder name is required: %w", ErrValidation)
	}
	role, ok := models.ParseRole(string(responder.Role))
	if !ok {
		return fmt.Errorf("service: unknown responder role %q: %w", responder.Role, ErrValidation)
	}
	responder.Role = role
	if responder.Location != nil && !responder.Location.Valid() {
		return fmt.Errorf("service: responder location: %w", ErrInvalidCoordinates)
	}
	responder.Availability = true

	if err := s.repo.Create(ctx, responder); err != nil {
		log.WithError(err).Error("Failed to create responder in repository")
		return fmt.Errorf("service: could not register responder: %w", err)
	}
	log.WithField("responder_id", responder.ID).Info("Responder registered")
	return nil
}

// GetResponder возвращает спасателя по id
func (s *responderService) GetResponder(ctx context.Context, id int64) (*models.Responder, error) {
	responder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get responder %d: %w", id, err)
	}
	return responder, nil
}

// ListResponders возвращает всех спасателей
func (s *responderService) ListResponders(ctx context.Context) ([]*models.Responder, error) {
	responders, err := s.repo.List(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListResponders").Error("Failed to list responders")
		return nil, fmt.Errorf("service: could not list responders: %w", err)
	}
	return responders, nil
}

// ListAvailable возвращает снимок доступных спасателей, при непустом roles - только указанных ролей
func (s *responderService) ListAvailable(ctx context.Context, roles []models.Role) ([]*models.Responder, error) {
	available, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list available responders: %w", err)
	}
	if len(roles) == 0 {
		return available, nil
	}

	filtered := make([]*models.Responder, 0, len(available))
	for _, r := range available {
		for _, role := range roles {
			if r.Role == role {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered, nil
}

// UpdateLocation перезаписывает координаты спасателя
func (s *responderService) UpdateLocation(ctx context.Context, id int64, lat, lng float64) (*models.Responder, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "responder",
		"method":       "UpdateLocation",
		"responder_id": id,
	})

	location := models.Location{Latitude: lat, Longitude: lng}
	if !location.Valid() {
		log.Warn("Rejected out of range coordinates")
		return nil, fmt.Errorf("service: lat=%v lng=%v: %w", lat, lng, ErrInvalidCoordinates)
	}

	unlock := s.locks.LockID(id)
	responder, err := s.repo.UpdateLocation(ctx, id, location)
	unlock()
	if err != nil {
		log.WithError(err).Warn("Failed to update responder location")
		return nil, fmt.Errorf("service: could not update location: %w", err)
	}
	log.Debug("Responder location updated")

	// Слушатели вызываются без блокировки спасателя: они берут блокировку отчета,
	// а она по порядку захватывается раньше.
	s.mu.RLock()
	listeners := append([]LocationListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range listeners {
		l(ctx, responder.Clone())
	}
	return responder, nil
}

// Reserve переводит спасателя из доступного в занятого
func (s *responderService) Reserve(ctx context.Context, id int64) error {
	return s.setAvailability(ctx, id, true, false)
}

// Release возвращает спасателя в доступные
func (s *responderService) Release(ctx context.Context, id int64) error {
	return s.setAvailability(ctx, id, false, true)
}

func (s *responderService) setAvailability(ctx context.Context, id int64, expected, value bool) error {
	unlock := s.locks.LockID(id)
	defer unlock()

	if err := s.repo.SetAvailability(ctx, id, expected, value); err != nil {
		if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrNotFound) {
			s.logger.WithError(err).WithField("responder_id", id).Error("Failed to change responder availability")
		}
		return fmt.Errorf("service: responder %d availability %t -> %t: %w", id, expected, value, err)
	}
	return nil
}

// OnLocationChange подписывает listener на обновления координат
func (s *responderService) OnLocationChange(listener LocationListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}
