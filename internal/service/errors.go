package service

import "errors"

// Ошибки предметной области. Слои оборачивают их через %w, HTTP-слой сопоставляет их с кодами ответа.
var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrAlreadyAssigned      = errors.New("report already has an active assignment")
	ErrNoResponderAvailable = errors.New("no responder available")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidCoordinates   = errors.New("invalid coordinates")
	ErrValidation           = errors.New("validation error")
)
