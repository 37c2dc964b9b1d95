package models

import "fmt"

// Status - состояние отчета в жизненном цикле вызова.
// Received → Assigned → EnRoute → Arrived → Completed, Cancelled достижим из любого нетерминального состояния.
type Status int

const (
	StatusReceived Status = iota + 1
	StatusAssigned
	StatusEnRoute
	StatusArrived
	StatusCompleted
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusReceived:  "Received",
	StatusAssigned:  "Assigned",
	StatusEnRoute:   "EnRoute",
	StatusArrived:   "Arrived",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

// transitions - таблица допустимых переходов по основной цепочке
var transitions = map[Status]Status{
	StatusReceived: StatusAssigned,
	StatusAssigned: StatusEnRoute,
	StatusEnRoute:  StatusArrived,
	StatusArrived:  StatusCompleted,
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus разбирает строковое имя статуса
func ParseStatus(name string) (Status, bool) {
	for s, n := range statusNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// Valid сообщает, является ли значение одним из известных статусов
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal сообщает, что из статуса больше нет переходов
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition проверяет переход from → to по таблице
func CanTransition(from, to Status) bool {
	if !from.Valid() || from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	next, ok := transitions[from]
	return ok && next == to
}

// MarshalText кодирует статус строкой, чтобы в JSON уходило "Received", а не число
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText разбирает статус из строки
func (s *Status) UnmarshalText(text []byte) error {
	parsed, ok := ParseStatus(string(text))
	if !ok {
		return fmt.Errorf("unknown status %q", string(text))
	}
	*s = parsed
	return nil
}
