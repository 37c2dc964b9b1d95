package models

import "time"

// SyncStatus - состояние доставки события о назначении во внешнюю систему
type SyncStatus string

const (
	SyncPending SyncStatus = "PENDING"
	SyncSynced  SyncStatus = "SYNCED"
)

// Assignment связывает одного спасателя с одним отчетом
type Assignment struct {
	ID                int64      `json:"id"`
	ReportID          int64      `json:"report_id"`
	ResponderID       int64      `json:"responder_id"`
	ETAMinutes        int        `json:"eta_minutes"`
	CreatedAt         time.Time  `json:"created_at"`
	SyncStatus        SyncStatus `json:"sync_status"`
	TerminatedAt      *time.Time `json:"terminated_at,omitempty"`
	TerminationReason string     `json:"termination_reason,omitempty"`
}

// Active - назначение еще не завершено
func (a *Assignment) Active() bool {
	return a.TerminatedAt == nil
}

// Clone возвращает копию назначения
func (a *Assignment) Clone() *Assignment {
	if a == nil {
		return nil
	}
	c := *a
	if a.TerminatedAt != nil {
		t := *a.TerminatedAt
		c.TerminatedAt = &t
	}
	return &c
}
