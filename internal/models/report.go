package models

import (
	"strings"
	"time"
)

// EmergencyType - тип происшествия
type EmergencyType string

const (
	EmergencyFire    EmergencyType = "Fire"
	EmergencyMedical EmergencyType = "Medical"
	EmergencyCrime   EmergencyType = "Crime"
	EmergencyTraffic EmergencyType = "Traffic"
)

var emergencyTypes = []EmergencyType{EmergencyFire, EmergencyMedical, EmergencyCrime, EmergencyTraffic}

// ParseEmergencyType разбирает тип происшествия без учета регистра
func ParseEmergencyType(s string) (EmergencyType, bool) {
	for _, t := range emergencyTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// PreferredRoles возвращает роли, подходящие для типа происшествия, в порядке предпочтения
func (t EmergencyType) PreferredRoles() []Role {
	switch t {
	case EmergencyFire:
		return []Role{RoleFirefighter}
	case EmergencyMedical:
		return []Role{RoleParamedic}
	case EmergencyCrime:
		return []Role{RoleOfficer}
	case EmergencyTraffic:
		return []Role{RoleOfficer, RoleParamedic}
	}
	return nil
}

// EmergencyReport - поступившее сообщение о происшествии
type EmergencyReport struct {
	ID          int64         `json:"id"`
	Type        EmergencyType `json:"type"`
	Description string        `json:"description"`
	Location    Location      `json:"location"`
	ReporterID  string        `json:"reporter_id"`
	Timestamp   time.Time     `json:"timestamp"`
	Status      Status        `json:"status"`
}

// Clone возвращает копию отчета
func (r *EmergencyReport) Clone() *EmergencyReport {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
