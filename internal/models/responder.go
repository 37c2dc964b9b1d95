package models

import "strings"

// Role - специализация спасателя
type Role string

const (
	RoleParamedic   Role = "Paramedic"
	RoleOfficer     Role = "Officer"
	RoleFirefighter Role = "Firefighter"
)

var roles = []Role{RoleParamedic, RoleOfficer, RoleFirefighter}

// ParseRole разбирает роль без учета регистра
func ParseRole(s string) (Role, bool) {
	for _, r := range roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

// Responder - выездная единица (человек или машина), которую можно направить на вызов.
// Location равен nil до первого обновления координат.
type Responder struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Availability bool      `json:"availability"`
	Location     *Location `json:"location,omitempty"`
}

// Clone возвращает глубокую копию, чтобы хранилища не отдавали наружу свои указатели
func (r *Responder) Clone() *Responder {
	if r == nil {
		return nil
	}
	c := *r
	if r.Location != nil {
		loc := *r.Location
		c.Location = &loc
	}
	return &c
}
