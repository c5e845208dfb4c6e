package models

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityNormal       Priority = "NORMAL"
	PriorityPreferential Priority = "PREFERENCIAL"
)

// Normalize maps the English spelling and lower case input onto the
// stored values. Unknown values stay unknown.
func (p Priority) Normalize() Priority {
	switch strings.ToUpper(strings.TrimSpace(string(p))) {
	case "NORMAL":
		return PriorityNormal
	case "PREFERENCIAL", "PREFERENTIAL":
		return PriorityPreferential
	}
	return p
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p == PriorityNormal || p == PriorityPreferential
}

// TicketPrefix - P untuk preferencial, N untuk normal
func (p Priority) TicketPrefix() string {
	if p == PriorityPreferential {
		return "P"
	}
	return "N"
}

// WaitingPatient is one entry of the waiting list. Entries are removed,
// not archived, when called or deleted.
type WaitingPatient struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TicketNumber string    `json:"ticketNumber"`
	Priority     Priority  `json:"priority"`
	TargetRoomID string    `json:"targetRoomId"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RegisterPatientRequest struct {
	Name     string   `json:"name" validate:"required"`
	Priority Priority `json:"priority"`
	RoomID   string   `json:"roomId" validate:"required"`
}
