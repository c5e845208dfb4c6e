package models

import "time"

// PatientCall is immutable once dispatched. It is the unit of the call
// history and of the latest-call pointer.
type PatientCall struct {
	ID           string    `json:"id"`
	PatientName  string    `json:"patientName"`
	TicketNumber string    `json:"ticketNumber,omitempty"`
	RoomID       string    `json:"roomId"`
	RoomName     string    `json:"roomName"`
	DoctorName   string    `json:"doctorName"`
	Timestamp    time.Time `json:"timestamp"`
}

// Recall clones the descriptive fields of c under a fresh id and timestamp.
// The result is a distinct call.
func (c PatientCall) Recall(id string, now time.Time) PatientCall {
	c.ID = id
	c.Timestamp = now
	return c
}

type ManualCallRequest struct {
	PatientName  string `json:"patientName" validate:"required"`
	TicketNumber string `json:"ticketNumber"`
	RoomID       string `json:"roomId" validate:"required"`
}

type CallNextRequest struct {
	RoomID string `json:"roomId"`
}
