package model

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pendiente"
	ReservationConfirmed ReservationStatus = "confirmada"
)

// Reservation copies ally name, item names and total at booking time. They
// are history and are never re-synchronized with the ally.
type Reservation struct {
	Id           string            `json:"-" firestore:"-"`
	AllyId       string            `json:"allyId" firestore:"allyId" validate:"required"`
	AllyName     string            `json:"allyName" firestore:"allyName" validate:"required"`
	CustomerName string            `json:"customerName" firestore:"customerName" validate:"required"`
	Date         string            `json:"date" firestore:"date" validate:"required"`
	Time         string            `json:"time,omitempty" firestore:"time,omitempty"`
	Total        float64           `json:"total" firestore:"total" validate:"gt=0"`
	Items        []string          `json:"items" firestore:"items" validate:"min=1"`
	Status       ReservationStatus `json:"status" firestore:"status" validate:"oneof=pendiente confirmada"`
	Timestamp    *time.Time        `json:"timestamp,omitempty" firestore:"timestamp,omitempty"`
}

func (s ReservationStatus) Toggle() ReservationStatus {
	if s == ReservationConfirmed {
		return ReservationPending
	}
	return ReservationConfirmed
}
