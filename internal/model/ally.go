package model

import "time"

type AllyType string

const (
	AllyTypeHospedaje   AllyType = "hospedaje"
	AllyTypeRestaurante AllyType = "restaurante"
)

// AllyItem is a menu dish or a room. Items live inside the ally document, so
// their ids are generated by the client.
type AllyItem struct {
	Id          string   `json:"id" firestore:"id" validate:"required"`
	Name        string   `json:"name" firestore:"name" validate:"required"`
	Price       string   `json:"price" firestore:"price"`
	Description string   `json:"description" firestore:"description"`
	Image       string   `json:"image" firestore:"image" validate:"omitempty,url"`
	Gallery     []string `json:"gallery,omitempty" firestore:"gallery,omitempty" validate:"omitempty,dive,url"`
}

type Ally struct {
	Id          string     `json:"-" firestore:"-"`
	Name        string     `json:"name" firestore:"name" validate:"required"`
	Type        AllyType   `json:"type" firestore:"type" validate:"oneof=hospedaje restaurante"`
	Description string     `json:"description" firestore:"description"`
	Image       string     `json:"image" firestore:"image" validate:"omitempty,url"`
	Address     string     `json:"address,omitempty" firestore:"address,omitempty"`
	Whatsapp    string     `json:"whatsapp,omitempty" firestore:"whatsapp,omitempty"`
	BankDetails string     `json:"bankDetails,omitempty" firestore:"bankDetails,omitempty"`
	Items       []AllyItem `json:"items,omitempty" firestore:"items,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty" firestore:"timestamp,omitempty"`
}

func (a Ally) IsHotel() bool {
	return a.Type == AllyTypeHospedaje
}
