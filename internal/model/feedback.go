package model

import "time"

type Feedback struct {
	Id        string     `json:"-" firestore:"-"`
	Name      string     `json:"name" firestore:"name" validate:"required,max=80"`
	Comment   string     `json:"comment" firestore:"comment" validate:"required,max=2000"`
	Timestamp *time.Time `json:"timestamp,omitempty" firestore:"timestamp,omitempty"`
}
