package model

import "time"

type ActivityType string

const (
	ActivityTypeActivity ActivityType = "activity"
	ActivityTypeService  ActivityType = "service"
)

type Activity struct {
	Id                  string       `json:"-" firestore:"-"`
	Title               string       `json:"title" firestore:"title" validate:"required"`
	Description         string       `json:"description" firestore:"description"`
	Image               string       `json:"image" firestore:"image" validate:"omitempty,url"`
	Price               string       `json:"price,omitempty" firestore:"price,omitempty"`
	Type                ActivityType `json:"type" firestore:"type" validate:"oneof=activity service"`
	Icon                string       `json:"icon,omitempty" firestore:"icon,omitempty"`
	ExtendedDescription string       `json:"extendedDescription,omitempty" firestore:"extendedDescription,omitempty"`
	WhatToBring         []string     `json:"whatToBring,omitempty" firestore:"whatToBring,omitempty"`
	BestTime            string       `json:"bestTime,omitempty" firestore:"bestTime,omitempty"`
	SafetyTips          []string     `json:"safetyTips,omitempty" firestore:"safetyTips,omitempty"`
	Timestamp           *time.Time   `json:"timestamp,omitempty" firestore:"timestamp,omitempty"`
}

// ActivityGuide is the extended visitor guide of an activity, drafted by the
// copywriter and applied as one bulk field-set.
type ActivityGuide struct {
	ExtendedDescription string   `json:"extendedDescription"`
	WhatToBring         []string `json:"whatToBring"`
	BestTime            string   `json:"bestTime"`
	SafetyTips          []string `json:"safetyTips"`
}

func (a Activity) HasGuide() bool {
	return a.ExtendedDescription != "" || len(a.WhatToBring) > 0 || a.BestTime != "" || len(a.SafetyTips) > 0
}
