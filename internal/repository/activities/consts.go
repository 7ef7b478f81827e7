package activities

const (
	// collection name
	activitiesNode string = "activities"

	// Fields' name and path
	TitleFieldPath               string = "title"
	DescriptionFieldPath         string = "description"
	ImageFieldPath               string = "image"
	PriceFieldPath               string = "price"
	TypeFieldPath                string = "type"
	IconFieldPath                string = "icon"
	ExtendedDescriptionFieldPath string = "extendedDescription"
	WhatToBringFieldPath         string = "whatToBring"
	BestTimeFieldPath            string = "bestTime"
	SafetyTipsFieldPath          string = "safetyTips"

	// placeholders of a new activity
	placeholderTitle        string = "Nuevo Item"
	placeholderDescription  string = "Descripción breve."
	placeholderServicePrice string = "$0.00"
)

var textFields = map[string]bool{
	TitleFieldPath:               true,
	DescriptionFieldPath:         true,
	PriceFieldPath:               true,
	IconFieldPath:                true,
	ExtendedDescriptionFieldPath: true,
	BestTimeFieldPath:            true,
}

var listFields = map[string]bool{
	WhatToBringFieldPath: true,
	SafetyTipsFieldPath:  true,
}
