package reservations

const (
	// collection name
	reservationsNode string = "reservations"

	// Fields' name and path. Only the status changes after creation.
	StatusFieldPath string = "status"
)
