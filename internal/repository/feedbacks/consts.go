package feedbacks

const (
	// collection name
	feedbacksNode string = "feedbacks"

	// Fields' name and path
	NameFieldPath    string = "name"
	CommentFieldPath string = "comment"
)
