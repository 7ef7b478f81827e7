package event

type (
	EventType int

	Event struct {
		Type    EventType
		Source  string
		Message interface{}
		Err     error
	}

	EventChannel  chan Event
	EventWChannel chan<- Event
)

const (
	StoreChanged EventType = iota
	StoreReady
	StoreFailed
	EditFailed
)

func (t EventType) String() string {
	switch t {
	case StoreChanged:
		return "changed"
	case StoreReady:
		return "ready"
	case StoreFailed:
		return "failed"
	case EditFailed:
		return "edit-failed"
	}
	return "unknown"
}
