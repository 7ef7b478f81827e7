package eventpublisher

import (
	"frailes/internal/eventpublisher/event"
)

// Publisher lets watchers follow store changes and edit failures.
type Publisher interface {
	Subscribe(event.EventWChannel)
	Unsubscribe(event.EventWChannel)
}
