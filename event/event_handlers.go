package event

import (
	"github.com/sirupsen/logrus"
)

// EventHandler reacts to a persisted event. A handler returns nil when the
// event is not of its concern.
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

// EventHandlers are invoked in registration order after each event is
// persisted. Registration happens at bootstrap, before requests are served.
var EventHandlers []EventHandler

var InvokeHandlersFunc = invokeHandlers

func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := []EventHandleResult{}
	for _, handle := range EventHandlers {
		result := handle(record)
		if result == nil {
			continue
		}
		results = append(results, *result)

		if result.Success {
			logrus.Infof("event %d of %s %d handled by %s", record.ID,
				record.SourceType, record.SourceId, result.HandlerIdentifier)
		} else {
			logrus.Errorf("event %d of %s %d failed in %s: %s", record.ID,
				record.SourceType, record.SourceId, result.HandlerIdentifier, result.Message)
		}
	}
	return results
}
