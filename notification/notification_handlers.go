package notification

import (
	"github.com/sirupsen/logrus"
)

// NotificationHandler returns nil when the handler does not care about the record.
type NotificationHandler func(r *NotificationRecord) *NotificationHandleResult

type NotificationHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var NotificationHandlers []NotificationHandler

var InvokeHandlersFunc = invokeHandlers

// delivery is at-most-once best-effort: handler failures are logged and dropped
func invokeHandlers(records ...NotificationRecord) []NotificationHandleResult {
	results := []NotificationHandleResult{}
	for _, record := range records {
		for _, handler := range NotificationHandlers {
			r := handler(&record)
			if r == nil {
				continue
			}

			results = append(results, *r)

			if r.Success {
				logrus.Info("notification delivered. ", r)
			} else {
				logrus.Error("notification delivery failed. ", r)
			}
		}
	}
	return results
}
