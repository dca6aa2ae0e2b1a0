package worker

import (
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

// StartNotificationWorker subscribes the notification handlers.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService) {
	if notificationService == nil || dispatcher == nil {
		return
	}
	notificationService.Register(dispatcher)
}
