package worker

import (
	"context"

	"github.com/certdesk/course-storefront/internal/service"
)

// StartNotificationWorker registers notification handlers and sends queued
// operator mail until ctx is done.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	go notificationService.Run(ctx)
}
