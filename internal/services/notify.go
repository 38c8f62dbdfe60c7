package services

import (
	"context"

	"buspass/internal/events"
	"buspass/internal/logger"
	"buspass/internal/repositories"
)

// notifyUser publishes a notification for userID. Delivery is best effort and
// never fails the calling operation.
func notifyUser(ctx context.Context, pub events.Publisher, users repositories.UserRepository, requestID, topic string, userID int64, mobile, subject, body string) {
	if pub == nil {
		return
	}
	n := events.Notification{UserID: userID, Mobile: mobile, Subject: subject, Body: body}
	if u, err := users.GetByID(ctx, userID); err == nil {
		n.Email = u.Email
		if n.Mobile == "" {
			n.Mobile = u.Phone
		}
	}
	if err := pub.Publish(ctx, topic, n); err != nil {
		logger.Error(requestID, "events", topic, err)
	}
}
