package notification

import (
	"context"

	"lifedrop/models"
	"lifedrop/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// FCMNotifier sends pushes through Firebase Cloud Messaging.
type FCMNotifier struct {
	Client *messaging.Client
	Logger *zap.Logger
}

// BuildMessage renders a payload as a high-priority FCM message.
func BuildMessage(p models.PushPayload) *messaging.Message {
	data := map[string]string{
		"kind":    p.Kind,
		"donorId": p.DonorID,
	}
	if p.RequestID != "" {
		data["requestId"] = p.RequestID
	}
	if p.Patient != "" {
		data["patient"] = p.Patient
	}
	if p.Blood != "" {
		data["blood"] = p.Blood
	}
	if p.Hospital != "" {
		data["hospital"] = p.Hospital
	}

	return &messaging.Message{
		Token: p.Token,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
}

func (n *FCMNotifier) Push(ctx context.Context, p models.PushPayload) error {
	if p.Token == "" {
		return utils.NewNotificationError(nil, "donor %s has no FCM token", p.DonorID)
	}
	if n.Client == nil {
		return utils.NewNotificationError(nil, "push messaging is not configured")
	}

	id, err := n.Client.Send(ctx, BuildMessage(p))
	if err != nil {
		return utils.NewNotificationError(err, "failed to send push to donor %s", p.DonorID)
	}

	logger := n.Logger
	if logger == nil {
		logger = utils.GetLogger()
	}
	logger.Debug("push sent", zap.String("donorID", p.DonorID), zap.String("kind", p.Kind), zap.String("messageID", id))
	return nil
}
