package models

import "time"

// AlertStatus tracks a donor's answer to a request alert.
type AlertStatus string

const (
	AlertPending   AlertStatus = "Pending"
	AlertAccepted  AlertStatus = "Accepted"
	AlertDeclined  AlertStatus = "Declined"
	AlertDonated   AlertStatus = "Donated"
	AlertCompleted AlertStatus = "Completed"
)

// Alert links a donor to a blood request they were asked to serve.
type Alert struct {
	ID         string      `bson:"id" json:"id"`
	DonorID    string      `bson:"donor_id" json:"donor_id"`
	RequestID  string      `bson:"request_id" json:"request_id"`
	Status     AlertStatus `bson:"status" json:"status"`
	BloodBagID string      `bson:"blood_bag_id,omitempty" json:"blood_bag_id,omitempty"`
	CreatedAt  time.Time   `bson:"created_at" json:"created_at"`
}

// TargetedAlert is an alert joined with the request it points at, as shown
// on a donor's dashboard.
type TargetedAlert struct {
	AlertID   string      `json:"notif_id"`
	RequestID string      `json:"request_id"`
	Patient   string      `json:"patient"`
	Hospital  string      `json:"hospital"`
	Blood     BloodType   `json:"blood"`
	Urgency   int         `json:"urgency"`
	Phone     string      `json:"phone"`
	Status    AlertStatus `json:"status"`
	Date      time.Time   `json:"date"`
}

// Push kinds.
const (
	PushRequestAlert     = "request_alert"
	PushCooldownComplete = "cooldown_complete"
)

// PushPayload is the body of a queued push notification.
type PushPayload struct {
	Kind      string `json:"kind"`
	DonorID   string `json:"donorId"`
	RequestID string `json:"requestId,omitempty"`
	Token     string `json:"token"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Patient   string `json:"patient,omitempty"`
	Blood     string `json:"blood,omitempty"`
	Hospital  string `json:"hospital,omitempty"`
}
