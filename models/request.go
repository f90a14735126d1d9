package models

import "time"

// RequestStatus is the lifecycle state of a blood request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "Pending"
	StatusAccepted  RequestStatus = "Accepted"
	StatusOnTheWay  RequestStatus = "On the way"
	StatusCompleted RequestStatus = "Completed"
	StatusRejected  RequestStatus = "Rejected"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusOnTheWay, StatusRejected},
	StatusOnTheWay: {StatusCompleted},
}

// CanTransition reports whether a request may move from s to next.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BloodRequest is a requester's call for blood at a location.
type BloodRequest struct {
	ID            string        `bson:"id" json:"id"`
	RequesterID   string        `bson:"requester_id" json:"requester_id"`
	PatientName   string        `bson:"patient_name" json:"patient_name"`
	ContactNumber string        `bson:"contact_number" json:"contact_number"`
	BloodGroup    BloodType     `bson:"blood_group" json:"blood_group"`
	Units         int           `bson:"units" json:"units"`
	Urgency       int           `bson:"urgency" json:"urgency"`
	Hospital      string        `bson:"hospital" json:"hospital"`
	Lat           float64       `bson:"lat" json:"lat"`
	Lng           float64       `bson:"lng" json:"lng"`
	Status        RequestStatus `bson:"status" json:"status"`
	Timestamp     time.Time     `bson:"timestamp" json:"timestamp"`
}

// CreateRequestInput is the payload accepted when a requester opens a request.
type CreateRequestInput struct {
	RequesterID   string    `json:"requester_id"`
	PatientName   string    `json:"patientName" binding:"required"`
	ContactNumber string    `json:"contactNumber" binding:"required"`
	BloodGroup    BloodType `json:"bloodGroup" binding:"required"`
	Units         int       `json:"units" binding:"required"`
	Urgency       int       `json:"urgency" binding:"required"`
	Hospital      string    `json:"hospital" binding:"required"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
}
