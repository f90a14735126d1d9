package models

import "time"

// CooldownPeriod is the mandatory rest after a donation.
const CooldownPeriod = 90 * 24 * time.Hour

// Donor holds the donor fields the matching and lifecycle flows rely on.
type Donor struct {
	ID                string     `bson:"unique_id" json:"unique_id"`
	FullName          string     `bson:"full_name" json:"full_name"`
	Phone             string     `bson:"phone" json:"phone"`
	Email             string     `bson:"email" json:"email,omitempty"`
	BloodGroup        BloodType  `bson:"blood_group" json:"blood_group"`
	Lat               float64    `bson:"lat" json:"lat"`
	Lng               float64    `bson:"lng" json:"lng"`
	HealthScore       float64    `bson:"health_score" json:"health_score"`
	IsAvailable       bool       `bson:"is_available" json:"is_available"`
	LastDonationDate  *time.Time `bson:"last_donation_date" json:"last_donation_date"`
	DonationCount     int        `bson:"donation_count" json:"donation_count"`
	CooldownEmailSent bool       `bson:"cooldown_email_sent" json:"cooldown_email_sent"`
	FCMToken          string     `bson:"fcm_token,omitempty" json:"fcm_token,omitempty"`
	PasswordHash      string     `bson:"password,omitempty" json:"-"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
}

// CooldownCutoff is the latest last-donation time that still leaves a donor
// eligible at now.
func CooldownCutoff(now time.Time) time.Time {
	return now.Add(-CooldownPeriod)
}

// CooldownEligible reports whether the donor has never donated or donated at
// least CooldownPeriod before now.
func (d *Donor) CooldownEligible(now time.Time) bool {
	if d.LastDonationDate == nil {
		return true
	}
	return !d.LastDonationDate.After(CooldownCutoff(now))
}

// CooldownDaysRemaining returns the whole days left in the rest period.
func (d *Donor) CooldownDaysRemaining(now time.Time) int {
	if d.LastDonationDate == nil {
		return 0
	}
	daysPassed := int(now.Sub(*d.LastDonationDate) / (24 * time.Hour))
	if daysPassed >= int(CooldownPeriod/(24*time.Hour)) {
		return 0
	}
	return int(CooldownPeriod/(24*time.Hour)) - daysPassed
}

// DonorStats is the dashboard view of a donor's standing.
type DonorStats struct {
	DonationCount int    `json:"donation_count"`
	IsAvailable   bool   `json:"is_available"`
	DaysRemaining int    `json:"days_remaining"`
	IsResting     bool   `json:"is_resting"`
	FCMToken      string `json:"fcm_token,omitempty"`
}
