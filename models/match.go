package models

// MatchResult is one ranked donor for a request. It is computed per query and
// never stored.
type MatchResult struct {
	DonorID     string    `json:"unique_id"`
	Name        string    `json:"name"`
	Distance    float64   `json:"distance"`
	HealthScore float64   `json:"healthScore"`
	Match       int       `json:"match"`
	Phone       string    `json:"phone"`
	Blood       BloodType `json:"blood"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	IsExact     bool      `json:"isExact"`
	FCMToken    string    `json:"fcm_token,omitempty"`
}

// RequestSummary carries what a map view needs about the request itself.
type RequestSummary struct {
	Lat   float64   `json:"lat"`
	Lng   float64   `json:"lng"`
	Blood BloodType `json:"blood"`
}

// MatchResponse is the ranked donor list for one request.
type MatchResponse struct {
	Request RequestSummary `json:"request"`
	Matches []MatchResult  `json:"matches"`
}
