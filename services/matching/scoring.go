package matching

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"lifedrop/models"
)

// Scoring constants.
const (
	earthRadiusKm   = 6371.0
	distancePenalty = 2.0 // points lost per km
	distanceWeight  = 0.6
	healthWeight    = 0.4
	exactMatchBonus = 5.0
	maxScore        = 100
	phoneMask       = "******"
)

// haversine calculates the great-circle distance (in km) between two lat/lon points.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// DistanceScore decays linearly from 100 at the request site to 0 at 50 km.
func DistanceScore(distanceKm float64) float64 {
	return math.Max(0, 100-distanceKm*distancePenalty)
}

// MatchScore blends proximity and donor health into a 0-100 score, with a
// flat bonus when the donor's group equals the requested one.
func MatchScore(distanceKm, healthScore float64, exact bool) int {
	composite := DistanceScore(distanceKm)*distanceWeight + healthScore*healthWeight
	if exact {
		composite += exactMatchBonus
	}
	score := int(math.Round(composite))
	if score > maxScore {
		return maxScore
	}
	if score < 0 {
		return 0
	}
	return score
}

// MaskPhone keeps the first two and last two characters of numbers longer
// than four characters and hides the rest behind six asterisks.
func MaskPhone(phone string) string {
	if utf8.RuneCountInString(phone) <= 4 {
		return phone
	}
	r := []rune(phone)
	return string(r[:2]) + phoneMask + string(r[len(r)-2:])
}

// Rank scores the donors that can serve req and orders them best first.
// Donors that are unavailable, still resting at now or of an incompatible
// group are dropped even if the store returned them. Equal scores are
// ordered by donor id.
func Rank(req *models.BloodRequest, donors []models.Donor, now time.Time) []models.MatchResult {
	allowed := make(map[models.BloodType]bool)
	for _, t := range models.CompatibleDonorTypes(req.BloodGroup) {
		allowed[t] = true
	}

	matches := make([]models.MatchResult, 0, len(donors))
	for i := range donors {
		d := &donors[i]
		if !d.IsAvailable || !allowed[d.BloodGroup] || !d.CooldownEligible(now) {
			continue
		}
		distanceKm := haversine(req.Lat, req.Lng, d.Lat, d.Lng)
		exact := d.BloodGroup == req.BloodGroup

		matches = append(matches, models.MatchResult{
			DonorID:     d.ID,
			Name:        d.FullName,
			Distance:    math.Round(distanceKm*10) / 10,
			HealthScore: d.HealthScore,
			Match:       MatchScore(distanceKm, d.HealthScore, exact),
			Phone:       MaskPhone(d.Phone),
			Blood:       d.BloodGroup,
			Lat:         d.Lat,
			Lng:         d.Lng,
			IsExact:     exact,
			FCMToken:    d.FCMToken,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Match != matches[j].Match {
			return matches[i].Match > matches[j].Match
		}
		return matches[i].DonorID < matches[j].DonorID
	})
	return matches
}
