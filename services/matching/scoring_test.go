package matching

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"lifedrop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := now.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func TestHaversine(t *testing.T) {
	assert.Zero(t, haversine(13.0827, 80.2707, 13.0827, 80.2707))
	// Chennai to Bengaluru is roughly 290 km as the crow flies.
	d := haversine(13.0827, 80.2707, 12.9716, 77.5946)
	assert.InDelta(t, 290, d, 5)
	assert.InDelta(t, d, haversine(12.9716, 77.5946, 13.0827, 80.2707), 1e-9)
}

func TestDistanceScore(t *testing.T) {
	assert.Equal(t, 100.0, DistanceScore(0))
	assert.Equal(t, 80.0, DistanceScore(10))
	assert.Equal(t, 0.0, DistanceScore(50))
	assert.Equal(t, 0.0, DistanceScore(400))
}

func TestMatchScore(t *testing.T) {
	assert.Equal(t, 96, MatchScore(0, 90, false))
	assert.Equal(t, 100, MatchScore(0, 90, true))
	assert.Equal(t, 100, MatchScore(0, 100, true))
	// 80*0.6 + 50*0.4 = 68
	assert.Equal(t, 68, MatchScore(10, 50, false))
	assert.Equal(t, 73, MatchScore(10, 50, true))
	// 0*0.6 + 1.25*0.4 = 0.5 rounds half away from zero
	assert.Equal(t, 1, MatchScore(60, 1.25, false))
	assert.Equal(t, 0, MatchScore(60, 0, false))
}

func TestExactBonusIsFivePoints(t *testing.T) {
	for _, dist := range []float64{0, 3.3, 12, 27.5, 49} {
		for _, health := range []float64{0, 20, 55, 70} {
			plain := MatchScore(dist, health, false)
			exact := MatchScore(dist, health, true)
			if plain+5 <= 100 {
				assert.Equal(t, plain+5, exact, "dist=%v health=%v", dist, health)
			} else {
				assert.Equal(t, 100, exact)
			}
		}
	}
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "98******10", MaskPhone("9876543210"))
	assert.Equal(t, "+9******21", MaskPhone("+919840012321"))
	assert.Equal(t, "12******45", MaskPhone("12345"))
	assert.Equal(t, "1234", MaskPhone("1234"))
	assert.Equal(t, "", MaskPhone(""))

	for n := 0; n <= 20; n++ {
		phone := strings.Repeat("7", n)
		masked := MaskPhone(phone)
		if n <= 4 {
			assert.Equal(t, phone, masked)
			continue
		}
		require.Len(t, masked, 10)
		assert.Equal(t, phone[:2], masked[:2])
		assert.Equal(t, phone[n-2:], masked[8:])
		assert.Equal(t, "******", masked[2:8])
	}
}

func TestRankScenarioONegative(t *testing.T) {
	req := &models.BloodRequest{ID: "R1", BloodGroup: models.ONeg, Lat: 13.0827, Lng: 80.2707}
	donors := []models.Donor{
		{ID: "D1", FullName: "Anu", BloodGroup: models.ONeg, Lat: 13.0827, Lng: 80.2707, HealthScore: 90, IsAvailable: true, Phone: "9876543210"},
		{ID: "D2", FullName: "Bala", BloodGroup: models.APos, Lat: 13.0827, Lng: 80.2707, HealthScore: 90, IsAvailable: true, Phone: "9123456780"},
	}

	matches := Rank(req, donors, now)
	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, "D1", m.DonorID)
	assert.Equal(t, 0.0, m.Distance)
	assert.Equal(t, 100, m.Match)
	assert.True(t, m.IsExact)
	assert.Equal(t, "98******10", m.Phone)
}

func TestRankKeepsCompatibilityClosure(t *testing.T) {
	var pool []models.Donor
	for i, bt := range models.BloodTypes {
		pool = append(pool, models.Donor{
			ID: fmt.Sprintf("D%d", i), BloodGroup: bt, IsAvailable: true,
			HealthScore: 80, Lat: 13.0 + float64(i)/100, Lng: 80.2, Phone: "9000000000",
		})
	}
	pool = append(pool, models.Donor{ID: "DX", BloodGroup: "Bombay", IsAvailable: true, Phone: "9000000000"})

	recipients := append([]models.BloodType{}, models.BloodTypes...)
	recipients = append(recipients, "Bombay")
	for _, recipient := range recipients {
		req := &models.BloodRequest{BloodGroup: recipient, Lat: 13, Lng: 80.2}
		for _, m := range Rank(req, pool, now) {
			assert.True(t, models.CanDonateTo(m.Blood, recipient), "%s served %s", m.Blood, recipient)
		}
	}

	rare := Rank(&models.BloodRequest{BloodGroup: "Bombay"}, pool, now)
	require.Len(t, rare, 1)
	assert.Equal(t, "DX", rare[0].DonorID)
}

func TestRankExcludesRestingAndUnavailableDonors(t *testing.T) {
	req := &models.BloodRequest{BloodGroup: models.ABPos, Lat: 13, Lng: 80}
	donors := []models.Donor{
		{ID: "fresh", BloodGroup: models.OPos, IsAvailable: true, HealthScore: 100, LastDonationDate: daysAgo(10)},
		{ID: "edge", BloodGroup: models.OPos, IsAvailable: true, HealthScore: 100, LastDonationDate: daysAgo(89)},
		{ID: "rested", BloodGroup: models.OPos, IsAvailable: true, HealthScore: 60, LastDonationDate: daysAgo(90)},
		{ID: "never", BloodGroup: models.BNeg, IsAvailable: true, HealthScore: 60},
		{ID: "off", BloodGroup: models.APos, IsAvailable: false, HealthScore: 100},
	}

	var ids []string
	for _, m := range Rank(req, donors, now) {
		ids = append(ids, m.DonorID)
	}
	assert.ElementsMatch(t, []string{"rested", "never"}, ids)
}

func TestRankOrdersByScoreThenDonorID(t *testing.T) {
	req := &models.BloodRequest{BloodGroup: models.APos, Lat: 13, Lng: 80}
	donors := []models.Donor{
		{ID: "c", BloodGroup: models.ONeg, IsAvailable: true, HealthScore: 50, Lat: 13, Lng: 80},
		{ID: "a", BloodGroup: models.ONeg, IsAvailable: true, HealthScore: 50, Lat: 13, Lng: 80},
		{ID: "far", BloodGroup: models.APos, IsAvailable: true, HealthScore: 100, Lat: 13.3, Lng: 80},
		{ID: "top", BloodGroup: models.APos, IsAvailable: true, HealthScore: 95, Lat: 13, Lng: 80},
		{ID: "b", BloodGroup: models.ONeg, IsAvailable: true, HealthScore: 50, Lat: 13, Lng: 80},
	}

	matches := Rank(req, donors, now)
	require.Len(t, matches, 5)
	assert.Equal(t, "top", matches[0].DonorID)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Match, matches[i].Match)
		assert.LessOrEqual(t, matches[i].Match, 100)
		assert.GreaterOrEqual(t, matches[i].Match, 0)
	}

	var tied []string
	for _, m := range matches {
		if m.Match == 80 {
			tied = append(tied, m.DonorID)
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, tied)
}
