package grading

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kwame/agrimarket/internal/types"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// maxFarmer returns a farmer that should score the full 100 points.
func maxFarmer() *types.Farmer {
	produces := make([]types.Produce, 5)
	for i := range produces {
		produces[i] = types.Produce{Name: "Maize"}
	}
	return &types.Farmer{
		ProfileCompleteness: 1.0,
		BuyerRating:         5.0,
		SuccessfulTxns:      12,
		PhoneVerified:       true,
		IdentityVerified:    true,
		BankVerified:        true,
		Produces:            produces,
		RegisteredAt:        testNow.AddDate(0, -6, 0),
	}
}

func TestCompute_MaximumFarmer(t *testing.T) {
	grade := Compute(maxFarmer(), testNow)

	assert.Equal(t, 100, grade.Score)
	assert.Equal(t, 5.0, grade.Stars)
	assert.Equal(t, BadgePremium, grade.Badge)
}

func TestCompute_MinimumFarmer(t *testing.T) {
	farmer := &types.Farmer{RegisteredAt: testNow}

	grade := Compute(farmer, testNow)

	assert.Equal(t, 0, grade.Score)
	assert.Equal(t, 0.0, grade.Stars)
	assert.Equal(t, BadgeNewFarmer, grade.Badge)
}

func TestCompute_Deterministic(t *testing.T) {
	farmer := maxFarmer()
	farmer.BuyerRating = 3.7
	farmer.SuccessfulTxns = 4

	first := Compute(farmer, testNow)
	second := Compute(farmer, testNow)

	assert.Equal(t, first, second)
}

// A farmer with no activity, no rating, no transactions, and no verifications
// scores on completeness alone (max 40) and can never leave NewFarmer.
// This is an inherent property of the weights and must hold exactly.
func TestCompute_CompletenessAloneCannotEscapeNewFarmer(t *testing.T) {
	for _, completeness := range []float64{0.0, 0.25, 0.5, 0.75, 1.0} {
		farmer := &types.Farmer{
			ProfileCompleteness: completeness,
			RegisteredAt:        testNow,
		}

		grade := Compute(farmer, testNow)

		assert.LessOrEqual(t, grade.Score, 40)
		assert.Equal(t, BadgeNewFarmer, grade.Badge, "completeness %.2f", completeness)
	}
}

func TestCompute_ActivityAxisIsCapped(t *testing.T) {
	// The four activity proxies sum to 5+10+5+10 = 30 at most before the
	// clamp, but each proxy is also individually capped: pile on listings
	// and age beyond their thresholds and verify nothing leaks past 30.
	farmer := maxFarmer()
	farmer.Produces = make([]types.Produce, 50)
	farmer.RegisteredAt = testNow.AddDate(-10, 0, 0)

	assert.Equal(t, 30.0, computeActivityScore(farmer, testNow))
}

func TestCompute_ScoreAndStarsStayInRange(t *testing.T) {
	farmers := []*types.Farmer{
		{RegisteredAt: testNow},
		{ProfileCompleteness: 0.3, BuyerRating: 1.2, RegisteredAt: testNow.AddDate(0, 0, -7)},
		{ProfileCompleteness: 0.9, BuyerRating: 4.8, SuccessfulTxns: 3, PhoneVerified: true, RegisteredAt: testNow.AddDate(0, -2, 0)},
		maxFarmer(),
	}

	for _, farmer := range farmers {
		grade := Compute(farmer, testNow)

		assert.GreaterOrEqual(t, grade.Score, 0)
		assert.LessOrEqual(t, grade.Score, 100)
		assert.GreaterOrEqual(t, grade.Stars, 0.0)
		assert.LessOrEqual(t, grade.Stars, 5.0)

		// Stars are always a multiple of 0.5
		assert.Equal(t, 0.0, math.Mod(grade.Stars*2, 1))
	}
}

func TestBadgeForScore_InclusiveBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Badge
	}{
		{100, BadgePremium},
		{85, BadgePremium},
		{84, BadgeTrusted},
		{70, BadgeTrusted},
		{69, BadgeVerified},
		{50, BadgeVerified},
		{49, BadgeNewFarmer},
		{0, BadgeNewFarmer},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, badgeForScore(tc.score), "score %d", tc.score)
	}
}

func TestStarsForScore_HalfStarRounding(t *testing.T) {
	assert.Equal(t, 5.0, starsForScore(100))
	assert.Equal(t, 0.0, starsForScore(0))
	assert.Equal(t, 2.5, starsForScore(50))
	// 47/100*5*2 = 4.7 -> rounds to 5 -> 2.5 stars
	assert.Equal(t, 2.5, starsForScore(47))
	// 44/100*5*2 = 4.4 -> rounds to 4 -> 2.0 stars
	assert.Equal(t, 2.0, starsForScore(44))
}

func TestComputeQualityScore_Capped(t *testing.T) {
	farmer := &types.Farmer{BuyerRating: 5, SuccessfulTxns: 1000}
	assert.Equal(t, 20.0, computeQualityScore(farmer))
}

func TestComputeVerificationScore_PartialChannels(t *testing.T) {
	assert.Equal(t, 0.0, computeVerificationScore(&types.Farmer{}))
	assert.Equal(t, 4.0, computeVerificationScore(&types.Farmer{PhoneVerified: true}))
	assert.Equal(t, 7.0, computeVerificationScore(&types.Farmer{PhoneVerified: true, IdentityVerified: true}))
	assert.Equal(t, 10.0, computeVerificationScore(&types.Farmer{PhoneVerified: true, IdentityVerified: true, BankVerified: true}))
}
