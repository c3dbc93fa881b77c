// Package grading computes a farmer's trust grade from profile signals.
//
// The grade is a derived view: it is recomputed every time it is displayed
// and never persisted, so it is stale-proof by construction.
package grading

import (
	"math"
	"time"

	"github.com/kwame/agrimarket/internal/types"
)

// Axis caps for the weighted sum. Each axis is clamped independently before
// summing, so no single axis can exceed its allotted weight.
const (
	completenessWeight = 40.0
	activityCap        = 30.0
	qualityCap         = 20.0

	listingPoints         = 5.0  // full credit at 5+ listings
	ratingPresencePoints  = 10.0 // flat bonus for having any buyer rating
	accountAgePoints      = 5.0  // full credit at 30+ days
	ratingMagnitudePoints = 10.0

	phoneVerifiedPoints    = 4.0
	identityVerifiedPoints = 3.0
	bankVerifiedPoints     = 3.0
)

// Badge is an ordered trust tier derived from the numeric score.
type Badge string

// Badge tiers, lowest to highest
const (
	BadgeNewFarmer Badge = "new_farmer"
	BadgeVerified  Badge = "verified"
	BadgeTrusted   Badge = "trusted"
	BadgePremium   Badge = "premium"
)

// Grade is the ephemeral grading result for a farmer.
type Grade struct {
	Score int     `json:"score"` // 0..100
	Stars float64 `json:"stars"` // 0..5 in half-star increments
	Badge Badge   `json:"badge"`
}

// Compute grades a farmer's trustworthiness. It is pure and total: every
// valid farmer produces a result, with no error path. Inputs are assumed
// pre-validated (ratings in range, no future registration dates).
// now is passed explicitly so results are deterministic in tests.
func Compute(f *types.Farmer, now time.Time) Grade {
	total := computeCompletenessScore(f) +
		computeActivityScore(f, now) +
		computeQualityScore(f) +
		computeVerificationScore(f)

	score := int(math.Round(total))

	return Grade{
		Score: score,
		Stars: starsForScore(score),
		Badge: badgeForScore(score),
	}
}

// computeCompletenessScore maps profile completeness [0,1] onto 0-40 points.
func computeCompletenessScore(f *types.Farmer) float64 {
	return f.ProfileCompleteness * completenessWeight
}

// computeActivityScore sums four activity proxies, clamped to activityCap.
func computeActivityScore(f *types.Farmer, now time.Time) float64 {
	listings := math.Min(1, float64(len(f.Produces))/5) * listingPoints

	ratingPresence := 0.0
	if f.BuyerRating > 0 {
		ratingPresence = ratingPresencePoints
	}

	ageDays := now.Sub(f.RegisteredAt).Hours() / 24
	age := math.Min(1, ageDays/30) * accountAgePoints

	magnitude := (f.BuyerRating / 5) * ratingMagnitudePoints

	return math.Min(listings+ratingPresence+age+magnitude, activityCap)
}

// computeQualityScore blends rating magnitude with transaction history,
// clamped to qualityCap.
func computeQualityScore(f *types.Farmer) float64 {
	rating := (f.BuyerRating / 5) * 10
	txns := math.Min(1, float64(f.SuccessfulTxns)/10) * 10
	return math.Min(rating+txns, qualityCap)
}

// computeVerificationScore awards fixed points per verified channel.
// The three bonuses sum to exactly 10, so no clamp is needed.
func computeVerificationScore(f *types.Farmer) float64 {
	score := 0.0
	if f.PhoneVerified {
		score += phoneVerifiedPoints
	}
	if f.IdentityVerified {
		score += identityVerifiedPoints
	}
	if f.BankVerified {
		score += bankVerifiedPoints
	}
	return score
}

// starsForScore converts a 0-100 score to a 0-5 star rating rounded to the
// nearest half star.
func starsForScore(score int) float64 {
	return math.Round(float64(score)/100*5*2) / 2
}

// badgeForScore maps a score onto a badge tier. Thresholds are inclusive,
// evaluated high to low.
func badgeForScore(score int) Badge {
	switch {
	case score >= 85:
		return BadgePremium
	case score >= 70:
		return BadgeTrusted
	case score >= 50:
		return BadgeVerified
	default:
		return BadgeNewFarmer
	}
}
