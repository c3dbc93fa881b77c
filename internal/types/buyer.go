package types

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionPlan identifies a buyer subscription tier.
type SubscriptionPlan string

// Subscription plans ordered by contact-unlock quota
const (
	PlanFree     SubscriptionPlan = "free"
	PlanStandard SubscriptionPlan = "standard"
	PlanPremium  SubscriptionPlan = "premium"
)

// UnlockQuota returns the number of farmer contacts a plan may reveal per
// billing period. Free buyers browse the marketplace but cannot unlock.
func (p SubscriptionPlan) UnlockQuota() int {
	switch p {
	case PlanStandard:
		return 20
	case PlanPremium:
		return 100
	default:
		return 0
	}
}

// Buyer represents a registered produce buyer.
type Buyer struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Company         string           `json:"company,omitempty"`
	Email           string           `json:"email"`
	Phone           string           `json:"phone,omitempty"`
	Plan            SubscriptionPlan `json:"plan"`
	PlanExpiresAt   *time.Time       `json:"plan_expires_at,omitempty"`
	UnlocksRemaining int             `json:"unlocks_remaining"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ContactUnlock records that a buyer revealed a farmer's contact details.
// Re-unlocking the same farmer within a period is idempotent and free.
type ContactUnlock struct {
	ID        uuid.UUID `json:"id"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	FarmerID  uuid.UUID `json:"farmer_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FarmerContact is the payload revealed by a successful contact unlock.
type FarmerContact struct {
	FarmerID uuid.UUID `json:"farmer_id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email,omitempty"`
}
