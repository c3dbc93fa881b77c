// Package types provides type definitions for structured data used throughout the agrimarket system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// ProduceStatus describes the sale readiness of a produce listing.
type ProduceStatus string

// Produce status values
const (
	// StatusReadyForSale means the produce is harvested and available now
	StatusReadyForSale ProduceStatus = "ready_for_sale"
	// StatusUpcomingHarvest means the produce has a future harvest date
	StatusUpcomingHarvest ProduceStatus = "upcoming_harvest"
)

// Farmer represents a registered farmer profile.
// GradingInfo is never stored on the farmer: it is a derived view computed
// on demand from these fields (see internal/grading).
type Farmer struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	FarmName            string    `json:"farm_name,omitempty"`
	Location            string    `json:"location"`
	Phone               string    `json:"phone"`
	Email               string    `json:"email,omitempty"`
	FarmSize            *float64  `json:"farm_size,omitempty"` // hectares; nil when unknown
	ProfileCompleteness float64   `json:"profile_completeness"` // 0..1, maintained by the store
	BuyerRating         float64   `json:"buyer_rating"`         // 0..5 average
	SuccessfulTxns      int       `json:"successful_transactions"`
	PhoneVerified       bool      `json:"phone_verified"`
	IdentityVerified    bool      `json:"identity_verified"`
	BankVerified        bool      `json:"bank_account_verified"`
	Produces            []Produce `json:"produces,omitempty"`
	RegisteredAt        time.Time `json:"registered_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Produce represents a single produce listing belonging to a farmer.
type Produce struct {
	ID          uuid.UUID     `json:"id"`
	FarmerID    uuid.UUID     `json:"farmer_id"`
	Name        string        `json:"name"`
	Variety     string        `json:"variety,omitempty"`
	Category    string        `json:"category,omitempty"`
	Quantity    float64       `json:"quantity"`
	Unit        string        `json:"unit"`
	PricePerUnit float64      `json:"price_per_unit,omitempty"`
	Photos      []string      `json:"photos,omitempty"`
	HarvestTime *time.Time    `json:"harvest_time,omitempty"`
	Status      ProduceStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}
