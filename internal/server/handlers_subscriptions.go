package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kwame/agrimarket/internal/payments"
	"github.com/kwame/agrimarket/internal/types"
)

// subscriptionPeriod is how long an activated plan stays valid.
const subscriptionPeriod = 30 * 24 * time.Hour

// planPriceCents returns the checkout amount for a paid plan, or 0 for
// unknown/free plans.
func planPriceCents(plan types.SubscriptionPlan) int64 {
	switch plan {
	case types.PlanStandard:
		return 5000
	case types.PlanPremium:
		return 20000
	default:
		return 0
	}
}

// handleInitializeSubscription starts checkout for a paid plan
func (s *Server) handleInitializeSubscription(w http.ResponseWriter, r *http.Request) {
	buyerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid buyer ID")
		return
	}
	if !s.callerOwnsProfile(r, buyerID) {
		s.errorResponse(w, http.StatusForbidden, "Forbidden")
		return
	}

	var req struct {
		Plan types.SubscriptionPlan `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amount := planPriceCents(req.Plan)
	if amount == 0 {
		s.errorResponse(w, http.StatusBadRequest, "Plan must be standard or premium")
		return
	}

	buyer, err := s.db.GetBuyer(r.Context(), buyerID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if buyer == nil {
		s.errorResponse(w, http.StatusNotFound, "Buyer not found")
		return
	}

	charge, err := s.payments.Initialize(r.Context(), buyer.Email, amount, req.Plan)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, charge)
}

// handleVerifySubscription confirms a settled payment and activates the plan
func (s *Server) handleVerifySubscription(w http.ResponseWriter, r *http.Request) {
	buyerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid buyer ID")
		return
	}
	if !s.callerOwnsProfile(r, buyerID) {
		s.errorResponse(w, http.StatusForbidden, "Forbidden")
		return
	}

	var req struct {
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reference == "" {
		s.errorResponse(w, http.StatusBadRequest, "Payment reference is required")
		return
	}

	status, plan, err := s.payments.Verify(r.Context(), req.Reference)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if status != payments.StatusSuccess {
		incompleteErr := &ErrPaymentIncomplete{Reference: req.Reference, Status: status}
		s.errorResponse(w, HTTPStatus(incompleteErr), incompleteErr.Error())
		return
	}
	if planPriceCents(plan) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "Charge carries no activatable plan")
		return
	}

	expiresAt := time.Now().UTC().Add(subscriptionPeriod)
	if err := s.db.ActivateSubscription(r.Context(), buyerID, plan, expiresAt); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	buyer, err := s.db.GetBuyer(r.Context(), buyerID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if buyer != nil {
		if err := s.email.SendSubscriptionReceipt(r.Context(), buyer.Email, plan, planPriceCents(plan)); err != nil {
			s.logf("subscription receipt email failed: %v", err)
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     "active",
		"plan":       plan,
		"expires_at": expiresAt,
		"quota":      plan.UnlockQuota(),
	})
}
