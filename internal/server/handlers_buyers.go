package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kwame/agrimarket/internal/types"
)

// handleListBuyers lists buyers (admin)
func (s *Server) handleListBuyers(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 100)
	offset := parseQueryInt(r, "offset", 0, 0)

	buyers, total, err := s.db.ListBuyers(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"buyers": buyers,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// handleGetBuyer retrieves a buyer profile
func (s *Server) handleGetBuyer(w http.ResponseWriter, r *http.Request) {
	buyerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid buyer ID")
		return
	}
	if !s.callerOwnsProfile(r, buyerID) {
		s.errorResponse(w, http.StatusForbidden, "Forbidden")
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

	s.jsonResponse(w, http.StatusOK, buyer)
}

// handleUpdateBuyer updates a buyer profile
func (s *Server) handleUpdateBuyer(w http.ResponseWriter, r *http.Request) {
	buyerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid buyer ID")
		return
	}
	if !s.callerOwnsProfile(r, buyerID) {
		s.errorResponse(w, http.StatusForbidden, "Forbidden")
		return
	}

	var buyer types.Buyer
	if err := json.NewDecoder(r.Body).Decode(&buyer); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	buyer.ID = buyerID

	if err := s.db.UpdateBuyer(r.Context(), &buyer); err != nil {
		if err == pgx.ErrNoRows {
			s.errorResponse(w, http.StatusNotFound, "Buyer not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, buyer)
}

// handleDeleteBuyer removes a buyer (admin)
func (s *Server) handleDeleteBuyer(w http.ResponseWriter, r *http.Request) {
	buyerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid buyer ID")
		return
	}

	if err := s.db.DeleteBuyer(r.Context(), buyerID); err != nil {
		if err == pgx.ErrNoRows {
			s.errorResponse(w, http.StatusNotFound, "Buyer not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleUnlockContact reveals a farmer's contact details to a buyer.
// Re-unlocking an already-unlocked farmer is free; otherwise one unlock is
// consumed from the buyer's plan quota.
func (s *Server) handleUnlockContact(w http.ResponseWriter, r *http.Request) {
	buyerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid buyer ID")
		return
	}
	farmerID, err := uuid.Parse(r.PathValue("farmer_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid farmer ID")
		return
	}
	if !s.callerOwnsProfile(r, buyerID) {
		s.errorResponse(w, http.StatusForbidden, "Forbidden")
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

	farmer, err := s.db.GetFarmer(r.Context(), farmerID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if farmer == nil {
		s.errorResponse(w, http.StatusNotFound, "Farmer not found")
		return
	}

	unlocked, err := s.db.HasUnlock(r.Context(), buyerID, farmerID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	var remaining int
	if !unlocked {
		var ok bool
		remaining, ok, err = s.db.ConsumeUnlock(r.Context(), buyerID, farmerID)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
			return
		}
		if !ok {
			quotaErr := &ErrQuotaExhausted{BuyerID: buyerID}
			s.errorResponse(w, HTTPStatus(quotaErr), quotaErr.Error())
			return
		}
	}

	contact := types.FarmerContact{
		FarmerID: farmer.ID,
		Name:     farmer.Name,
		Phone:    farmer.Phone,
		Email:    farmer.Email,
	}

	if !unlocked {
		if err := s.email.SendUnlockReceipt(r.Context(), buyer.Email, contact, remaining); err != nil {
			// Receipt failure must not block the unlock
			s.logf("unlock receipt email failed: %v", err)
		}
	}

	s.jsonResponse(w, http.StatusOK, contact)
}
