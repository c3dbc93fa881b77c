package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kwame/agrimarket/internal/grading"
	"github.com/kwame/agrimarket/internal/types"
)

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// handleListFarmers lists farmers with optional name and location filters
func (s *Server) handleListFarmers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	location := r.URL.Query().Get("location")
	limit := parseQueryInt(r, "limit", 50, 100)
	offset := parseQueryInt(r, "offset", 0, 0)

	farmers, total, err := s.db.ListFarmers(r.Context(), query, location, limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"farmers": farmers,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// handleGetFarmer retrieves a farmer with produce listings
func (s *Server) handleGetFarmer(w http.ResponseWriter, r *http.Request) {
	farmerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid farmer ID")
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

	s.jsonResponse(w, http.StatusOK, farmer)
}

// handleGetFarmerGrade computes the trust grade for a farmer
func (s *Server) handleGetFarmerGrade(w http.ResponseWriter, r *http.Request) {
	farmerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid farmer ID")
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

	grade := grading.Compute(farmer, time.Now().UTC())
	s.jsonResponse(w, http.StatusOK, grade)
}

// handleCreateFarmer registers a farmer profile directly (admin use)
func (s *Server) handleCreateFarmer(w http.ResponseWriter, r *http.Request) {
	var farmer types.Farmer
	if err := json.NewDecoder(r.Body).Decode(&farmer); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if farmer.Phone == "" {
		s.errorResponse(w, http.StatusBadRequest, "Phone is required")
		return
	}
	if farmer.RegisteredAt.IsZero() {
		farmer.RegisteredAt = time.Now().UTC()
	}

	created, err := s.db.CreateFarmer(r.Context(), &farmer)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, created)
}

// handleUpdateFarmer updates a farmer profile. Farmers may only update their
// own profile; admins may update any.
func (s *Server) handleUpdateFarmer(w http.ResponseWriter, r *http.Request) {
	farmerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid farmer ID")
		return
	}
	if !s.callerOwnsProfile(r, farmerID) {
		s.errorResponse(w, http.StatusForbidden, "Forbidden")
		return
	}

	var farmer types.Farmer
	if err := json.NewDecoder(r.Body).Decode(&farmer); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	farmer.ID = farmerID

	if err := s.db.UpdateFarmer(r.Context(), &farmer); err != nil {
		if err == pgx.ErrNoRows {
			s.errorResponse(w, http.StatusNotFound, "Farmer not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, farmer)
}

// handleDeleteFarmer removes a farmer and their produce listings
func (s *Server) handleDeleteFarmer(w http.ResponseWriter, r *http.Request) {
	farmerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid farmer ID")
		return
	}

	if err := s.db.DeleteFarmer(r.Context(), farmerID); err != nil {
		if err == pgx.ErrNoRows {
			s.errorResponse(w, http.StatusNotFound, "Farmer not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleSetFarmerVerification sets verification flags (admin moderation)
func (s *Server) handleSetFarmerVerification(w http.ResponseWriter, r *http.Request) {
	farmerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid farmer ID")
		return
	}

	var req struct {
		PhoneVerified    bool `json:"phone_verified"`
		IdentityVerified bool `json:"identity_verified"`
		BankVerified     bool `json:"bank_verified"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err = s.db.SetFarmerVerification(r.Context(), farmerID, req.PhoneVerified, req.IdentityVerified, req.BankVerified)
	if err != nil {
		if err == pgx.ErrNoRows {
			s.errorResponse(w, http.StatusNotFound, "Farmer not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleRecordTransaction records a completed sale with a buyer rating
func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	farmerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid farmer ID")
		return
	}

	var req struct {
		Rating float64 `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Rating < 0 || req.Rating > 5 {
		s.errorResponse(w, http.StatusBadRequest, "Rating must be between 0 and 5")
		return
	}

	if err := s.db.RecordTransaction(r.Context(), farmerID, req.Rating); err != nil {
		if err == pgx.ErrNoRows {
			s.errorResponse(w, http.StatusNotFound, "Farmer not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "recorded"})
}
