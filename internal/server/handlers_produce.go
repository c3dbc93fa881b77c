package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kwame/agrimarket/internal/types"
)

// handleMarketplace browses produce listings with search filters
func (s *Server) handleMarketplace(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	status := types.ProduceStatus(r.URL.Query().Get("status"))
	limit := parseQueryInt(r, "limit", 50, 100)
	offset := parseQueryInt(r, "offset", 0, 0)

	listings, total, err := s.db.SearchProduce(r.Context(), query, category, status, limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"produce": listings,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// handleListFarmerProduce lists a farmer's produce listings
func (s *Server) handleListFarmerProduce(w http.ResponseWriter, r *http.Request) {
	farmerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid farmer ID")
		return
	}

	listings, err := s.db.ListProduceByFarmer(r.Context(), farmerID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"produce": listings})
}

// handleCreateProduce adds a listing for a farmer. Farmers may only list
// under their own profile; admins may list for anyone.
func (s *Server) handleCreateProduce(w http.ResponseWriter, r *http.Request) {
	farmerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid farmer ID")
		return
	}
	if !s.callerOwnsProfile(r, farmerID) {
		s.errorResponse(w, http.StatusForbidden, "Forbidden")
		return
	}

	var p types.Produce
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if p.Name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Produce name is required")
		return
	}
	p.FarmerID = farmerID
	if p.Status == "" {
		p.Status = types.StatusReadyForSale
		if p.HarvestTime != nil && p.HarvestTime.After(time.Now()) {
			p.Status = types.StatusUpcomingHarvest
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	created, err := s.db.CreateProduce(r.Context(), &p)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, created)
}

// handleGetProduce retrieves one listing
func (s *Server) handleGetProduce(w http.ResponseWriter, r *http.Request) {
	produceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid produce ID")
		return
	}

	p, err := s.db.GetProduce(r.Context(), produceID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if p == nil {
		s.errorResponse(w, http.StatusNotFound, "Produce not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, p)
}

// handleUpdateProduce updates a listing owned by the caller
func (s *Server) handleUpdateProduce(w http.ResponseWriter, r *http.Request) {
	produceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid produce ID")
		return
	}

	existing, err := s.db.GetProduce(r.Context(), produceID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if existing == nil {
		s.errorResponse(w, http.StatusNotFound, "Produce not found")
		return
	}
	if !s.callerOwnsProfile(r, existing.FarmerID) {
		s.errorResponse(w, http.StatusForbidden, "Forbidden")
		return
	}

	var p types.Produce
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p.ID = produceID
	p.FarmerID = existing.FarmerID

	if err := s.db.UpdateProduce(r.Context(), &p); err != nil {
		if err == pgx.ErrNoRows {
			s.errorResponse(w, http.StatusNotFound, "Produce not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, p)
}

// handleDeleteProduce removes a listing owned by the caller
func (s *Server) handleDeleteProduce(w http.ResponseWriter, r *http.Request) {
	produceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid produce ID")
		return
	}

	existing, err := s.db.GetProduce(r.Context(), produceID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if existing == nil {
		s.errorResponse(w, http.StatusNotFound, "Produce not found")
		return
	}
	if !s.callerOwnsProfile(r, existing.FarmerID) {
		s.errorResponse(w, http.StatusForbidden, "Forbidden")
		return
	}

	if err := s.db.DeleteProduce(r.Context(), produceID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
