package server

import (
	"net/http"
)

// handleListEmails lists simulated email sends, newest first. Nothing is
// actually delivered; this log is how operators inspect outbound mail.
func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 200)

	emails, err := s.db.ListEmails(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"emails": emails})
}
