package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/kwame/agrimarket/internal/importer"
	"github.com/kwame/agrimarket/internal/types"
)

// importSessionView is the session snapshot returned by import endpoints.
type importSessionView struct {
	ID      uuid.UUID       `json:"id"`
	State   importer.State  `json:"state"`
	Headers []string        `json:"headers,omitempty"`
	RowLen  int             `json:"row_count,omitempty"`
	Map     types.ColumnMap `json:"column_map,omitempty"`
}

func sessionView(session *importer.Session) importSessionView {
	view := importSessionView{
		ID:    session.ID(),
		State: session.State(),
		Map:   session.ColumnMap(),
	}
	if table := session.Table(); table != nil {
		view.Headers = table.Headers
		view.RowLen = len(table.Rows)
	}
	return view
}

// currentImportSession returns the active session if the path ID matches it.
func (s *Server) currentImportSession(w http.ResponseWriter, r *http.Request) *importer.Session {
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID")
		return nil
	}

	s.importMu.Lock()
	session := s.importSession
	s.importMu.Unlock()

	if session == nil || session.ID() != sessionID {
		s.errorResponse(w, http.StatusNotFound, "Import session not found")
		return nil
	}
	return session
}

// handleBeginImport uploads a delimited file and opens a new import session.
// Any previous session is discarded; one import runs at a time.
func (s *Server) handleBeginImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(importer.MaxFileSize); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "A 'file' form field is required")
		return
	}
	defer file.Close()

	text, err := io.ReadAll(io.LimitReader(file, importer.MaxFileSize+1))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to read upload: "+err.Error())
		return
	}

	session := importer.NewSession()
	size := header.Size
	if size <= 0 {
		size = int64(len(text))
	}
	if err := session.Begin(header.Filename, size, string(text)); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.importMu.Lock()
	s.importSession = session
	s.importMu.Unlock()

	s.jsonResponse(w, http.StatusCreated, sessionView(session))
}

// handleSuggestMapping asks the AI collaborator for a column map suggestion.
// A collaborator failure still answers 200 with an empty map; the operator
// completes the mapping by hand.
func (s *Server) handleSuggestMapping(w http.ResponseWriter, r *http.Request) {
	session := s.currentImportSession(w, r)
	if session == nil {
		return
	}

	suggested, err := session.RequestMapping(r.Context(), s.mapper)
	if err != nil {
		if stateErr, ok := err.(*importer.StateError); ok {
			s.errorResponse(w, HTTPStatus(stateErr), stateErr.Error())
			return
		}
		if r.Context().Err() != nil {
			// Operator went away; nothing to answer
			return
		}
		s.logf("column map suggestion failed: %v", err)
	}

	view := sessionView(session)
	view.Map = suggested
	s.jsonResponse(w, http.StatusOK, view)
}

// handleConfirmMapping freezes the reviewed column map and parses the batch
func (s *Server) handleConfirmMapping(w http.ResponseWriter, r *http.Request) {
	session := s.currentImportSession(w, r)
	if session == nil {
		return
	}

	var confirmed types.ColumnMap
	if err := json.NewDecoder(r.Body).Decode(&confirmed); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	records, err := session.ConfirmMapping(confirmed)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"session": sessionView(session),
		"records": records,
	})
}

// handlePreviewImport returns the parsed batch awaiting commit
func (s *Server) handlePreviewImport(w http.ResponseWriter, r *http.Request) {
	session := s.currentImportSession(w, r)
	if session == nil {
		return
	}
	if session.State() != importer.StatePreview {
		stateErr := &importer.StateError{State: session.State(), Op: "preview"}
		s.errorResponse(w, HTTPStatus(stateErr), stateErr.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"session": sessionView(session),
		"records": session.Records(),
	})
}

// handleCommitImport persists the previewed batch as farmer profiles
func (s *Server) handleCommitImport(w http.ResponseWriter, r *http.Request) {
	session := s.currentImportSession(w, r)
	if session == nil {
		return
	}

	created, err := session.Commit(r.Context(), s.db, s.db)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"session": sessionView(session),
		"created": len(created),
		"farmers": created,
	})
}

// handleResetImport discards the session's working state
func (s *Server) handleResetImport(w http.ResponseWriter, r *http.Request) {
	session := s.currentImportSession(w, r)
	if session == nil {
		return
	}

	session.Reset()
	s.jsonResponse(w, http.StatusOK, sessionView(session))
}

// handleListImportHistory lists past import sessions, newest first
func (s *Server) handleListImportHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 200)

	entries, err := s.db.ListImportHistory(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"history": entries})
}
