package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kwame/agrimarket/internal/types"
)

// handleListBlogPosts lists posts. Unauthenticated callers see published only;
// the admin view passes ?drafts=true.
func (s *Server) handleListBlogPosts(w http.ResponseWriter, r *http.Request) {
	publishedOnly := r.URL.Query().Get("drafts") != "true"

	posts, err := s.db.ListBlogPosts(r.Context(), publishedOnly)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"posts": posts})
}

// handleGetBlogPost retrieves one post by slug
func (s *Server) handleGetBlogPost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	post, err := s.db.GetBlogPostBySlug(r.Context(), slug)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if post == nil {
		s.errorResponse(w, http.StatusNotFound, "Post not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, post)
}

// handleCreateBlogPost creates a post (admin)
func (s *Server) handleCreateBlogPost(w http.ResponseWriter, r *http.Request) {
	var post types.BlogPost
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if post.Title == "" || post.Slug == "" {
		s.errorResponse(w, http.StatusBadRequest, "Title and slug are required")
		return
	}

	created, err := s.db.CreateBlogPost(r.Context(), &post)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, created)
}

// handleUpdateBlogPost updates a post (admin)
func (s *Server) handleUpdateBlogPost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var post types.BlogPost
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := s.db.UpdateBlogPost(r.Context(), postID, &post)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if updated == nil {
		s.errorResponse(w, http.StatusNotFound, "Post not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, updated)
}

// handleDeleteBlogPost deletes a post (admin)
func (s *Server) handleDeleteBlogPost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	if err := s.db.DeleteBlogPost(r.Context(), postID); err != nil {
		if err == pgx.ErrNoRows {
			s.errorResponse(w, http.StatusNotFound, "Post not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListCMSContent lists all site copy entries
func (s *Server) handleListCMSContent(w http.ResponseWriter, r *http.Request) {
	entries, err := s.db.ListCMSContent(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"content": entries})
}

// handleGetCMSContent retrieves one entry by key
func (s *Server) handleGetCMSContent(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	entry, err := s.db.GetCMSContent(r.Context(), key)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if entry == nil {
		s.errorResponse(w, http.StatusNotFound, "Content key not set")
		return
	}

	s.jsonResponse(w, http.StatusOK, entry)
}

// handleSetCMSContent upserts an entry (admin)
func (s *Server) handleSetCMSContent(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := s.db.SetCMSContent(r.Context(), key, req.Value)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, entry)
}
