package types

import (
	"time"

	"github.com/google/uuid"
)

// BlogPost represents an admin-authored article shown on the public site.
type BlogPost struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Body      string    `json:"body"`
	CoverURL  string    `json:"cover_url,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CMSContent is a keyed piece of site copy editable by admins
// (hero text, FAQ entries, footer links and similar).
type CMSContent struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
