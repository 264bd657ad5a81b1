package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAuthor is used when a post is created without an author.
const DefaultAuthor = "Admin"

// BlogPost is an article. Content is markdown; ContentHTML is the rendered,
// sanitized form served to clients.
type BlogPost struct {
	ID           uuid.UUID
	Slug         string
	Title        string
	Content      string
	ContentHTML  string
	Excerpt      string
	FeatureImage *Image
	Author       string
	Tags         []string
	Published    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BlogPatch carries a partial update. Nil fields are left unchanged.
type BlogPatch struct {
	Title     *string
	Content   *string
	Excerpt   *string
	Author    *string
	Tags      []string // nil leaves tags unchanged; empty clears them
	Published *bool
}
