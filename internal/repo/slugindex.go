package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/propnest/internal/slug"
)

// slugTables maps each slug kind to the table whose unique slug column
// scopes it. Table names are never taken from input.
var slugTables = map[slug.Kind]string{
	slug.KindProperty: "properties",
	slug.KindBlogPost: "blog_posts",
}

// SlugIndex answers slug existence queries against the entity tables.
// It implements slug.Oracle.
type SlugIndex struct {
	db db
}

// NewSlugIndex constructs a SlugIndex backed by the provided db connection.
func NewSlugIndex(db db) *SlugIndex {
	return &SlugIndex{db: db}
}

// Exists reports whether a row of kind other than excludeID holds candidate.
// uuid.Nil excludes nothing.
func (x *SlugIndex) Exists(ctx context.Context, kind slug.Kind, candidate string, excludeID uuid.UUID) (bool, error) {
	table, ok := slugTables[kind]
	if !ok {
		return false, fmt.Errorf("repo.SlugIndex.Exists: unknown kind %q", kind)
	}

	q := `SELECT EXISTS (
		SELECT 1 FROM ` + table + `
		WHERE slug = @slug AND id IS DISTINCT FROM @exclude)`

	var exclude *uuid.UUID
	if excludeID != uuid.Nil {
		exclude = &excludeID
	}

	var exists bool
	if err := x.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": candidate, "exclude": exclude}).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.SlugIndex.Exists: %w", err)
	}
	return exists, nil
}
