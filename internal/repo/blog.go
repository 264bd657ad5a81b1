package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/slug"
)

// BlogRepo defines the persistence operations for blog posts.
type BlogRepo interface {
	// Create inserts a post. Returns slug.ErrTaken on a slug collision.
	Create(ctx context.Context, p domain.BlogPost) (domain.BlogPost, error)

	// GetByID returns domain.ErrNotFound if the post does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.BlogPost, error)

	// GetBySlug returns domain.ErrNotFound if no post has the slug.
	GetBySlug(ctx context.Context, slug string) (domain.BlogPost, error)

	// ListPublished returns one page of published posts, newest first, and
	// the total number of published posts.
	ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.BlogPost, int64, error)

	// Update overwrites the mutable fields of a post.
	Update(ctx context.Context, p domain.BlogPost) (domain.BlogPost, error)

	// Delete removes a post and returns the removed row.
	Delete(ctx context.Context, id uuid.UUID) (domain.BlogPost, error)
}

type pgBlogRepo struct {
	db db
}

// NewBlogRepo constructs a BlogRepo backed by the provided db connection.
func NewBlogRepo(db db) BlogRepo {
	return &pgBlogRepo{db: db}
}

const blogColumns = `
	id, slug, title, content, content_html, excerpt, feature_image_url,
	feature_image_key, author, tags, published, created_at, updated_at`

func blogArgs(p domain.BlogPost) pgx.NamedArgs {
	var imgURL, imgKey *string
	if p.FeatureImage != nil {
		imgURL, imgKey = &p.FeatureImage.URL, &p.FeatureImage.Key
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	author := p.Author
	if author == "" {
		author = domain.DefaultAuthor
	}
	return pgx.NamedArgs{
		"id":                p.ID,
		"slug":              p.Slug,
		"title":             p.Title,
		"content":           p.Content,
		"content_html":      p.ContentHTML,
		"excerpt":           p.Excerpt,
		"feature_image_url": imgURL,
		"feature_image_key": imgKey,
		"author":            author,
		"tags":              tags,
		"published":         p.Published,
	}
}

func (r *pgBlogRepo) Create(ctx context.Context, p domain.BlogPost) (domain.BlogPost, error) {
	q := `
		INSERT INTO blog_posts (slug, title, content, content_html, excerpt,
			feature_image_url, feature_image_key, author, tags, published)
		VALUES (@slug, @title, @content, @content_html, @excerpt,
			@feature_image_url, @feature_image_key, @author, @tags, @published)
		RETURNING` + blogColumns

	result, err := scanBlogPost(r.db.QueryRow(ctx, q, blogArgs(p)))
	if err != nil {
		if isUniqueViolation(err, "blog_posts_slug_key") {
			return domain.BlogPost{}, fmt.Errorf("repo.BlogRepo.Create: %w", slug.ErrTaken)
		}
		return domain.BlogPost{}, fmt.Errorf("repo.BlogRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgBlogRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.BlogPost, error) {
	q := `SELECT` + blogColumns + ` FROM blog_posts WHERE id = @id`

	result, err := scanBlogPost(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("repo.BlogRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgBlogRepo) GetBySlug(ctx context.Context, s string) (domain.BlogPost, error) {
	q := `SELECT` + blogColumns + ` FROM blog_posts WHERE slug = @slug`

	result, err := scanBlogPost(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": s}))
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("repo.BlogRepo.GetBySlug: %w", err)
	}
	return result, nil
}

func (r *pgBlogRepo) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.BlogPost, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM blog_posts WHERE published`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.BlogRepo.ListPublished: count: %w", err)
	}

	q := `SELECT` + blogColumns + `
		FROM blog_posts
		WHERE published
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BlogRepo.ListPublished: %w", err)
	}
	posts, err := collectRows(rows, scanBlogPost)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BlogRepo.ListPublished: scan: %w", err)
	}
	return posts, total, nil
}

func (r *pgBlogRepo) Update(ctx context.Context, p domain.BlogPost) (domain.BlogPost, error) {
	q := `
		UPDATE blog_posts
		SET slug              = @slug,
		    title             = @title,
		    content           = @content,
		    content_html      = @content_html,
		    excerpt           = @excerpt,
		    feature_image_url = @feature_image_url,
		    feature_image_key = @feature_image_key,
		    author            = @author,
		    tags              = @tags,
		    published         = @published,
		    updated_at        = now()
		WHERE id = @id
		RETURNING` + blogColumns

	result, err := scanBlogPost(r.db.QueryRow(ctx, q, blogArgs(p)))
	if err != nil {
		if isUniqueViolation(err, "blog_posts_slug_key") {
			return domain.BlogPost{}, fmt.Errorf("repo.BlogRepo.Update: %w", slug.ErrTaken)
		}
		return domain.BlogPost{}, fmt.Errorf("repo.BlogRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgBlogRepo) Delete(ctx context.Context, id uuid.UUID) (domain.BlogPost, error) {
	q := `DELETE FROM blog_posts WHERE id = @id RETURNING` + blogColumns

	result, err := scanBlogPost(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("repo.BlogRepo.Delete: %w", err)
	}
	return result, nil
}

func scanBlogPost(s scanner) (domain.BlogPost, error) {
	var (
		p              domain.BlogPost
		id             pgtype.UUID
		imgURL, imgKey *string
	)
	err := s.Scan(&id, &p.Slug, &p.Title, &p.Content, &p.ContentHTML, &p.Excerpt,
		&imgURL, &imgKey, &p.Author, &p.Tags, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BlogPost{}, domain.ErrNotFound
		}
		return domain.BlogPost{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	if imgURL != nil {
		p.FeatureImage = &domain.Image{URL: *imgURL}
		if imgKey != nil {
			p.FeatureImage.Key = *imgKey
		}
	}
	return p, nil
}
